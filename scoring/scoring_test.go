package scoring

import (
	"testing"

	"match-agent/web/types"
)

func TestRankBaseScoreDecaysWithRecallRank(t *testing.T) {
	candidates := []RankInput{
		{ID: "first"},
		{ID: "second"},
		{ID: "third"},
	}

	got := Rank(Traits{}, types.MatchPolicy{}, candidates, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got[0].ID != "first" || got[0].Score != 30 {
		t.Errorf("rank 0 = %+v, want first with score 30", got[0])
	}
	if got[1].ID != "second" || got[1].Score != 29 {
		t.Errorf("rank 1 = %+v, want second with score 29", got[1])
	}
}

func TestRankWeightThreeVeto(t *testing.T) {
	policy := types.MatchPolicy{EducationWeight: 3, PreferredDegree: "硕士"}
	candidates := []RankInput{
		{ID: "match", Traits: Traits{Degree: "硕士"}},
		{ID: "veto", Traits: Traits{Degree: "本科"}},
	}

	got := Rank(Traits{}, policy, candidates, 3)
	if len(got) != 1 {
		t.Fatalf("weight-3 mismatch must veto, got %d results", len(got))
	}
	if got[0].ID != "match" {
		t.Fatalf("surviving candidate = %s, want match", got[0].ID)
	}
	// base 30 + 10*3 for the matched hard requirement
	if got[0].Score != 60 {
		t.Errorf("score = %d, want 60", got[0].Score)
	}
}

func TestRankSoftWeightMismatchOnlyLosesBonus(t *testing.T) {
	policy := types.MatchPolicy{JobWeight: 2, PreferredJob: "教师"}
	candidates := []RankInput{
		{ID: "miss", Traits: Traits{Job: "程序员"}},
	}

	got := Rank(Traits{}, policy, candidates, 3)
	if len(got) != 1 {
		t.Fatal("soft-weight mismatch must not veto")
	}
	if got[0].Score != 30 {
		t.Errorf("score = %d, want base 30 with no bonus", got[0].Score)
	}
}

func TestRankMBTIExactAndComplementary(t *testing.T) {
	seeker := Traits{MBTI: "INFJ"}
	candidates := []RankInput{
		{ID: "same", Traits: Traits{MBTI: "INFJ"}},
		{ID: "complement", Traits: Traits{MBTI: "ENFJ"}},
		{ID: "unrelated", Traits: Traits{MBTI: "ESTP"}},
	}

	got := Rank(seeker, types.MatchPolicy{}, candidates, 3)
	// same: 30 + 10 = 40; complement: 29 + 15 = 44; unrelated: 28
	if got[0].ID != "complement" || got[0].Score != 44 {
		t.Errorf("top = %+v, want complement at 44", got[0])
	}
	if got[1].ID != "same" || got[1].Score != 40 {
		t.Errorf("second = %+v, want same at 40", got[1])
	}
}

func TestRankSharedTagsAndHabits(t *testing.T) {
	seeker := Traits{Tags: []string{"徒步", "摄影", "烘焙"}, Smoking: "不吸烟", Drinking: "偶尔"}
	candidates := []RankInput{
		{ID: "c", Traits: Traits{Tags: []string{"摄影", "徒步", "滑雪"}, Smoking: "不吸烟", Drinking: "偶尔"}},
	}

	got := Rank(seeker, types.MatchPolicy{}, candidates, 1)
	// base 30 + 2 shared tags * 5 + smoking 5 + drinking 5
	if got[0].Score != 50 {
		t.Errorf("score = %d, want 50", got[0].Score)
	}
	if len(got[0].Reasons) != 3 {
		t.Errorf("reasons = %v, want tag overlap plus both habits", got[0].Reasons)
	}
}

func TestRankCapsAtTopK(t *testing.T) {
	candidates := make([]RankInput, 10)
	for i := range candidates {
		candidates[i] = RankInput{ID: string(rune('a' + i))}
	}
	got := Rank(Traits{}, types.MatchPolicy{}, candidates, 3)
	if len(got) != 3 {
		t.Fatalf("expected top 3, got %d", len(got))
	}
}

func TestComplementaryMBTI(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"INFJ", "ENFJ", true},
		{"ENFJ", "INFJ", true},
		{"INFJ", "INFJ", false},
		{"INFJ", "ENFP", false},
		{"INF", "ENF", false},
	}
	for _, tc := range cases {
		if got := complementaryMBTI(tc.a, tc.b); got != tc.want {
			t.Errorf("complementaryMBTI(%s, %s) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestTraitsFromAspects(t *testing.T) {
	aspects := map[string]any{
		"personality": map[string]any{"mbti": "INTJ", "tags": []any{"沉稳", "理性"}},
		"lifestyle":   map[string]any{"smoking": "不吸烟", "drinking": "偶尔"},
		"education":   map[string]any{"degree": "硕士"},
		"career":      map[string]any{"job": "工程师"},
		"interests":   map[string]any{"tags": []any{"徒步"}},
	}

	got := TraitsFromAspects(aspects)
	if got.MBTI != "INTJ" || got.Degree != "硕士" || got.Job != "工程师" {
		t.Errorf("unexpected traits: %+v", got)
	}
	if len(got.Tags) != 3 {
		t.Errorf("tags = %v, want personality and interest tags merged", got.Tags)
	}
	if got.Smoking != "不吸烟" || got.Drinking != "偶尔" {
		t.Errorf("habit traits wrong: %+v", got)
	}
}

func TestTraitsFromAspectsTolerantOfGarbage(t *testing.T) {
	aspects := map[string]any{
		"personality": "not a map",
		"lifestyle":   map[string]any{"smoking": 42},
	}
	got := TraitsFromAspects(aspects)
	if got.MBTI != "" || got.Smoking != "" || len(got.Tags) != 0 {
		t.Errorf("malformed aspects must read as empty, got %+v", got)
	}
}
