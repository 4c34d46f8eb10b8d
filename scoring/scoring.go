package scoring

import (
	"fmt"
	"sort"
	"strings"

	"match-agent/web/types"
)

// Scored is one ranked candidate with the human-readable reasons that
// produced its score.
type Scored struct {
	ID      string
	Score   int
	Reasons []string
}

// RankInput pairs a recalled candidate id with its flattened traits, in
// recall order.
type RankInput struct {
	ID     string
	Traits Traits
}

const recallBaseScore = 30

// Rank scores recalled candidates against the seeker and returns the top
// topK. Each candidate starts from a base that decays with recall rank, so
// retrieval relevance survives as a tie-breaker. A weight-3 policy
// dimension is a hard requirement: candidates that miss it are vetoed, not
// merely penalized.
func Rank(seeker Traits, policy types.MatchPolicy, candidates []RankInput, topK int) []Scored {
	scored := make([]Scored, 0, len(candidates))
	for i, c := range candidates {
		base := recallBaseScore - i
		if base < 0 {
			base = 0
		}
		s := Scored{ID: c.ID, Score: base}

		vetoed := false
		applyPolicyDimension(&s, &vetoed, policy.EducationWeight, policy.PreferredDegree, c.Traits.Degree, "学历符合要求")
		applyPolicyDimension(&s, &vetoed, policy.JobWeight, policy.PreferredJob, c.Traits.Job, "职业符合要求")
		applyPolicyDimension(&s, &vetoed, policy.FamilyWeight, policy.PreferredFamily, c.Traits.Family, "家庭背景符合要求")
		if vetoed {
			continue
		}

		applyCompatibility(&s, seeker, c.Traits)
		scored = append(scored, s)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

// applyPolicyDimension adds 10x the weight when the candidate value matches
// the preference. At weight 3 a mismatch vetoes the candidate.
func applyPolicyDimension(s *Scored, vetoed *bool, weight int, preferred, actual, reason string) {
	if weight <= 0 || preferred == "" {
		return
	}
	if matchesPreference(actual, preferred) {
		s.Score += 10 * weight
		s.Reasons = append(s.Reasons, reason)
		return
	}
	if weight >= 3 {
		*vetoed = true
	}
}

// matchesPreference is a tolerant containment check in both directions, so
// "硕士" matches "硕士及以上" and vice versa.
func matchesPreference(actual, preferred string) bool {
	if actual == "" {
		return false
	}
	return strings.Contains(actual, preferred) || strings.Contains(preferred, actual)
}

func applyCompatibility(s *Scored, seeker, candidate Traits) {
	if seeker.MBTI != "" && candidate.MBTI != "" {
		switch {
		case strings.EqualFold(seeker.MBTI, candidate.MBTI):
			s.Score += 10
			s.Reasons = append(s.Reasons, "MBTI类型一致")
		case complementaryMBTI(seeker.MBTI, candidate.MBTI):
			s.Score += 15
			s.Reasons = append(s.Reasons, "性格内外互补")
		}
	}

	if shared := sharedTags(seeker.Tags, candidate.Tags); len(shared) > 0 {
		s.Score += 5 * len(shared)
		s.Reasons = append(s.Reasons, fmt.Sprintf("共同点: %s", strings.Join(shared, "、")))
	}

	if seeker.Smoking != "" && seeker.Smoking == candidate.Smoking {
		s.Score += 5
		s.Reasons = append(s.Reasons, "吸烟习惯一致")
	}
	if seeker.Drinking != "" && seeker.Drinking == candidate.Drinking {
		s.Score += 5
		s.Reasons = append(s.Reasons, "饮酒习惯一致")
	}
}

// complementaryMBTI reports the extrovert/introvert pairing: first letters
// differ between E and I while the remaining three functions line up.
func complementaryMBTI(a, b string) bool {
	a, b = strings.ToUpper(a), strings.ToUpper(b)
	if len(a) != 4 || len(b) != 4 {
		return false
	}
	ei := (a[0] == 'E' && b[0] == 'I') || (a[0] == 'I' && b[0] == 'E')
	return ei && a[1:] == b[1:]
}

func sharedTags(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]bool, len(a))
	for _, tag := range a {
		set[tag] = true
	}
	var shared []string
	seen := make(map[string]bool)
	for _, tag := range b {
		if set[tag] && !seen[tag] {
			shared = append(shared, tag)
			seen[tag] = true
		}
	}
	return shared
}
