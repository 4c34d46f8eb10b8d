package search

import (
	"context"
	"reflect"
	"testing"

	"match-agent/config"

	"go.uber.org/zap"
)

type stubRetriever struct {
	vector  []string
	keyword []string
}

func (s *stubRetriever) VectorSearch(ctx context.Context, queryText string, allow []string, limit int) ([]string, error) {
	return s.vector, nil
}

func (s *stubRetriever) KeywordSearch(ctx context.Context, keywords string, allow []string, limit int) ([]string, error) {
	return s.keyword, nil
}

func testConfig() *config.Config {
	return &config.Config{RRFRankConstant: 60, RecallLimit: 20, PassthroughCap: 10}
}

func TestFuseRRFOrdersByCombinedScore(t *testing.T) {
	// "a" appears in both lists (keyword rank 0, vector rank 1) and must
	// beat "b" and "c", which each appear once at rank 0.
	keyword := []string{"a", "b"}
	vector := []string{"c", "a"}

	got := FuseRRF(keyword, vector, 60)
	if got[0] != "a" {
		t.Fatalf("expected double-listed candidate first, got %v", got)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 fused candidates, got %d", len(got))
	}
}

func TestFuseRRFScoreArithmetic(t *testing.T) {
	// A candidate at keyword rank 2 and vector rank 5 scores exactly
	// 1/(60+2+1) + 1/(60+5+1). That beats a candidate appearing only at
	// keyword rank 0, which scores 1/(60+0+1).
	keyword := []string{"only", "x", "both"}
	vector := []string{"v0", "v1", "v2", "v3", "v4", "both"}

	k := 60
	entries := fuseEntries(keyword, vector, k)
	if entries[0].id != "both" {
		t.Fatalf("expected dual-list candidate to outrank single-list rank 0, got %v", entries)
	}
	want := 1.0/float64(k+2+1) + 1.0/float64(k+5+1)
	if entries[0].score != want {
		t.Fatalf("fused score = %v, want exactly %v", entries[0].score, want)
	}

	var only fusedEntry
	for _, e := range entries {
		if e.id == "only" {
			only = e
		}
	}
	if onlyWant := 1.0 / float64(k+0+1); only.score != onlyWant {
		t.Fatalf("single-list score = %v, want exactly %v", only.score, onlyWant)
	}
}

func TestFuseRRFTieBreaksByVectorRank(t *testing.T) {
	// "p" and "q" each appear only once at the same rank in opposite
	// lists, so their scores tie. The vector-side candidate wins.
	keyword := []string{"p"}
	vector := []string{"q"}

	got := FuseRRF(keyword, vector, 60)
	want := []string{"q", "p"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRecallHybrid(t *testing.T) {
	engine := NewEngine(&stubRetriever{
		keyword: []string{"a", "b"},
		vector:  []string{"b", "c"},
	}, testConfig(), zap.NewNop())

	got, err := engine.Recall(context.Background(), "query", "keywords", []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != "b" {
		t.Fatalf("expected dual-list candidate first, got %v", got)
	}
}

func TestRecallDegradesToVectorOnly(t *testing.T) {
	engine := NewEngine(&stubRetriever{vector: []string{"c", "a"}}, testConfig(), zap.NewNop())

	got, err := engine.Recall(context.Background(), "query", "", []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"c", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRecallDegradesToPassthroughCapped(t *testing.T) {
	allow := make([]string, 15)
	for i := range allow {
		allow[i] = string(rune('a' + i))
	}
	engine := NewEngine(&stubRetriever{}, testConfig(), zap.NewNop())

	got, err := engine.Recall(context.Background(), "query", "keywords", allow)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 10 {
		t.Fatalf("passthrough should cap at 10, got %d", len(got))
	}
	if !reflect.DeepEqual(got, allow[:10]) {
		t.Fatalf("passthrough should preserve allowlist order, got %v", got)
	}
}

func TestRecallEmptyAllowlist(t *testing.T) {
	engine := NewEngine(&stubRetriever{vector: []string{"a"}}, testConfig(), zap.NewNop())

	got, err := engine.Recall(context.Background(), "query", "keywords", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("expected nil for empty allowlist, got %v", got)
	}
}
