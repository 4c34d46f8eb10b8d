package search

import (
	"context"
	"sort"

	"match-agent/config"

	"go.uber.org/zap"
)

// Retriever is the ranked-list source the engine fuses. Satisfied by the
// profile index.
type Retriever interface {
	VectorSearch(ctx context.Context, queryText string, allow []string, limit int) ([]string, error)
	KeywordSearch(ctx context.Context, keywords string, allow []string, limit int) ([]string, error)
}

// Engine performs hybrid recall over the hard-filter survivors. Keyword and
// vector rankings are fused with reciprocal rank fusion; when either leg
// comes back empty the engine degrades one step at a time instead of
// failing the turn.
type Engine struct {
	retriever      Retriever
	logger         *zap.Logger
	rrfK           int
	recallLimit    int
	passthroughCap int
}

func NewEngine(retriever Retriever, cfg *config.Config, logger *zap.Logger) *Engine {
	return &Engine{
		retriever:      retriever,
		logger:         logger,
		rrfK:           cfg.RRFRankConstant,
		recallLimit:    cfg.RecallLimit,
		passthroughCap: cfg.PassthroughCap,
	}
}

// Recall returns candidate ids ordered by fused relevance. The chain is
// hybrid fusion, then vector-only, then a capped passthrough of the
// allowlist itself so a thin index never zeroes out a turn.
func (e *Engine) Recall(ctx context.Context, queryText, keywords string, allow []string) ([]string, error) {
	if len(allow) == 0 {
		return nil, nil
	}

	vectorIDs, err := e.retriever.VectorSearch(ctx, queryText, allow, e.recallLimit)
	if err != nil {
		e.logger.Warn("Vector search failed, degrading", zap.Error(err))
		vectorIDs = nil
	}
	keywordIDs, err := e.retriever.KeywordSearch(ctx, keywords, allow, e.recallLimit)
	if err != nil {
		e.logger.Warn("Keyword search failed, degrading", zap.Error(err))
		keywordIDs = nil
	}

	switch {
	case len(keywordIDs) > 0 && len(vectorIDs) > 0:
		fused := FuseRRF(keywordIDs, vectorIDs, e.rrfK)
		if len(fused) > e.recallLimit {
			fused = fused[:e.recallLimit]
		}
		return fused, nil
	case len(vectorIDs) > 0:
		e.logger.Debug("Hybrid recall degraded to vector-only", zap.Int("results", len(vectorIDs)))
		return vectorIDs, nil
	case len(keywordIDs) > 0:
		e.logger.Debug("Hybrid recall degraded to keyword-only", zap.Int("results", len(keywordIDs)))
		return keywordIDs, nil
	default:
		e.logger.Debug("Hybrid recall degraded to allowlist passthrough", zap.Int("allow", len(allow)))
		capped := allow
		if len(capped) > e.passthroughCap {
			capped = capped[:e.passthroughCap]
		}
		return capped, nil
	}
}

type fusedEntry struct {
	id         string
	score      float64
	vectorRank int
}

// fuseEntries computes the reciprocal-rank-fusion table for two ranked id
// lists, best first. Each list contributes 1/(k+rank+1) per id with
// zero-based ranks. Score ties resolve by vector rank, so the semantic
// ordering wins when the fusion is even.
func fuseEntries(keywordIDs, vectorIDs []string, k int) []fusedEntry {
	entries := make(map[string]*fusedEntry)
	add := func(ids []string) {
		for rank, id := range ids {
			entry, ok := entries[id]
			if !ok {
				entry = &fusedEntry{id: id, vectorRank: len(vectorIDs)}
				entries[id] = entry
			}
			entry.score += 1.0 / float64(k+rank+1)
		}
	}
	add(keywordIDs)
	add(vectorIDs)
	for rank, id := range vectorIDs {
		entries[id].vectorRank = rank
	}

	merged := make([]fusedEntry, 0, len(entries))
	for _, entry := range entries {
		merged = append(merged, *entry)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].score != merged[j].score {
			return merged[i].score > merged[j].score
		}
		return merged[i].vectorRank < merged[j].vectorRank
	})
	return merged
}

// FuseRRF merges two ranked id lists with reciprocal rank fusion.
func FuseRRF(keywordIDs, vectorIDs []string, k int) []string {
	entries := fuseEntries(keywordIDs, vectorIDs, k)
	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.id
	}
	return ids
}
