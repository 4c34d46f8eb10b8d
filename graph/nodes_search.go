package graph

import (
	"context"
	"time"

	"match-agent/query"
	"match-agent/scoring"
	"match-agent/web/types"

	"go.uber.org/zap"
)

// hardFilter runs the SQL-side constraint pass. Zero survivors either feed
// the bounded refine loop or, with the retry budget spent, fall through to
// the failure reply.
func (o *Orchestrator) hardFilter(ctx context.Context, st *TurnState) (node, error) {
	exclude := append([]string{st.Request.UserID}, st.Carried.SeenIDs...)
	filter := query.BuildCandidateFilter(st.Filter, st.Seeker.Gender, exclude, o.cfg.HardFilterLimit, time.Now())

	ids, err := o.store.FindCandidateIDs(ctx, filter)
	if err != nil {
		return nodeEnd, err
	}
	st.AllowIDs = ids

	if len(ids) == 0 {
		if st.SearchCount < o.cfg.MaxSearchRetries {
			return nodeRefineQuery, nil
		}
		o.logger.Info("Hard filter empty after retry budget",
			zap.String("session_id", st.Request.SessionID), zap.Int("retries", st.SearchCount))
		return nodeResponse, nil
	}
	return nodeSemanticRecall, nil
}

// refineQuery loosens the constraint spec one deterministic notch and goes
// back around. An unloosenable spec gives up straight to the reply.
func (o *Orchestrator) refineQuery(ctx context.Context, st *TurnState) (node, error) {
	relaxed, ok := query.Refine(st.Filter)
	if !ok {
		return nodeResponse, nil
	}
	st.SearchCount++
	st.Filter = relaxed
	if st.Carried.LastCriteria != nil {
		st.Carried.LastCriteria.Filter = relaxed
	}
	o.logger.Info("Relaxed search constraints",
		zap.String("session_id", st.Request.SessionID), zap.Int("attempt", st.SearchCount))
	return nodeHardFilter, nil
}

// semanticRecall narrows the hard-filter survivors with hybrid retrieval.
func (o *Orchestrator) semanticRecall(ctx context.Context, st *TurnState) (node, error) {
	queryText := st.Request.Message
	if st.Keywords != "" {
		queryText = st.Keywords
	}
	ids, err := o.recaller.Recall(ctx, queryText, st.Keywords, st.AllowIDs)
	if err != nil {
		o.logger.Warn("Recall failed, falling back to hard-filter order", zap.Error(err))
		ids = st.AllowIDs
		if len(ids) > o.cfg.PassthroughCap {
			ids = ids[:o.cfg.PassthroughCap]
		}
	}
	st.RecallIDs = ids
	if len(ids) == 0 {
		return nodeResponse, nil
	}
	return nodeRanking, nil
}

// ranking scores the recalled candidates and keeps the top K. Finalists
// join the seen set immediately so the next turn never repeats them.
func (o *Orchestrator) ranking(ctx context.Context, st *TurnState) (node, error) {
	recalled := st.RecallIDs
	if len(recalled) > o.cfg.RankWindow {
		recalled = recalled[:o.cfg.RankWindow]
	}

	basics, err := o.store.GetBasics(ctx, recalled)
	if err != nil {
		return nodeEnd, err
	}

	inputs := make([]scoring.RankInput, 0, len(recalled))
	for _, id := range recalled {
		if _, ok := basics[id]; !ok {
			continue
		}
		traits := scoring.Traits{}
		if rec, err := o.store.GetProfile(ctx, id); err == nil {
			traits = scoring.TraitsFromAspects(rec.Aspects)
		}
		inputs = append(inputs, scoring.RankInput{ID: id, Traits: traits})
	}

	scored := scoring.Rank(st.SeekerTraits, st.Policy, inputs, o.cfg.FinalTopK)
	if len(scored) == 0 {
		o.logger.Info("All recalled candidates vetoed",
			zap.String("session_id", st.Request.SessionID), zap.Int("recalled", len(inputs)))
		return nodeResponse, nil
	}

	seen := make(map[string]bool, len(st.Carried.SeenIDs))
	for _, id := range st.Carried.SeenIDs {
		seen[id] = true
	}

	for _, s := range scored {
		b := basics[s.ID]
		summary, err := o.profiles.CachedSummary(ctx, s.ID)
		if err != nil {
			o.logger.Warn("Candidate summary unavailable", zap.String("user_id", s.ID), zap.Error(err))
		}
		st.Finalists = append(st.Finalists, types.Candidate{
			ID:       s.ID,
			Nickname: b.Nickname,
			Age:      types.CalcAge(b.Birthday),
			City:     b.City,
			Height:   b.Height,
			BMILabel: types.BMILabel(b.Height, b.Weight),
			Score:    s.Score,
			Reasons:  s.Reasons,
			Summary:  summary,
		})
		if !seen[s.ID] {
			seen[s.ID] = true
			st.Carried.SeenIDs = append(st.Carried.SeenIDs, s.ID)
		}
	}
	return nodeEvidence, nil
}
