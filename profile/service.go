package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"match-agent/config"
	"match-agent/database"
	"match-agent/index"
	"match-agent/prompts"
	"match-agent/web/types"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// Store is the persistence surface the profile service needs.
type Store interface {
	GetProfile(ctx context.Context, userID string) (database.ProfileRecord, error)
	SaveAspects(ctx context.Context, userID string, aspects map[string]any) error
	SaveSummary(ctx context.Context, userID, summary string) error
	GetBasic(ctx context.Context, userID string) (types.CandidateBasic, error)
}

// Indexer refreshes a user's retrieval row after the profile changes.
type Indexer interface {
	Reindex(ctx context.Context, e index.Entry) error
}

// Service owns the profile lifecycle: absorbing new utterances into the
// aspect document and keeping the narrative summary and retrieval index in
// step with it.
type Service struct {
	store     Store
	llm       LLM
	indexer   Indexer
	extractor *Extractor
	cache     *lru.Cache
	debounce  time.Duration
	logger    *zap.Logger
}

func NewService(store Store, llm LLM, indexer Indexer, extractor *Extractor, cfg *config.Config, logger *zap.Logger) (*Service, error) {
	cache, err := lru.New(cfg.SummaryCacheLRU)
	if err != nil {
		return nil, err
	}
	return &Service{
		store:     store,
		llm:       llm,
		indexer:   indexer,
		extractor: extractor,
		cache:     cache,
		debounce:  cfg.SummaryDebounce,
		logger:    logger,
	}, nil
}

// Absorb extracts whatever the utterance reveals and merges it into the
// stored aspect document. Returns the merged document.
func (s *Service) Absorb(ctx context.Context, userID, utterance string) (map[string]any, error) {
	rec, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	extracted := s.extractor.ExtractAll(ctx, utterance)
	if len(extracted) == 0 {
		return rec.Aspects, nil
	}

	merged := MergeInto(rec.Aspects, extracted)
	if err := s.store.SaveAspects(ctx, userID, merged); err != nil {
		return nil, err
	}
	s.logger.Debug("Absorbed utterance into profile",
		zap.String("user_id", userID), zap.Int("aspects_updated", len(extracted)))
	return merged, nil
}

// Summary returns the narrative summary for a user, regenerating it when
// the aspect document has drifted and the debounce window has passed. The
// stale summary keeps serving inside the window so a burst of messages
// does not trigger a burst of generations.
func (s *Service) Summary(ctx context.Context, userID string) (string, error) {
	rec, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}

	stale := rec.UpdatedAt.After(rec.SummaryUpdatedAt)
	if rec.UserSummary != "" && (!stale || time.Since(rec.SummaryUpdatedAt) < s.debounce) {
		return rec.UserSummary, nil
	}
	if rec.UserSummary == "" && len(rec.Aspects) == 0 {
		return "", nil
	}

	fresh, err := s.refreshSummary(ctx, userID, rec.Aspects)
	if err != nil {
		s.logger.Warn("Summary refresh failed, serving stored version",
			zap.String("user_id", userID), zap.Error(err))
		return rec.UserSummary, nil
	}
	return fresh, nil
}

// RefreshSummary regenerates the summary unconditionally, bypassing the
// debounce. Used at interview finalization where the index must be fresh.
func (s *Service) RefreshSummary(ctx context.Context, userID string) (string, error) {
	rec, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.refreshSummary(ctx, userID, rec.Aspects)
}

// CachedSummary serves from the LRU when possible, for read-heavy paths
// like candidate presentation where slight staleness is acceptable.
func (s *Service) CachedSummary(ctx context.Context, userID string) (string, error) {
	if v, ok := s.cache.Get(userID); ok {
		return v.(string), nil
	}
	summary, err := s.Summary(ctx, userID)
	if err != nil {
		return "", err
	}
	if summary != "" {
		s.cache.Add(userID, summary)
	}
	return summary, nil
}

func (s *Service) refreshSummary(ctx context.Context, userID string, aspects map[string]any) (string, error) {
	basic, err := s.store.GetBasic(ctx, userID)
	if err != nil {
		return "", err
	}
	aspectsJSON, err := json.Marshal(aspects)
	if err != nil {
		return "", err
	}

	user := fmt.Sprintf("【基础信息】\n昵称: %s, 性别: %s, 年龄: %d, 城市: %s, 身高: %dcm\n【详细画像】\n%s",
		basic.Nickname, basic.Gender, types.CalcAge(basic.Birthday), basic.City, basic.Height, aspectsJSON)
	summary, err := s.llm.Generate(ctx, prompts.ProfileSummarySystem(), user, 0.7)
	if err != nil {
		return "", err
	}

	if err := s.store.SaveSummary(ctx, userID, summary); err != nil {
		return "", err
	}
	s.cache.Add(userID, summary)

	if err := s.indexer.Reindex(ctx, index.Entry{
		UserID: userID,
		Tags:   CollectTags(aspects),
		Doc:    summary,
	}); err != nil {
		s.logger.Warn("Reindex after summary refresh failed",
			zap.String("user_id", userID), zap.Error(err))
	}
	return summary, nil
}

// CompletionHint renders the coverage analysis shown to the interviewer
// persona: what is collected, what is missing, and whether the core
// dimensions are complete.
func (s *Service) CompletionHint(ctx context.Context, aspects map[string]any) (string, error) {
	aspectsJSON, err := json.Marshal(aspects)
	if err != nil {
		return "", err
	}
	user := fmt.Sprintf("【已提取画像JSON】\n%s\n【必填维度清单】\n教育背景、工作职业、家庭背景、生活方式、恋爱风格、择偶偏好", aspectsJSON)
	return s.llm.Generate(ctx, prompts.CompletionHintSystem(), user, 0)
}

// CollectTags gathers the taggable fragments of the aspect document for
// weighted indexing.
func CollectTags(aspects map[string]any) []string {
	var tags []string
	seen := make(map[string]bool)
	add := func(list any) {
		items, ok := asList(list)
		if !ok {
			return
		}
		for _, item := range items {
			if s, ok := item.(string); ok && s != "" && !seen[s] {
				seen[s] = true
				tags = append(tags, s)
			}
		}
	}
	for _, key := range []string{"personality", "interests"} {
		if m, ok := aspects[key].(map[string]any); ok {
			add(m["tags"])
		}
	}
	if m, ok := aspects["lifestyle"].(map[string]any); ok {
		add(m["sports"])
	}
	return tags
}
