package profile

import (
	"context"
	"sync"

	"match-agent/config"
	"match-agent/errors"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// LLM is the subset of the model client extraction needs.
type LLM interface {
	ExtractJSON(ctx context.Context, system, user string, out any) error
	Generate(ctx context.Context, system, user string, temperature float64) (string, error)
}

// Extractor fans one utterance out across every profile aspect in parallel
// and merges whatever comes back into the stored document.
type Extractor struct {
	llm    LLM
	pool   *ants.Pool
	logger *zap.Logger
}

func NewExtractor(llm LLM, cfg *config.Config, logger *zap.Logger) (*Extractor, error) {
	pool, err := ants.NewPool(cfg.ExtractWorkers)
	if err != nil {
		return nil, errors.WrapError(err, "creating extraction worker pool")
	}
	return &Extractor{llm: llm, pool: pool, logger: logger}, nil
}

// Close releases the worker pool.
func (e *Extractor) Close() {
	e.pool.Release()
}

// ExtractAll runs every aspect extraction concurrently over the utterance.
// A failed aspect contributes nothing; the rest still land. The result maps
// aspect key to the extracted fragment, omitting empty ones.
func (e *Extractor) ExtractAll(ctx context.Context, utterance string) map[string]map[string]any {
	results := make([]map[string]any, len(Aspects))
	var wg sync.WaitGroup

	for i, aspect := range Aspects {
		i, aspect := i, aspect
		wg.Add(1)
		task := func() {
			defer wg.Done()
			var fragment map[string]any
			if err := e.llm.ExtractJSON(ctx, aspect.SystemPrompt(), utterance, &fragment); err != nil {
				e.logger.Warn("Aspect extraction failed",
					zap.String("aspect", aspect.Key), zap.Error(err))
				return
			}
			results[i] = fragment
		}
		if err := e.pool.Submit(task); err != nil {
			e.logger.Warn("Could not schedule aspect extraction, running inline",
				zap.String("aspect", aspect.Key), zap.Error(err))
			task()
		}
	}
	wg.Wait()

	extracted := make(map[string]map[string]any)
	for i, aspect := range Aspects {
		if len(results[i]) > 0 {
			extracted[aspect.Key] = results[i]
		}
	}
	return extracted
}

// MergeInto folds freshly extracted fragments into the stored aspect
// document, aspect by aspect.
func MergeInto(aspects map[string]any, extracted map[string]map[string]any) map[string]any {
	if aspects == nil {
		aspects = map[string]any{}
	}
	incoming := make(map[string]any, len(extracted))
	for key, fragment := range extracted {
		incoming[key] = fragment
	}
	return SmartMerge(aspects, incoming)
}
