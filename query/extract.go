package query

import (
	"context"
	"fmt"
	"strings"

	"match-agent/prompts"
	"match-agent/web/types"

	"go.uber.org/zap"
)

// Valid intent labels. Anything else from the model is coerced to chitchat.
const (
	IntentNewSearch = "new_search"
	IntentRefresh   = "refresh"
	IntentDeepDive  = "deep_dive"
	IntentChitchat  = "chitchat"
)

// IntentResult is the structured read of one user turn: what they want,
// the soft keywords, who they are asking about, and any scoring policy.
type IntentResult struct {
	Intent       string            `json:"intent"`
	Keywords     string            `json:"keywords"`
	TargetPerson string            `json:"target_person"`
	MatchPolicy  types.MatchPolicy `json:"match_policy"`
}

// LLM is the structured-call surface extraction runs on.
type LLM interface {
	ExtractJSON(ctx context.Context, system, user string, out any) error
}

// Extractor turns free-form user messages into typed search inputs.
type Extractor struct {
	llm    LLM
	logger *zap.Logger
}

func NewExtractor(llm LLM, logger *zap.Logger) *Extractor {
	return &Extractor{llm: llm, logger: logger}
}

// ExtractIntent classifies the turn. Any model failure, parse or transport,
// degrades to chitchat so the conversation never stalls on it.
func (e *Extractor) ExtractIntent(ctx context.Context, message string, history []types.AgentMessage) (IntentResult, error) {
	user := message
	if len(history) > 0 {
		var b strings.Builder
		b.WriteString("【近期对话】\n")
		for _, msg := range history {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
		}
		fmt.Fprintf(&b, "【当前消息】\n%s", message)
		user = b.String()
	}

	var result IntentResult
	if err := e.llm.ExtractJSON(ctx, prompts.IntentSystem(), user, &result); err != nil {
		e.logger.Warn("Intent extraction failed, defaulting to chitchat", zap.Error(err))
		return IntentResult{Intent: IntentChitchat}, nil
	}

	switch result.Intent {
	case IntentNewSearch, IntentRefresh, IntentDeepDive, IntentChitchat:
	default:
		e.logger.Warn("Unknown intent label, defaulting to chitchat", zap.String("intent", result.Intent))
		result.Intent = IntentChitchat
	}
	return result, nil
}

// ExtractFilter pulls the typed hard constraints out of the message. Any
// model failure yields an empty spec, which the builder treats as
// keyword-only and the refine loop handles like any other zero-hit search.
func (e *Extractor) ExtractFilter(ctx context.Context, message string) (types.FilterSpec, error) {
	var spec types.FilterSpec
	if err := e.llm.ExtractJSON(ctx, prompts.FilterSystem(), message, &spec); err != nil {
		e.logger.Warn("Filter extraction failed, using empty constraint set", zap.Error(err))
		return types.FilterSpec{}, nil
	}
	return spec, nil
}
