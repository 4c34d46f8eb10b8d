package graph

import (
	"context"
	"fmt"
	"strings"

	"match-agent/prompts"
	"match-agent/termination"
	"match-agent/web/types"

	"go.uber.org/zap"
)

// OnboardingResult is one interview turn's outcome.
type OnboardingResult struct {
	Reply  string `json:"reply"`
	Done   bool   `json:"done"`
	Reason string `json:"reason,omitempty"`
}

const onboardingClosing = "今天先聊到这里～你的专属画像我已经整理好了，接下来就可以让我帮你留意合适的嘉宾啦。"

// onboardingTurn runs the interview for a seeker whose profile is not yet
// finalized, no matter which endpoint the turn arrived on.
func (o *Orchestrator) onboardingTurn(ctx context.Context, st *TurnState) (node, error) {
	result, err := o.RunOnboarding(ctx, st.Request, st.History)
	if err != nil {
		return nodeEnd, err
	}
	st.Intent.Intent = "onboarding"
	st.Reply = result.Reply
	return nodeEnd, nil
}

// RunOnboarding advances the profile interview by one turn: absorb what
// the user just said, decide whether the interview is done, and either
// close it out or ask the next question with the coverage hint in hand.
func (o *Orchestrator) RunOnboarding(ctx context.Context, req types.TurnRequest, history []types.AgentMessage) (OnboardingResult, error) {
	aspects, err := o.profiles.Absorb(ctx, req.UserID, req.Message)
	if err != nil {
		o.logger.Warn("Onboarding absorb failed, continuing with stored profile",
			zap.String("user_id", req.UserID), zap.Error(err))
	}

	transcript := renderTranscript(history, req.Message)
	turns := assistantTurns(history)

	if sig := o.term.CheckOnboarding(ctx, transcript, turns); sig.ShouldTerminate {
		o.logger.Info("Onboarding interview finished",
			zap.String("user_id", req.UserID),
			zap.String("reason", sig.Reason), zap.Float64("confidence", sig.Confidence))
		o.finalizeOnboarding(ctx, req.UserID)
		return OnboardingResult{Reply: onboardingClosing, Done: true, Reason: sig.Reason}, nil
	}

	system := prompts.OnboardingSystem()
	if hint, err := o.profiles.CompletionHint(ctx, aspects); err == nil && hint != "" {
		system = fmt.Sprintf("%s\n\n【当前画像状态分析】\n%s", system, hint)
	} else if err != nil {
		o.logger.Warn("Completion hint unavailable", zap.Error(err))
	}

	reply, err := o.llm.Generate(ctx, system, transcript, 0.8)
	if err != nil {
		return OnboardingResult{}, err
	}
	return OnboardingResult{Reply: reply}, nil
}

// finalizeOnboarding regenerates the summary (which also reindexes) and
// flips the user visible to retrieval. Both failures are logged, not
// fatal: the interview result itself is already saved.
func (o *Orchestrator) finalizeOnboarding(ctx context.Context, userID string) {
	if _, err := o.profiles.RefreshSummary(ctx, userID); err != nil {
		o.logger.Warn("Summary refresh at onboarding finalization failed",
			zap.String("user_id", userID), zap.Error(err))
	}
	if err := o.store.SetOnboarded(ctx, userID, true); err != nil {
		o.logger.Warn("Could not mark user onboarded",
			zap.String("user_id", userID), zap.Error(err))
	}
}

// CheckSocialEnd evaluates whether a two-person chat between matched users
// has run its course.
func (o *Orchestrator) CheckSocialEnd(ctx context.Context, history []types.AgentMessage) termination.Signal {
	var b strings.Builder
	for _, msg := range history {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	return o.term.CheckSocial(ctx, b.String(), len(history))
}

func renderTranscript(history []types.AgentMessage, latest string) string {
	var b strings.Builder
	for _, msg := range history {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	fmt.Fprintf(&b, "user: %s", latest)
	return b.String()
}

func assistantTurns(history []types.AgentMessage) int {
	count := 0
	for _, msg := range history {
		if msg.Role == "assistant" {
			count++
		}
	}
	return count
}
