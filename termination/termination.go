package termination

import (
	"context"

	"match-agent/config"
	"match-agent/prompts"

	"go.uber.org/zap"
)

// Termination reasons surfaced to callers and logs.
const (
	ReasonMaxTurnsReached    = "max_turns_reached"
	ReasonMaxMessagesReached = "max_messages_reached"
	ReasonInfoCollected      = "info_collected"
	ReasonUserHesitant       = "user_hesitant"
	ReasonNaturalEnd         = "natural_end"
)

// Signal is one detector's verdict on whether a conversation should end.
type Signal struct {
	ShouldTerminate bool    `json:"should_terminate"`
	Reason          string  `json:"reason"`
	Confidence      float64 `json:"confidence"`
	Explanation     string  `json:"explanation"`
}

// Detector analyzes a transcript for one class of ending signal.
type Detector interface {
	Detect(ctx context.Context, transcript string) (Signal, error)
}

// LLM is the structured-call surface detectors run on.
type LLM interface {
	ExtractJSON(ctx context.Context, system, user string, out any) error
}

type llmDetector struct {
	llm    LLM
	system string
	name   string
	logger *zap.Logger
}

func (d *llmDetector) Detect(ctx context.Context, transcript string) (Signal, error) {
	var sig Signal
	if err := d.llm.ExtractJSON(ctx, d.system, transcript, &sig); err != nil {
		d.logger.Warn("Termination detector failed", zap.String("detector", d.name), zap.Error(err))
		return Signal{}, err
	}
	return sig, nil
}

// NewHesitancyDetector reads reluctance and fatigue signals.
func NewHesitancyDetector(llm LLM, logger *zap.Logger) Detector {
	return &llmDetector{llm: llm, system: prompts.HesitancySystem(), name: "hesitancy", logger: logger}
}

// NewCompletenessDetector judges whether the interview has covered enough
// profile dimensions.
func NewCompletenessDetector(llm LLM, logger *zap.Logger) Detector {
	return &llmDetector{llm: llm, system: prompts.CompletenessSystem(), name: "completeness", logger: logger}
}

// NewNaturalEndDetector spots a social chat winding down on its own.
func NewNaturalEndDetector(llm LLM, logger *zap.Logger) Detector {
	return &llmDetector{llm: llm, system: prompts.NaturalEndSystem(), name: "natural_end", logger: logger}
}

// Manager applies the per-conversation-kind termination policy over the
// detectors. Hard caps always win, floors always hold, and in between the
// detectors need to clear their confidence thresholds.
type Manager struct {
	hesitancy    Detector
	completeness Detector
	naturalEnd   Detector
	cfg          *config.Config
	logger       *zap.Logger
}

func NewManager(hesitancy, completeness, naturalEnd Detector, cfg *config.Config, logger *zap.Logger) *Manager {
	return &Manager{
		hesitancy:    hesitancy,
		completeness: completeness,
		naturalEnd:   naturalEnd,
		cfg:          cfg,
		logger:       logger,
	}
}

// CheckOnboarding decides whether the profile interview should end after
// the given number of assistant turns.
func (m *Manager) CheckOnboarding(ctx context.Context, transcript string, turns int) Signal {
	if turns >= m.cfg.OnboardingMaxTurns {
		return Signal{ShouldTerminate: true, Reason: ReasonMaxTurnsReached, Confidence: 1.0,
			Explanation: "达到访谈轮次上限"}
	}
	if turns < m.cfg.OnboardingMinTurns {
		return Signal{}
	}

	if sig, err := m.hesitancy.Detect(ctx, transcript); err == nil &&
		sig.ShouldTerminate && sig.Confidence > 0.7 {
		sig.Reason = ReasonUserHesitant
		return sig
	}
	if sig, err := m.completeness.Detect(ctx, transcript); err == nil &&
		sig.ShouldTerminate && sig.Confidence > 0.8 {
		sig.Reason = ReasonInfoCollected
		return sig
	}
	return Signal{}
}

// CheckSocial decides whether a two-person chat should be wrapped up after
// the given number of messages.
func (m *Manager) CheckSocial(ctx context.Context, transcript string, messages int) Signal {
	if messages >= m.cfg.SocialMaxMessages {
		return Signal{ShouldTerminate: true, Reason: ReasonMaxMessagesReached, Confidence: 1.0,
			Explanation: "达到消息数上限"}
	}
	if messages < m.cfg.SocialMinMessages {
		return Signal{}
	}

	if sig, err := m.naturalEnd.Detect(ctx, transcript); err == nil &&
		sig.ShouldTerminate && sig.Confidence > 0.7 {
		if sig.Reason == "" {
			sig.Reason = ReasonNaturalEnd
		}
		return sig
	}
	if sig, err := m.hesitancy.Detect(ctx, transcript); err == nil &&
		sig.ShouldTerminate && sig.Confidence > 0.8 {
		sig.Reason = ReasonUserHesitant
		return sig
	}
	return Signal{}
}
