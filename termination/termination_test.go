package termination

import (
	"context"
	"errors"
	"testing"

	"match-agent/config"

	"go.uber.org/zap"
)

type stubDetector struct {
	sig Signal
	err error
}

func (s *stubDetector) Detect(ctx context.Context, transcript string) (Signal, error) {
	return s.sig, s.err
}

func testManager(hesitancy, completeness, naturalEnd Signal) *Manager {
	cfg := &config.Config{
		OnboardingMinTurns: 8,
		OnboardingMaxTurns: 20,
		SocialMinMessages:  20,
		SocialMaxMessages:  60,
	}
	return NewManager(
		&stubDetector{sig: hesitancy},
		&stubDetector{sig: completeness},
		&stubDetector{sig: naturalEnd},
		cfg, zap.NewNop())
}

func TestOnboardingHardCapAlwaysWins(t *testing.T) {
	// Even with every detector silent, the turn cap terminates.
	m := testManager(Signal{}, Signal{}, Signal{})

	sig := m.CheckOnboarding(context.Background(), "transcript", 20)
	if !sig.ShouldTerminate {
		t.Fatal("turn cap must terminate")
	}
	if sig.Reason != ReasonMaxTurnsReached || sig.Confidence != 1.0 {
		t.Errorf("cap signal = %+v, want max_turns_reached at 1.0", sig)
	}
}

func TestOnboardingFloorSuppressesDetectors(t *testing.T) {
	hot := Signal{ShouldTerminate: true, Confidence: 0.99}
	m := testManager(hot, hot, hot)

	if sig := m.CheckOnboarding(context.Background(), "transcript", 7); sig.ShouldTerminate {
		t.Fatal("nothing terminates below the turn floor")
	}
}

func TestOnboardingHesitancyThreshold(t *testing.T) {
	m := testManager(Signal{ShouldTerminate: true, Confidence: 0.75}, Signal{}, Signal{})
	sig := m.CheckOnboarding(context.Background(), "transcript", 10)
	if !sig.ShouldTerminate || sig.Reason != ReasonUserHesitant {
		t.Fatalf("expected hesitancy termination, got %+v", sig)
	}

	m = testManager(Signal{ShouldTerminate: true, Confidence: 0.7}, Signal{}, Signal{})
	if sig := m.CheckOnboarding(context.Background(), "transcript", 10); sig.ShouldTerminate {
		t.Fatal("confidence at the threshold must not terminate")
	}
}

func TestOnboardingCompletenessThreshold(t *testing.T) {
	m := testManager(Signal{}, Signal{ShouldTerminate: true, Confidence: 0.85}, Signal{})
	sig := m.CheckOnboarding(context.Background(), "transcript", 10)
	if !sig.ShouldTerminate || sig.Reason != ReasonInfoCollected {
		t.Fatalf("expected completeness termination, got %+v", sig)
	}

	m = testManager(Signal{}, Signal{ShouldTerminate: true, Confidence: 0.8}, Signal{})
	if sig := m.CheckOnboarding(context.Background(), "transcript", 10); sig.ShouldTerminate {
		t.Fatal("confidence at the threshold must not terminate")
	}
}

func TestSocialMessageCapAndFloor(t *testing.T) {
	m := testManager(Signal{}, Signal{}, Signal{})

	sig := m.CheckSocial(context.Background(), "transcript", 60)
	if !sig.ShouldTerminate || sig.Reason != ReasonMaxMessagesReached {
		t.Fatalf("message cap must terminate, got %+v", sig)
	}

	hot := Signal{ShouldTerminate: true, Confidence: 0.99}
	m = testManager(hot, Signal{}, hot)
	if sig := m.CheckSocial(context.Background(), "transcript", 19); sig.ShouldTerminate {
		t.Fatal("nothing terminates below the message floor")
	}
}

func TestSocialNaturalEndThreshold(t *testing.T) {
	m := testManager(Signal{}, Signal{}, Signal{ShouldTerminate: true, Reason: "natural_end", Confidence: 0.8})
	sig := m.CheckSocial(context.Background(), "transcript", 30)
	if !sig.ShouldTerminate || sig.Reason != ReasonNaturalEnd {
		t.Fatalf("expected natural end termination, got %+v", sig)
	}
}

func TestSocialHesitancyNeedsHigherBar(t *testing.T) {
	// Hesitancy alone needs 0.8 in social chats, stricter than onboarding.
	m := testManager(Signal{ShouldTerminate: true, Confidence: 0.75}, Signal{}, Signal{})
	if sig := m.CheckSocial(context.Background(), "transcript", 30); sig.ShouldTerminate {
		t.Fatal("hesitancy at 0.75 must not end a social chat")
	}

	m = testManager(Signal{ShouldTerminate: true, Confidence: 0.85}, Signal{}, Signal{})
	sig := m.CheckSocial(context.Background(), "transcript", 30)
	if !sig.ShouldTerminate || sig.Reason != ReasonUserHesitant {
		t.Fatalf("expected hesitancy termination, got %+v", sig)
	}
}

func TestDetectorErrorIsNotTermination(t *testing.T) {
	cfg := &config.Config{OnboardingMinTurns: 8, OnboardingMaxTurns: 20}
	m := NewManager(
		&stubDetector{err: errors.New("llm down")},
		&stubDetector{err: errors.New("llm down")},
		&stubDetector{err: errors.New("llm down")},
		cfg, zap.NewNop())

	if sig := m.CheckOnboarding(context.Background(), "transcript", 10); sig.ShouldTerminate {
		t.Fatal("detector failure must not terminate the conversation")
	}
}
