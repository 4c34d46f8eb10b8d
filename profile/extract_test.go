package profile

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"match-agent/config"

	"go.uber.org/zap"
)

// aspectStubLLM answers extraction calls per aspect, keyed by the aspect
// label embedded in the system prompt.
type aspectStubLLM struct {
	payloads map[string]string
	failing  map[string]bool
}

func (s *aspectStubLLM) ExtractJSON(ctx context.Context, system, user string, out any) error {
	for label, payload := range s.payloads {
		if strings.Contains(system, label) {
			return json.Unmarshal([]byte(payload), out)
		}
	}
	for label := range s.failing {
		if strings.Contains(system, label) {
			return errors.New("model unavailable")
		}
	}
	return json.Unmarshal([]byte(`{}`), out)
}

func (s *aspectStubLLM) Generate(ctx context.Context, system, user string, temperature float64) (string, error) {
	return "", nil
}

func TestExtractAllFansOutAndJoins(t *testing.T) {
	llm := &aspectStubLLM{
		payloads: map[string]string{
			"教育背景": `{"degree": "硕士"}`,
			"兴趣爱好": `{"tags": ["徒步"]}`,
			"风险特质": `{"dealbreakers": ["酗酒"]}`,
		},
	}
	ex, err := NewExtractor(llm, &config.Config{ExtractWorkers: 10}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer ex.Close()

	got := ex.ExtractAll(context.Background(), "我是硕士，平时喜欢徒步，但接受不了酗酒的人")
	if len(got) != 3 {
		t.Fatalf("extracted aspects = %v, want education, interests and risk only", got)
	}
	if got["education"]["degree"] != "硕士" {
		t.Errorf("education = %v", got["education"])
	}
	if _, ok := got["interests"]; !ok {
		t.Errorf("interests missing: %v", got)
	}
	if _, ok := got["risk"]; !ok {
		t.Errorf("risk missing: %v", got)
	}
}

func TestExtractAllToleratesAspectFailures(t *testing.T) {
	llm := &aspectStubLLM{
		payloads: map[string]string{"教育背景": `{"degree": "博士"}`},
		failing:  map[string]bool{"工作职业": true},
	}
	ex, err := NewExtractor(llm, &config.Config{ExtractWorkers: 3}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer ex.Close()

	got := ex.ExtractAll(context.Background(), "读完博士刚开始工作")
	if _, ok := got["career"]; ok {
		t.Error("failed aspect must contribute nothing")
	}
	if got["education"]["degree"] != "博士" {
		t.Errorf("surviving aspects must still land, got %v", got)
	}
}
