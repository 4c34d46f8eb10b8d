package llmclient

import (
	"context"
	"encoding/json"
	"strings"

	apperrors "match-agent/errors"
	"match-agent/web/types"
)

// zeroTemp pins structured calls to deterministic sampling.
var zeroTemp = float64(0)

// ExtractJSON runs a structured extraction call: the system prompt declares
// the target schema, the user prompt carries the material to analyze, and
// the model's reply is decoded into out. Markdown code fences around the
// JSON body are tolerated. Schema-invalid output is reported as
// ErrExtractionFailure so callers can degrade the field and move on.
func (c *Client) ExtractJSON(ctx context.Context, system, user string, out any) error {
	messages := []types.AgentMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
	reply, err := c.Chat(ctx, messages, &zeroTemp)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrLLMCommunication, err.Error())
	}

	cleaned := StripCodeFences(reply)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return apperrors.WrapErrorf(apperrors.ErrExtractionFailure, "decode model output: %v", err)
	}
	return nil
}

// Generate runs a free-text generation call with the given temperature.
func (c *Client) Generate(ctx context.Context, system, user string, temperature float64) (string, error) {
	messages := []types.AgentMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
	reply, err := c.Chat(ctx, messages, &temperature)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrLLMCommunication, err.Error())
	}
	return strings.TrimSpace(reply), nil
}

// StripCodeFences removes a surrounding ```json ... ``` (or bare ```) block
// that models habitually wrap structured output in.
func StripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		// Drop the opening fence line (``` or ```json)
		if idx := strings.Index(content, "\n"); idx >= 0 {
			content = content[idx+1:]
		} else {
			content = strings.TrimPrefix(content, "```json")
			content = strings.TrimPrefix(content, "```")
		}
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
	}
	return strings.TrimSpace(content)
}
