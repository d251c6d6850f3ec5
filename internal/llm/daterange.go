package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// ErrRangeNotUnderstood means the model could not pin the expression down to
// a concrete date range.
var ErrRangeNotUnderstood = errors.New("date range not understood")

const rangeSystemPrompt = `You convert a natural-language date expression into a concrete date range.
Reply with a single JSON object and nothing else:
  {"start": "<RFC 3339 timestamp>", "end": "<RFC 3339 timestamp>"}
The range is half-open: start inclusive, end exclusive.
If the expression is ambiguous or not a date expression, reply exactly:
  {"error": "ambiguous"}`

// InterpretRange asks the model to resolve a date expression relative to now.
// The contract is strict JSON; anything else fails with ErrRangeNotUnderstood
// so the caller can ask the user to clarify instead of guessing.
func (m *Model) InterpretRange(ctx context.Context, expr string, now time.Time) (time.Time, time.Time, error) {
	userPrompt := fmt.Sprintf("Current time: %s\nTimezone: %s\nExpression: %q",
		now.Format(time.RFC3339), now.Location().String(), expr)

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, rangeSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	response, err := m.llm.GenerateContent(ctx, messages,
		// Deterministic output wanted here, not creativity.
		llms.WithTemperature(0),
		llms.WithMaxTokens(200),
	)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("interpret range: %w", err)
	}
	if len(response.Choices) == 0 {
		return time.Time{}, time.Time{}, ErrRangeNotUnderstood
	}

	start, end, err := parseRangeReply(response.Choices[0].Content, now.Location())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// parseRangeReply decodes the model's JSON answer, tolerating code fences.
func parseRangeReply(reply string, loc *time.Location) (time.Time, time.Time, error) {
	text := strings.TrimSpace(reply)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var payload struct {
		Start string `json:"start"`
		End   string `json:"end"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return time.Time{}, time.Time{}, ErrRangeNotUnderstood
	}
	if payload.Error != "" || payload.Start == "" || payload.End == "" {
		return time.Time{}, time.Time{}, ErrRangeNotUnderstood
	}

	start, err := time.Parse(time.RFC3339, payload.Start)
	if err != nil {
		return time.Time{}, time.Time{}, ErrRangeNotUnderstood
	}
	end, err := time.Parse(time.RFC3339, payload.End)
	if err != nil {
		return time.Time{}, time.Time{}, ErrRangeNotUnderstood
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, ErrRangeNotUnderstood
	}
	return start.In(loc), end.In(loc), nil
}
