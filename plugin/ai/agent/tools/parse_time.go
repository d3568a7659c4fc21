package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hrygo/timesense/plugin/ai/aitime"
	"github.com/hrygo/timesense/server/timezone"
)

// ParsedTime is the JSON payload returned by the parse_time tool.
type ParsedTime struct {
	Input    string `json:"input"`
	Timezone string `json:"timezone"`
	Start    string `json:"start"`
	End      string `json:"end,omitempty"`
}

// ParseTimeTool resolves natural language time expressions
// ("tomorrow 3pm", "next monday", "in 2 hours") into concrete timestamps.
type ParseTimeTool struct {
	timeService     aitime.TimeService
	clock           Clock
	defaultTimezone string
}

// NewParseTimeTool creates a new natural language time parsing tool.
// If clock is nil, the system clock is used.
func NewParseTimeTool(timeService aitime.TimeService, clock Clock, defaultTimezone string) *ParseTimeTool {
	if clock == nil {
		clock = NewSystemClock()
	}
	if defaultTimezone == "" {
		defaultTimezone = timezone.TimezoneUTC
	}
	return &ParseTimeTool{
		timeService:     timeService,
		clock:           clock,
		defaultTimezone: defaultTimezone,
	}
}

// Name returns the tool name.
func (t *ParseTimeTool) Name() string {
	return "parse_time"
}

// Description returns the tool description for the LLM.
func (t *ParseTimeTool) Description() string {
	return `Resolve a natural language time expression into a concrete timestamp.
Handles expressions like "tomorrow 3pm", "next monday", "in 2 hours",
"this week". Returns the resolved start time, and an end time when the
expression names a range.`
}

// Parameters returns the JSON Schema for the tool's input.
func (t *ParseTimeTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"expression": map[string]interface{}{
				"type":        "string",
				"description": `Natural language time expression (e.g., "tomorrow 3pm").`,
			},
			"timezone": map[string]interface{}{
				"type":        "string",
				"description": "Timezone to interpret the expression in. Optional.",
			},
		},
		"required": []string{"expression"},
	}
}

// Run executes the tool.
func (t *ParseTimeTool) Run(ctx context.Context, inputJSON string) (string, error) {
	var input struct {
		Expression string `json:"expression"`
		Timezone   string `json:"timezone"`
	}
	if err := json.Unmarshal([]byte(inputJSON), &input); err != nil {
		return "", fmt.Errorf("%w: invalid JSON: %v", ErrParseError, err)
	}
	if input.Expression == "" {
		return "", fmt.Errorf("%w: expression is required", ErrInvalidInput)
	}

	tzName := input.Timezone
	if tzName == "" {
		tzName = t.defaultTimezone
	}
	loc, err := timezone.ParseTimezone(tzName)
	if err != nil {
		return "", err
	}

	reference := t.clock.Now().In(loc)
	timeRange, err := t.timeService.ParseNaturalTime(ctx, input.Expression, reference)
	if err != nil {
		return "", fmt.Errorf("could not parse %q: %w", input.Expression, err)
	}

	parsed := ParsedTime{
		Input:    input.Expression,
		Timezone: loc.String(),
		Start:    timeRange.Start.In(loc).Format(time.RFC3339),
	}
	if !timeRange.End.IsZero() && timeRange.End.After(timeRange.Start) {
		parsed.End = timeRange.End.In(loc).Format(time.RFC3339)
	}

	out, err := json.Marshal(parsed)
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(out), nil
}

// Validate runs before execution to check input validity.
func (t *ParseTimeTool) Validate(_ context.Context, inputJSON string) error {
	var input struct {
		Expression string `json:"expression"`
		Timezone   string `json:"timezone"`
	}
	if err := json.Unmarshal([]byte(inputJSON), &input); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrParseError, err)
	}
	if input.Expression == "" {
		return fmt.Errorf("%w: expression is required", ErrInvalidInput)
	}
	if input.Timezone != "" && !timezone.IsValidTimezone(input.Timezone) {
		return fmt.Errorf("%w %q", timezone.ErrInvalidTimezone, input.Timezone)
	}
	return nil
}
