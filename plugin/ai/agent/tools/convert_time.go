package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hrygo/timesense/plugin/ai/aitime"
	"github.com/hrygo/timesense/server/timezone"
)

// ConversionResult is the JSON payload returned by the convert_time tool.
type ConversionResult struct {
	Source         TimeInfo `json:"source"`
	Target         TimeInfo `json:"target"`
	TimeDifference string   `json:"time_difference"`
}

// ConvertTimeTool converts a wall-clock time between two timezones.
type ConvertTimeTool struct {
	clock           Clock
	defaultTimezone string
}

// NewConvertTimeTool creates a new time conversion tool.
// If clock is nil, the system clock is used.
func NewConvertTimeTool(clock Clock, defaultTimezone string) *ConvertTimeTool {
	if clock == nil {
		clock = NewSystemClock()
	}
	if defaultTimezone == "" {
		defaultTimezone = timezone.TimezoneUTC
	}
	return &ConvertTimeTool{
		clock:           clock,
		defaultTimezone: defaultTimezone,
	}
}

// Name returns the tool name.
func (t *ConvertTimeTool) Name() string {
	return "convert_time"
}

// Description returns the tool description for the LLM.
func (t *ConvertTimeTool) Description() string {
	return `Convert a time between timezones.
The time must be in 24-hour "HH:MM" format or a full RFC3339 timestamp.
"HH:MM" is interpreted as today's wall clock in the source timezone.
Timezones must be IANA names (e.g., "America/New_York") or common
abbreviations (e.g., "EST", "JST").`
}

// Parameters returns the JSON Schema for the tool's input.
func (t *ConvertTimeTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"time": map[string]interface{}{
				"type":        "string",
				"description": `Time to convert, in 24-hour "HH:MM" format or RFC3339.`,
			},
			"source_timezone": map[string]interface{}{
				"type":        "string",
				"description": "Timezone the input time is expressed in.",
			},
			"target_timezone": map[string]interface{}{
				"type":        "string",
				"description": "Timezone to convert the time into.",
			},
		},
		"required": []string{"time", "target_timezone"},
	}
}

// Run executes the tool.
func (t *ConvertTimeTool) Run(_ context.Context, inputJSON string) (string, error) {
	var input struct {
		Time           string `json:"time"`
		SourceTimezone string `json:"source_timezone"`
		TargetTimezone string `json:"target_timezone"`
	}
	if err := json.Unmarshal([]byte(inputJSON), &input); err != nil {
		return "", fmt.Errorf("%w: invalid JSON: %v", ErrParseError, err)
	}

	if input.Time == "" {
		return "", fmt.Errorf("%w: time is required", ErrInvalidInput)
	}
	if input.TargetTimezone == "" {
		return "", fmt.Errorf("%w: target_timezone is required", ErrInvalidInput)
	}
	if input.SourceTimezone == "" {
		input.SourceTimezone = t.defaultTimezone
	}

	sourceLoc, err := timezone.ParseTimezone(input.SourceTimezone)
	if err != nil {
		return "", err
	}
	targetLoc, err := timezone.ParseTimezone(input.TargetTimezone)
	if err != nil {
		return "", err
	}

	instant, err := t.resolveTime(input.Time, sourceLoc)
	if err != nil {
		return "", err
	}

	result := ConversionResult{
		Source:         timeInfoAt(instant, sourceLoc),
		Target:         timeInfoAt(instant, targetLoc),
		TimeDifference: timezone.OffsetDifference(instant, sourceLoc, targetLoc),
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(out), nil
}

// resolveTime interprets the time input as RFC3339, or as today's "HH:MM"
// wall clock in the source timezone.
func (t *ConvertTimeTool) resolveTime(raw string, sourceLoc *time.Location) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, nil
	}

	clock, err := time.Parse("15:04", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, expected HH:MM (24-hour) or RFC3339", aitime.ErrInvalidTimeFormat, raw)
	}

	now := t.clock.Now().In(sourceLoc)
	return time.Date(now.Year(), now.Month(), now.Day(),
		clock.Hour(), clock.Minute(), 0, 0, sourceLoc), nil
}

// Validate runs before execution to check input validity.
func (t *ConvertTimeTool) Validate(_ context.Context, inputJSON string) error {
	var input struct {
		Time           string `json:"time"`
		SourceTimezone string `json:"source_timezone"`
		TargetTimezone string `json:"target_timezone"`
	}
	if err := json.Unmarshal([]byte(inputJSON), &input); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrParseError, err)
	}
	if input.Time == "" {
		return fmt.Errorf("%w: time is required", ErrInvalidInput)
	}
	if input.TargetTimezone == "" {
		return fmt.Errorf("%w: target_timezone is required", ErrInvalidInput)
	}
	for _, tz := range []string{input.SourceTimezone, input.TargetTimezone} {
		if tz != "" && !timezone.IsValidTimezone(tz) {
			return fmt.Errorf("%w %q", timezone.ErrInvalidTimezone, tz)
		}
	}
	return nil
}
