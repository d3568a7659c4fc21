// Package tools provides the time tools exposed to the agent,
// plus resilient execution with retry, fallback, and metrics reporting.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hrygo/timesense/server/timezone"
)

// TimeInfo is the JSON payload describing an instant in a timezone.
type TimeInfo struct {
	Timezone  string `json:"timezone"`
	Datetime  string `json:"datetime"`
	DayOfWeek string `json:"day_of_week"`
	IsDST     bool   `json:"is_dst"`
	UTCOffset string `json:"utc_offset"`
}

func timeInfoAt(t time.Time, loc *time.Location) TimeInfo {
	local := t.In(loc)
	return TimeInfo{
		Timezone:  loc.String(),
		Datetime:  local.Format(time.RFC3339),
		DayOfWeek: local.Weekday().String(),
		IsDST:     timezone.IsDST(t, loc),
		UTCOffset: timezone.OffsetAt(t, loc),
	}
}

// CurrentTimeTool returns the current time in a requested timezone.
type CurrentTimeTool struct {
	clock           Clock
	defaultTimezone string
}

// NewCurrentTimeTool creates a new current time tool.
// If clock is nil, the system clock is used.
func NewCurrentTimeTool(clock Clock, defaultTimezone string) *CurrentTimeTool {
	if clock == nil {
		clock = NewSystemClock()
	}
	if defaultTimezone == "" {
		defaultTimezone = timezone.TimezoneUTC
	}
	return &CurrentTimeTool{
		clock:           clock,
		defaultTimezone: defaultTimezone,
	}
}

// Name returns the tool name.
func (t *CurrentTimeTool) Name() string {
	return "get_current_time"
}

// Description returns the tool description for the LLM.
func (t *CurrentTimeTool) Description() string {
	return `Get the current time in a specific timezone.
The timezone must be an IANA name (e.g., "America/New_York", "Europe/London")
or a common abbreviation (e.g., "EST", "JST"). If omitted, the server's
default timezone is used.`
}

// Parameters returns the JSON Schema for the tool's input.
func (t *CurrentTimeTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"timezone": map[string]interface{}{
				"type":        "string",
				"description": "IANA timezone name (e.g., America/New_York). Optional.",
			},
		},
	}
}

// Run executes the tool.
func (t *CurrentTimeTool) Run(_ context.Context, inputJSON string) (string, error) {
	var input struct {
		Timezone string `json:"timezone"`
	}
	if inputJSON != "" {
		if err := json.Unmarshal([]byte(inputJSON), &input); err != nil {
			return "", fmt.Errorf("%w: invalid JSON: %v", ErrParseError, err)
		}
	}

	tzName := input.Timezone
	if tzName == "" {
		tzName = t.defaultTimezone
	}

	loc, err := timezone.ParseTimezone(tzName)
	if err != nil {
		return "", err
	}

	info := timeInfoAt(t.clock.Now(), loc)
	out, err := json.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(out), nil
}

// Validate runs before execution to check input validity.
func (t *CurrentTimeTool) Validate(_ context.Context, inputJSON string) error {
	if inputJSON == "" {
		return nil
	}
	var input struct {
		Timezone string `json:"timezone"`
	}
	if err := json.Unmarshal([]byte(inputJSON), &input); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrParseError, err)
	}
	if input.Timezone != "" && !timezone.IsValidTimezone(input.Timezone) {
		return fmt.Errorf("%w %q", timezone.ErrInvalidTimezone, input.Timezone)
	}
	return nil
}
