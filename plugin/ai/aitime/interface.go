// Package aitime provides the natural-language time parsing service used by
// the assistant agent and its tools.
package aitime

import (
	"context"
	"time"
)

// TimeService defines the time parsing service interface.
type TimeService interface {
	// Normalize standardizes time expressions.
	// Supports: "tomorrow 3pm", "next monday", "2026-01-28", "15:00"
	// Returns: standardized time.Time
	Normalize(ctx context.Context, input string, timezone string) (time.Time, error)

	// ParseNaturalTime parses natural language time expressions.
	// reference: reference time point (usually current time)
	// Returns: time range
	ParseNaturalTime(ctx context.Context, input string, reference time.Time) (TimeRange, error)
}

// TimeRange represents a time range.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
