// Package agent provides error recovery mechanisms for the assistant agent.
// The recovery system automatically attempts to recover from certain error
// types by modifying inputs and retrying.
//
// Note: ErrorRecovery instances are designed to be created per-request or
// shared as immutable configurations. Use WithTimezone to create a new
// instance with different settings rather than modifying existing ones.
package agent

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/hrygo/timesense/plugin/ai/aitime"
)

// Pre-compiled regex patterns for better performance.
var (
	// Time patterns for normalization
	timePatternRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\btomorrow\s+(?:at\s+)?\d{1,2}(?::\d{2})?\s*(?:am|pm)?\b`),
		regexp.MustCompile(`(?i)\btoday\s+(?:at\s+)?\d{1,2}(?::\d{2})?\s*(?:am|pm)?\b`),
		regexp.MustCompile(`(?i)\b\d{1,2}(?::\d{2})?\s*(?:am|pm)\b`),
		regexp.MustCompile(`\b\d{1,2}:\d{2}\b`),
	}

	// Space normalization pattern
	spaceRegex = regexp.MustCompile(`\s+`)
)

// ErrorRecovery provides automatic error recovery for agent executions.
// It attempts to recover from certain error types by modifying inputs and retrying.
// This struct is safe for concurrent use as long as configuration is not modified
// after creation. Use WithTimezone to create new instances with different settings.
type ErrorRecovery struct {
	timeService aitime.TimeService
	timezone    string
}

// NewErrorRecovery creates a new ErrorRecovery instance.
func NewErrorRecovery(timeService aitime.TimeService) *ErrorRecovery {
	return &ErrorRecovery{
		timeService: timeService,
		timezone:    "UTC",
	}
}

// WithTimezone returns a new ErrorRecovery instance with the specified timezone.
// This method is safe for concurrent use as it creates a new instance.
func (r *ErrorRecovery) WithTimezone(tz string) *ErrorRecovery {
	return &ErrorRecovery{
		timeService: r.timeService,
		timezone:    tz,
	}
}

// ExecutorFunc is the function signature for agent executors.
type ExecutorFunc func(ctx context.Context, input string) (string, error)

// ExecuteWithRecovery executes the given function with automatic error recovery.
// If the execution fails with a recoverable error, it attempts to fix the input and retry once.
//
// Returns:
//   - On success: (result, nil)
//   - On failure: (user-friendly message, original error)
//
// Use ExecuteWithRecoveryDetailed if you need more detailed execution information.
func (r *ErrorRecovery) ExecuteWithRecovery(
	ctx context.Context,
	executor ExecutorFunc,
	input string,
) (string, error) {
	res := r.ExecuteWithRecoveryDetailed(ctx, executor, input)
	if !res.Success {
		return res.Result, res.OriginalError
	}
	return res.Result, nil
}

// tryRecover attempts to recover from the error by modifying the input.
// Returns (true, fixedInput) if recovery is possible, (false, "") otherwise.
func (r *ErrorRecovery) tryRecover(ctx context.Context, err error, input string) (bool, string) {
	switch {
	case errors.Is(err, ErrInvalidTimeFormat):
		// Time format error, attempt to normalize time expressions
		if normalized := r.normalizeTimeInInput(ctx, input); normalized != input {
			return true, normalized
		}

	case errors.Is(err, ErrToolNotFound):
		// Tool not found, retry with same input and let the model re-select
		return true, input

	case errors.Is(err, ErrParseError):
		// Parse error, try to simplify input
		if simplified := r.simplifyInput(input); simplified != input {
			return true, simplified
		}
	}

	return false, ""
}

// normalizeTimeInInput attempts to normalize time expressions in the input.
func (r *ErrorRecovery) normalizeTimeInInput(ctx context.Context, input string) string {
	if r.timeService == nil {
		return input
	}

	result := input
	for _, re := range timePatternRegexes {
		matches := re.FindAllString(input, -1)
		for _, match := range matches {
			normalized, err := r.timeService.Normalize(ctx, match, r.timezone)
			if err == nil {
				// Replace with 24-hour clock for clarity
				result = strings.Replace(result, match, normalized.Format("2006-01-02 15:04"), 1)
			}
		}
	}

	return result
}

// simplifyInput attempts to extract key information from complex input.
func (r *ErrorRecovery) simplifyInput(input string) string {
	simplified := strings.TrimSpace(input)
	simplified = spaceRegex.ReplaceAllString(simplified, " ")

	// Remove common filler phrases that might confuse parsing
	fillers := []string{
		"could you please ",
		"can you please ",
		"would you mind ",
		"could you ",
		"can you ",
		"please ",
		"i would like to know ",
		"i want to know ",
		"tell me ",
	}
	lower := strings.ToLower(simplified)
	for _, filler := range fillers {
		if idx := strings.Index(lower, filler); idx >= 0 {
			simplified = simplified[:idx] + simplified[idx+len(filler):]
			lower = strings.ToLower(simplified)
		}
	}

	simplified = strings.TrimSpace(simplified)

	// Only return if we actually simplified something
	if simplified != input && len(simplified) > 0 {
		return simplified
	}
	return input
}

// formatUserFriendlyError converts technical errors to user-friendly messages.
func (r *ErrorRecovery) formatUserFriendlyError(err error) string {
	switch {
	case errors.Is(err, ErrInvalidTimeFormat):
		return `Sorry, I could not understand that time. Try a more explicit expression like "tomorrow at 3pm".`

	case errors.Is(err, ErrInvalidTimezone):
		return `Sorry, I do not recognize that timezone. Try an IANA name like "America/New_York" or "Europe/London".`

	case errors.Is(err, ErrToolNotFound):
		return "Sorry, I cannot handle that request right now."

	case errors.Is(err, ErrNetworkError):
		return "There was a network problem. Please try again shortly."

	case errors.Is(err, ErrServiceUnavailable):
		return "The service is temporarily unavailable. Please try again shortly."

	case errors.Is(err, ErrParseError):
		return "Sorry, I could not understand your request. Try a simpler phrasing."

	case errors.Is(err, ErrInvalidInput):
		return "There is a problem with the input. Please check it and try again."

	case errors.Is(err, context.DeadlineExceeded):
		return "That took too long to process. Please try again."

	case errors.Is(err, context.Canceled):
		return "The request was cancelled."

	default:
		return "Sorry, something went wrong. Please try again."
	}
}

// RecoveryResult contains the result of an execution with recovery.
type RecoveryResult struct {
	Success       bool   // Whether execution succeeded
	Result        string // The result or error message
	WasRecovered  bool   // Whether recovery was attempted and succeeded
	OriginalError error  // The original error (if any)
}

// ExecuteWithRecoveryDetailed executes with recovery and returns detailed result.
// This is the recommended method when you need to programmatically distinguish
// between successful results and error messages.
func (r *ErrorRecovery) ExecuteWithRecoveryDetailed(
	ctx context.Context,
	executor ExecutorFunc,
	input string,
) RecoveryResult {
	// First attempt
	result, err := executor(ctx, input)
	if err == nil {
		return RecoveryResult{
			Success: true,
			Result:  result,
		}
	}

	originalErr := err

	// Attempt recovery (single retry)
	if recovered, fixedInput := r.tryRecover(ctx, err, input); recovered {
		result, err = executor(ctx, fixedInput)
		if err == nil {
			return RecoveryResult{
				Success:       true,
				Result:        result,
				WasRecovered:  true,
				OriginalError: originalErr,
			}
		}
	}

	// Return user-friendly error
	return RecoveryResult{
		Success:       false,
		Result:        r.formatUserFriendlyError(err),
		WasRecovered:  false,
		OriginalError: originalErr,
	}
}
