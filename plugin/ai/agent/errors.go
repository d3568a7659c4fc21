// Package agent provides recoverable error definitions for the assistant agent.
// These errors are designed to work with the error recovery system.
package agent

import (
	"errors"

	"github.com/hrygo/timesense/plugin/ai"
	"github.com/hrygo/timesense/plugin/ai/agent/tools"
	"github.com/hrygo/timesense/plugin/ai/aitime"
	"github.com/hrygo/timesense/server/timezone"
)

// ErrToolNotFound indicates the model requested a tool that does not exist.
// Recovery: retry and let the model pick another tool.
var ErrToolNotFound = errors.New("tool not found")

// The remaining recoverable errors are produced where the failing work
// happens and re-exported here so the recovery system and HTTP layer can
// classify agent failures without importing every producing package.
// Aliasing keeps errors.Is identity intact.
var (
	// ErrInvalidTimeFormat: a time expression could not be parsed.
	// Recovery: normalize the time expression and retry.
	ErrInvalidTimeFormat = aitime.ErrInvalidTimeFormat

	// ErrInvalidTimezone: a timezone identifier is unknown.
	// Recovery: not automatic, return friendly message.
	ErrInvalidTimezone = timezone.ErrInvalidTimezone

	// ErrParseError: tool arguments could not be decoded.
	// Recovery: simplify the input and retry.
	ErrParseError = tools.ErrParseError

	// ErrNetworkError: the model provider could not be reached.
	// Recovery: not automatic, return friendly message.
	ErrNetworkError = ai.ErrNetworkError

	// ErrServiceUnavailable: the model provider is rate limited or down.
	// Recovery: not automatic, return friendly message.
	ErrServiceUnavailable = ai.ErrServiceUnavailable

	// ErrInvalidInput: tool arguments are missing or unusable.
	// Recovery: not automatic, return friendly message.
	ErrInvalidInput = tools.ErrInvalidInput
)

// IsRecoverableError checks if the error can be automatically recovered.
func IsRecoverableError(err error) bool {
	return errors.Is(err, ErrInvalidTimeFormat) ||
		errors.Is(err, ErrToolNotFound) ||
		errors.Is(err, ErrParseError)
}

// IsTransientError checks if the error is transient and might succeed on retry.
func IsTransientError(err error) bool {
	return errors.Is(err, ErrNetworkError) ||
		errors.Is(err, ErrServiceUnavailable)
}
