package tools

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// FallbackFunc defines the signature for fallback handlers.
// It receives the context, the failed tool, the original input, and the error.
// It returns a graceful degradation result.
type FallbackFunc func(ctx context.Context, tool Tool, input string, err error) (*Result, error)

// DefaultFallbackRules contains the default fallback strategies for the time tools.
var DefaultFallbackRules = map[string]FallbackFunc{
	"get_current_time": fallbackCurrentTime,
	"convert_time":     ErrorAwareFallback("Time conversion is temporarily unavailable. Please try again."),
	"parse_time":       GenericFallback("Could not interpret that time expression. Please rephrase it with an explicit date and time."),
}

// fallbackCurrentTime answers in UTC when the requested timezone lookup fails.
// The current time itself is always available locally.
func fallbackCurrentTime(_ context.Context, _ Tool, _ string, _ error) (*Result, error) {
	return &Result{
		Output:  "Current time in UTC: " + time.Now().UTC().Format(time.RFC3339) + " (requested timezone unavailable)",
		Success: true,
	}, nil
}

// FallbackRegistry allows dynamic registration of fallback handlers.
type FallbackRegistry struct {
	mu       sync.RWMutex
	handlers map[string]FallbackFunc
}

// NewFallbackRegistry creates a new FallbackRegistry with default handlers.
func NewFallbackRegistry() *FallbackRegistry {
	r := &FallbackRegistry{
		handlers: make(map[string]FallbackFunc),
	}
	for k, v := range DefaultFallbackRules {
		r.handlers[k] = v
	}
	return r
}

// Register adds or replaces a fallback handler for the given tool.
func (r *FallbackRegistry) Register(toolName string, handler FallbackFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[toolName] = handler
}

// Get retrieves the fallback handler for the given tool.
func (r *FallbackRegistry) Get(toolName string) (FallbackFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[toolName]
	return handler, ok
}

// GetAll returns a copy of all registered handlers.
func (r *FallbackRegistry) GetAll() map[string]FallbackFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[string]FallbackFunc, len(r.handlers))
	for k, v := range r.handlers {
		result[k] = v
	}
	return result
}

// GenericFallback creates a generic fallback handler with a custom message.
func GenericFallback(message string) FallbackFunc {
	return func(_ context.Context, _ Tool, _ string, _ error) (*Result, error) {
		return &Result{
			Output:  message,
			Success: false,
		}, nil
	}
}

// ErrorAwareFallback creates a fallback that logs error details but returns a safe message.
// Error details are logged for debugging but not exposed to users.
func ErrorAwareFallback(baseMessage string) FallbackFunc {
	return func(_ context.Context, tool Tool, _ string, err error) (*Result, error) {
		if err != nil {
			toolName := "unknown"
			if tool != nil {
				toolName = tool.Name()
			}
			slog.Warn("tool fallback triggered",
				slog.String("tool", toolName),
				slog.String("error", err.Error()),
			)
		}
		return &Result{
			Output:  baseMessage,
			Success: false,
		}, nil
	}
}
