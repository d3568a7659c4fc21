package tools

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/hrygo/timesense/plugin/ai/metrics"
)

// Tool defines the interface for executable tools.
type Tool interface {
	// Name returns the tool's identifier.
	Name() string
	// Run executes the tool with the given input.
	Run(ctx context.Context, input string) (string, error)
}

// Result represents the output of a tool execution.
type Result struct {
	Output  string `json:"output"`
	Success bool   `json:"success"`
}

// ResilientToolExecutor provides retry and fallback capabilities for tool execution.
type ResilientToolExecutor struct {
	maxRetries     int
	retryDelay     time.Duration
	timeout        time.Duration
	metricsService metrics.MetricsService
	fallbacks      *FallbackRegistry
}

// ExecutorOption configures a ResilientToolExecutor.
type ExecutorOption func(*ResilientToolExecutor)

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) ExecutorOption {
	return func(e *ResilientToolExecutor) {
		e.maxRetries = n
	}
}

// WithRetryDelay sets the delay between retry attempts.
func WithRetryDelay(d time.Duration) ExecutorOption {
	return func(e *ResilientToolExecutor) {
		e.retryDelay = d
	}
}

// WithTimeout sets the timeout for each execution attempt.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *ResilientToolExecutor) {
		e.timeout = d
	}
}

// WithFallbackRules replaces the default fallback handlers. The rules are
// copied into a fresh registry, so a nil map disables fallback entirely.
func WithFallbackRules(rules map[string]FallbackFunc) ExecutorOption {
	return func(e *ResilientToolExecutor) {
		registry := &FallbackRegistry{handlers: make(map[string]FallbackFunc, len(rules))}
		for k, v := range rules {
			registry.handlers[k] = v
		}
		e.fallbacks = registry
	}
}

// NewResilientToolExecutor creates a new ResilientToolExecutor with the given options.
func NewResilientToolExecutor(metricsService metrics.MetricsService, opts ...ExecutorOption) *ResilientToolExecutor {
	e := &ResilientToolExecutor{
		maxRetries:     2,
		retryDelay:     500 * time.Millisecond,
		timeout:        10 * time.Second,
		metricsService: metricsService,
		fallbacks:      NewFallbackRegistry(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Execute runs the tool with retry and fallback support.
// It attempts to execute the tool, retrying on transient errors.
// If all attempts fail, it executes the fallback strategy if available.
func (e *ResilientToolExecutor) Execute(ctx context.Context, tool Tool, input string) (*Result, error) {
	res := e.ExecuteDetailed(ctx, tool, input)
	if res.UsedFallback {
		if res.FallbackError != nil {
			return nil, res.FallbackError
		}
		return res.Result, nil
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return res.Result, nil
}

// isRetryable determines if an error should trigger a retry.
func (e *ResilientToolExecutor) isRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	if err != nil {
		errMsg := strings.ToLower(err.Error())
		transientPatterns := []string{
			"network",
			"timeout",
			"connection",
			"unavailable",
			"temporary",
			"retry",
			"eof",
		}
		for _, pattern := range transientPatterns {
			if strings.Contains(errMsg, pattern) {
				return true
			}
		}
	}

	return false
}

func (e *ResilientToolExecutor) recordMetrics(ctx context.Context, toolName string, duration time.Duration, success bool) {
	if e.metricsService != nil {
		e.metricsService.RecordToolCall(ctx, toolName, duration, success)
	}
}

// ExecutionResult contains detailed information about a tool execution.
type ExecutionResult struct {
	Result        *Result
	Error         error
	FallbackError error // Error from fallback execution, if any
	Attempts      int
	TotalLatency  time.Duration
	UsedFallback  bool
}

// ExecuteDetailed runs the tool and returns detailed execution information.
func (e *ResilientToolExecutor) ExecuteDetailed(ctx context.Context, tool Tool, input string) ExecutionResult {
	start := time.Now()
	var lastErr error
	toolName := tool.Name()
	attempts := 0

attemptsLoop:
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		attempts++

		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break attemptsLoop
		}

		execCtx, cancel := context.WithTimeout(ctx, e.timeout)
		output, err := tool.Run(execCtx, input)
		cancel()

		if err == nil {
			e.recordMetrics(ctx, toolName, time.Since(start), true)
			slog.Debug("tool execution succeeded",
				slog.String("tool", toolName),
				slog.Int("attempt", attempt+1),
				slog.Duration("duration", time.Since(start)))
			return ExecutionResult{
				Result:       &Result{Output: output, Success: true},
				Attempts:     attempts,
				TotalLatency: time.Since(start),
				UsedFallback: false,
			}
		}

		lastErr = err
		slog.Warn("tool execution failed",
			slog.String("tool", toolName),
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))

		if !e.isRetryable(err) {
			break attemptsLoop
		}

		if attempt < e.maxRetries {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				break attemptsLoop
			case <-time.After(e.retryDelay):
			}
		}
	}

	e.recordMetrics(ctx, toolName, time.Since(start), false)

	if fallback, ok := e.fallbacks.Get(toolName); ok {
		slog.Info("executing fallback strategy",
			slog.String("tool", toolName))
		result, fbErr := fallback(ctx, tool, input, lastErr)
		return ExecutionResult{
			Result:        result,
			Error:         lastErr,
			FallbackError: fbErr,
			Attempts:      attempts,
			TotalLatency:  time.Since(start),
			UsedFallback:  true,
		}
	}

	return ExecutionResult{
		Error:        lastErr,
		Attempts:     attempts,
		TotalLatency: time.Since(start),
		UsedFallback: false,
	}
}
