package tools

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/timesense/plugin/ai/metrics"
)

// stubTool is a configurable tool for executor tests.
type stubTool struct {
	name     string
	calls    atomic.Int32
	failures int32 // number of calls that fail before succeeding
	err      error
	output   string
}

func (t *stubTool) Name() string { return t.name }

func (t *stubTool) Run(_ context.Context, _ string) (string, error) {
	n := t.calls.Add(1)
	if n <= t.failures {
		return "", t.err
	}
	return t.output, nil
}

func TestResilientToolExecutor_Success(t *testing.T) {
	executor := NewResilientToolExecutor(nil)
	tool := &stubTool{name: "get_current_time", output: "ok"}

	result, err := executor.Execute(context.Background(), tool, "{}")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "ok", result.Output)
	assert.Equal(t, int32(1), tool.calls.Load())
}

func TestResilientToolExecutor_RetryOnTransientError(t *testing.T) {
	executor := NewResilientToolExecutor(nil,
		WithMaxRetries(2),
		WithRetryDelay(time.Millisecond),
	)
	tool := &stubTool{
		name:     "convert_time",
		failures: 2,
		err:      errors.New("connection reset"),
		output:   "recovered",
	}

	result, err := executor.Execute(context.Background(), tool, "{}")
	require.NoError(t, err)
	assert.Equal(t, "recovered", result.Output)
	assert.Equal(t, int32(3), tool.calls.Load())
}

func TestResilientToolExecutor_NoRetryOnPermanentError(t *testing.T) {
	executor := NewResilientToolExecutor(nil,
		WithMaxRetries(3),
		WithRetryDelay(time.Millisecond),
		WithFallbackRules(nil),
	)
	tool := &stubTool{
		name:     "unregistered_tool",
		failures: 100,
		err:      errors.New("invalid timezone"),
	}

	_, err := executor.Execute(context.Background(), tool, "{}")
	require.Error(t, err)
	// Permanent errors stop after the first attempt.
	assert.Equal(t, int32(1), tool.calls.Load())
}

func TestResilientToolExecutor_Fallback(t *testing.T) {
	executor := NewResilientToolExecutor(nil,
		WithMaxRetries(0),
		WithRetryDelay(time.Millisecond),
		WithFallbackRules(map[string]FallbackFunc{
			"parse_time": GenericFallback("please rephrase"),
		}),
	)
	tool := &stubTool{
		name:     "parse_time",
		failures: 100,
		err:      errors.New("unable to parse"),
	}

	result, err := executor.Execute(context.Background(), tool, "{}")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "please rephrase", result.Output)
}

func TestResilientToolExecutor_ContextCancelled(t *testing.T) {
	executor := NewResilientToolExecutor(nil, WithFallbackRules(nil))
	tool := &stubTool{name: "get_current_time", output: "ok"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := executor.Execute(ctx, tool, "{}")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), tool.calls.Load())
}

func TestResilientToolExecutor_RecordsMetrics(t *testing.T) {
	mock := metrics.NewMockMetricsService()
	executor := NewResilientToolExecutor(mock)
	tool := &stubTool{name: "get_current_time", output: "ok"}

	_, err := executor.Execute(context.Background(), tool, "{}")
	require.NoError(t, err)

	stats, err := mock.GetStats(context.Background(), metrics.TimeRange{})
	require.NoError(t, err)
	require.Contains(t, stats.ToolStats, "get_current_time")
	assert.Equal(t, int64(1), stats.ToolStats["get_current_time"].Count)
}

func TestResilientToolExecutor_ExecuteDetailed(t *testing.T) {
	t.Run("SuccessFirstAttempt", func(t *testing.T) {
		executor := NewResilientToolExecutor(nil)
		tool := &stubTool{name: "convert_time", output: "ok"}

		result := executor.ExecuteDetailed(context.Background(), tool, "{}")
		assert.NoError(t, result.Error)
		assert.Equal(t, 1, result.Attempts)
		assert.False(t, result.UsedFallback)
		require.NotNil(t, result.Result)
		assert.Equal(t, "ok", result.Result.Output)
	})

	t.Run("FallbackAfterFailures", func(t *testing.T) {
		executor := NewResilientToolExecutor(nil,
			WithMaxRetries(1),
			WithRetryDelay(time.Millisecond),
		)
		tool := &stubTool{
			name:     "convert_time",
			failures: 100,
			err:      fmt.Errorf("network unreachable"),
		}

		result := executor.ExecuteDetailed(context.Background(), tool, "{}")
		assert.Error(t, result.Error)
		assert.Equal(t, 2, result.Attempts)
		assert.True(t, result.UsedFallback)
		require.NotNil(t, result.Result)
		assert.False(t, result.Result.Success)
	})
}

func TestFallbackRegistry(t *testing.T) {
	registry := NewFallbackRegistry()

	// Defaults are preloaded
	_, ok := registry.Get("get_current_time")
	assert.True(t, ok)

	registry.Register("custom_tool", GenericFallback("custom"))
	handler, ok := registry.Get("custom_tool")
	require.True(t, ok)

	result, err := handler(context.Background(), nil, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "custom", result.Output)

	all := registry.GetAll()
	assert.Contains(t, all, "custom_tool")
	assert.Contains(t, all, "parse_time")
}
