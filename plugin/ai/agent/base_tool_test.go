package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseTool_Run(t *testing.T) {
	tool := NewBaseTool("upper", "uppercases input",
		func(_ context.Context, input string) (string, error) {
			return "OK:" + input, nil
		})

	assert.Equal(t, "upper", tool.Name())
	assert.Equal(t, "uppercases input", tool.Description())

	result, err := tool.Run(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "OK:hello", result)
}

func TestBaseTool_EmptyInput(t *testing.T) {
	tool := NewBaseTool("t", "d",
		func(_ context.Context, input string) (string, error) {
			return "never", nil
		})

	_, err := tool.Run(context.Background(), "   ")
	assert.ErrorContains(t, err, "input cannot be empty")
}

func TestBaseTool_CustomValidator(t *testing.T) {
	tool := NewBaseTool("t", "d",
		func(_ context.Context, input string) (string, error) {
			return "ran", nil
		},
		WithValidator(func(input string) error {
			if input != "magic" {
				return errors.New("not magic")
			}
			return nil
		}))

	_, err := tool.Run(context.Background(), "plain")
	assert.ErrorContains(t, err, "not magic")

	result, err := tool.Run(context.Background(), "magic")
	require.NoError(t, err)
	assert.Equal(t, "ran", result)
}

func TestBaseTool_Timeout(t *testing.T) {
	tool := NewBaseTool("slow", "takes too long",
		func(ctx context.Context, _ string) (string, error) {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Second):
				return "finished", nil
			}
		},
		WithTimeout(10*time.Millisecond))

	_, err := tool.Run(context.Background(), "go")
	assert.Error(t, err)
}

func TestBaseTool_EmptyResult(t *testing.T) {
	tool := NewBaseTool("empty", "returns nothing",
		func(_ context.Context, _ string) (string, error) {
			return "  ", nil
		})

	_, err := tool.Run(context.Background(), "go")
	assert.ErrorContains(t, err, "empty result")
}

func TestToolRegistry(t *testing.T) {
	registry := NewToolRegistry()

	tool := NewBaseTool("a", "first tool",
		func(_ context.Context, input string) (string, error) {
			return input, nil
		})

	require.NoError(t, registry.Register(tool))
	assert.Equal(t, 1, registry.Count())

	t.Run("DuplicateRejected", func(t *testing.T) {
		err := registry.Register(tool)
		assert.ErrorContains(t, err, "already registered")
	})

	t.Run("NilRejected", func(t *testing.T) {
		err := registry.Register(nil)
		assert.Error(t, err)
	})

	t.Run("Get", func(t *testing.T) {
		got, ok := registry.Get("a")
		assert.True(t, ok)
		assert.Equal(t, "a", got.Name())

		_, ok = registry.Get("missing")
		assert.False(t, ok)
	})

	t.Run("Describe", func(t *testing.T) {
		desc := registry.Describe()
		assert.Contains(t, desc, "a: first tool")
	})
}
