package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/timesense/plugin/ai/aitime"
)

func TestErrorRecovery_SuccessFirstTry(t *testing.T) {
	recovery := NewErrorRecovery(aitime.NewService("UTC"))

	result, err := recovery.ExecuteWithRecovery(context.Background(),
		func(_ context.Context, input string) (string, error) {
			return "ok:" + input, nil
		}, "hello")

	require.NoError(t, err)
	assert.Equal(t, "ok:hello", result)
}

func TestErrorRecovery_RecoverFromToolNotFound(t *testing.T) {
	recovery := NewErrorRecovery(aitime.NewService("UTC"))

	attempts := 0
	res := recovery.ExecuteWithRecoveryDetailed(context.Background(),
		func(_ context.Context, input string) (string, error) {
			attempts++
			if attempts == 1 {
				return "", ErrToolNotFound
			}
			return "recovered", nil
		}, "do something")

	assert.True(t, res.Success)
	assert.True(t, res.WasRecovered)
	assert.Equal(t, "recovered", res.Result)
	assert.ErrorIs(t, res.OriginalError, ErrToolNotFound)
	assert.Equal(t, 2, attempts)
}

func TestErrorRecovery_SimplifyInputOnParseError(t *testing.T) {
	recovery := NewErrorRecovery(aitime.NewService("UTC"))

	var secondInput string
	attempts := 0
	res := recovery.ExecuteWithRecoveryDetailed(context.Background(),
		func(_ context.Context, input string) (string, error) {
			attempts++
			if attempts == 1 {
				return "", ErrParseError
			}
			secondInput = input
			return "parsed", nil
		}, "could you please convert   3pm to London time")

	assert.True(t, res.Success)
	assert.True(t, res.WasRecovered)
	assert.Equal(t, "convert 3pm to London time", secondInput)
}

func TestErrorRecovery_UnrecoverableError(t *testing.T) {
	recovery := NewErrorRecovery(aitime.NewService("UTC"))

	res := recovery.ExecuteWithRecoveryDetailed(context.Background(),
		func(_ context.Context, _ string) (string, error) {
			return "", ErrNetworkError
		}, "hello")

	assert.False(t, res.Success)
	assert.False(t, res.WasRecovered)
	assert.ErrorIs(t, res.OriginalError, ErrNetworkError)
	assert.Contains(t, res.Result, "network problem")
}

func TestErrorRecovery_FriendlyMessages(t *testing.T) {
	recovery := NewErrorRecovery(nil)

	tests := []struct {
		err  error
		want string
	}{
		{ErrInvalidTimeFormat, "could not understand that time"},
		{ErrInvalidTimezone, "do not recognize that timezone"},
		{ErrServiceUnavailable, "temporarily unavailable"},
		{context.DeadlineExceeded, "took too long"},
		{context.Canceled, "cancelled"},
		{errors.New("mystery"), "something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			res := recovery.ExecuteWithRecoveryDetailed(context.Background(),
				func(_ context.Context, _ string) (string, error) {
					return "", fmt.Errorf("wrapped: %w", tt.err)
				}, "input")
			assert.False(t, res.Success)
			assert.Contains(t, res.Result, tt.want)
		})
	}
}

func TestErrorRecovery_WithTimezone(t *testing.T) {
	recovery := NewErrorRecovery(aitime.NewService("UTC"))
	other := recovery.WithTimezone("Asia/Tokyo")

	// Original instance is unchanged
	assert.Equal(t, "UTC", recovery.timezone)
	assert.Equal(t, "Asia/Tokyo", other.timezone)
}

func TestIsRecoverableError(t *testing.T) {
	assert.True(t, IsRecoverableError(ErrInvalidTimeFormat))
	assert.True(t, IsRecoverableError(ErrToolNotFound))
	assert.True(t, IsRecoverableError(ErrParseError))
	assert.False(t, IsRecoverableError(ErrNetworkError))
	assert.False(t, IsRecoverableError(errors.New("other")))
}

func TestIsTransientError(t *testing.T) {
	assert.True(t, IsTransientError(ErrNetworkError))
	assert.True(t, IsTransientError(ErrServiceUnavailable))
	assert.False(t, IsTransientError(ErrParseError))
}
