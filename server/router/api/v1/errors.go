package v1

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/timesense/plugin/ai/agent"
	apierrors "github.com/hrygo/timesense/server/internal/errors"
)

// errorBody is the JSON error envelope returned by all handlers.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeAIError writes a structured error with its mapped HTTP status.
func writeAIError(c echo.Context, err *apierrors.AIError) error {
	return c.JSON(err.Code.HTTPStatus(), &errorBody{
		Code:    string(err.Code),
		Message: err.Message,
	})
}

// toAIError maps lower-level failures to the API error taxonomy.
func toAIError(ctx context.Context, err error) *apierrors.AIError {
	var aiErr *apierrors.AIError
	if errors.As(err, &aiErr) {
		return aiErr
	}

	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return apierrors.ContextCanceled(err)
	case errors.Is(err, context.DeadlineExceeded):
		return apierrors.Timeout("request timed out")
	case errors.Is(err, agent.ErrInvalidTimezone):
		return apierrors.Wrap(err, apierrors.ErrCodeInvalidTimezone, "invalid timezone in request")
	case errors.Is(err, agent.ErrInvalidTimeFormat), errors.Is(err, agent.ErrParseError), errors.Is(err, agent.ErrInvalidInput):
		return apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, "could not understand the time expression")
	case errors.Is(err, agent.ErrServiceUnavailable), errors.Is(err, agent.ErrNetworkError):
		return apierrors.Wrap(err, apierrors.ErrCodeLLMUnavailable, "model provider unavailable")
	default:
		return apierrors.AgentExecutionFailed("agent execution failed", err)
	}
}
