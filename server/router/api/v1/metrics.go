package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/timesense/plugin/ai/metrics"
	apierrors "github.com/hrygo/timesense/server/internal/errors"
)

// GetAgentMetrics handles GET /api/v1/metrics/agents. The hours query
// parameter bounds the window, defaulting to the last 24 hours.
func (s *APIV1Service) GetAgentMetrics(c echo.Context) error {
	if s.MetricsService == nil {
		return writeAIError(c, apierrors.NotFound("metrics collection is not enabled"))
	}

	hours := 24
	if hoursStr := c.QueryParam("hours"); hoursStr != "" {
		v, err := strconv.Atoi(hoursStr)
		if err != nil || v <= 0 || v > 24*31 {
			return writeAIError(c, apierrors.InvalidArgument("hours must be between 1 and 744"))
		}
		hours = v
	}

	now := time.Now()
	stats, err := s.MetricsService.GetStats(c.Request().Context(), metrics.TimeRange{
		Start: now.Add(-time.Duration(hours) * time.Hour),
		End:   now,
	})
	if err != nil {
		return writeAIError(c, apierrors.Wrap(err, apierrors.ErrCodeAgentExecutionFailed, "failed to load metrics"))
	}

	return c.JSON(http.StatusOK, stats)
}
