package v1

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/timesense/plugin/ai/agent/tools"
	apierrors "github.com/hrygo/timesense/server/internal/errors"
	"github.com/hrygo/timesense/server/timezone"
)

const (
	timezoneListCacheKey    = "timezone:list"
	timezoneListCacheTTL    = 15 * time.Minute
	timezoneConvertCacheTTL = time.Minute
	timezoneConvertCachePfx = "timezone:convert:"
)

// TimezonePayload is one entry of the timezone catalog.
type TimezonePayload struct {
	Name      string `json:"name"`
	UTCOffset string `json:"utc_offset"`
}

type convertTimezoneRequest struct {
	Time           string `json:"time"`
	SourceTimezone string `json:"source_timezone"`
	TargetTimezone string `json:"target_timezone"`
}

// ListTimezones handles GET /api/v1/timezones. Offsets move only at DST
// transitions, so the rendered catalog is cached briefly.
func (s *APIV1Service) ListTimezones(c echo.Context) error {
	ctx := c.Request().Context()
	if cached, ok := s.cache.Get(ctx, timezoneListCacheKey); ok {
		return c.JSONBlob(http.StatusOK, cached)
	}

	now := time.Now()
	names := timezone.List()
	zones := make([]TimezonePayload, 0, len(names))
	for _, name := range names {
		loc, err := timezone.ParseTimezone(name)
		if err != nil {
			continue
		}
		zones = append(zones, TimezonePayload{
			Name:      name,
			UTCOffset: timezone.OffsetAt(now, loc),
		})
	}

	blob, err := json.Marshal(zones)
	if err != nil {
		return writeAIError(c, apierrors.Wrap(err, apierrors.ErrCodeAgentExecutionFailed, "failed to encode timezone list"))
	}
	_ = s.cache.Set(ctx, timezoneListCacheKey, blob, timezoneListCacheTTL)
	return c.JSONBlob(http.StatusOK, blob)
}

// ConvertTimezone handles POST /api/v1/timezones/convert. It runs the same
// conversion the agent tool exposes to the LLM, without any model involvement.
func (s *APIV1Service) ConvertTimezone(c echo.Context) error {
	req := &convertTimezoneRequest{}
	if err := c.Bind(req); err != nil {
		return writeAIError(c, apierrors.InvalidArgument("malformed request body"))
	}
	if req.Time == "" {
		return writeAIError(c, apierrors.InvalidArgument("time is required"))
	}
	if req.TargetTimezone == "" {
		return writeAIError(c, apierrors.InvalidArgument("target_timezone is required"))
	}
	if !timezone.IsValidTimezone(req.TargetTimezone) {
		return writeAIError(c, apierrors.InvalidTimezone(req.TargetTimezone))
	}
	if req.SourceTimezone != "" && !timezone.IsValidTimezone(req.SourceTimezone) {
		return writeAIError(c, apierrors.InvalidTimezone(req.SourceTimezone))
	}

	ctx := c.Request().Context()
	cacheKey := timezoneConvertCachePfx + req.Time + ":" + req.SourceTimezone + ":" + req.TargetTimezone
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		return c.JSONBlob(http.StatusOK, cached)
	}

	input, err := json.Marshal(map[string]string{
		"time":            req.Time,
		"source_timezone": req.SourceTimezone,
		"target_timezone": req.TargetTimezone,
	})
	if err != nil {
		return writeAIError(c, apierrors.Wrap(err, apierrors.ErrCodeAgentExecutionFailed, "failed to encode conversion input"))
	}

	tool := tools.NewConvertTimeTool(nil, s.Profile.DefaultTimezone)
	output, err := tool.Run(ctx, string(input))
	if err != nil {
		// timezones were validated above, so what remains is a bad time value
		return writeAIError(c, apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, err.Error()))
	}

	// HH:MM inputs resolve against the current date, so cached results
	// stay valid only briefly.
	_ = s.cache.Set(ctx, cacheKey, []byte(output), timezoneConvertCacheTTL)
	return c.JSONBlob(http.StatusOK, []byte(output))
}
