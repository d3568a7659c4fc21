// Package v1 exposes the HTTP API of the time assistant.
package v1

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/timesense/internal/profile"
	"github.com/hrygo/timesense/plugin/ai"
	"github.com/hrygo/timesense/plugin/ai/agent"
	"github.com/hrygo/timesense/plugin/ai/aitime"
	"github.com/hrygo/timesense/plugin/ai/cache"
	"github.com/hrygo/timesense/plugin/ai/metrics"
	"github.com/hrygo/timesense/plugin/markdown"
	"github.com/hrygo/timesense/server/middleware"
	"github.com/hrygo/timesense/store"
)

// APIV1Service wires the assistant's HTTP handlers to their services.
type APIV1Service struct {
	Profile         *profile.Profile
	Store           *store.Store
	LLMService      ai.LLMService
	TimeService     aitime.TimeService
	MetricsService  metrics.MetricsService
	MarkdownService *markdown.Service

	cache       cache.CacheService
	rateLimiter *middleware.RateLimiter
	cancel      context.CancelFunc
}

// NewAPIV1Service creates the API service and starts its background
// maintenance loops.
func NewAPIV1Service(p *profile.Profile, s *store.Store, llm ai.LLMService, timeService aitime.TimeService, metricsService metrics.MetricsService) *APIV1Service {
	ctx, cancel := context.WithCancel(context.Background())

	svc := &APIV1Service{
		Profile:         p,
		Store:           s,
		LLMService:      llm,
		TimeService:     timeService,
		MetricsService:  metricsService,
		MarkdownService: markdown.NewService(),
		cache: cache.NewService(cache.ServiceConfig{
			Capacity:        256,
			DefaultTTL:      time.Hour,
			CleanupInterval: 10 * time.Minute,
		}),
		rateLimiter: middleware.NewRateLimiter(10, 20),
		cancel:      cancel,
	}
	// Drop per-IP limiters for clients that have gone idle, so the
	// limiter map does not grow without bound.
	svc.rateLimiter.StartCleanup(ctx, 10*time.Minute)

	return svc
}

// Close releases the service's background resources.
func (s *APIV1Service) Close() {
	s.cancel()
	if c, ok := s.cache.(*cache.Service); ok {
		c.Close()
	}
}

// RegisterRoutes registers all API routes on the given echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.Use(s.rateLimiter.Middleware())

	g.POST("/chat", s.Chat)

	g.POST("/conversations", s.CreateConversation)
	g.GET("/conversations", s.ListConversations)
	g.GET("/conversations/:uid", s.GetConversation)
	g.PATCH("/conversations/:uid", s.UpdateConversation)
	g.DELETE("/conversations/:uid", s.DeleteConversation)

	g.GET("/timezones", s.ListTimezones)
	g.POST("/timezones/convert", s.ConvertTimezone)

	g.GET("/metrics/agents", s.GetAgentMetrics)
}

// newTimeAgent builds a request-scoped agent. The system prompt bakes in
// the current time for the request's timezone, so agents are not shared
// across requests.
func (s *APIV1Service) newTimeAgent(timezone string) (*agent.TimeAgent, error) {
	if timezone == "" {
		timezone = s.Profile.DefaultTimezone
	}
	return agent.NewTimeAgent(s.LLMService, agent.TimeAgentConfig{
		Timezone:       timezone,
		TimeService:    s.TimeService,
		MetricsService: s.MetricsService,
	})
}

func (s *APIV1Service) logger() *slog.Logger {
	return slog.Default()
}
