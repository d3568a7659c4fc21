// Package server hosts the HTTP surface of the time assistant.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/timesense/internal/profile"
	"github.com/hrygo/timesense/plugin/ai"
	"github.com/hrygo/timesense/plugin/ai/aitime"
	"github.com/hrygo/timesense/plugin/ai/metrics"
	apiv1 "github.com/hrygo/timesense/server/router/api/v1"
	"github.com/hrygo/timesense/server/router/frontend"
	"github.com/hrygo/timesense/store"
)

// Server is the assistant's HTTP server.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	apiService *apiv1.APIV1Service
}

// NewServer creates the server and registers all routes.
func NewServer(_ context.Context, p *profile.Profile, st *store.Store, llm ai.LLMService, timeService aitime.TimeService, metricsService metrics.MetricsService) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
	}))
	e.Use(requestLogger())

	s := &Server{
		Profile:    p,
		Store:      st,
		echoServer: e,
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": p.Version,
		})
	})

	s.apiService = apiv1.NewAPIV1Service(p, st, llm, timeService, metricsService)
	s.apiService.RegisterRoutes(e)

	frontend.RegisterRoutes(e)

	return s, nil
}

// Start begins serving. It blocks until the listener fails or the server
// is shut down.
func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", slog.String("address", address), slog.String("mode", s.Profile.Mode))
	if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to start echo server")
	}
	return nil
}

// Shutdown gracefully stops the server and releases resources.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	s.apiService.Close()

	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			slog.Error("failed to close store", slog.String("error", err.Error()))
		}
	}

	slog.Info("server stopped")
}

// requestLogger logs one line per request with method, path, status and latency.
func requestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Int64("latency_ms", v.Latency.Milliseconds()),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				slog.Error("request failed", attrs...)
				return nil
			}
			slog.Info("request", attrs...)
			return nil
		},
	})
}
