package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	// Burst of 2 is immediately available.
	assert.True(t, rl.Allow("client"))
	assert.True(t, rl.Allow("client"))
	assert.False(t, rl.Allow("client"))

	// Separate keys have separate buckets.
	assert.True(t, rl.Allow("other"))
}

func TestRateLimiter_Middleware(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(1, 1)
	handler := rl.Middleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(100, 1)
	rl.Allow("a")
	rl.Allow("b")

	rl.mu.RLock()
	before := len(rl.limits)
	rl.mu.RUnlock()
	assert.Equal(t, 2, before)

	// With 100 rps the buckets refill almost immediately; Cleanup drops
	// any key whose bucket is full again.
	assert.Eventually(t, func() bool {
		rl.Cleanup()
		rl.mu.RLock()
		defer rl.mu.RUnlock()
		return len(rl.limits) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestRateLimiter_StartCleanup(t *testing.T) {
	rl := NewRateLimiter(100, 1)
	rl.Allow("a")
	rl.Allow("b")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl.StartCleanup(ctx, 10*time.Millisecond)

	// The background loop drops idle keys once their buckets refill.
	assert.Eventually(t, func() bool {
		rl.mu.RLock()
		defer rl.mu.RUnlock()
		return len(rl.limits) == 0
	}, time.Second, 10*time.Millisecond)
}
