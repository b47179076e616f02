package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"driver_rating/internal/ratelimit"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, int, time.Duration) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis down")
}

func throttledRouter(limiter ratelimit.Limiter, limit int) *gin.Engine {
	r := gin.New()
	r.POST("/login", LoginThrottle(limiter, "company", limit, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func postLogin(r http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginThrottleBlocksAfterLimit(t *testing.T) {
	r := throttledRouter(ratelimit.NewMemory(ratelimit.MemoryConfig{}), 2)

	for i := 0; i < 2; i++ {
		if w := postLogin(r); w.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, w.Code)
		}
	}
	w := postLogin(r)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestLoginThrottleDisabledAndFailOpen(t *testing.T) {
	r := throttledRouter(ratelimit.NewMemory(ratelimit.MemoryConfig{}), 0)
	for i := 0; i < 5; i++ {
		if w := postLogin(r); w.Code != http.StatusOK {
			t.Fatalf("disabled limiter must allow, got %d", w.Code)
		}
	}

	r = throttledRouter(failingLimiter{}, 1)
	for i := 0; i < 3; i++ {
		if w := postLogin(r); w.Code != http.StatusOK {
			t.Fatalf("failing limiter must allow, got %d", w.Code)
		}
	}
}
