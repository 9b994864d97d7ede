package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests move time without sleeping
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func newTestLimiter(limit int, window time.Duration) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(limit, window)
	rl.now = clock.Now
	return rl, clock
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows burst up to limit", func(t *testing.T) {
		rl, _ := newTestLimiter(3, time.Minute)

		for i := 0; i < 3; i++ {
			assert.True(t, rl.Allow("client"), "request %d", i+1)
		}
		assert.False(t, rl.Allow("client"))
		assert.Equal(t, 0, rl.Remaining("client"))
	})

	t.Run("separate buckets per key", func(t *testing.T) {
		rl, _ := newTestLimiter(1, time.Minute)

		assert.True(t, rl.Allow("a"))
		assert.False(t, rl.Allow("a"))
		assert.True(t, rl.Allow("b"))
	})

	t.Run("refills over the window", func(t *testing.T) {
		rl, clock := newTestLimiter(2, time.Minute)

		assert.True(t, rl.Allow("client"))
		assert.True(t, rl.Allow("client"))
		assert.False(t, rl.Allow("client"))

		clock.now = clock.now.Add(30 * time.Second)
		assert.True(t, rl.Allow("client"))
		assert.False(t, rl.Allow("client"))
	})

	t.Run("unknown key has full quota", func(t *testing.T) {
		rl, _ := newTestLimiter(5, time.Minute)
		assert.Equal(t, 5, rl.Remaining("nobody"))
	})

	t.Run("cleanup drops idle clients", func(t *testing.T) {
		rl, clock := newTestLimiter(5, time.Minute)
		rl.Allow("idle")
		clock.now = clock.now.Add(90 * time.Second)
		rl.Allow("active")
		clock.now = clock.now.Add(40 * time.Second)

		assert.Equal(t, 1, rl.Cleanup())
		assert.Equal(t, 5, rl.Remaining("idle"))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(2, time.Minute)
	router := gin.New()
	router.Use(RequestID(), RateLimit(rl))
	router.GET("/test", okHandler)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", decodeError(t, w).Code)
}
