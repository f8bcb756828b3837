package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) *RateLimiter {
	t.Helper()
	limiter := NewRateLimiter(limit, window)
	t.Cleanup(limiter.Stop)
	return limiter
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows requests within limit", func(t *testing.T) {
		limiter := newTestLimiter(t, 5, time.Minute)

		for i := 0; i < 5; i++ {
			assert.True(t, limiter.Allow("client1"), "request %d should be allowed", i+1)
		}
		assert.False(t, limiter.Allow("client1"))
	})

	t.Run("separate limits per client", func(t *testing.T) {
		limiter := newTestLimiter(t, 2, time.Minute)

		assert.True(t, limiter.Allow("clientA"))
		assert.True(t, limiter.Allow("clientA"))
		assert.False(t, limiter.Allow("clientA"))
		assert.True(t, limiter.Allow("clientB"))
	})

	t.Run("resets after window", func(t *testing.T) {
		limiter := newTestLimiter(t, 1, time.Minute)
		now := time.Now()
		limiter.now = func() time.Time { return now }

		assert.True(t, limiter.Allow("client3"))
		assert.False(t, limiter.Allow("client3"))

		now = now.Add(time.Minute)
		assert.True(t, limiter.Allow("client3"))
	})

	t.Run("remaining", func(t *testing.T) {
		limiter := newTestLimiter(t, 3, time.Minute)

		assert.Equal(t, 3, limiter.Remaining("c"))
		limiter.Allow("c")
		assert.Equal(t, 2, limiter.Remaining("c"))
	})

	t.Run("concurrent access", func(t *testing.T) {
		limiter := newTestLimiter(t, 50, time.Minute)

		var wg sync.WaitGroup
		var mu sync.Mutex
		allowed := 0
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("shared") {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 50, allowed)
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute)
		limiter.Stop()
		assert.NotPanics(t, limiter.Stop)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := newTestLimiter(t, 2, time.Minute)

	router := gin.New()
	router.Use(RateLimit(limiter))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

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
	assert.Contains(t, w.Body.String(), "ERR_RATE_LIMITED")
}
