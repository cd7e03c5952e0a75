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

func TestRateLimiter(t *testing.T) {
	t.Run("counts per client up to the limit", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute)

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("10.0.0.1"), "request %d", i+1)
		}
		assert.False(t, limiter.Allow("10.0.0.1"))

		// A different client has its own window.
		assert.True(t, limiter.Allow("10.0.0.2"))
	})

	t.Run("window expiry resets the count", func(t *testing.T) {
		limiter := NewRateLimiter(2, 50*time.Millisecond)

		assert.True(t, limiter.Allow("10.0.0.3"))
		assert.True(t, limiter.Allow("10.0.0.3"))
		assert.False(t, limiter.Allow("10.0.0.3"))

		time.Sleep(60 * time.Millisecond)
		assert.True(t, limiter.Allow("10.0.0.3"))
	})

	t.Run("remaining reflects consumed tokens", func(t *testing.T) {
		limiter := NewRateLimiter(5, time.Minute)

		assert.Equal(t, 5, limiter.Remaining("10.0.0.4"))
		limiter.Allow("10.0.0.4")
		limiter.Allow("10.0.0.4")
		assert.Equal(t, 3, limiter.Remaining("10.0.0.4"))
	})

	t.Run("concurrent callers never exceed the limit", func(t *testing.T) {
		limiter := NewRateLimiter(100, time.Minute)
		var wg sync.WaitGroup
		var mu sync.Mutex
		allowed := 0

		for i := 0; i < 150; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("10.0.0.5") {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}()
		}

		wg.Wait()
		assert.Equal(t, 100, allowed)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	newLimitedRouter := func(limit int) *gin.Engine {
		router := gin.New()
		router.Use(RateLimit(NewRateLimiter(limit, time.Minute)))
		router.GET("/api/v1/contracts", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		return router
	}

	serve := func(router *gin.Engine) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/contracts", nil))
		return w
	}

	t.Run("429 past the limit", func(t *testing.T) {
		router := newLimitedRouter(2)

		assert.Equal(t, http.StatusOK, serve(router).Code)
		assert.Equal(t, http.StatusOK, serve(router).Code)

		w := serve(router)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
	})

	t.Run("limit headers on every response", func(t *testing.T) {
		w := serve(newLimitedRouter(5))
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	})
}

func TestRateLimitByKey(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	router := gin.New()
	router.Use(RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.GetHeader("X-Client-ID")
	}))
	router.GET("/api/v1/contracts", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	serveAs := func(client string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/api/v1/contracts", nil)
		req.Header.Set("X-Client-ID", client)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, serveAs("portal").Code)
	assert.Equal(t, http.StatusTooManyRequests, serveAs("portal").Code)
	assert.Equal(t, http.StatusOK, serveAs("ops").Code)
}
