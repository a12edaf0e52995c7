package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bucketLimiter is an in-process token bucket without refill.
type bucketLimiter struct {
	mu       sync.Mutex
	capacity int
	used     map[string]int
	keys     []string
	err      error
}

func newBucketLimiter(capacity int) *bucketLimiter {
	return &bucketLimiter{capacity: capacity, used: map[string]int{}}
}

func (l *bucketLimiter) Capacity() int { return l.capacity }

func (l *bucketLimiter) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	if l.err != nil {
		return Result{}, l.err
	}
	if l.used[key] >= l.capacity {
		return Result{Allowed: false, RetryAfter: 1500 * time.Millisecond}, nil
	}
	l.used[key]++
	return Result{Allowed: true, Remaining: int64(l.capacity - l.used[key])}, nil
}

func setupRouter(l Limiter, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/bookings/:id/cancel", func(c *gin.Context) {
		if userID != "" {
			c.Set("userID", userID)
		}
		c.Next()
	}, Middleware(l, "rl"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func post(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, path, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddleware(t *testing.T) {
	t.Run("Blocks After Capacity", func(t *testing.T) {
		l := newBucketLimiter(2)
		r := setupRouter(l, "user-1")

		w := post(r, "/bookings/a/cancel")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

		// Different path params share the route bucket.
		w = post(r, "/bookings/b/cancel")
		assert.Equal(t, http.StatusOK, w.Code)

		w = post(r, "/bookings/c/cancel")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "2", w.Header().Get("Retry-After"))

		require.NotEmpty(t, l.keys)
		assert.Equal(t, "rl:user:user-1:POST:/bookings/:id/cancel", l.keys[0])
	})

	t.Run("Anonymous Keyed By IP", func(t *testing.T) {
		l := newBucketLimiter(1)
		r := setupRouter(l, "")

		post(r, "/bookings/a/cancel")
		require.Len(t, l.keys, 1)
		assert.Equal(t, "rl:ip:10.0.0.1:POST:/bookings/:id/cancel", l.keys[0])
	})

	t.Run("Fails Open On Limiter Error", func(t *testing.T) {
		l := newBucketLimiter(1)
		l.err = errors.New("redis: connection refused")
		r := setupRouter(l, "user-1")

		for n := 0; n < 3; n++ {
			w := post(r, "/bookings/a/cancel")
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("Nil Limiter Disables", func(t *testing.T) {
		r := setupRouter(nil, "user-1")
		for n := 0; n < 3; n++ {
			w := post(r, "/bookings/a/cancel")
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
		}
	})
}

func TestParseResult(t *testing.T) {
	res, err := parseResult([]any{int64(0), int64(0), int64(2500)})
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 2500*time.Millisecond, res.RetryAfter)

	res, err = parseResult([]any{int64(1), "4", int64(0)})
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(4), res.Remaining)

	_, err = parseResult([]any{int64(1)})
	assert.Error(t, err)
}

func TestRedisLimiterTTL(t *testing.T) {
	l := NewRedisLimiter(nil, 0, 3*time.Second)
	assert.Equal(t, 1, l.Capacity())
	assert.Equal(t, int64(3), l.ttl())

	l = NewRedisLimiter(nil, 20, 100*time.Millisecond)
	assert.Equal(t, int64(2), l.ttl())
}
