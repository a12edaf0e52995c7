package ratelimit

import (
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
)

// Middleware limits requests per user and route. A nil limiter disables it.
// Redis errors let the request through.
func Middleware(l Limiter, prefix string) gin.HandlerFunc {
	if l == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := buildKey(prefix, c)

		res, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			log.Printf("warning: rate limit check failed for %s: %v", key, err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.Capacity()))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))

		if !res.Allowed {
			secs := int(math.Ceil(res.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": secs,
			})
			return
		}

		c.Next()
	}
}

// buildKey falls back to the client IP for unauthenticated requests.
func buildKey(prefix string, c *gin.Context) string {
	who := "user:" + auth.GetUserID(c)
	if auth.GetUserID(c) == "" {
		who = "ip:" + c.ClientIP()
	}
	return strings.Join([]string{prefix, who, c.Request.Method, c.FullPath()}, ":")
}
