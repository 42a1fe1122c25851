package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Khalil2008k/guild-contracts/config"
	"github.com/Khalil2008k/guild-contracts/pkg/logger"
	"github.com/gin-gonic/gin"
)

// RateLimiter counts requests per client over a fixed window.
type RateLimiter struct {
	mu          sync.Mutex
	counts      map[string]int
	windowStart time.Time
	limit       int
	window      time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		counts:      make(map[string]int),
		windowStart: time.Now(),
		limit:       limit,
		window:      window,
	}
}

// Allow records one request for the client and reports whether it still fits
// the current window. Counts reset when the window rolls over.
func (l *RateLimiter) Allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.windowStart) > l.window {
		l.counts = make(map[string]int)
		l.windowStart = time.Now()
	}
	if l.counts[client] >= l.limit {
		return false
	}
	l.counts[client]++
	return true
}

// RateLimit limits requests per client IP using the configured server bounds.
func RateLimit(cfg *config.ServerConfig) gin.HandlerFunc {
	limiter := NewRateLimiter(cfg.RateLimit, time.Duration(cfg.RateLimitWindowSeconds)*time.Second)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if !limiter.Allow(clientIP) {
			logger.Warn(c.Request.Context(), "rate limit exceeded",
				"client_ip", clientIP,
				"limit", cfg.RateLimit,
			)

			c.Header("Retry-After", strconv.Itoa(cfg.RateLimitWindowSeconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
