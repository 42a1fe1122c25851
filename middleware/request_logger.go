package middleware

import (
	"time"

	"github.com/Khalil2008k/guild-contracts/pkg/logger"
	"github.com/gin-gonic/gin"
)

// RequestLogger writes one access log line per request through the service
// logger, so completed requests carry the request id and the authenticated
// user identity alongside the HTTP fields.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if query := c.Request.URL.RawQuery; query != "" {
			attrs = append(attrs, "query", query)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			logger.Error(c.Request.Context(), "request completed", attrs...)
		case status >= 400:
			logger.Warn(c.Request.Context(), "request completed", attrs...)
		default:
			logger.Info(c.Request.Context(), "request completed", attrs...)
		}
	}
}
