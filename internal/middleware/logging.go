package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// LogAPI emits one structured log line per REST request.
func LogAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"clientIP", c.ClientIP(),
			"latency", time.Since(start),
		)
	}
}
