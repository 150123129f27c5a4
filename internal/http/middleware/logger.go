package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"financeapp-server/internal/auth"
)

// Logger emits one line per request after the handler chain finishes. 5xx
// responses log at error level so they stand out without a separate alert
// path; authenticated requests carry the caller's user id.
func Logger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"request_id", c.GetString(RequestIDHeader),
			"ip", c.ClientIP(),
		}
		if claims, ok := auth.Current(c); ok {
			attrs = append(attrs, "user_id", claims.UserID)
		}

		if c.Writer.Status() >= 500 {
			log.Error("request failed", attrs...)
			return
		}
		log.Info("request completed", attrs...)
	}
}
