package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/qc-report-api/pkg/middleware/requestid"
)

// Audit writes an audit line for every successful request to a mutating route.
func Audit(l *zap.Logger, action string) gin.HandlerFunc {
	if l == nil {
		l = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		caller := CallerFromContext(c)
		l.Info("audit",
			zap.String("action", action),
			zap.String("user_id", caller.ID()),
			zap.String("email", caller.Email()),
			zap.Bool("admin", caller.IsAdmin),
			zap.String("request_id", requestid.FromContext(c.Request.Context())),
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.GetHeader("User-Agent")))
	}
}
