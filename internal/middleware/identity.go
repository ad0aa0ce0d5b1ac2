package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/qc-report-api/internal/models"
	"github.com/noah-isme/qc-report-api/pkg/logger"
)

// ContextCallerKey is the gin context key storing the resolved models.Caller.
const ContextCallerKey = "caller"

// SessionCookie is the cookie the web client stores its access token in.
const SessionCookie = "sb-access-token"

// CallerResolver resolves a session token to a caller.
type CallerResolver interface {
	Resolve(ctx context.Context, token string) models.Caller
}

// Identity resolves the caller for every request. It never blocks: requests without a
// valid session continue as unauthenticated.
func Identity(gate CallerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := models.Caller{}
		if token := sessionToken(c); token != "" {
			caller = gate.Resolve(c.Request.Context(), token)
		}
		c.Set(ContextCallerKey, caller)
		if caller.Authenticated() {
			c.Set(logger.CallerIDKey, caller.ID())
		}
		c.Next()
	}
}

// CallerFromContext returns the caller attached by Identity, or the unauthenticated caller.
func CallerFromContext(c *gin.Context) models.Caller {
	value, exists := c.Get(ContextCallerKey)
	if !exists {
		return models.Caller{}
	}
	caller, ok := value.(models.Caller)
	if !ok {
		return models.Caller{}
	}
	return caller
}

func sessionToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}
