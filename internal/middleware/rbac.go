package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/qc-report-api/pkg/errors"
	"github.com/noah-isme/qc-report-api/pkg/response"
)

// RequireAuth rejects unauthenticated callers with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CallerFromContext(c).Authenticated() {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects unauthenticated callers with 401 and non-admins with 403.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CallerFromContext(c)
		if !caller.Authenticated() {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !caller.IsAdmin {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "Forbidden: Admin access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}
