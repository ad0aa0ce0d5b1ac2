package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/qc-report-api/internal/middleware"
	"github.com/noah-isme/qc-report-api/internal/models"
)

func callerFromContext(c *gin.Context) models.Caller {
	return middleware.CallerFromContext(c)
}

func messageMeta(c *gin.Context, message string) map[string]interface{} {
	middleware.SetMeta(c, "message", message)
	return middleware.Meta(c)
}

// bodyOrQuery returns the query value for key, falling back to the JSON body value.
func bodyOrQuery(c *gin.Context, key, fromBody string) string {
	if value := strings.TrimSpace(c.Query(key)); value != "" {
		return value
	}
	return strings.TrimSpace(fromBody)
}

// bindOptionalJSON decodes a body the route also accepts as query parameters. A parse
// failure is attached to the request log and the caller falls back to the query.
func bindOptionalJSON(c *gin.Context, dest interface{}) {
	if c.Request.ContentLength == 0 {
		return
	}
	if err := c.ShouldBindJSON(dest); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
	}
}

func parseRecordID(raw string) (int64, bool) {
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
