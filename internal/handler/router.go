package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/qc-report-api/internal/middleware"
)

// Handlers groups the route handlers registered by RegisterRoutes. A nil Workbook
// handler leaves the QC2 view unmounted.
type Handlers struct {
	Admin      *AdminHandler
	Records    *RecordHandler
	Statistics *StatisticsHandler
	Products   *ProductHandler
	Workbook   *WorkbookHandler
	Metrics    *MetricsHandler
}

// RegisterRoutes mounts the API under prefix. Probe endpoints stay at the root.
func RegisterRoutes(r *gin.Engine, prefix string, gate middleware.CallerResolver, h Handlers, audit *zap.Logger) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta(), middleware.Identity(gate))

	api.GET("/admin-check", h.Admin.AdminCheck)

	admin := api.Group("", middleware.RequireAdmin())
	admin.GET("/users", h.Admin.ListUsers)
	admin.POST("/create-user", middleware.Audit(audit, "user.create"), h.Admin.CreateUser)
	admin.PUT("/update-user", middleware.Audit(audit, "user.update"), h.Admin.UpdateUser)
	admin.DELETE("/delete-user", middleware.Audit(audit, "user.delete"), h.Admin.DeleteUser)
	admin.POST("/send-credentials", middleware.Audit(audit, "user.send_credentials"), h.Admin.SendCredentials)

	authed := api.Group("", middleware.RequireAuth())
	// The statistics service answers non-admins with its own 403 message.
	authed.GET("/statistics/suppliers", h.Statistics.Suppliers)
	authed.POST("/records/save", middleware.Audit(audit, "record.create"), h.Records.Save)
	authed.GET("/records", h.Records.List)
	authed.PATCH("/records/update", middleware.Audit(audit, "record.update"), h.Records.Update)
	authed.DELETE("/records", middleware.Audit(audit, "record.delete"), h.Records.Delete)
	authed.GET("/records/export", h.Records.Export)

	authed.GET("/sql-server/product", h.Products.Lookup)
	authed.GET("/sql-server/inspection-records", h.Products.InspectionRecords)
	authed.GET("/sql-server/test", h.Products.Probe)

	if h.Workbook != nil {
		authed.GET("/excel", h.Workbook.List)
	}
}
