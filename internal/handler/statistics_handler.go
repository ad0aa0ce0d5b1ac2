package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/qc-report-api/internal/dto"
	"github.com/noah-isme/qc-report-api/internal/models"
	appErrors "github.com/noah-isme/qc-report-api/pkg/errors"
	"github.com/noah-isme/qc-report-api/pkg/response"
)

type statisticsService interface {
	Suppliers(ctx context.Context, caller models.Caller, search string) ([]models.SupplierStatistic, error)
}

// StatisticsHandler exposes supplier quality statistics.
type StatisticsHandler struct {
	service statisticsService
}

// NewStatisticsHandler builds a new handler.
func NewStatisticsHandler(service statisticsService) *StatisticsHandler {
	return &StatisticsHandler{service: service}
}

// Suppliers godoc
// @Summary Per-supplier pass rates and defect averages
// @Tags Statistics
// @Produce json
// @Param search query string false "Case-insensitive supplier substring"
// @Success 200 {object} response.Envelope
// @Router /statistics/suppliers [get]
func (h *StatisticsHandler) Suppliers(c *gin.Context) {
	var query dto.StatisticsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	stats, err := h.service.Suppliers(c.Request.Context(), callerFromContext(c), query.Search)
	if err != nil {
		response.Error(c, err)
		return
	}
	message := fmt.Sprintf("Fetched statistics for %d supplier(s)", len(stats))
	response.List(c, stats, len(stats), messageMeta(c, message))
}
