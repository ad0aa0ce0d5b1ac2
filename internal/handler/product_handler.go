package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/qc-report-api/internal/dto"
	"github.com/noah-isme/qc-report-api/internal/service"
	appErrors "github.com/noah-isme/qc-report-api/pkg/errors"
	"github.com/noah-isme/qc-report-api/pkg/response"
)

type productService interface {
	Lookup(ctx context.Context, query dto.ProductLookupQuery) (*dto.ProductLookupResponse, error)
	InspectionRecords(ctx context.Context, query dto.InspectionRecordsQuery) ([]map[string]interface{}, error)
	Probe(ctx context.Context) dto.SQLServerProbeResponse
}

// ProductHandler exposes the warehouse SQL Server passthrough endpoints.
type ProductHandler struct {
	service productService
}

// NewProductHandler builds a new handler.
func NewProductHandler(service productService) *ProductHandler {
	return &ProductHandler{service: service}
}

// Lookup godoc
// @Summary Find delivery lines by barcode
// @Tags Warehouse
// @Produce json
// @Param barcode query string true "Barcode"
// @Param mock query bool false "Return a canned row"
// @Success 200 {object} response.Envelope
// @Router /sql-server/product [get]
func (h *ProductHandler) Lookup(c *gin.Context) {
	var query dto.ProductLookupQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	result, err := h.service.Lookup(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// InspectionRecords godoc
// @Summary List warehouse inspection reports
// @Tags Warehouse
// @Produce json
// @Param partscode query string false "Part code"
// @Param supplier query string false "Supplier"
// @Param date query string false "Inspection date YYYY-MM-DD"
// @Param limit query int false "Maximum rows (default 100)"
// @Success 200 {object} response.Envelope
// @Router /sql-server/inspection-records [get]
func (h *ProductHandler) InspectionRecords(c *gin.Context) {
	var query dto.InspectionRecordsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	records, err := h.service.InspectionRecords(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, records, len(records), messageMeta(c, service.InspectionRecordsMessage(len(records))))
}

// Probe godoc
// @Summary Check warehouse SQL Server connectivity
// @Tags Warehouse
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /sql-server/test [get]
func (h *ProductHandler) Probe(c *gin.Context) {
	result := h.service.Probe(c.Request.Context())
	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	response.JSON(c, status, result)
}
