package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/qc-report-api/internal/dto"
	"github.com/noah-isme/qc-report-api/internal/models"
	"github.com/noah-isme/qc-report-api/internal/service"
	appErrors "github.com/noah-isme/qc-report-api/pkg/errors"
	"github.com/noah-isme/qc-report-api/pkg/response"
)

type recordService interface {
	Create(ctx context.Context, caller models.Caller, req dto.SaveRecordRequest) (*models.InspectionRecord, error)
	List(ctx context.Context, caller models.Caller, limit int) ([]models.InspectionRecord, error)
	Update(ctx context.Context, caller models.Caller, req dto.UpdateRecordRequest) (*models.InspectionRecord, error)
	Delete(ctx context.Context, caller models.Caller, id int64) error
}

type recordExporter interface {
	Records(ctx context.Context, caller models.Caller, query dto.ExportRecordsQuery) (*service.ExportFile, error)
}

// RecordHandler exposes the inspection record endpoints.
type RecordHandler struct {
	records recordService
	exports recordExporter
}

// NewRecordHandler builds a new handler.
func NewRecordHandler(records recordService, exports recordExporter) *RecordHandler {
	return &RecordHandler{records: records, exports: exports}
}

// Save godoc
// @Summary Save an inspection record
// @Tags Records
// @Accept json
// @Produce json
// @Param payload body dto.SaveRecordRequest true "Inspection form"
// @Success 200 {object} response.Envelope
// @Router /records/save [post]
func (h *RecordHandler) Save(c *gin.Context) {
	var req dto.SaveRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid inspection form payload"))
		return
	}

	rec, err := h.records.Create(c.Request.Context(), callerFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec, timestamped(messageMeta(c, service.MessageRecordSaved)))
}

// List godoc
// @Summary List inspection records
// @Tags Records
// @Produce json
// @Param limit query int false "Maximum records"
// @Success 200 {object} response.Envelope
// @Router /records [get]
func (h *RecordHandler) List(c *gin.Context) {
	var query dto.ListRecordsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	caller := callerFromContext(c)
	records, err := h.records.List(c.Request.Context(), caller, query.PositiveLimit())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, records, len(records), messageMeta(c, service.ListScopeMessage(caller, len(records))))
}

// Update godoc
// @Summary Replace the fields of an inspection record
// @Tags Records
// @Accept json
// @Produce json
// @Param payload body dto.UpdateRecordRequest true "Inspection form with id"
// @Success 200 {object} response.Envelope
// @Router /records/update [patch]
func (h *RecordHandler) Update(c *gin.Context) {
	var req dto.UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid inspection form payload"))
		return
	}

	rec, err := h.records.Update(c.Request.Context(), callerFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec, timestamped(messageMeta(c, service.MessageRecordUpdated)))
}

// Delete godoc
// @Summary Delete an inspection record
// @Tags Records
// @Produce json
// @Param id query int false "Record id (or JSON body id)"
// @Success 200 {object} response.Envelope
// @Router /records [delete]
func (h *RecordHandler) Delete(c *gin.Context) {
	var body dto.DeleteRecordRequest
	bindOptionalJSON(c, &body)

	id := int64(body.ID)
	if raw := strings.TrimSpace(c.Query("id")); raw != "" {
		parsed, ok := parseRecordID(raw)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "Record ID must be a number"))
			return
		}
		id = parsed
	}

	if err := h.records.Delete(c.Request.Context(), callerFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": true}, timestamped(messageMeta(c, service.MessageRecordDeleted)))
}

// Export godoc
// @Summary Download inspection records as CSV or PDF
// @Tags Records
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Param limit query int false "Maximum records"
// @Success 200 {file} file
// @Router /records/export [get]
func (h *RecordHandler) Export(c *gin.Context) {
	var query dto.ExportRecordsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	file, err := h.exports.Records(c.Request.Context(), callerFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func timestamped(meta map[string]interface{}) map[string]interface{} {
	meta["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	return meta
}
