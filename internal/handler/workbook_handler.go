package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/qc-report-api/internal/models"
	"github.com/noah-isme/qc-report-api/pkg/response"
)

type workbookService interface {
	Load(ctx context.Context) ([]models.Workbook, error)
}

// WorkbookHandler serves the QC2 spreadsheet view.
type WorkbookHandler struct {
	service workbookService
}

// NewWorkbookHandler builds a new handler.
func NewWorkbookHandler(service workbookService) *WorkbookHandler {
	return &WorkbookHandler{service: service}
}

// List godoc
// @Summary Parsed spreadsheets from the QC2 directory
// @Tags QC2
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /excel [get]
func (h *WorkbookHandler) List(c *gin.Context) {
	books, err := h.service.Load(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, books, len(books))
}
