package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/qc-report-api/internal/dto"
	"github.com/noah-isme/qc-report-api/internal/models"
	appErrors "github.com/noah-isme/qc-report-api/pkg/errors"
	"github.com/noah-isme/qc-report-api/pkg/export"
)

// recordExportHeaders is the column order of exported records.
var recordExportHeaders = []string{
	"id", "partscode", "supplier", "po_number", "delivery_date", "inspection_date",
	"delivery_quantity", "return_quantity", "lot_number", "lot_quantity", "inspector",
	"sample_size", "defective_count", "judgement", "strictness_adjustment",
	"selection_a", "selection_b", "selection_c", "selection_d",
	"destination", "group_leader_confirmation", "quality_summary", "remarks", "created_at",
}

type recordLister interface {
	List(ctx context.Context, caller models.Caller, limit int) ([]models.InspectionRecord, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered export ready to be written to the response.
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
	Rows        int
}

// ExportService renders the caller's visible records as CSV or PDF.
type ExportService struct {
	records   recordLister
	csv       csvRenderer
	pdf       pdfRenderer
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(records recordLister, csv csvRenderer, pdf pdfRenderer, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter(true)
	}
	if pdf == nil {
		pdf = export.NewPDFExporter("")
	}
	return &ExportService{
		records:   records,
		csv:       csv,
		pdf:       pdf,
		validator: newValidator(validate),
		logger:    logger,
		now:       time.Now,
	}
}

// Records exports the records the caller may list. Format defaults to CSV.
func (s *ExportService) Records(ctx context.Context, caller models.Caller, query dto.ExportRecordsQuery) (*ExportFile, error) {
	query.Format = strings.ToLower(strings.TrimSpace(query.Format))
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	format := query.Format
	if format == "" {
		format = dto.ExportFormatCSV
	}

	records, err := s.records.List(ctx, caller, query.Limit)
	if err != nil {
		return nil, err
	}
	dataset := buildRecordDataset(records)
	stamp := s.now().UTC().Format("20060102-150405")

	file := &ExportFile{Rows: len(records)}
	switch format {
	case dto.ExportFormatPDF:
		file.Data, err = s.pdf.Render(dataset, "QC Inspection Records")
		file.ContentType = "application/pdf"
	default:
		file.Data, err = s.csv.Render(dataset)
		file.ContentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to render export")
	}
	file.FileName = fmt.Sprintf("qc-records-%s.%s", stamp, format)

	s.logger.Info("records exported",
		zap.String("user_id", caller.ID()),
		zap.String("format", format),
		zap.Int("rows", file.Rows))
	return file, nil
}

func buildRecordDataset(records []models.InspectionRecord) export.Dataset {
	rows := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, map[string]string{
			"id":                        strconv.FormatInt(rec.ID, 10),
			"partscode":                 rec.Partscode,
			"supplier":                  rec.Supplier,
			"po_number":                 models.Deref(rec.PONumber),
			"delivery_date":             rec.DeliveryDate.String(),
			"inspection_date":           rec.InspectionDate.String(),
			"delivery_quantity":         rec.DeliveryQuantity.String(),
			"return_quantity":           rec.ReturnQuantity.String(),
			"lot_number":                models.Deref(rec.LotNumber),
			"lot_quantity":              rec.LotQuantity.String(),
			"inspector":                 models.Deref(rec.Inspector),
			"sample_size":               rec.SampleSize.String(),
			"defective_count":           rec.DefectiveCount.String(),
			"judgement":                 models.Deref(rec.Judgement),
			"strictness_adjustment":     models.Deref(rec.StrictnessAdjustment),
			"selection_a":               checkmark(rec.SelectionA),
			"selection_b":               checkmark(rec.SelectionB),
			"selection_c":               checkmark(rec.SelectionC),
			"selection_d":               checkmark(rec.SelectionD),
			"destination":               models.Deref(rec.Destination),
			"group_leader_confirmation": models.Deref(rec.GroupLeaderConfirmation),
			"quality_summary":           models.Deref(rec.QualitySummary),
			"remarks":                   models.Deref(rec.Remarks),
			"created_at":                rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return export.Dataset{Headers: recordExportHeaders, Rows: rows}
}

func checkmark(v bool) string {
	if v {
		return "Y"
	}
	return ""
}
