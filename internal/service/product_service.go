package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/qc-report-api/internal/dto"
	"github.com/noah-isme/qc-report-api/internal/models"
	appErrors "github.com/noah-isme/qc-report-api/pkg/errors"
)

const (
	mockSupplier = "Test Supplier"
	mockPO       = "PO12345"
	mockQty      = 100
)

type productRepository interface {
	LookupByBarcode(ctx context.Context, barcode string) ([]models.ShipmentProduct, error)
	InspectionRecords(ctx context.Context, filter models.InspectionRecordFilter) ([]map[string]interface{}, error)
	ServerInfo(ctx context.Context) (*models.ServerInfo, error)
}

// ProductService forwards lookups to the warehouse SQL Server.
type ProductService struct {
	repo      productRepository
	target    dto.SQLServerTarget
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewProductService constructs the service. target is echoed by Probe.
func NewProductService(repo productRepository, target dto.SQLServerTarget, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		repo:      repo,
		target:    target,
		validator: newValidator(validate),
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Lookup returns the delivery lines for a barcode. With mock set a canned line is returned
// without touching the database.
func (s *ProductService) Lookup(ctx context.Context, query dto.ProductLookupQuery) (*dto.ProductLookupResponse, error) {
	barcode := strings.TrimSpace(query.Barcode)
	if barcode == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Barcode is required")
	}

	var products []models.ShipmentProduct
	if query.Mock {
		today := s.now().UTC()
		products = []models.ShipmentProduct{{
			Supplier:  mockSupplier,
			PO:        mockPO,
			Partscode: barcode,
			Date:      models.NewCalendarDate(today.Year(), today.Month(), today.Day()),
			Qty:       mockQty,
		}}
	} else {
		start := time.Now()
		found, err := s.repo.LookupByBarcode(ctx, barcode)
		s.metrics.ObserveDBQuery("sqlserver_barcode_lookup", time.Since(start))
		if err != nil {
			s.logger.Error("barcode lookup failed", zap.String("barcode", barcode), zap.Error(err))
			return nil, appErrors.Upstream(err, "Failed to fetch data from SQL Server")
		}
		products = found
	}

	return &dto.ProductLookupResponse{
		Recordsets: [][]models.ShipmentProduct{products},
		Recordset:  products,
	}, nil
}

// InspectionRecords lists warehouse inspection reports matching the optional filters.
func (s *ProductService) InspectionRecords(ctx context.Context, query dto.InspectionRecordsQuery) ([]map[string]interface{}, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "limit must be between 1 and 1000")
	}
	date, err := models.ParseCalendarDate(query.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	filter := models.InspectionRecordFilter{
		Partscode: strings.TrimSpace(query.Partscode),
		Supplier:  strings.TrimSpace(query.Supplier),
		Date:      date,
		Limit:     query.Limit,
	}

	start := time.Now()
	records, err := s.repo.InspectionRecords(ctx, filter)
	s.metrics.ObserveDBQuery("sqlserver_inspection_records", time.Since(start))
	if err != nil {
		s.logger.Error("inspection record query failed", zap.Error(err))
		return nil, appErrors.Upstream(err, "Failed to fetch inspection records")
	}
	return records, nil
}

// InspectionRecordsMessage summarises an inspection record listing.
func InspectionRecordsMessage(count int) string {
	return fmt.Sprintf("Fetched %d inspection records", count)
}

// Probe checks connectivity. A failed connection is reported in the response, not as an error.
func (s *ProductService) Probe(ctx context.Context) dto.SQLServerProbeResponse {
	info, err := s.repo.ServerInfo(ctx)
	if err != nil {
		s.logger.Warn("sql server probe failed", zap.String("server", s.target.Server), zap.Error(err))
		return dto.SQLServerProbeResponse{
			Message: "Failed to connect to SQL Server. Please check your connection settings.",
			Error:   err.Error(),
			Config:  s.target,
		}
	}

	resp := dto.SQLServerProbeResponse{
		Success:  true,
		Message:  "Connected to SQL Server successfully",
		Version:  info.Version,
		Database: info.CurrentDatabase,
		Config:   s.target,
	}
	if resp.Version == "" {
		resp.Version = "Unknown"
	}
	if resp.Database == "" {
		resp.Database = "Unknown"
	}
	return resp
}
