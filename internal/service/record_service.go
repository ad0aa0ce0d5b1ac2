package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/qc-report-api/internal/dto"
	"github.com/noah-isme/qc-report-api/internal/models"
	appErrors "github.com/noah-isme/qc-report-api/pkg/errors"
)

// Messages returned to the inspection form.
const (
	MessageRecordSaved   = "检查记录已成功保存！"
	MessageRecordUpdated = "检查记录已成功更新！"
	MessageRecordDeleted = "检查记录已成功删除！"
)

type recordRepository interface {
	Create(ctx context.Context, rec *models.InspectionRecord) (*models.InspectionRecord, error)
	List(ctx context.Context, filter models.RecordFilter) ([]models.InspectionRecord, error)
	Update(ctx context.Context, rec *models.InspectionRecord) (*models.InspectionRecord, error)
	Delete(ctx context.Context, id int64, ownerID string) (int64, error)
}

// RecordService implements inspection record CRUD with owner scoping.
type RecordService struct {
	repo      recordRepository
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewRecordService constructs the service.
func NewRecordService(repo recordRepository, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *RecordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordService{repo: repo, validator: newValidator(validate), metrics: metrics, logger: logger}
}

// Create stores a new record owned by the caller.
func (s *RecordService) Create(ctx context.Context, caller models.Caller, req dto.SaveRecordRequest) (*models.InspectionRecord, error) {
	if !caller.Authenticated() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "You must be logged in to save records")
	}

	rec, err := s.buildRecord(req)
	if err != nil {
		return nil, err
	}
	rec.UserID = caller.ID()

	start := time.Now()
	stored, err := s.repo.Create(ctx, rec)
	s.metrics.ObserveDBQuery("qc_records_create", time.Since(start))
	if err != nil {
		return nil, appErrors.Upstream(err, "Failed to save QC form data to database")
	}
	s.metrics.RecordMutation(RecordActionCreate)

	s.logger.Info("qc record saved", zap.Int64("record_id", stored.ID), zap.String("user_id", stored.UserID))
	return stored, nil
}

// List returns every record for administrators and the caller's own records otherwise,
// newest first. limit applies only when positive.
func (s *RecordService) List(ctx context.Context, caller models.Caller, limit int) ([]models.InspectionRecord, error) {
	if !caller.Authenticated() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "You must be logged in to view records")
	}

	filter := models.RecordFilter{Limit: limit}
	if !caller.IsAdmin {
		filter.OwnerID = caller.ID()
	}

	start := time.Now()
	records, err := s.repo.List(ctx, filter)
	s.metrics.ObserveDBQuery("qc_records_list", time.Since(start))
	if err != nil {
		return nil, appErrors.Upstream(err, "Failed to fetch records")
	}
	return records, nil
}

// ListScopeMessage describes which records a listing covers.
func ListScopeMessage(caller models.Caller, count int) string {
	if caller.IsAdmin {
		return fmt.Sprintf("Fetched %d records (all users)", count)
	}
	return fmt.Sprintf("Fetched %d records for your account", count)
}

// Update replaces the descriptive fields of an existing record. The id and owner never change.
func (s *RecordService) Update(ctx context.Context, caller models.Caller, req dto.UpdateRecordRequest) (*models.InspectionRecord, error) {
	if !caller.Authenticated() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "You must be logged in to update records")
	}
	if req.ID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Record ID is required")
	}

	rec, err := s.buildRecord(req.SaveRecordRequest)
	if err != nil {
		return nil, err
	}
	rec.ID = int64(req.ID)

	start := time.Now()
	stored, err := s.repo.Update(ctx, rec)
	s.metrics.ObserveDBQuery("qc_records_update", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Record not found")
		}
		return nil, appErrors.Upstream(err, "Failed to update record")
	}
	s.metrics.RecordMutation(RecordActionUpdate)
	return stored, nil
}

// Delete removes a record. Non-administrators can only delete their own records; a
// delete that matches nothing still succeeds.
func (s *RecordService) Delete(ctx context.Context, caller models.Caller, id int64) error {
	if !caller.Authenticated() {
		return appErrors.Clone(appErrors.ErrUnauthorized, "You must be logged in to delete records")
	}
	if id <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "Record ID is required")
	}

	owner := ""
	if !caller.IsAdmin {
		owner = caller.ID()
	}

	start := time.Now()
	affected, err := s.repo.Delete(ctx, id, owner)
	s.metrics.ObserveDBQuery("qc_records_delete", time.Since(start))
	if err != nil {
		return appErrors.Upstream(err, "Failed to delete record")
	}
	s.metrics.RecordMutation(RecordActionDelete)
	if affected == 0 {
		s.logger.Info("qc record delete matched no rows", zap.Int64("record_id", id), zap.String("user_id", caller.ID()))
	}
	return nil
}

func (s *RecordService) buildRecord(req dto.SaveRecordRequest) (*models.InspectionRecord, error) {
	if req.Partscode == "" || req.Supplier == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "partscode and supplier are required fields")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid judgement or strictness adjustment")
	}

	var problems []string
	count := func(field string, raw dto.FormString) models.Count {
		c, err := models.ParseCount(string(raw))
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", field, err))
		}
		return c
	}
	date := func(field string, raw dto.FormString) models.CalendarDate {
		d, err := models.ParseCalendarDate(string(raw))
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", field, err))
		}
		return d
	}

	rec := &models.InspectionRecord{
		Partscode:               string(req.Partscode),
		Supplier:                string(req.Supplier),
		PONumber:                models.StringOrNil(string(req.PONumber)),
		DeliveryDate:            date("deliveryDate", req.DeliveryDate),
		InspectionDate:          date("inspectionDate", req.InspectionDate),
		DeliveryQuantity:        count("deliveryQuantity", req.DeliveryQuantity),
		ReturnQuantity:          count("returnQuantity", req.ReturnQuantity),
		LotNumber:               models.StringOrNil(string(req.LotNumber)),
		LotQuantity:             count("lotQuantity", req.LotQuantity),
		Inspector:               models.StringOrNil(string(req.Inspector)),
		SampleSize:              count("sampleSize", req.SampleSize),
		DefectiveCount:          count("defectiveCount", req.DefectiveCount),
		Judgement:               models.StringOrNil(string(req.Judgement)),
		StrictnessAdjustment:    models.StringOrNil(string(req.StrictnessAdjustment)),
		SelectionA:              req.Selections.A,
		SelectionB:              req.Selections.B,
		SelectionC:              req.Selections.C,
		SelectionD:              req.Selections.D,
		Destination:             models.StringOrNil(string(req.Destination)),
		GroupLeaderConfirmation: models.StringOrNil(string(req.GroupLeaderConfirmation)),
		QualitySummary:          models.StringOrNil(string(req.QualitySummary)),
		Remarks:                 models.StringOrNil(string(req.Remarks)),
	}
	if len(problems) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, strings.Join(problems, "; "))
	}
	return rec, nil
}
