package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/qc-report-api/internal/models"
	appErrors "github.com/noah-isme/qc-report-api/pkg/errors"
)

// TopSuppliers is the number of suppliers returned when no search term is given.
const TopSuppliers = 5

type recordSummaryReader interface {
	Summaries(ctx context.Context) ([]models.RecordSummary, error)
}

// StatisticsService computes per-supplier inspection statistics on demand.
type StatisticsService struct {
	repo    recordSummaryReader
	metrics *MetricsService
	logger  *zap.Logger
}

// NewStatisticsService constructs the service.
func NewStatisticsService(repo recordSummaryReader, metrics *MetricsService, logger *zap.Logger) *StatisticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{repo: repo, metrics: metrics, logger: logger}
}

// Suppliers returns supplier statistics, restricted to administrators.
func (s *StatisticsService) Suppliers(ctx context.Context, caller models.Caller, search string) ([]models.SupplierStatistic, error) {
	if !caller.Authenticated() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "You must be logged in to view statistics")
	}
	if !caller.IsAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Only admins can view statistics")
	}

	start := time.Now()
	summaries, err := s.repo.Summaries(ctx)
	s.metrics.ObserveDBQuery("qc_records_summaries", time.Since(start))
	if err != nil {
		return nil, appErrors.Upstream(err, "Failed to fetch records for statistics")
	}

	return AggregateSuppliers(summaries, search), nil
}

// IsPassJudgement reports whether a judgement counts as a pass. Anything else, including
// a missing judgement, is a fail.
func IsPassJudgement(judgement *string) bool {
	if judgement == nil || *judgement == "" {
		return false
	}
	j := *judgement
	if j == models.JudgementPass || j == "✓" {
		return true
	}
	lower := strings.ToLower(j)
	return lower == "pass" || lower == "approved"
}

type supplierBucket struct {
	stat         models.SupplierStatistic
	defectiveSum int64
	defectiveN   int64
}

// AggregateSuppliers groups records by supplier and computes pass rates, average defective
// counts and the latest record. Results are ordered by latest record, newest first. With
// an empty search only the first TopSuppliers entries are returned; otherwise every
// supplier whose lower-cased name contains the lower-cased, trimmed search term.
func AggregateSuppliers(records []models.RecordSummary, search string) []models.SupplierStatistic {
	search = strings.ToLower(strings.TrimSpace(search))

	buckets := make(map[string]*supplierBucket)
	order := make([]string, 0)

	for _, rec := range records {
		supplier := models.Deref(rec.Supplier)
		if supplier == "" {
			supplier = models.UnknownSupplier
		}

		bucket, ok := buckets[supplier]
		if !ok {
			bucket = &supplierBucket{stat: models.SupplierStatistic{
				Supplier:         supplier,
				LatestRecordID:   rec.ID,
				LatestRecordDate: rec.CreatedAt,
			}}
			buckets[supplier] = bucket
			order = append(order, supplier)
		} else if rec.CreatedAt.After(bucket.stat.LatestRecordDate) {
			bucket.stat.LatestRecordDate = rec.CreatedAt
			bucket.stat.LatestRecordID = rec.ID
		}

		bucket.stat.TotalRecords++
		if IsPassJudgement(rec.Judgement) {
			bucket.stat.PassCount++
		}
		if rec.DefectiveCount.Valid && rec.DefectiveCount.Int >= 0 {
			bucket.defectiveSum += int64(rec.DefectiveCount.Int)
			bucket.defectiveN++
		}
	}

	stats := make([]models.SupplierStatistic, 0, len(order))
	for _, supplier := range order {
		bucket := buckets[supplier]
		stat := bucket.stat
		stat.FailCount = stat.TotalRecords - stat.PassCount
		if stat.TotalRecords > 0 {
			stat.PassRate = round2(decimal.NewFromInt(int64(stat.PassCount)).
				Mul(decimal.NewFromInt(100)).
				Div(decimal.NewFromInt(int64(stat.TotalRecords))))
		}
		if bucket.defectiveN > 0 {
			stat.AverageDefectiveCount = round2(decimal.NewFromInt(bucket.defectiveSum).
				Div(decimal.NewFromInt(bucket.defectiveN)))
		}

		if search != "" && !strings.Contains(strings.ToLower(stat.Supplier), search) {
			continue
		}
		stats = append(stats, stat)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].LatestRecordDate.After(stats[j].LatestRecordDate)
	})

	if search == "" && len(stats) > TopSuppliers {
		stats = stats[:TopSuppliers]
	}
	return stats
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
