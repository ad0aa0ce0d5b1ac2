package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/qc-report-api/internal/models"
)

// Opener returns a fresh connection pool. The caller owns and closes it.
type Opener func(ctx context.Context) (*sqlx.DB, error)

const barcodeLookupQuery = `SELECT supplier, po, partscode, Date = ShouHuo_Date, qty = SUM(qty)
FROM (
	SELECT a.*
	FROM 送货单 a, 收货明细 b
	WHERE a.po = b.po
		AND a.item = b.item
		AND a.ShouHuo_Date = CONVERT(date, b.date, 121)
		AND b.条形码 = @barcode
) a
GROUP BY supplier, po, partscode, ShouHuo_Date`

// DefaultInspectionRecordLimit caps warehouse inspection record listings without a limit.
const DefaultInspectionRecordLimit = 100

// ProductRepository runs passthrough queries against the warehouse SQL Server. Every call
// opens its own pool and closes it before returning.
type ProductRepository struct {
	open    Opener
	timeout time.Duration
	logger  *zap.Logger
}

// NewProductRepository constructs the repository. timeout bounds each query.
func NewProductRepository(open Opener, timeout time.Duration, logger *zap.Logger) *ProductRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductRepository{open: open, timeout: timeout, logger: logger}
}

func (r *ProductRepository) withPool(ctx context.Context, fn func(ctx context.Context, db *sqlx.DB) error) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	db, err := r.open(ctx)
	if err != nil {
		return fmt.Errorf("connect sql server: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			r.logger.Warn("failed to close sql server pool", zap.Error(cerr))
		}
	}()

	return fn(ctx, db)
}

// LookupByBarcode returns the delivery lines received under barcode.
func (r *ProductRepository) LookupByBarcode(ctx context.Context, barcode string) ([]models.ShipmentProduct, error) {
	products := make([]models.ShipmentProduct, 0)
	err := r.withPool(ctx, func(ctx context.Context, db *sqlx.DB) error {
		if err := db.SelectContext(ctx, &products, barcodeLookupQuery, sql.Named("barcode", barcode)); err != nil {
			return fmt.Errorf("lookup barcode: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// InspectionRecords lists shipment inspection reports, newest inspection first.
func (r *ProductRepository) InspectionRecords(ctx context.Context, filter models.InspectionRecordFilter) ([]map[string]interface{}, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultInspectionRecordLimit
	}

	query := fmt.Sprintf("SELECT TOP (%d) * FROM 出货检查成绩书 WHERE 1=1", limit)
	var args []interface{}
	if filter.Partscode != "" {
		query += " AND partscode = @partscode"
		args = append(args, sql.Named("partscode", filter.Partscode))
	}
	if filter.Supplier != "" {
		query += " AND supplier = @supplier"
		args = append(args, sql.Named("supplier", filter.Supplier))
	}
	if filter.Date.Valid {
		query += " AND CAST(inspection_date AS DATE) = @date"
		args = append(args, sql.Named("date", filter.Date.Time))
	}
	query += " ORDER BY inspection_date DESC, created_at DESC"

	records := make([]map[string]interface{}, 0)
	err := r.withPool(ctx, func(ctx context.Context, db *sqlx.DB) error {
		rows, err := db.QueryxContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("query inspection records: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			row := map[string]interface{}{}
			if err := rows.MapScan(row); err != nil {
				return fmt.Errorf("scan inspection record: %w", err)
			}
			for key, value := range row {
				if raw, ok := value.([]byte); ok {
					row[key] = string(raw)
				}
			}
			records = append(records, row)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ServerInfo reports the server version and the connected database.
func (r *ProductRepository) ServerInfo(ctx context.Context) (*models.ServerInfo, error) {
	var info models.ServerInfo
	err := r.withPool(ctx, func(ctx context.Context, db *sqlx.DB) error {
		if err := db.GetContext(ctx, &info, "SELECT @@VERSION AS version, DB_NAME() AS current_database"); err != nil {
			return fmt.Errorf("query server info: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}
