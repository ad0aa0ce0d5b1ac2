package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/qc-report-api/internal/models"
)

const recordColumns = `id, user_id, partscode, supplier, po_number, delivery_date, inspection_date,
delivery_quantity, return_quantity, lot_number, lot_quantity, inspector, sample_size, defective_count,
judgement, strictness_adjustment, selection_a, selection_b, selection_c, selection_d, destination,
group_leader_confirmation, quality_summary, remarks, created_at, updated_at`

// descriptiveColumns are written on both insert and full replace. id, user_id and created_at
// are never part of an update.
var descriptiveColumns = []string{
	"partscode", "supplier", "po_number", "delivery_date", "inspection_date",
	"delivery_quantity", "return_quantity", "lot_number", "lot_quantity", "inspector",
	"sample_size", "defective_count", "judgement", "strictness_adjustment",
	"selection_a", "selection_b", "selection_c", "selection_d", "destination",
	"group_leader_confirmation", "quality_summary", "remarks",
}

// RecordRepository persists inspection records in qc_records. Queries use '?' bind vars and
// are rebound for the active driver.
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository constructs the repository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func descriptiveValues(rec *models.InspectionRecord) []interface{} {
	return []interface{}{
		rec.Partscode, rec.Supplier, rec.PONumber, rec.DeliveryDate, rec.InspectionDate,
		rec.DeliveryQuantity, rec.ReturnQuantity, rec.LotNumber, rec.LotQuantity, rec.Inspector,
		rec.SampleSize, rec.DefectiveCount, rec.Judgement, rec.StrictnessAdjustment,
		rec.SelectionA, rec.SelectionB, rec.SelectionC, rec.SelectionD, rec.Destination,
		rec.GroupLeaderConfirmation, rec.QualitySummary, rec.Remarks,
	}
}

// Create inserts rec and returns the stored row including its assigned id.
func (r *RecordRepository) Create(ctx context.Context, rec *models.InspectionRecord) (*models.InspectionRecord, error) {
	now := time.Now().UTC()
	columns := append([]string{"user_id"}, descriptiveColumns...)
	columns = append(columns, "created_at", "updated_at")

	args := []interface{}{rec.UserID}
	args = append(args, descriptiveValues(rec)...)
	args = append(args, now, now)

	query := fmt.Sprintf("INSERT INTO qc_records (%s) VALUES (%s) RETURNING %s",
		strings.Join(columns, ", "), questionMarks(len(columns)), recordColumns)

	var stored models.InspectionRecord
	if err := r.db.QueryRowxContext(ctx, r.db.Rebind(query), args...).StructScan(&stored); err != nil {
		return nil, fmt.Errorf("create qc record: %w", err)
	}
	return &stored, nil
}

// List returns records newest first, optionally scoped to one owner.
func (r *RecordRepository) List(ctx context.Context, filter models.RecordFilter) ([]models.InspectionRecord, error) {
	query := "SELECT " + recordColumns + " FROM qc_records"
	var args []interface{}
	if filter.OwnerID != "" {
		query += " WHERE user_id = ?"
		args = append(args, filter.OwnerID)
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	records := make([]models.InspectionRecord, 0)
	if err := r.db.SelectContext(ctx, &records, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list qc records: %w", err)
	}
	return records, nil
}

// Update replaces the descriptive fields of the record with rec.ID. It returns
// sql.ErrNoRows when no record matched.
func (r *RecordRepository) Update(ctx context.Context, rec *models.InspectionRecord) (*models.InspectionRecord, error) {
	assignments := make([]string, 0, len(descriptiveColumns)+1)
	for _, column := range descriptiveColumns {
		assignments = append(assignments, column+" = ?")
	}
	assignments = append(assignments, "updated_at = ?")

	args := descriptiveValues(rec)
	args = append(args, time.Now().UTC(), rec.ID)

	query := fmt.Sprintf("UPDATE qc_records SET %s WHERE id = ? RETURNING %s",
		strings.Join(assignments, ", "), recordColumns)

	var stored models.InspectionRecord
	if err := r.db.QueryRowxContext(ctx, r.db.Rebind(query), args...).StructScan(&stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// Delete removes a record. A non-empty ownerID adds an owner predicate. The number of
// deleted rows is returned; zero is not an error.
func (r *RecordRepository) Delete(ctx context.Context, id int64, ownerID string) (int64, error) {
	query := "DELETE FROM qc_records WHERE id = ?"
	args := []interface{}{id}
	if ownerID != "" {
		query += " AND user_id = ?"
		args = append(args, ownerID)
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("delete qc record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete qc record rows affected: %w", err)
	}
	return affected, nil
}

// Summaries returns the projection used by supplier statistics, newest first.
func (r *RecordRepository) Summaries(ctx context.Context) ([]models.RecordSummary, error) {
	const query = `SELECT id, supplier, judgement, defective_count, created_at FROM qc_records ORDER BY created_at DESC`
	summaries := make([]models.RecordSummary, 0)
	if err := r.db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, fmt.Errorf("list qc record summaries: %w", err)
	}
	return summaries, nil
}

func questionMarks(n int) string {
	marks := make([]string, n)
	for i := range marks {
		marks[i] = "?"
	}
	return strings.Join(marks, ", ")
}
