package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// sqliteSchema mirrors the managed Postgres qc_records table.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS qc_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	partscode TEXT NOT NULL,
	supplier TEXT NOT NULL,
	po_number TEXT,
	delivery_date DATE,
	inspection_date DATE,
	delivery_quantity INTEGER CHECK (delivery_quantity >= 0),
	return_quantity INTEGER CHECK (return_quantity >= 0),
	lot_number TEXT,
	lot_quantity INTEGER CHECK (lot_quantity >= 0),
	inspector TEXT,
	sample_size INTEGER CHECK (sample_size >= 0),
	defective_count INTEGER CHECK (defective_count >= 0),
	judgement TEXT,
	strictness_adjustment TEXT,
	selection_a BOOLEAN NOT NULL DEFAULT 0,
	selection_b BOOLEAN NOT NULL DEFAULT 0,
	selection_c BOOLEAN NOT NULL DEFAULT 0,
	selection_d BOOLEAN NOT NULL DEFAULT 0,
	destination TEXT,
	group_leader_confirmation TEXT,
	quality_summary TEXT,
	remarks TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_qc_records_user_created ON qc_records (user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_qc_records_created ON qc_records (created_at DESC);
`

// EnsureSchema creates the qc_records table on a local SQLite store.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("ensure qc_records schema: %w", err)
	}
	return nil
}
