package models

import "time"

// Judgement labels as rendered by the inspection form.
const (
	JudgementPass        = "合格"
	JudgementFail        = "不合格"
	JudgementConditional = "条件合格"
)

// Strictness adjustment labels.
const (
	StrictnessNormal    = "正常"
	StrictnessTightened = "加严"
	StrictnessRelaxed   = "放宽"
)

// InspectionRecord is a row of the qc_records table.
type InspectionRecord struct {
	ID                      int64        `db:"id" json:"id"`
	UserID                  string       `db:"user_id" json:"user_id"`
	Partscode               string       `db:"partscode" json:"partscode"`
	Supplier                string       `db:"supplier" json:"supplier"`
	PONumber                *string      `db:"po_number" json:"po_number"`
	DeliveryDate            CalendarDate `db:"delivery_date" json:"delivery_date"`
	InspectionDate          CalendarDate `db:"inspection_date" json:"inspection_date"`
	DeliveryQuantity        Count        `db:"delivery_quantity" json:"delivery_quantity"`
	ReturnQuantity          Count        `db:"return_quantity" json:"return_quantity"`
	LotNumber               *string      `db:"lot_number" json:"lot_number"`
	LotQuantity             Count        `db:"lot_quantity" json:"lot_quantity"`
	Inspector               *string      `db:"inspector" json:"inspector"`
	SampleSize              Count        `db:"sample_size" json:"sample_size"`
	DefectiveCount          Count        `db:"defective_count" json:"defective_count"`
	Judgement               *string      `db:"judgement" json:"judgement"`
	StrictnessAdjustment    *string      `db:"strictness_adjustment" json:"strictness_adjustment"`
	SelectionA              bool         `db:"selection_a" json:"selection_a"`
	SelectionB              bool         `db:"selection_b" json:"selection_b"`
	SelectionC              bool         `db:"selection_c" json:"selection_c"`
	SelectionD              bool         `db:"selection_d" json:"selection_d"`
	Destination             *string      `db:"destination" json:"destination"`
	GroupLeaderConfirmation *string      `db:"group_leader_confirmation" json:"group_leader_confirmation"`
	QualitySummary          *string      `db:"quality_summary" json:"quality_summary"`
	Remarks                 *string      `db:"remarks" json:"remarks"`
	CreatedAt               time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time    `db:"updated_at" json:"updated_at"`
}

// RecordFilter scopes record listings.
type RecordFilter struct {
	// OwnerID restricts results to one owner when non-empty.
	OwnerID string
	// Limit is applied only when positive.
	Limit int
}

// RecordSummary is the projection read by the supplier statistics aggregation.
type RecordSummary struct {
	ID             int64     `db:"id"`
	Supplier       *string   `db:"supplier"`
	Judgement      *string   `db:"judgement"`
	DefectiveCount Count     `db:"defective_count"`
	CreatedAt      time.Time `db:"created_at"`
}

// StringOrNil maps an empty form value to NULL.
func StringOrNil(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// Deref returns the empty string for NULL text columns.
func Deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
