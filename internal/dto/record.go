package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FormString accepts a JSON string, number or null. Inspection forms post counts as
// strings while edited history rows carry them as numbers.
type FormString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FormString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FormString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = FormString(n.String())
	}
	return nil
}

// Selections are the four checkbox options on the inspection form.
type Selections struct {
	A bool `json:"A"`
	B bool `json:"B"`
	C bool `json:"C"`
	D bool `json:"D"`
}

// SaveRecordRequest is the inspection form payload.
type SaveRecordRequest struct {
	Partscode               FormString `json:"partscode"`
	Supplier                FormString `json:"supplier"`
	PONumber                FormString `json:"poNumber"`
	DeliveryDate            FormString `json:"deliveryDate"`
	InspectionDate          FormString `json:"inspectionDate"`
	DeliveryQuantity        FormString `json:"deliveryQuantity"`
	ReturnQuantity          FormString `json:"returnQuantity"`
	LotNumber               FormString `json:"lotNumber"`
	LotQuantity             FormString `json:"lotQuantity"`
	Inspector               FormString `json:"inspector"`
	SampleSize              FormString `json:"sampleSize"`
	DefectiveCount          FormString `json:"defectiveCount"`
	Judgement               FormString `json:"judgement" validate:"omitempty,judgement"`
	StrictnessAdjustment    FormString `json:"strictnessAdjustment" validate:"omitempty,strictness"`
	Selections              Selections `json:"selections"`
	Destination             FormString `json:"destination"`
	GroupLeaderConfirmation FormString `json:"groupLeaderConfirmation"`
	QualitySummary          FormString `json:"qualitySummary"`
	Remarks                 FormString `json:"remarks"`
}

// UpdateRecordRequest carries the record id alongside the edited form fields.
type UpdateRecordRequest struct {
	ID RecordID `json:"id"`
	SaveRecordRequest
}

// RecordID accepts a numeric id sent either as a JSON number or a string.
type RecordID int64

// UnmarshalJSON implements json.Unmarshaler.
func (r *RecordID) UnmarshalJSON(data []byte) error {
	var raw FormString
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}
	if raw == "" {
		*r = 0
		return nil
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return err
	}
	*r = RecordID(v)
	return nil
}

// DeleteRecordRequest is the optional body of a record delete.
type DeleteRecordRequest struct {
	ID RecordID `json:"id"`
}

// ListRecordsQuery binds the records listing query string. Limit stays raw so that
// malformed values are ignored rather than rejected.
type ListRecordsQuery struct {
	Limit string `form:"limit"`
}

// PositiveLimit returns the limit when it is a positive integer and 0 otherwise.
func (q ListRecordsQuery) PositiveLimit() int {
	n, err := strconv.Atoi(strings.TrimSpace(q.Limit))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// Export formats accepted by GET /records/export.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportRecordsQuery selects the rendering of a record export.
type ExportRecordsQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
	Limit  int    `form:"limit" validate:"omitempty,min=0"`
}
