package dto

import "github.com/noah-isme/qc-report-api/internal/models"

// ProductLookupQuery binds the barcode lookup query string.
type ProductLookupQuery struct {
	Barcode string `form:"barcode"`
	Mock    bool   `form:"mock"`
}

// ProductLookupResponse mirrors the recordset shape the inspection form consumes.
type ProductLookupResponse struct {
	Recordsets [][]models.ShipmentProduct `json:"recordsets"`
	Recordset  []models.ShipmentProduct   `json:"recordset"`
}

// InspectionRecordsQuery binds the warehouse inspection records query string.
type InspectionRecordsQuery struct {
	Partscode string `form:"partscode"`
	Supplier  string `form:"supplier"`
	Date      string `form:"date"`
	Limit     int    `form:"limit" validate:"omitempty,min=1,max=1000"`
}

// SQLServerTarget identifies the warehouse database without its credentials.
type SQLServerTarget struct {
	Server   string `json:"server"`
	Database string `json:"database"`
	Port     int    `json:"port"`
}

// SQLServerProbeResponse reports the outcome of the warehouse connectivity check.
type SQLServerProbeResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Version  string          `json:"version,omitempty"`
	Database string          `json:"database,omitempty"`
	Error    string          `json:"error,omitempty"`
	Config   SQLServerTarget `json:"config"`
}
