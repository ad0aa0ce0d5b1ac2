package models

import "time"

// UnknownSupplier buckets records whose supplier is empty.
const UnknownSupplier = "Unknown"

// SupplierStatistic aggregates inspection outcomes for one supplier.
type SupplierStatistic struct {
	Supplier              string    `json:"supplier"`
	TotalRecords          int       `json:"totalRecords"`
	PassCount             int       `json:"passCount"`
	FailCount             int       `json:"failCount"`
	PassRate              float64   `json:"passRate"`
	AverageDefectiveCount float64   `json:"averageDefectiveCount"`
	LatestRecordDate      time.Time `json:"latestRecordDate"`
	LatestRecordID        int64     `json:"latestRecordId"`
}
