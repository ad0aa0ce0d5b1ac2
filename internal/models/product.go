package models

// ShipmentProduct is a delivery line matched by barcode in the warehouse database.
type ShipmentProduct struct {
	Supplier  string       `db:"supplier" json:"supplier"`
	PO        string       `db:"po" json:"po"`
	Partscode string       `db:"partscode" json:"partscode"`
	Date      CalendarDate `db:"Date" json:"Date"`
	Qty       float64      `db:"qty" json:"qty"`
}

// InspectionRecordFilter narrows warehouse inspection record queries.
type InspectionRecordFilter struct {
	Partscode string
	Supplier  string
	Date      CalendarDate
	Limit     int
}

// ServerInfo is returned by the warehouse connectivity probe.
type ServerInfo struct {
	Version         string `db:"version" json:"version"`
	CurrentDatabase string `db:"current_database" json:"current_database"`
}
