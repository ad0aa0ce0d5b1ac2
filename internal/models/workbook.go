package models

// Workbook is one spreadsheet file exposed by the QC2 view.
type Workbook struct {
	FileName string  `json:"fileName"`
	Sheets   []Sheet `json:"sheets"`
}

// Sheet holds rows keyed by header. Missing cells are the empty string. Headers keeps the
// column order of the source sheet.
type Sheet struct {
	SheetName string              `json:"sheetName"`
	Headers   []string            `json:"headers"`
	Rows      []map[string]string `json:"rows"`
}
