package service

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/noah-isme/qc-report-api/internal/models"
	appErrors "github.com/noah-isme/qc-report-api/pkg/errors"
	"github.com/noah-isme/qc-report-api/pkg/storage"
)

func writeWorkbook(t *testing.T, path string) {
	t.Helper()
	book := excelize.NewFile()
	defer book.Close() //nolint:errcheck

	require.NoError(t, book.SetSheetRow("Sheet1", "A1", &[]interface{}{"partscode", "supplier", "qty"}))
	require.NoError(t, book.SetSheetRow("Sheet1", "A2", &[]interface{}{"P-1", "Acme", 10}))
	require.NoError(t, book.SetSheetRow("Sheet1", "A3", &[]interface{}{"P-2"}))
	_, err := book.NewSheet("Summary")
	require.NoError(t, err)
	require.NoError(t, book.SetSheetRow("Summary", "A1", &[]interface{}{"total"}))
	require.NoError(t, book.SetSheetRow("Summary", "A2", &[]interface{}{2}))
	require.NoError(t, book.SaveAs(path))
}

func TestWorkbookServiceLoadsXLSXAndCSV(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "b-inspections.xlsx"))

	encoded, err := simplifiedchinese.GB18030.NewEncoder().String("供应商,判定\n华东,合格\n")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a-legacy.csv"), []byte(encoded), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("skip"), 0o644))

	svc := NewWorkbookService(storage.NewDirectory(dir), nil, nil)
	books, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 2)

	legacy := books[0]
	assert.Equal(t, "a-legacy.csv", legacy.FileName)
	require.Len(t, legacy.Sheets, 1)
	assert.Equal(t, []string{"供应商", "判定"}, legacy.Sheets[0].Headers)
	assert.Equal(t, []map[string]string{{"供应商": "华东", "判定": "合格"}}, legacy.Sheets[0].Rows)

	xlsx := books[1]
	require.Len(t, xlsx.Sheets, 2)
	assert.Equal(t, "Sheet1", xlsx.Sheets[0].SheetName)
	assert.Equal(t, []string{"partscode", "supplier", "qty"}, xlsx.Sheets[0].Headers)
	require.Len(t, xlsx.Sheets[0].Rows, 2)
	assert.Equal(t, "10", xlsx.Sheets[0].Rows[0]["qty"])
	assert.Equal(t, map[string]string{"partscode": "P-2", "supplier": "", "qty": ""}, xlsx.Sheets[0].Rows[1])
	assert.Equal(t, "Summary", xlsx.Sheets[1].SheetName)
}

func TestWorkbookServiceMissingDirectory(t *testing.T) {
	svc := NewWorkbookService(storage.NewDirectory(filepath.Join(t.TempDir(), "missing")), nil, nil)

	_, err := svc.Load(context.Background())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, "Unable to load Excel files.", appErr.Message)
}

func TestWorkbookServiceEmptyDirectory(t *testing.T) {
	svc := NewWorkbookService(storage.NewDirectory(t.TempDir()), nil, nil)

	books, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)
	assert.NotNil(t, books)
}

func TestWorkbookServiceServesFromCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(path, []byte("x\n1\n"), 0o644))

	store := newMemoryCacheStore()
	metrics := NewMetricsService()
	svc := NewWorkbookService(storage.NewDirectory(dir), NewCacheService(store, metrics, 0, nil, true), nil)

	first, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, store.items, 1)

	second, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, uint64(1), metrics.Snapshot().CacheHits)
}

func TestBuildSheetHeaders(t *testing.T) {
	sheet := buildSheet("S", [][]string{
		{},
		{"name", "", "name", ""},
		{"", "", "", ""},
		{"a", "b", "c", "d", "e"},
	})

	assert.Equal(t, []string{"name", "__EMPTY", "name_1", "__EMPTY_1", "__EMPTY_2"}, sheet.Headers)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "c", sheet.Rows[0]["name_1"])
	assert.Equal(t, "e", sheet.Rows[0]["__EMPTY_2"])
}

func TestBuildSheetEmptyGrid(t *testing.T) {
	sheet := buildSheet("S", nil)
	assert.Equal(t, models.Sheet{SheetName: "S", Headers: []string{}, Rows: []map[string]string{}}, sheet)
}

func TestParseCSVSheetUTF8WithBOM(t *testing.T) {
	file, err := os.CreateTemp(t.TempDir(), "*.csv")
	require.NoError(t, err)
	_, err = file.Write(append([]byte{0xEF, 0xBB, 0xBF}, []byte("供应商\n华东\n")...))
	require.NoError(t, err)
	_, err = file.Seek(0, 0)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck

	sheet, err := parseCSVSheet(file)
	require.NoError(t, err)
	assert.Equal(t, []string{"供应商"}, sheet.Headers)
	assert.Equal(t, "华东", sheet.Rows[0]["供应商"])
}

func TestWorkbookServiceEvictsStaleVersion(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(file, []byte("x\n1\n"), 0o644))

	store := newMemoryCacheStore()
	svc := NewWorkbookService(storage.NewDirectory(dir), NewCacheService(store, nil, 0, nil, true), nil)

	_, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, store.items, 1)

	require.NoError(t, os.WriteFile(file, []byte("x\n1\n2\n"), 0o644))
	books, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, books[0].Sheets[0].Rows, 2)

	assert.Len(t, store.items, 1)
	assert.Contains(t, store.deleted, "qc2:a.csv:*")
}

func TestGlobEscape(t *testing.T) {
	assert.Equal(t, `lot\[1\]\*.csv`, globEscape("lot[1]*.csv"))
	assert.Equal(t, "供应商.xlsx", globEscape("供应商.xlsx"))
}
