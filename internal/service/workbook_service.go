package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/noah-isme/qc-report-api/internal/models"
	appErrors "github.com/noah-isme/qc-report-api/pkg/errors"
	"github.com/noah-isme/qc-report-api/pkg/storage"
)

const (
	workbookCachePrefix = "qc2:"
	csvSheetName        = "Sheet1"
	emptyHeader         = "__EMPTY"
)

// WorkbookExtensions are the spreadsheet files the QC2 view reads.
var WorkbookExtensions = []string{".xlsx", ".xlsm", ".csv"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type workbookDirectory interface {
	List(exts ...string) ([]storage.FileInfo, error)
	Open(name string) (*os.File, error)
}

// WorkbookService parses the spreadsheets in the QC2 directory into header-keyed rows.
type WorkbookService struct {
	dir    workbookDirectory
	cache  *CacheService
	logger *zap.Logger
}

// NewWorkbookService constructs the service. cache may be nil.
func NewWorkbookService(dir workbookDirectory, cache *CacheService, logger *zap.Logger) *WorkbookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkbookService{dir: dir, cache: cache, logger: logger}
}

// Load returns every workbook in the directory in file name order. Files are parsed
// concurrently; any failure fails the whole load.
func (s *WorkbookService) Load(ctx context.Context) ([]models.Workbook, error) {
	files, err := s.dir.List(WorkbookExtensions...)
	if err != nil {
		s.logger.Error("failed to list qc2 directory", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Unable to load Excel files.")
	}

	workbooks := make([]models.Workbook, len(files))
	errs := make([]error, len(files))
	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func(i int, file storage.FileInfo) {
			defer wg.Done()
			workbooks[i], errs[i] = s.loadFile(ctx, file)
		}(i, file)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			s.logger.Error("failed to parse workbook", zap.String("file", files[i].Name), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Unable to load Excel files.")
		}
	}
	return workbooks, nil
}

func (s *WorkbookService) loadFile(ctx context.Context, file storage.FileInfo) (models.Workbook, error) {
	key := workbookCachePrefix + file.Fingerprint()
	var cached models.Workbook
	if s.cache.Fetch(ctx, key, &cached) {
		return cached, nil
	}

	start := time.Now()
	workbook, err := s.parseFile(file)
	if err != nil {
		return models.Workbook{}, err
	}
	s.logger.Debug("workbook parsed",
		zap.String("file", file.Name),
		zap.Int("sheets", len(workbook.Sheets)),
		zap.Duration("elapsed", time.Since(start)))

	// Earlier versions of the same file are keyed by their old fingerprint.
	_ = s.cache.Invalidate(ctx, workbookCachePrefix+globEscape(file.Name)+":*")
	s.cache.Store(ctx, key, workbook)
	return workbook, nil
}

// globEscape quotes the Redis glob metacharacters in a literal key fragment.
func globEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *WorkbookService) parseFile(file storage.FileInfo) (models.Workbook, error) {
	handle, err := s.dir.Open(file.Name)
	if err != nil {
		return models.Workbook{}, err
	}
	defer handle.Close() //nolint:errcheck

	workbook := models.Workbook{FileName: file.Name}
	if strings.EqualFold(filepath.Ext(file.Name), ".csv") {
		sheet, err := parseCSVSheet(handle)
		if err != nil {
			return models.Workbook{}, fmt.Errorf("parse %s: %w", file.Name, err)
		}
		workbook.Sheets = []models.Sheet{sheet}
		return workbook, nil
	}

	book, err := excelize.OpenReader(handle)
	if err != nil {
		return models.Workbook{}, fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer book.Close() //nolint:errcheck

	sheetNames := book.GetSheetList()
	workbook.Sheets = make([]models.Sheet, 0, len(sheetNames))
	for _, name := range sheetNames {
		grid, err := book.GetRows(name)
		if err != nil {
			return models.Workbook{}, fmt.Errorf("read sheet %s of %s: %w", name, file.Name, err)
		}
		workbook.Sheets = append(workbook.Sheets, buildSheet(name, grid))
	}
	return workbook, nil
}

// parseCSVSheet reads a legacy CSV export. Files that are not valid UTF-8 are decoded as GB18030.
func parseCSVSheet(r io.Reader) (models.Sheet, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return models.Sheet{}, err
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		raw, _, err = transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), raw)
		if err != nil {
			return models.Sheet{}, fmt.Errorf("decode gb18030: %w", err)
		}
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	grid, err := reader.ReadAll()
	if err != nil {
		return models.Sheet{}, err
	}
	return buildSheet(csvSheetName, grid), nil
}

// buildSheet turns a cell grid into header-keyed rows. The first non-blank row is the
// header; blank rows after it are dropped.
func buildSheet(name string, grid [][]string) models.Sheet {
	sheet := models.Sheet{SheetName: name, Headers: []string{}, Rows: []map[string]string{}}

	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}

	headerAt := -1
	for i, row := range grid {
		if !blankRow(row) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return sheet
	}
	sheet.Headers = uniqueHeaders(grid[headerAt], width)

	for _, row := range grid[headerAt+1:] {
		if blankRow(row) {
			continue
		}
		record := make(map[string]string, width)
		for col, header := range sheet.Headers {
			value := ""
			if col < len(row) {
				value = row[col]
			}
			record[header] = value
		}
		sheet.Rows = append(sheet.Rows, record)
	}
	return sheet
}

func uniqueHeaders(row []string, width int) []string {
	headers := make([]string, width)
	seen := make(map[string]int, width)
	for col := 0; col < width; col++ {
		header := ""
		if col < len(row) {
			header = strings.TrimSpace(row[col])
		}
		if header == "" {
			header = emptyHeader
		}
		base := header
		for {
			n, dup := seen[base]
			if !dup {
				break
			}
			seen[base] = n + 1
			header = base + "_" + strconv.Itoa(n+1)
			if _, taken := seen[header]; !taken {
				break
			}
		}
		seen[header] = 0
		headers[col] = header
	}
	return headers
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
