package excel

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MAKRANE-cpu/monographie/domain/sheet"
	"github.com/MAKRANE-cpu/monographie/internal/errors"
	"github.com/MAKRANE-cpu/monographie/ports"

	"github.com/xuri/excelize/v2"
)

// WorkbookSource reads worksheets from a local .xlsx or .csv file. It stands
// in for the online spreadsheet during development and offline runs.
type WorkbookSource struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

var _ ports.SheetSource = (*WorkbookSource)(nil)

// NewWorkbookSource creates a source over the given file
func NewWorkbookSource(filePath string) *WorkbookSource {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &WorkbookSource{filePath: filePath, fileType: fileType}
}

// Worksheets returns every worksheet of the file in workbook order. The
// spreadsheet id only labels log lines; the file path is fixed at creation.
func (r *WorkbookSource) Worksheets(ctx context.Context, spreadsheetID string) ([]sheet.Worksheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Printf("[WorkbookSource] reading %s file %s for %s", r.fileType, r.filePath, spreadsheetID)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(r.fileType), r.filePath))
	}

	switch r.fileType {
	case "csv":
		return r.readCSV()
	default:
		return r.readWorkbook()
	}
}

func (r *WorkbookSource) readWorkbook() ([]sheet.Worksheet, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	worksheets := make([]sheet.Worksheet, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read worksheet %q: %w", name, err)
		}
		worksheets = append(worksheets, sheet.Worksheet{Title: name, Grid: sheet.Grid(rows)})
	}

	log.Printf("[WorkbookSource] %d worksheet(s) read in %.2fms", len(worksheets), float64(time.Since(startTime).Nanoseconds())/1e6)
	return worksheets, nil
}

func (r *WorkbookSource) readCSV() ([]sheet.Worksheet, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	rows, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	title := strings.TrimSuffix(filepath.Base(r.filePath), filepath.Ext(r.filePath))
	log.Printf("[WorkbookSource] CSV file read (%d rows)", len(rows))
	return []sheet.Worksheet{{Title: title, Grid: rows}}, nil
}

// ReadCSV reads a ragged CSV grid. Semicolon-separated files, common in
// French locale exports, are detected from the first line.
func ReadCSV(in io.Reader) (sheet.Grid, error) {
	br := bufio.NewReader(in)
	if bom, _ := br.Peek(3); string(bom) == "\xef\xbb\xbf" {
		br.Discard(3)
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	// Peek returns what is buffered even when the file is shorter
	head, _ := br.Peek(4096)
	line := string(head)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if strings.Count(line, ";") > strings.Count(line, ",") {
		reader.Comma = ';'
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return sheet.Grid(rows), nil
}
