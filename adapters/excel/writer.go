package excel

import (
	"fmt"
	"io"

	"github.com/MAKRANE-cpu/monographie/domain/sheet"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the worksheet title limit of the xlsx format
const maxSheetName = 31

// WriteTable writes t as a single-sheet workbook: bold header row with the
// identifier first, then one numeric row per administrative unit.
func WriteTable(w io.Writer, t *sheet.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	name := sheetName(t.Name)
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return fmt.Errorf("failed to name worksheet: %w", err)
	}

	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, 0, len(t.Columns)+1)
	for _, h := range t.Header() {
		header = append(header, excelize.Cell{StyleID: bold, Value: h})
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range t.Rows {
		record := make([]interface{}, 0, len(row.Values)+1)
		record = append(record, row.ID)
		for _, v := range row.Values {
			record = append(record, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush workbook: %w", err)
	}
	_, err = f.WriteTo(w)
	return err
}

// sheetName strips characters the xlsx format forbids in worksheet titles
func sheetName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	if len(out) > maxSheetName {
		out = out[:maxSheetName]
	}
	if len(out) == 0 {
		return "Sheet1"
	}
	return string(out)
}
