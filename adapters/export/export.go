package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/MAKRANE-cpu/monographie/adapters/datareadiness/coercer"
	"github.com/MAKRANE-cpu/monographie/domain/sheet"
	"github.com/MAKRANE-cpu/monographie/internal/errors"
)

// Format is a table download format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts csv, json and xlsx in any case
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatXLSX:
		return f, nil
	case "":
		return FormatCSV, nil
	default:
		return "", errors.InvalidInput(fmt.Sprintf("unsupported export format %q", s))
	}
}

// ContentType returns the MIME type served for a format
func ContentType(f Format) string {
	switch f {
	case FormatJSON:
		return "application/json; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

var unsafeFileChars = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

// FileName builds a download name from the table name and the date
func FileName(t *sheet.Table, f Format, now time.Time) string {
	base := strings.Trim(unsafeFileChars.ReplaceAllString(t.Name, "_"), "_")
	if base == "" {
		base = "table"
	}
	return fmt.Sprintf("%s_%s.%s", base, now.Format("20060102"), f)
}

// WriteCSV writes the table with the identifier as first column
func WriteCSV(w io.Writer, t *sheet.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return err
	}

	record := make([]string, len(t.Columns)+1)
	for _, row := range t.Rows {
		record[0] = row.ID
		for i, v := range row.Values {
			record[i+1] = coercer.Format(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the table as an array of objects. Keys follow the column
// order, identifier first.
func WriteJSON(w io.Writer, t *sheet.Table) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return err
	}

	for i, row := range t.Rows {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if err := writeObject(w, t, row); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "]\n")
	return err
}

// writeObject emits keys in column order, which encoding/json maps cannot keep
func writeObject(w io.Writer, t *sheet.Table, row sheet.Row) error {
	var b strings.Builder
	b.WriteString("{")

	key, _ := json.Marshal(t.IDColumn)
	id, _ := json.Marshal(row.ID)
	b.Write(key)
	b.WriteString(":")
	b.Write(id)

	for i, col := range t.Columns {
		key, _ := json.Marshal(col)
		b.WriteString(",")
		b.Write(key)
		b.WriteString(":")
		b.WriteString(coercer.Format(row.Values[i]))
	}

	b.WriteString("}")
	_, err := io.WriteString(w, b.String())
	return err
}
