package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/MAKRANE-cpu/monographie/domain/sheet"
	"github.com/MAKRANE-cpu/monographie/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *sheet.Table {
	return &sheet.Table{
		Name:     "Céréales 2023",
		IDColumn: "Commune",
		Columns:  []string{"Blé_Surface", "Blé_Rendement"},
		Rows: []sheet.Row{
			{ID: "Bab Taza", Values: []float64{1200, 14.5}},
			{ID: "Fifi, centre", Values: []float64{0, 9}},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()))

	expected := "Commune,Blé_Surface,Blé_Rendement\n" +
		"Bab Taza,1200,14.5\n" +
		"\"Fifi, centre\",0,9\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteJSONKeepsColumnOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleTable()))

	assert.Equal(t,
		`[{"Commune":"Bab Taza","Blé_Surface":1200,"Blé_Rendement":14.5},{"Commune":"Fifi, centre","Blé_Surface":0,"Blé_Rendement":9}]`+"\n",
		buf.String())

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded, 2)
}

func TestWriteJSONEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleTable().Head(0)))
	assert.Equal(t, "[]\n", buf.String())
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in       string
		expected Format
		wantErr  bool
	}{
		{"csv", FormatCSV, false},
		{"XLSX", FormatXLSX, false},
		{" json ", FormatJSON, false},
		{"", FormatCSV, false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, errors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFileNameAndContentType(t *testing.T) {
	now := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Céréales_2023_20240603.csv", FileName(sampleTable(), FormatCSV, now))
	assert.Equal(t, "table_20240603.json", FileName(&sheet.Table{Name: "///"}, FormatJSON, now))

	assert.Contains(t, ContentType(FormatCSV), "text/csv")
	assert.Contains(t, ContentType(FormatJSON), "application/json")
	assert.Contains(t, ContentType(FormatXLSX), "spreadsheetml")
}
