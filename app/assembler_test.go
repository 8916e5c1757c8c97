package app

import (
	"testing"

	"github.com/MAKRANE-cpu/monographie/domain/sheet"
	"github.com/MAKRANE-cpu/monographie/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cerealsSheet() sheet.Worksheet {
	return sheet.Worksheet{
		Title: "Céréales",
		Grid: sheet.Grid{
			{"Province de Chefchaouen - Campagne 2022/2023"},
			{""},
			{"Commune", "Blé", "", "Orge", ""},
			{"", "Surface (ha)", "Rendement", "Surface (ha)", "Rendement"},
			{"Bab Taza", "1 200", "14,5", "300", "9"},
			{" Tanaqob ", "850", "12", "", "x"},
			{"", "", "", "", ""},
			{"Total cercle", "2050", "", "300", ""},
			{"Fifi", "400", "11", "120", "8"},
			{"TOTAL", "2450", "", "420", ""},
		},
	}
}

func TestAssembleCleansWorksheet(t *testing.T) {
	a := NewAssembler(DefaultAssemblerConfig(), nil)

	table, err := a.Assemble(cerealsSheet())
	require.NoError(t, err)

	assert.Equal(t, "Céréales", table.Name)
	assert.Equal(t, "Commune", table.IDColumn)
	assert.Equal(t, []string{
		"Blé_Surface (ha)", "Blé_Rendement", "Orge_Surface (ha)", "Orge_Rendement",
	}, table.Columns)

	require.Len(t, table.Rows, 3)
	assert.Equal(t, "Bab Taza", table.Rows[0].ID)
	assert.Equal(t, []float64{1200, 14.5, 300, 9}, table.Rows[0].Values)
	assert.Equal(t, "Tanaqob", table.Rows[1].ID)
	assert.Equal(t, []float64{850, 12, 0, 0}, table.Rows[1].Values)
	assert.Equal(t, "Fifi", table.Rows[2].ID)
}

func TestAssembleWithoutSubHeader(t *testing.T) {
	ws := sheet.Worksheet{
		Title: "Population",
		Grid: sheet.Grid{
			{"Commune", "Population", "Ménages"},
			{"Bab Taza", "31 000", "5 900"},
			{"Fifi", "9 800", "1 700"},
		},
	}

	table, err := NewAssembler(DefaultAssemblerConfig(), nil).Assemble(ws)
	require.NoError(t, err)
	assert.Equal(t, []string{"Population", "Ménages"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []float64{31000, 5900}, table.Rows[0].Values)
}

func TestAssembleIdentifierNotFirst(t *testing.T) {
	ws := sheet.Worksheet{
		Title: "Elevage",
		Grid: sheet.Grid{
			{"N°", "Commune", "Bovins"},
			{"", "", "Têtes"},
			{"1", "Bab Taza", "2 300"},
		},
	}

	table, err := NewAssembler(DefaultAssemblerConfig(), nil).Assemble(ws)
	require.NoError(t, err)
	assert.Equal(t, []string{"N°", "Bovins_Têtes"}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Bab Taza", table.Rows[0].ID)
	assert.Equal(t, []float64{1, 2300}, table.Rows[0].Values)
}

func TestAssembleHeaderNotFound(t *testing.T) {
	ws := sheet.Worksheet{Title: "Notes", Grid: sheet.Grid{{"Source : DPA Chefchaouen"}}}

	_, err := NewAssembler(DefaultAssemblerConfig(), nil).Assemble(ws)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeHeaderNotFound))
}

func TestAssembleEmptyWorksheet(t *testing.T) {
	_, err := NewAssembler(DefaultAssemblerConfig(), nil).Assemble(sheet.Worksheet{Title: "Vide"})
	assert.True(t, errors.Is(err, errors.CodeHeaderNotFound))
}

func TestAssembleHeaderOnly(t *testing.T) {
	ws := sheet.Worksheet{Title: "Entête", Grid: sheet.Grid{{"Commune", "Blé"}}}

	table, err := NewAssembler(DefaultAssemblerConfig(), nil).Assemble(ws)
	require.NoError(t, err)
	assert.Equal(t, []string{"Blé"}, table.Columns)
	assert.Empty(t, table.Rows)
}

func TestAssembleAllLenient(t *testing.T) {
	notes := sheet.Worksheet{
		Title: "Notes",
		Grid:  sheet.Grid{{"Source"}, {"DPA"}},
	}

	collection, report, err := NewAssembler(DefaultAssemblerConfig(), nil).
		AssembleAll([]sheet.Worksheet{cerealsSheet(), notes})
	require.NoError(t, err)

	assert.Equal(t, 1, collection.Len())
	assert.Equal(t, []string{"Céréales"}, collection.Names())
	_, ok := collection.Get("Notes")
	assert.False(t, ok)

	table, ok := collection.Get("Céréales")
	require.True(t, ok)
	assert.Len(t, table.Rows, 3)

	assert.Equal(t, []string{"Céréales"}, report.Loaded)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "Notes", report.Skipped[0].Title)
	assert.NotEmpty(t, report.Skipped[0].Reason)
}

func TestAssembleAllStrict(t *testing.T) {
	config := DefaultAssemblerConfig()
	config.Mode = LoadModeStrict

	notes := sheet.Worksheet{Title: "Notes", Grid: sheet.Grid{{"Source"}}}
	_, _, err := NewAssembler(config, nil).AssembleAll([]sheet.Worksheet{cerealsSheet(), notes})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeHeaderNotFound))
	assert.Contains(t, err.Error(), "Notes")
}

func TestAssembleAllEmptyInput(t *testing.T) {
	collection, report, err := NewAssembler(DefaultAssemblerConfig(), nil).AssembleAll(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, collection.Len())
	assert.Empty(t, report.Loaded)
	assert.Empty(t, report.Skipped)
}

func TestIsAggregate(t *testing.T) {
	a := NewAssembler(DefaultAssemblerConfig(), nil)

	tests := []struct {
		id       string
		expected bool
	}{
		{"TOTAL", true},
		{"Total Province", true},
		{"Sous-total cercle Bab Taza", true},
		{"S/T", true},
		{" s/t ", true},
		{"ST", true},
		{" Subtotal ", true},
		{"Bab Taza", false},
		{"Stehat", false},
		{"Bni Ahmed Cherqia", false},
		{"Totalement", false},
		{"Bab St Ahmed", false},
		{"Douar s/t nord", false},
		{"S/T Cercle", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.expected, a.IsAggregate(tt.id))
		})
	}
}

func TestIsAggregateCustomTokens(t *testing.T) {
	config := DefaultAssemblerConfig()
	config.AggregateTokens = []string{"ensemble"}
	a := NewAssembler(config, nil)

	assert.True(t, a.IsAggregate("Ensemble"))
	assert.False(t, a.IsAggregate("Total"))

	config.AggregateTokens = []string{}
	assert.False(t, NewAssembler(config, nil).IsAggregate("Total"))
}

func TestAssembleLabelledSubHeader(t *testing.T) {
	ws := sheet.Worksheet{
		Title: "Céréales",
		Grid: sheet.Grid{
			{"Commune", "Blé", ""},
			{"Nom", "Surface", "Rendement"},
			{"Bab Taza", "12,5", "14"},
		},
	}

	table, err := NewAssembler(DefaultAssemblerConfig(), nil).Assemble(ws)
	require.NoError(t, err)
	assert.Equal(t, []string{"Blé_Surface", "Blé_Rendement"}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Bab Taza", table.Rows[0].ID)
	assert.Equal(t, []float64{12.5, 14}, table.Rows[0].Values)
}

func TestAssembleKeepsCommuneNamedWithAbbreviation(t *testing.T) {
	ws := sheet.Worksheet{
		Title: "Population",
		Grid: sheet.Grid{
			{"Commune", "Population"},
			{"Bab St Ahmed", "4 100"},
			{"ST", "4 100"},
		},
	}

	table, err := NewAssembler(DefaultAssemblerConfig(), nil).Assemble(ws)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Bab St Ahmed", table.Rows[0].ID)
}

func TestParseLoadMode(t *testing.T) {
	assert.Equal(t, LoadModeStrict, ParseLoadMode(" STRICT "))
	assert.Equal(t, LoadModeLenient, ParseLoadMode("lenient"))
	assert.Equal(t, LoadModeLenient, ParseLoadMode(""))
}
