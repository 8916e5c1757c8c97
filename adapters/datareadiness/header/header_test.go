package header

import (
	"testing"

	"github.com/MAKRANE-cpu/monographie/domain/sheet"
	"github.com/stretchr/testify/assert"
)

func TestLocateIgnoresCaseAndSpaces(t *testing.T) {
	for _, marker := range []string{"  COMMUNE  ", "commune", "Commune", "Commune ", "Nom de la commune"} {
		grid := sheet.Grid{
			{"Province de Chefchaouen"},
			{""},
			{marker, "Blé"},
			{"", "Surface"},
		}
		idx, ok := NewLocator(DefaultHeaderConfig()).Locate(grid)
		assert.True(t, ok, "marker %q", marker)
		assert.Equal(t, 2, idx, "marker %q", marker)
	}
}

func TestLocateDecomposedAccents(t *testing.T) {
	// "Communé" written with a combining accent still folds to the composed form
	l := NewLocator(HeaderConfig{Marker: "commun\u00e9"})
	idx, ok := l.Locate(sheet.Grid{{"x"}, {"Commune\u0301"}})
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestLocateRespectsScanBound(t *testing.T) {
	grid := make(sheet.Grid, 12)
	grid[11] = []string{"Commune"}

	_, ok := NewLocator(DefaultHeaderConfig()).Locate(grid)
	assert.False(t, ok)

	idx, ok := NewLocator(HeaderConfig{ScanRows: 12}).Locate(grid)
	assert.True(t, ok)
	assert.Equal(t, 11, idx)
}

func TestLocateNotFound(t *testing.T) {
	idx, ok := NewLocator(DefaultHeaderConfig()).Locate(sheet.Grid{{"Année", "Pluie"}, {"2020", "650"}})
	assert.False(t, ok)
	assert.Equal(t, -1, idx)

	idx, ok = NewLocator(DefaultHeaderConfig()).Locate(nil)
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
}

func TestLocateEarliestWhenUnscored(t *testing.T) {
	grid := sheet.Grid{
		{"Liste des communes"},
		{"Commune", "Blé"},
		{"", "Surface (ha)"},
	}
	idx, ok := NewLocator(DefaultHeaderConfig()).Locate(grid)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestLocateScoredPrefersUnitRows(t *testing.T) {
	grid := sheet.Grid{
		{"Liste des communes"},
		{"Commune", "Blé", "", "Total"},
		{"", "Surface (ha)", "Rendement (qx/ha)", "Surface"},
		{"Bab Taza", "120", "14", "120"},
	}
	l := NewLocator(HeaderConfig{Scored: true})
	idx, ok := l.Locate(grid)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, markerWeight+1+3, l.Score(grid, 1))
	assert.Equal(t, 0, l.Score(grid, 2))
}

func TestLocateScoredTieKeepsEarliest(t *testing.T) {
	grid := sheet.Grid{
		{"Commune", "Surface"},
		{"x"},
		{"Commune", "Surface"},
	}
	idx, ok := NewLocator(HeaderConfig{Scored: true}).Locate(grid)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestNamesForwardFillsCategory(t *testing.T) {
	s := NewSynthesizer(DefaultNamingConfig())
	names := s.Names(
		[]string{"Blé", "", "Orge", ""},
		[]string{"Surface", "Rendement", "Surface", "Rendement"},
	)
	assert.Equal(t, []string{"Blé_Surface", "Blé_Rendement", "Orge_Surface", "Orge_Rendement"}, names)
}

func TestNamesRules(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		sub      []string
		expected []string
	}{
		{
			name:     "identifier from primary row",
			header:   []string{" COMMUNE ", "Blé"},
			sub:      []string{"", "Surface"},
			expected: []string{"Commune", "Blé_Surface"},
		},
		{
			name:     "identifier from sub row",
			header:   []string{"Localisation", "Blé"},
			sub:      []string{"Commune", "Surface"},
			expected: []string{"Commune", "Blé_Surface"},
		},
		{
			name:     "identical category and sub label",
			header:   []string{"Commune", "Total"},
			sub:      []string{"", "Total"},
			expected: []string{"Commune", "Total"},
		},
		{
			name:     "category alone when sub label empty",
			header:   []string{"Commune", "Population", ""},
			sub:      []string{"", "", ""},
			expected: []string{"Commune", "Population", "Population_2"},
		},
		{
			name:     "placeholder when nothing known",
			header:   []string{"", "Commune"},
			sub:      []string{"", ""},
			expected: []string{"Col_0", "Commune"},
		},
		{
			name:     "unnamed marker does not open a category",
			header:   []string{"Unnamed: 0", "Commune", "Unnamed: 2"},
			sub:      []string{"", "", "Surface"},
			expected: []string{"Col_0", "Commune", "Commune_Surface"},
		},
		{
			name:     "sub row wider than header",
			header:   []string{"Commune", "Olivier"},
			sub:      []string{"", "Surface", "Production"},
			expected: []string{"Commune", "Olivier_Surface", "Olivier_Production"},
		},
		{
			name:     "sub label without category",
			header:   []string{"", ""},
			sub:      []string{"Commune", "Superficie"},
			expected: []string{"Commune", "Superficie"},
		},
	}

	s := NewSynthesizer(DefaultNamingConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Names(tt.header, tt.sub))
		})
	}
}

func TestNamesOneNamePerPosition(t *testing.T) {
	s := NewSynthesizer(DefaultNamingConfig())
	header := []string{"Commune", "A", "", "", "B"}
	sub := []string{"", "x"}
	assert.Len(t, s.Names(header, sub), 5)
	assert.Len(t, s.Names(nil, nil), 0)
}

func TestNamesRawKeepsDuplicates(t *testing.T) {
	s := NewSynthesizer(DefaultNamingConfig())
	header := []string{"Commune", "Blé", "", "Blé", ""}
	sub := []string{"", "Surface", "Surface", "Surface", ""}

	assert.Equal(t, []string{"Commune", "Blé_Surface", "Blé_Surface", "Blé_Surface", "Blé"}, s.NamesRaw(header, sub))
	assert.Equal(t, []string{"Commune", "Blé_Surface", "Blé_Surface_2", "Blé_Surface_3", "Blé"}, s.Names(header, sub))

	noDedupe := NewSynthesizer(NamingConfig{Dedupe: false})
	assert.Equal(t, s.NamesRaw(header, sub), noDedupe.Names(header, sub))
}

func TestDedupeAvoidsExistingNames(t *testing.T) {
	got := Dedupe([]string{"A", "A_2", "A"}, "_")
	assert.Equal(t, []string{"A", "A_2", "A_3"}, got)
}

func TestCustomSeparatorAndIdentifier(t *testing.T) {
	s := NewSynthesizer(NamingConfig{Marker: "douar", IDName: "Douar", Separator: " - ", Dedupe: true})
	got := s.Names([]string{"DOUAR", "Maïs"}, []string{"", "Production"})
	assert.Equal(t, []string{"Douar", "Maïs - Production"}, got)
}

func TestIsSubHeader(t *testing.T) {
	s := NewSynthesizer(DefaultNamingConfig())
	assert.True(t, s.IsSubHeader([]string{"", "Surface"}, 0))
	assert.True(t, s.IsSubHeader([]string{"Commune", "Surface"}, 0))
	assert.False(t, s.IsSubHeader([]string{"Bab Taza", "120"}, 0))
	assert.False(t, s.IsSubHeader(nil, 0))
}

func TestIsSubHeaderWithLabelledIdentifierCell(t *testing.T) {
	s := NewSynthesizer(DefaultNamingConfig())

	tests := []struct {
		name     string
		row      []string
		idPos    int
		expected bool
	}{
		{"label under identifier", []string{"Nom", "Surface", "Rendement"}, 0, true},
		{"footnote under identifier", []string{"(1)", "Têtes"}, 0, true},
		{"identifier not first", []string{"", "Unité", "Têtes"}, 1, true},
		{"data row", []string{"Bab Taza", "12,5", "14"}, 0, false},
		{"partial data row", []string{"Fifi", "", "x", "8"}, 0, false},
		{"blank row", []string{"", "", ""}, 0, false},
		{"identifier only", []string{"Tanaqob"}, 0, false},
		{"marker only", []string{"Commune"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.IsSubHeader(tt.row, tt.idPos))
		})
	}
}
