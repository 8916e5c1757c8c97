package header

import (
	"github.com/MAKRANE-cpu/monographie/domain/sheet"
)

// HeaderConfig controls where and how the header row is searched
type HeaderConfig struct {
	Marker     string   `json:"marker"`      // token identifying the header row, e.g. "commune"
	ScanRows   int      `json:"scan_rows"`   // only the first ScanRows rows are inspected
	Scored     bool     `json:"scored"`      // rank candidates by unit tokens instead of taking the first
	UnitTokens []string `json:"unit_tokens"` // words that raise a candidate's score
}

// DefaultHeaderConfig returns the layout of the Chefchaouen workbook
func DefaultHeaderConfig() HeaderConfig {
	return HeaderConfig{
		Marker:     "commune",
		ScanRows:   10,
		Scored:     false,
		UnitTokens: []string{"surface", "ha", "rendement", "total"},
	}
}

const markerWeight = 10

// Locator finds the header row of a raw grid
type Locator struct {
	config HeaderConfig
	units  map[string]bool
}

// NewLocator creates a locator; zero fields of config take their defaults
func NewLocator(config HeaderConfig) *Locator {
	def := DefaultHeaderConfig()
	if config.Marker == "" {
		config.Marker = def.Marker
	}
	if config.ScanRows <= 0 {
		config.ScanRows = def.ScanRows
	}
	if config.UnitTokens == nil {
		config.UnitTokens = def.UnitTokens
	}

	units := make(map[string]bool, len(config.UnitTokens))
	for _, tok := range config.UnitTokens {
		units[fold(tok)] = true
	}
	return &Locator{config: config, units: units}
}

// Config returns the effective configuration
func (l *Locator) Config() HeaderConfig {
	return l.config
}

// Locate returns the index of the header row, or (-1, false) when no row of
// the first ScanRows rows contains the marker.
func (l *Locator) Locate(grid sheet.Grid) (int, bool) {
	limit := l.config.ScanRows
	if limit > len(grid) {
		limit = len(grid)
	}

	best, bestScore := -1, 0
	for i := 0; i < limit; i++ {
		if !l.hasMarker(grid[i]) {
			continue
		}
		if !l.config.Scored {
			return i, true
		}
		score := l.Score(grid, i)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, best >= 0
}

// Score rates row i as a header candidate: the marker counts for
// markerWeight, and every cell of the row or the row beneath it carrying a
// unit token adds one.
func (l *Locator) Score(grid sheet.Grid, i int) int {
	row := grid.Row(i)
	if !l.hasMarker(row) {
		return 0
	}
	score := markerWeight
	score += l.unitCells(row)
	score += l.unitCells(grid.Row(i + 1))
	return score
}

func (l *Locator) hasMarker(row []string) bool {
	for _, cell := range row {
		if containsMarker(cell, l.config.Marker) {
			return true
		}
	}
	return false
}

func (l *Locator) unitCells(row []string) int {
	n := 0
	for _, cell := range row {
		for _, w := range words(cell) {
			if l.units[w] {
				n++
				break
			}
		}
	}
	return n
}

// MarkerPosition returns the first column of row holding the marker
func (l *Locator) MarkerPosition(row []string) int {
	for i, cell := range row {
		if containsMarker(cell, l.config.Marker) {
			return i
		}
	}
	return -1
}
