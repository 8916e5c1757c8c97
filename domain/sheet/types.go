package sheet

import (
	"fmt"
)

// Grid is the raw content of one worksheet: rows of text cells, possibly ragged
type Grid [][]string

// Cell returns the cell at (row, col) or "" when the position is outside the grid
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return ""
	}
	return g[row][col]
}

// Row returns row i or nil when out of range
func (g Grid) Row(i int) []string {
	if i < 0 || i >= len(g) {
		return nil
	}
	return g[i]
}

// Worksheet is one tab of the source spreadsheet
type Worksheet struct {
	Title string
	Grid  Grid
}

// Point is one identifier/value pair of a column series
type Point struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

// Row is one administrative unit of a cleaned table
type Row struct {
	ID     string    `json:"id"`
	Values []float64 `json:"values"`
}

// Table is a cleaned worksheet. Columns holds the measure columns in sheet
// order; the identifier column is kept apart under IDColumn.
type Table struct {
	Name     string   `json:"name"`
	IDColumn string   `json:"id_column"`
	Columns  []string `json:"columns"`
	Rows     []Row    `json:"rows"`
}

// ColumnIndex returns the position of a measure column
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// Column returns every value of a measure column in row order
func (t *Table) Column(name string) ([]float64, error) {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("table %q has no column %q", t.Name, name)
	}
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Values[idx]
	}
	return out, nil
}

// Series pairs each identifier with its value in the named column
func (t *Table) Series(name string) ([]Point, error) {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("table %q has no column %q", t.Name, name)
	}
	out := make([]Point, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = Point{ID: r.ID, Value: r.Values[idx]}
	}
	return out, nil
}

// Lookup finds the first row with the given identifier
func (t *Table) Lookup(id string) (Row, bool) {
	for _, r := range t.Rows {
		if r.ID == id {
			return r, true
		}
	}
	return Row{}, false
}

// Head returns a table sharing columns with t and holding at most n rows
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &Table{
		Name:     t.Name,
		IDColumn: t.IDColumn,
		Columns:  t.Columns,
		Rows:     t.Rows[:n],
	}
}

// Header returns the full header line, identifier first
func (t *Table) Header() []string {
	out := make([]string, 0, len(t.Columns)+1)
	out = append(out, t.IDColumn)
	return append(out, t.Columns...)
}

// Collection maps worksheet titles to cleaned tables, keeping load order
type Collection struct {
	order  []string
	tables map[string]*Table
}

// NewCollection creates an empty collection
func NewCollection() *Collection {
	return &Collection{tables: make(map[string]*Table)}
}

// Add stores t under its name, replacing any previous table of that name
func (c *Collection) Add(t *Table) {
	if _, exists := c.tables[t.Name]; !exists {
		c.order = append(c.order, t.Name)
	}
	c.tables[t.Name] = t
}

// Get returns the table loaded from the named worksheet
func (c *Collection) Get(name string) (*Table, bool) {
	if c == nil {
		return nil, false
	}
	t, ok := c.tables[name]
	return t, ok
}

// Names lists worksheet titles in load order
func (c *Collection) Names() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Tables lists tables in load order
func (c *Collection) Tables() []*Table {
	if c == nil {
		return nil
	}
	out := make([]*Table, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.tables[name])
	}
	return out
}

func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// SkippedSheet records a worksheet omitted from a lenient load
type SkippedSheet struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// LoadReport describes what a load kept and what it dropped
type LoadReport struct {
	Loaded  []string       `json:"loaded"`
	Skipped []SkippedSheet `json:"skipped"`
}
