package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleTable() *Table {
	return &Table{
		Name:     "Céréales",
		IDColumn: "Commune",
		Columns:  []string{"Blé_Surface", "Blé_Rendement"},
		Rows: []Row{
			{ID: "Bab Taza", Values: []float64{120, 14.5}},
			{ID: "Tanaqob", Values: []float64{80, 11}},
			{ID: "Fifi", Values: []float64{40, 9.2}},
		},
	}
}

func TestTableSeries(t *testing.T) {
	tbl := sampleTable()

	pts, err := tbl.Series("Blé_Rendement")
	assert.NoError(t, err)
	assert.Equal(t, []Point{{"Bab Taza", 14.5}, {"Tanaqob", 11}, {"Fifi", 9.2}}, pts)

	_, err = tbl.Series("Orge_Surface")
	assert.Error(t, err)
}

func TestTableColumnAndLookup(t *testing.T) {
	tbl := sampleTable()

	col, err := tbl.Column("Blé_Surface")
	assert.NoError(t, err)
	assert.Equal(t, []float64{120, 80, 40}, col)

	row, ok := tbl.Lookup("Tanaqob")
	assert.True(t, ok)
	assert.Equal(t, 11.0, row.Values[1])

	_, ok = tbl.Lookup("Chefchaouen")
	assert.False(t, ok)
}

func TestTableHead(t *testing.T) {
	tbl := sampleTable()
	assert.Len(t, tbl.Head(2).Rows, 2)
	assert.Len(t, tbl.Head(10).Rows, 3)
	assert.Len(t, tbl.Head(-1).Rows, 0)
	assert.Equal(t, []string{"Commune", "Blé_Surface", "Blé_Rendement"}, tbl.Header())
}

func TestCollectionKeepsOrder(t *testing.T) {
	c := NewCollection()
	c.Add(&Table{Name: "Oléiculture"})
	c.Add(&Table{Name: "Céréales"})
	c.Add(&Table{Name: "Oléiculture", Columns: []string{"Olivier_Surface"}})

	assert.Equal(t, []string{"Oléiculture", "Céréales"}, c.Names())
	assert.Equal(t, 2, c.Len())

	tbl, ok := c.Get("Oléiculture")
	assert.True(t, ok)
	assert.Equal(t, []string{"Olivier_Surface"}, tbl.Columns)

	var nilCollection *Collection
	assert.Equal(t, 0, nilCollection.Len())
}

func TestGridCell(t *testing.T) {
	g := Grid{{"a", "b"}, {"c"}}
	assert.Equal(t, "b", g.Cell(0, 1))
	assert.Equal(t, "", g.Cell(1, 1))
	assert.Equal(t, "", g.Cell(5, 0))
	assert.Nil(t, g.Row(3))
}
