package chart

import (
	"fmt"
	"io"
	"strings"

	"github.com/MAKRANE-cpu/monographie/adapters/datareadiness/coercer"
	"github.com/MAKRANE-cpu/monographie/domain/sheet"
	"github.com/MAKRANE-cpu/monographie/internal/errors"

	gochart "github.com/wcharczuk/go-chart/v2"
)

// Kind is a chart type served by the dashboard
type Kind string

const (
	KindBar Kind = "bar"
	KindPie Kind = "pie"
)

// ParseKind accepts bar and pie; anything else falls back to bar
func ParseKind(s string) Kind {
	if strings.EqualFold(strings.TrimSpace(s), string(KindPie)) {
		return KindPie
	}
	return KindBar
}

const (
	minWidth    = 800
	barSlot     = 48
	chartHeight = 500

	// pie slices beyond maxSlices are merged into one
	maxSlices  = 8
	otherLabel = "Autres"
)

// Render draws the series as the given kind
func Render(kind Kind, title string, pts []sheet.Point, w io.Writer) error {
	if kind == KindPie {
		return RenderPie(title, pts, w)
	}
	return RenderBar(title, pts, w)
}

// RenderBar draws one bar per point, in the given order, as PNG. An empty or
// all-zero series yields an EMPTY_SERIES error and writes nothing.
func RenderBar(title string, pts []sheet.Point, w io.Writer) error {
	if isEmpty(pts) {
		return errors.EmptySeries(title)
	}

	bars := make([]gochart.Value, 0, len(pts))
	for _, p := range pts {
		bars = append(bars, gochart.Value{Value: p.Value, Label: p.ID})
	}

	width := len(pts) * barSlot
	if width < minWidth {
		width = minWidth
	}

	bar := gochart.BarChart{
		Title:      title,
		Width:      width,
		Height:     chartHeight,
		BarWidth:   barSlot / 2,
		BarSpacing: barSlot / 2,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Bottom: 20}},
		XAxis:      gochart.Style{TextRotationDegrees: 45},
		YAxis: gochart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return coercer.Format(f)
				}
				return fmt.Sprint(v)
			},
		},
		Bars: bars,
	}

	if err := bar.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("failed to render bar chart: %w", err)
	}
	return nil
}

// RenderPie draws the positive points as PNG slices labelled with their
// share. Beyond the largest slices the remainder is grouped as "Autres".
func RenderPie(title string, pts []sheet.Point, w io.Writer) error {
	positive := make([]sheet.Point, 0, len(pts))
	total := 0.0
	for _, p := range pts {
		if p.Value > 0 {
			positive = append(positive, p)
			total += p.Value
		}
	}
	if total <= 0 {
		return errors.EmptySeries(title)
	}

	values := make([]gochart.Value, 0, maxSlices+1)
	other := 0.0
	for i, p := range positive {
		if i >= maxSlices {
			other += p.Value
			continue
		}
		values = append(values, gochart.Value{Value: p.Value, Label: sliceLabel(p.ID, p.Value, total)})
	}
	if other > 0 {
		values = append(values, gochart.Value{Value: other, Label: sliceLabel(otherLabel, other, total)})
	}

	pie := gochart.PieChart{
		Title:  title,
		Width:  minWidth,
		Height: minWidth,
		Values: values,
	}

	if err := pie.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("failed to render pie chart: %w", err)
	}
	return nil
}

func sliceLabel(id string, v, total float64) string {
	return fmt.Sprintf("%s (%.1f%%)", id, v/total*100)
}

func isEmpty(pts []sheet.Point) bool {
	for _, p := range pts {
		if p.Value != 0 {
			return false
		}
	}
	return true
}
