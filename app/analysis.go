package app

import (
	"sort"
	"strings"
	"unicode"

	"github.com/MAKRANE-cpu/monographie/domain/sheet"
	"github.com/MAKRANE-cpu/monographie/internal/errors"

	"github.com/montanaflynn/stats"
	"golang.org/x/text/unicode/norm"
	"gonum.org/v1/gonum/floats"
)

// Summary is the descriptive statistics of one measure column
type Summary struct {
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"25%"`
	Median float64 `json:"50%"`
	Q75    float64 `json:"75%"`
	Max    float64 `json:"max"`
}

// Describe computes count, sum, mean, sample standard deviation, extremes and
// quartiles of a column. A table without rows yields a zero Summary.
func Describe(t *sheet.Table, column string) (Summary, error) {
	data, err := t.Column(column)
	if err != nil {
		return Summary{}, errors.WithCode(errors.CodeNotFound, err)
	}
	return describe(data)
}

func describe(data []float64) (Summary, error) {
	summary := Summary{Count: len(data)}
	if len(data) == 0 {
		return summary, nil
	}

	var err error
	summary.Sum = floats.Sum(data)
	if summary.Mean, err = stats.Mean(data); err != nil {
		return summary, err
	}
	if len(data) > 1 {
		if summary.Std, err = stats.StandardDeviationSample(data); err != nil {
			return summary, err
		}
	}
	if summary.Min, err = stats.Min(data); err != nil {
		return summary, err
	}
	if summary.Max, err = stats.Max(data); err != nil {
		return summary, err
	}
	if summary.Median, err = stats.Median(data); err != nil {
		return summary, err
	}
	if summary.Q25, err = stats.Percentile(data, 25); err != nil {
		return summary, err
	}
	if summary.Q75, err = stats.Percentile(data, 75); err != nil {
		return summary, err
	}
	return summary, nil
}

// DescribeTable runs Describe over every measure column
func DescribeTable(t *sheet.Table) map[string]Summary {
	out := make(map[string]Summary, len(t.Columns))
	for _, c := range t.Columns {
		if s, err := Describe(t, c); err == nil {
			out[c] = s
		}
	}
	return out
}

// SheetKind groups worksheets by the kind of chart that suits them
type SheetKind string

const (
	SheetKindAgricultural SheetKind = "agricultural"
	SheetKindClimate      SheetKind = "climate"
	SheetKindWater        SheetKind = "water"
	SheetKindParcel       SheetKind = "parcel"
	SheetKindGeneric      SheetKind = "generic"
)

var sheetKindKeywords = []struct {
	kind     SheetKind
	keywords []string
}{
	{SheetKindAgricultural, []string{"culture", "production", "rendement", "céréale", "cereale", "arboriculture", "élevage", "elevage"}},
	{SheetKindClimate, []string{"climat", "meteo", "météo", "temperature", "température", "pluviométrie", "pluviometrie"}},
	{SheetKindWater, []string{"eau", "water", "irrigation", "barrage"}},
	{SheetKindParcel, []string{"parcelle", "terrain", "foncier"}},
}

// ClassifySheet guesses the kind of a worksheet from its title. The first
// matching group wins, in the order agricultural, climate, water, parcel.
func ClassifySheet(name string) SheetKind {
	folded := foldText(name)
	for _, group := range sheetKindKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(folded, foldText(kw)) {
				return group.kind
			}
		}
	}
	return SheetKindGeneric
}

// Column keyword presets for PickColumn
var (
	SurfaceKeywords     = []string{"surface", "superficie", "ha"}
	ProductionKeywords  = []string{"production", "tonne"}
	YieldKeywords       = []string{"rendement", "qx"}
	RainfallKeywords    = []string{"precip", "pluie", "mm"}
	TemperatureKeywords = []string{"temp"}
)

// PickColumn returns the first measure column whose name contains any keyword.
// Keywords of two letters or less must match a whole word ("ha" does not
// match "Chaouen").
func PickColumn(t *sheet.Table, keywords ...string) (string, bool) {
	for _, c := range t.Columns {
		folded := foldText(c)
		for _, kw := range keywords {
			kw = foldText(kw)
			if kw == "" {
				continue
			}
			if len([]rune(kw)) <= 2 {
				if hasWord(folded, kw) {
					return c, true
				}
				continue
			}
			if strings.Contains(folded, kw) {
				return c, true
			}
		}
	}
	return "", false
}

// TopN returns the n highest points, ties broken by identifier. A
// non-positive n returns every point sorted.
func TopN(points []sheet.Point, n int) []sheet.Point {
	sorted := make([]sheet.Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Value != sorted[j].Value {
			return sorted[i].Value > sorted[j].Value
		}
		return sorted[i].ID < sorted[j].ID
	})
	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

func foldText(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimFunc(s, unicode.IsSpace)))
}

func hasWord(s, word string) bool {
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if w == word {
			return true
		}
	}
	return false
}
