package coercer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// numberPattern matches the first signed decimal number of a cleaned cell
var numberPattern = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)

// Normalize converts one raw cell into a float. Empty cells, free text and
// anything without a number yield 0; it never fails.
//
// White space of every kind (including U+00A0 and U+202F used as thousands
// separators) is removed, decimal commas become decimal points, and the first
// signed decimal number found is returned. "12,5 ha" gives 12.5, "-3.2kg"
// gives -3.2, "N/A" gives 0.
func Normalize(raw string) float64 {
	v, _ := parse(raw)
	return v
}

// IsNumeric reports whether Normalize finds a number in raw
func IsNumeric(raw string) bool {
	_, ok := parse(raw)
	return ok
}

func parse(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\u200b' || r == '\ufeff' {
			return -1
		}
		if r == ',' {
			return '.'
		}
		return r
	}, raw)

	match := numberPattern.FindString(cleaned)
	if match == "" {
		return 0, false
	}

	val, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// NormalizeValue is Normalize for cells that may arrive already typed
func NormalizeValue(v interface{}) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case string:
		return Normalize(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0
		}
		return t
	case float32:
		return NormalizeValue(float64(t))
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return Normalize(fmt.Sprint(t))
	}
}

// Format renders v so that Normalize(Format(v)) == v
func Format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ColumnAnalysis summarizes how a raw column coerces
type ColumnAnalysis struct {
	TotalCount   int     `json:"total_count"`
	EmptyCount   int     `json:"empty_count"`
	NumericCount int     `json:"numeric_count"`
	NumericRatio float64 `json:"numeric_ratio"` // over non-empty cells
}

// AnalyzeColumn counts empty and numeric cells among raw values
func AnalyzeColumn(values []string) ColumnAnalysis {
	analysis := ColumnAnalysis{TotalCount: len(values)}
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			analysis.EmptyCount++
			continue
		}
		if IsNumeric(v) {
			analysis.NumericCount++
		}
	}
	if filled := analysis.TotalCount - analysis.EmptyCount; filled > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(filled)
	}
	return analysis
}
