package header

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// fold trims every kind of white space, composes accents and lower-cases, so
// that "  COMMUNE ", "Commune" and a decomposed "Commune" compare equal.
func fold(s string) string {
	s = strings.TrimFunc(s, unicode.IsSpace)
	return strings.ToLower(norm.NFC.String(s))
}

// containsMarker is the case- and space-insensitive substring match used both
// to find the header row and to name the identifier column.
func containsMarker(cell, marker string) bool {
	c := fold(cell)
	if c == "" {
		return false
	}
	return strings.Contains(c, fold(marker))
}

// words splits a cell into lower-case letter/digit runs
func words(cell string) []string {
	return strings.FieldsFunc(fold(cell), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isPlaceholder(cell string) bool {
	return strings.HasPrefix(fold(cell), "unnamed")
}

func clean(s string) string {
	return norm.NFC.String(strings.TrimFunc(s, unicode.IsSpace))
}
