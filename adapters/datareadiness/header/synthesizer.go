package header

import (
	"fmt"

	"github.com/MAKRANE-cpu/monographie/adapters/datareadiness/coercer"
)

// NamingConfig controls how the two header rows become column names
type NamingConfig struct {
	Marker            string `json:"marker"`
	IDName            string `json:"id_name"`            // canonical identifier column name
	Separator         string `json:"separator"`          // between category and sub-label
	PlaceholderPrefix string `json:"placeholder_prefix"` // for positions with no label at all
	Dedupe            bool   `json:"dedupe"`
}

// DefaultNamingConfig returns the naming used across every table
func DefaultNamingConfig() NamingConfig {
	return NamingConfig{
		Marker:            "commune",
		IDName:            "Commune",
		Separator:         "_",
		PlaceholderPrefix: "Col_",
		Dedupe:            true,
	}
}

// Synthesizer turns a header row and its sub-header row into column names
type Synthesizer struct {
	config NamingConfig
}

// NewSynthesizer creates a synthesizer; empty string fields take their defaults
func NewSynthesizer(config NamingConfig) *Synthesizer {
	def := DefaultNamingConfig()
	if config.Marker == "" {
		config.Marker = def.Marker
	}
	if config.IDName == "" {
		config.IDName = def.IDName
	}
	if config.Separator == "" {
		config.Separator = def.Separator
	}
	if config.PlaceholderPrefix == "" {
		config.PlaceholderPrefix = def.PlaceholderPrefix
	}
	return &Synthesizer{config: config}
}

// Config returns the effective configuration
func (s *Synthesizer) Config() NamingConfig {
	return s.config
}

// NamesRaw produces one name per position without deduplication.
//
// A non-empty primary cell opens a category that carries rightward over the
// empty cells of a merged header until the next non-empty primary cell.
func (s *Synthesizer) NamesRaw(header, sub []string) []string {
	width := len(header)
	if len(sub) > width {
		width = len(sub)
	}

	names := make([]string, width)
	category := ""
	for i := 0; i < width; i++ {
		primary := cellAt(header, i)
		secondary := cellAt(sub, i)

		if primary != "" && !isPlaceholder(primary) {
			category = primary
		}

		switch {
		case containsMarker(primary, s.config.Marker) || containsMarker(secondary, s.config.Marker):
			names[i] = s.config.IDName
		case secondary != "" && secondary != primary && !isPlaceholder(secondary):
			if category == "" {
				names[i] = secondary
			} else {
				names[i] = category + s.config.Separator + secondary
			}
		case category != "":
			names[i] = category
		default:
			names[i] = fmt.Sprintf("%s%d", s.config.PlaceholderPrefix, i)
		}
	}
	return names
}

// Names is NamesRaw followed, when Dedupe is set, by suffixing repeated names
// with the separator and an occurrence number ("Orge_Surface_2").
func (s *Synthesizer) Names(header, sub []string) []string {
	names := s.NamesRaw(header, sub)
	if !s.config.Dedupe {
		return names
	}
	return Dedupe(names, s.config.Separator)
}

// Dedupe keeps the first occurrence of each name and renames later ones
func Dedupe(names []string, separator string) []string {
	used := make(map[string]bool, len(names))
	for _, n := range names {
		used[n] = true
	}

	seen := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, n := range names {
		seen[n]++
		if seen[n] == 1 {
			out[i] = n
			continue
		}
		k := seen[n]
		candidate := fmt.Sprintf("%s%s%d", n, separator, k)
		for used[candidate] {
			k++
			candidate = fmt.Sprintf("%s%s%d", n, separator, k)
		}
		seen[n] = k
		used[candidate] = true
		out[i] = candidate
	}
	return out
}

// IsSubHeader reports whether the row beneath the header row is a second
// header line rather than the first data row: its cells outside the
// identifier position hold labels and no number. The identifier cell may carry
// anything ("Nom", "Unité", "(1)").
func (s *Synthesizer) IsSubHeader(row []string, idPos int) bool {
	if row == nil {
		return false
	}
	labelled := false
	for i := range row {
		if i == idPos {
			continue
		}
		cell := cellAt(row, i)
		if cell == "" {
			continue
		}
		if coercer.IsNumeric(cell) {
			return false
		}
		labelled = true
	}
	return labelled || containsMarker(cellAt(row, idPos), s.config.Marker)
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return clean(row[i])
}
