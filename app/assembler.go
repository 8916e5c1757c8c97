package app

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/MAKRANE-cpu/monographie/adapters/datareadiness/coercer"
	"github.com/MAKRANE-cpu/monographie/adapters/datareadiness/header"
	"github.com/MAKRANE-cpu/monographie/domain/sheet"
	"github.com/MAKRANE-cpu/monographie/internal"
	"github.com/MAKRANE-cpu/monographie/internal/errors"

	"golang.org/x/text/unicode/norm"
)

// LoadMode decides what happens to a worksheet that cannot be cleaned
type LoadMode string

const (
	// LoadModeLenient omits the worksheet, logs it and records it in the report
	LoadModeLenient LoadMode = "lenient"
	// LoadModeStrict aborts the whole load on the first bad worksheet
	LoadModeStrict LoadMode = "strict"
)

// ParseLoadMode maps "strict" to LoadModeStrict and anything else to lenient
func ParseLoadMode(s string) LoadMode {
	if strings.EqualFold(strings.TrimSpace(s), string(LoadModeStrict)) {
		return LoadModeStrict
	}
	return LoadModeLenient
}

// AssemblerConfig gathers every layout assumption about the source workbook
type AssemblerConfig struct {
	Header          header.HeaderConfig `json:"header"`
	Naming          header.NamingConfig `json:"naming"`
	AggregateTokens []string            `json:"aggregate_tokens"`
	Mode            LoadMode            `json:"mode"`
}

// DefaultAggregateTokens are identifier values that denote total rows
var DefaultAggregateTokens = []string{"total", "s/t", "sous-total", "sous total", "subtotal", "st"}

// abbreviatedTokens only denote a total when they make up the whole cell;
// "Bab St Ahmed" is a commune
var abbreviatedTokens = map[string]bool{"st": true, "s/t": true}

// DefaultAssemblerConfig returns sensible defaults for the Chefchaouen workbook
func DefaultAssemblerConfig() AssemblerConfig {
	return AssemblerConfig{
		Header:          header.DefaultHeaderConfig(),
		Naming:          header.DefaultNamingConfig(),
		AggregateTokens: DefaultAggregateTokens,
		Mode:            LoadModeLenient,
	}
}

// Assembler turns raw worksheets into cleaned tables
type Assembler struct {
	config    AssemblerConfig
	locator   *header.Locator
	synth     *header.Synthesizer
	aggregate *regexp.Regexp
	wholeCell *regexp.Regexp
	logger    *internal.Logger
}

// NewAssembler creates an assembler. A nil logger uses the default logger.
func NewAssembler(config AssemblerConfig, logger *internal.Logger) *Assembler {
	if config.Mode == "" {
		config.Mode = LoadModeLenient
	}
	if config.AggregateTokens == nil {
		config.AggregateTokens = DefaultAggregateTokens
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	return &Assembler{
		config:    config,
		locator:   header.NewLocator(config.Header),
		synth:     header.NewSynthesizer(config.Naming),
		aggregate: aggregatePattern(wordTokens(config.AggregateTokens, false), false),
		wholeCell: aggregatePattern(wordTokens(config.AggregateTokens, true), true),
		logger:    logger.With("Assembler"),
	}
}

// wordTokens splits the configured tokens into abbreviations and the rest
func wordTokens(tokens []string, abbreviated bool) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok != "" && abbreviatedTokens[strings.ToLower(tok)] == abbreviated {
			out = append(out, tok)
		}
	}
	return out
}

// aggregatePattern matches any token standing as a whole word of the cell,
// or, when anchored, as the whole cell
func aggregatePattern(tokens []string, anchored bool) *regexp.Regexp {
	quoted := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		quoted = append(quoted, regexp.QuoteMeta(norm.NFC.String(tok)))
	}
	if len(quoted) == 0 {
		return nil
	}
	alternation := `(?:` + strings.Join(quoted, "|") + `)`
	if anchored {
		return regexp.MustCompile(`(?i)^` + alternation + `$`)
	}
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])` + alternation + `(?:$|[^\p{L}\p{N}])`)
}

// Config returns the effective configuration
func (a *Assembler) Config() AssemblerConfig {
	return a.config
}

// IsAggregate reports whether an identifier cell names a total or subtotal row
func (a *Assembler) IsAggregate(id string) bool {
	id = norm.NFC.String(strings.TrimFunc(id, unicode.IsSpace))
	if a.wholeCell != nil && a.wholeCell.MatchString(id) {
		return true
	}
	return a.aggregate != nil && a.aggregate.MatchString(id)
}

// Assemble cleans one worksheet: header location, column naming, data
// slicing beneath the header rows, identifier filtering and numeric
// normalization of every other column.
func (a *Assembler) Assemble(ws sheet.Worksheet) (*sheet.Table, error) {
	grid := ws.Grid

	hdr, ok := a.locator.Locate(grid)
	if !ok {
		return nil, errors.HeaderNotFound(ws.Title, a.locator.Config().ScanRows)
	}

	headerRow := grid[hdr]
	dataStart := hdr + 1
	var subRow []string
	if next := grid.Row(hdr + 1); a.synth.IsSubHeader(next, a.locator.MarkerPosition(headerRow)) {
		subRow = next
		dataStart = hdr + 2
	}

	names := a.synth.Names(headerRow, subRow)
	idName := a.synth.Config().IDName
	idPos := -1
	for i, n := range names {
		if n == idName {
			idPos = i
			break
		}
	}
	if idPos < 0 {
		return nil, errors.NoIdentifier(ws.Title)
	}

	columns := make([]string, 0, len(names)-1)
	for i, n := range names {
		if i != idPos {
			columns = append(columns, n)
		}
	}

	table := &sheet.Table{
		Name:     ws.Title,
		IDColumn: idName,
		Columns:  columns,
		Rows:     make([]sheet.Row, 0, len(grid)),
	}

	dropped := 0
	for r := dataStart; r < len(grid); r++ {
		id := strings.TrimFunc(grid.Cell(r, idPos), unicode.IsSpace)
		if id == "" || a.IsAggregate(id) {
			dropped++
			continue
		}

		values := make([]float64, 0, len(columns))
		for j := range names {
			if j == idPos {
				continue
			}
			values = append(values, coercer.Normalize(grid.Cell(r, j)))
		}
		table.Rows = append(table.Rows, sheet.Row{ID: id, Values: values})
	}

	a.logger.Debug("worksheet %q: header at row %d, %d columns, %d rows kept, %d dropped",
		ws.Title, hdr, len(columns), len(table.Rows), dropped)
	return table, nil
}

// AssembleAll cleans worksheets one after the other. In lenient mode a failing
// worksheet is left out of the collection and listed in the report; in strict
// mode the first failure is returned.
func (a *Assembler) AssembleAll(sheets []sheet.Worksheet) (*sheet.Collection, sheet.LoadReport, error) {
	collection := sheet.NewCollection()
	report := sheet.LoadReport{}

	for _, ws := range sheets {
		table, err := a.safeAssemble(ws)
		if err != nil {
			if a.config.Mode == LoadModeStrict {
				return nil, report, errors.Wrapf(err, "worksheet %q", ws.Title)
			}
			a.logger.Warn("skipping worksheet %q: %v", ws.Title, err)
			report.Skipped = append(report.Skipped, sheet.SkippedSheet{Title: ws.Title, Reason: err.Error()})
			continue
		}
		collection.Add(table)
		report.Loaded = append(report.Loaded, ws.Title)
	}

	a.logger.Info("%d worksheet(s) loaded, %d skipped", len(report.Loaded), len(report.Skipped))
	return collection, report, nil
}

// safeAssemble turns a panic on malformed input into an error
func (a *Assembler) safeAssemble(ws sheet.Worksheet) (table *sheet.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			table = nil
			err = errors.InternalError(fmt.Sprintf("worksheet %q: %v", ws.Title, r))
		}
	}()
	return a.Assemble(ws)
}
