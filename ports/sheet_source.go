package ports

import (
	"context"

	"github.com/MAKRANE-cpu/monographie/domain/sheet"
)

// SheetSource retrieves every worksheet of a spreadsheet as raw string grids.
// An error means the spreadsheet itself is unreachable; a worksheet that is
// merely malformed is still returned and left to the assembler.
type SheetSource interface {
	Worksheets(ctx context.Context, spreadsheetID string) ([]sheet.Worksheet, error)
}
