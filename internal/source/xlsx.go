package source

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSX reads a sheet from a local Excel workbook.
type XLSX struct {
	Path      string
	SheetName string
	SkipRows  int
}

// Fetch opens the workbook and reads every populated row of the named sheet.
func (x *XLSX) Fetch(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(x.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", x.Path, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(x.SheetName)
	if err != nil {
		return nil, fmt.Errorf("sheet index: %w", err)
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, x.SheetName)
	}

	rows, err := f.GetRows(x.SheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", x.SheetName, err)
	}
	return newSnapshot(rows, x.SkipRows), nil
}
