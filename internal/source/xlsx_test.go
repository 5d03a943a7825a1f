package source

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"Email", "Name", "Year"},
		{"a@example.com", "Alice Smith", 2},
		{"b@example.com", "Bob Stone", 3},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "students.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

/*
TestXLSXFetch verifies reading a generated workbook end to end, including
numeric cells arriving as strings.
*/
func TestXLSXFetch(t *testing.T) {
	path := writeWorkbook(t)

	snap, err := (&XLSX{Path: path, SheetName: "Sheet1"}).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(snap.Columns) != 3 || snap.Columns[0] != "Email" {
		t.Fatalf("columns=%v", snap.Columns)
	}
	if len(snap.Rows) != 2 || snap.Rows[0][0] != "a@example.com" || snap.Rows[1][2] != "3" {
		t.Fatalf("rows=%v", snap.Rows)
	}
}

/*
TestXLSXFetch_MissingSheet verifies an unknown sheet name maps to
ErrNotFound.
*/
func TestXLSXFetch_MissingSheet(t *testing.T) {
	path := writeWorkbook(t)

	_, err := (&XLSX{Path: path, SheetName: "Nope"}).Fetch(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v; want ErrNotFound", err)
	}
}
