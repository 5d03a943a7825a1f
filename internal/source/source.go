// Package source fetches tabular snapshots from external spreadsheet-shaped
// collaborators: the Google Sheets API, local XLSX workbooks, and local CSV
// files. All implementations return the same Snapshot shape so the rest of
// the pipeline never knows where rows came from.
package source

import (
	"context"
	"errors"
)

// ErrNotFound indicates the named spreadsheet, sheet, or tab does not exist.
var ErrNotFound = errors.New("source: sheet not found")

// ErrAuth indicates the source rejected the configured credentials.
var ErrAuth = errors.New("source: access denied")

// Snapshot is one extraction result: an ordered header plus the data rows in
// source order. Rows may be ragged; cells missing from a row are treated as
// absent downstream.
type Snapshot struct {
	Columns []string
	Rows    [][]string
}

// Empty reports whether the snapshot carries no data rows.
func (s *Snapshot) Empty() bool { return s == nil || len(s.Rows) == 0 }

// Source produces a snapshot of the upstream sheet.
type Source interface {
	Fetch(ctx context.Context) (*Snapshot, error)
}

// newSnapshot splits raw sheet values into header and data rows. The first
// row is the header; skipRows additionally discards that many rows after it.
func newSnapshot(values [][]string, skipRows int) *Snapshot {
	if len(values) == 0 {
		return &Snapshot{}
	}
	header := values[0]
	data := values[1:]
	if skipRows > 0 {
		if skipRows >= len(data) {
			data = nil
		} else {
			data = data[skipRows:]
		}
	}
	rows := make([][]string, 0, len(data))
	for _, r := range data {
		if blankRow(r) {
			continue
		}
		rows = append(rows, r)
	}
	return &Snapshot{Columns: header, Rows: rows}
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
