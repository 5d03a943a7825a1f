// Package transform turns raw snapshots into canonical records and removes
// intra-batch duplicates. Both stages are pure, in-memory, and total:
// garbage input yields records the validator will reject, never an error.
package transform

import (
	"strconv"
	"strings"

	"rosteretl/internal/source"
	"rosteretl/pkg/records"
)

// Canonical field names recognized by the pipeline.
var Fields = []string{"email", "name", "year", "phone", "department"}

// NormalizeColumn canonicalizes a raw header cell: trimmed, lower-cased, and
// with spaces replaced by underscores.
func NormalizeColumn(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// Normalizer maps snapshot rows onto canonical records. The header is
// canonicalized once for the whole snapshot; the first occurrence of a column
// name wins when headers collide.
type Normalizer struct{}

// Apply converts every snapshot row into a Record. Missing columns yield nil
// for that field; requiredness belongs to validation, not here. Cell values
// are trimmed, emails are lower-cased, and year is coerced from string
// through float to int64 with truncation. When year coercion fails the raw
// string is kept so the validator can report the offending value.
func (Normalizer) Apply(snap *source.Snapshot) []records.Record {
	if snap.Empty() {
		return nil
	}

	idx := make(map[string]int, len(snap.Columns))
	for i, col := range snap.Columns {
		c := NormalizeColumn(col)
		if _, seen := idx[c]; !seen {
			idx[c] = i
		}
	}

	out := make([]records.Record, 0, len(snap.Rows))
	for _, row := range snap.Rows {
		rec := make(records.Record, len(Fields))
		for _, f := range Fields {
			rec[f] = cellValue(row, idx, f)
		}
		out = append(out, rec)
	}
	return out
}

// cellValue extracts and normalizes one field from a raw row. Absent or empty
// cells become nil.
func cellValue(row []string, idx map[string]int, field string) any {
	i, ok := idx[field]
	if !ok || i >= len(row) {
		return nil
	}
	s := strings.TrimSpace(row[i])
	if s == "" {
		return nil
	}
	switch field {
	case "email":
		return strings.ToLower(s)
	case "year":
		return coerceYear(s)
	default:
		return s
	}
}

// coerceYear attempts float parsing with truncation to integer, matching
// spreadsheet cells like "2" and "2.0". On failure the raw string is returned
// so the year validator can report it.
func coerceYear(s string) any {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return int64(f)
}
