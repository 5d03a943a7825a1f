package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// CSV reads a snapshot from a local CSV file. Mostly used for fixtures and
// offline runs; the reader is tolerant of ragged and loosely quoted input.
type CSV struct {
	Path     string
	Comma    rune
	SkipRows int
}

// Fetch reads the whole file into a snapshot.
func (c *CSV) Fetch(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, c.Path)
		}
		return nil, fmt.Errorf("open csv %s: %w", c.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	if c.Comma != 0 {
		r.Comma = c.Comma
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var values [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv %s: %w", c.Path, err)
		}
		row := make([]string, len(rec))
		copy(row, rec)
		values = append(values, row)
	}
	return newSnapshot(values, c.SkipRows), nil
}
