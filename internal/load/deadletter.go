package load

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zeebo/xxh3"

	"rosteretl/internal/storage"
	"rosteretl/internal/validate"
)

const insertInvalidSQL = `INSERT INTO invalid_rows (etl_run_id, raw_data, error_reason, row_number, fingerprint)
	VALUES ($1, $2, $3, $4, $5)`

// DeadLetter appends rejected records to the audit table. Pure append: re-running
// with identical rejected input produces duplicate entries, since the
// table is an audit trail rather than a deduplicated set. The fingerprint column is
// an xxh3 hash of the serialized payload so identical rejects can be grouped
// across runs.
type DeadLetter struct {
	Store storage.Store
}

// Record persists every invalid record tagged with the owning run and returns
// the number of rows written.
func (d *DeadLetter) Record(ctx context.Context, runID int64, rejected []validate.InvalidRecord) (int64, error) {
	if len(rejected) == 0 {
		return 0, nil
	}

	tuples := make([][]any, 0, len(rejected))
	for _, rec := range rejected {
		raw, err := json.Marshal(rec.Raw)
		if err != nil {
			return 0, fmt.Errorf("serialize row %d: %w", rec.RowNumber, err)
		}
		tuples = append(tuples, []any{
			runID,
			raw,
			rec.Reason,
			rec.RowNumber,
			fmt.Sprintf("%016x", xxh3.Hash(raw)),
		})
	}
	n, err := d.Store.ExecBatch(ctx, insertInvalidSQL, tuples)
	if err != nil {
		return n, fmt.Errorf("insert invalid rows: %w", err)
	}
	return n, nil
}
