// Package quality records run-level bookkeeping in etl_runs and answers
// analytical queries over the append-only run history and the dead-letter
// table. Operational (push-based) metrics live elsewhere; everything in this
// package is durable and reproducible from the store.
package quality

import (
	"context"
	"fmt"
	"time"

	"rosteretl/internal/storage"
)

// Status is the terminal (or transitional) state of a run.
type Status string

const (
	StatusInProgress     Status = "in_progress"
	StatusSuccess        Status = "success"
	StatusPartialSuccess Status = "partial_success"
	StatusFailed         Status = "failed"
)

// RunCounts are the aggregate counters finalized onto a run.
type RunCounts struct {
	TotalRows       int64
	ValidRows       int64
	InvalidRows     int64
	DuplicateEmails int64
	InsertedRows    int64
	SkippedRows     int64
}

const (
	startRunSQL = `INSERT INTO etl_runs
		(total_rows, valid_rows, invalid_rows, duplicate_emails, inserted_rows, skipped_rows, updated_rows, status)
		VALUES (0, 0, 0, 0, 0, 0, 0, $1)
		RETURNING id`

	finalizeRunSQL = `UPDATE etl_runs
		SET status = $1,
		    total_rows = $2,
		    valid_rows = $3,
		    invalid_rows = $4,
		    duplicate_emails = $5,
		    inserted_rows = $6,
		    skipped_rows = $7,
		    duration_seconds = $8,
		    error_message = $9
		WHERE id = $10`
)

// Tracker creates and finalizes run rows. A run is created once with zero
// counts and in_progress status, then mutated exactly once at finalization.
// Rows are never deleted; the history feeds the trend queries.
type Tracker struct {
	Store storage.Store
}

// StartRun inserts the placeholder run row and returns its id.
func (t *Tracker) StartRun(ctx context.Context) (int64, error) {
	var id int64
	err := t.Store.Query(ctx, startRunSQL, []any{string(StatusInProgress)}, func(row storage.Row) error {
		return row.Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("create run record: %w", err)
	}
	return id, nil
}

// FinalizeRun writes the terminal status, counts, and duration. An empty
// errMsg persists as NULL.
func (t *Tracker) FinalizeRun(ctx context.Context, id int64, status Status, counts RunCounts, duration time.Duration, errMsg string) error {
	var msg any
	if errMsg != "" {
		msg = errMsg
	}
	_, err := t.Store.Exec(ctx, finalizeRunSQL,
		string(status),
		counts.TotalRows,
		counts.ValidRows,
		counts.InvalidRows,
		counts.DuplicateEmails,
		counts.InsertedRows,
		counts.SkippedRows,
		duration.Seconds(),
		msg,
		id,
	)
	if err != nil {
		return fmt.Errorf("finalize run %d: %w", id, err)
	}
	return nil
}
