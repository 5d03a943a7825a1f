// Package load persists the outcome of a run: valid records into the
// students table with insert-or-skip semantics, rejected records into the
// dead-letter table.
package load

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"rosteretl/internal/storage"
	"rosteretl/pkg/records"
)

const (
	insertStudentSQL = `INSERT INTO students (email, name, department_id, year, phone)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING`

	insertDepartmentSQL = `INSERT INTO departments (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`

	selectDepartmentsSQL = `SELECT id, name FROM departments WHERE name = ANY($1)`
)

// Result aggregates insert-or-skip accounting across all batches.
type Result struct {
	Inserted int64
	Skipped  int64
}

// StudentLoader writes valid records through the store in fixed-size batches.
//
// Loading the same record set twice is a no-op the second time: the unique
// email constraint turns repeats into skips, and the driver-reported
// affected-row count is what separates inserted from skipped. Departments are
// resolved before any student batch starts; that ordering is a hard edge even
// when batches run in parallel.
type StudentLoader struct {
	Store     storage.Store
	BatchSize int
	Workers   int
	Log       *logrus.Logger
}

// Load persists records and returns aggregate counts. Any persistence error
// aborts remaining batches and propagates; batches committed before the
// failure stay committed and are reflected in the returned counts.
func (l *StudentLoader) Load(ctx context.Context, recs []records.Record) (Result, error) {
	if len(recs) == 0 {
		l.logger().Info("no records to load")
		return Result{}, nil
	}

	batchSize := l.BatchSize
	if batchSize < 1 {
		batchSize = 100
	}

	deptIDs, err := l.resolveDepartments(ctx, recs)
	if err != nil {
		return Result{}, err
	}

	var inserted, skipped atomic.Int64
	start := time.Now()

	workers := l.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < len(recs); i += batchSize {
		end := i + batchSize
		if end > len(recs) {
			end = len(recs)
		}
		batch := recs[i:end]
		batchNum := i/batchSize + 1

		g.Go(func() error {
			n, err := l.loadBatch(gctx, batch, deptIDs)
			if err != nil {
				return fmt.Errorf("batch %d: %w", batchNum, err)
			}
			ins := inserted.Add(n)
			skipped.Add(int64(len(batch)) - n)

			elapsed := time.Since(start)
			rps := float64(0)
			if elapsed > 0 {
				rps = float64(ins) / elapsed.Seconds()
			}
			l.logger().WithFields(logrus.Fields{
				"batch":          batchNum,
				"inserted":       n,
				"skipped":        int64(len(batch)) - n,
				"total_inserted": ins,
				"rps":            fmt.Sprintf("%.0f", rps),
			}).Debug("batch flushed")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{Inserted: inserted.Load(), Skipped: skipped.Load()}, err
	}

	res := Result{Inserted: inserted.Load(), Skipped: skipped.Load()}
	l.logger().WithFields(logrus.Fields{
		"records":  len(recs),
		"inserted": res.Inserted,
		"skipped":  res.Skipped,
		"elapsed":  time.Since(start).Truncate(time.Millisecond).String(),
	}).Info("students loaded")
	return res, nil
}

// loadBatch runs one batched insert; the summed affected count is the number
// of rows that were genuinely new.
func (l *StudentLoader) loadBatch(ctx context.Context, batch []records.Record, deptIDs map[string]int64) (int64, error) {
	tuples := make([][]any, 0, len(batch))
	for _, rec := range batch {
		var deptID any
		if name, isStr := rec["department"].(string); isStr && name != "" {
			if id, known := deptIDs[name]; known {
				deptID = id
			}
		}
		tuples = append(tuples, []any{
			rec["email"],
			rec["name"],
			deptID,
			rec["year"],
			rec["phone"],
		})
	}
	n, err := l.Store.ExecBatch(ctx, insertStudentSQL, tuples)
	if err != nil {
		return n, fmt.Errorf("insert students: %w", err)
	}
	return n, nil
}

// resolveDepartments ensures every referenced department exists and returns
// the name to id mapping for exactly the referenced set. The insert ignores
// conflicts, so the follow-up lookup is what supplies the ids even when a
// concurrent run raced the insert.
func (l *StudentLoader) resolveDepartments(ctx context.Context, recs []records.Record) (map[string]int64, error) {
	nameSet := make(map[string]struct{})
	for _, rec := range recs {
		if name, isStr := rec["department"].(string); isStr && name != "" {
			nameSet[name] = struct{}{}
		}
	}
	if len(nameSet) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(nameSet))
	for name := range nameSet {
		names = append(names, name)
	}
	sort.Strings(names)

	tuples := make([][]any, 0, len(names))
	for _, name := range names {
		tuples = append(tuples, []any{name})
	}
	if _, err := l.Store.ExecBatch(ctx, insertDepartmentSQL, tuples); err != nil {
		return nil, fmt.Errorf("ensure departments: %w", err)
	}

	ids := make(map[string]int64, len(names))
	err := l.Store.Query(ctx, selectDepartmentsSQL, []any{names}, func(row storage.Row) error {
		var (
			id   int64
			name string
		)
		if err := row.Scan(&id, &name); err != nil {
			return err
		}
		ids[name] = id
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("lookup departments: %w", err)
	}

	l.logger().WithField("departments", len(ids)).Debug("departments resolved")
	return ids, nil
}

func (l *StudentLoader) logger() *logrus.Logger {
	if l.Log != nil {
		return l.Log
	}
	return logrus.StandardLogger()
}
