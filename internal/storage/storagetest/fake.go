// Package storagetest provides a scripted in-memory storage.Store for unit
// tests. Behavior is injected per test through function hooks; every call is
// recorded so tests can assert on the SQL and arguments that reached the
// store without a live database.
package storagetest

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"rosteretl/internal/storage"
)

// QueryCall records one Query invocation.
type QueryCall struct {
	SQL  string
	Args []any
}

// ExecCall records one Exec invocation.
type ExecCall struct {
	SQL  string
	Args []any
}

// BatchCall records one ExecBatch invocation.
type BatchCall struct {
	SQL    string
	Tuples [][]any
}

// Store implements storage.Store with scripted behavior. Nil hooks default to
// benign outcomes: Query yields no rows, Exec reports one affected row, and
// ExecBatch reports one affected row per tuple.
type Store struct {
	QueryFunc func(sql string, args []any, fn func(storage.Row) error) error
	ExecFunc  func(sql string, args []any) (int64, error)
	BatchFunc func(sql string, tuples [][]any) (int64, error)

	mu      sync.Mutex
	queries []QueryCall
	execs   []ExecCall
	batches []BatchCall
	closed  bool
}

var _ storage.Store = (*Store)(nil)

func (s *Store) Query(ctx context.Context, sql string, args []any, fn func(storage.Row) error) error {
	s.mu.Lock()
	s.queries = append(s.queries, QueryCall{SQL: sql, Args: args})
	s.mu.Unlock()
	if s.QueryFunc == nil {
		return nil
	}
	return s.QueryFunc(sql, args, fn)
}

func (s *Store) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	s.mu.Lock()
	s.execs = append(s.execs, ExecCall{SQL: sql, Args: args})
	s.mu.Unlock()
	if s.ExecFunc == nil {
		return 1, nil
	}
	return s.ExecFunc(sql, args)
}

func (s *Store) ExecBatch(ctx context.Context, sql string, tuples [][]any) (int64, error) {
	s.mu.Lock()
	s.batches = append(s.batches, BatchCall{SQL: sql, Tuples: tuples})
	s.mu.Unlock()
	if s.BatchFunc == nil {
		return int64(len(tuples)), nil
	}
	return s.BatchFunc(sql, tuples)
}

func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Queries returns a copy of the recorded Query calls.
func (s *Store) Queries() []QueryCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]QueryCall(nil), s.queries...)
}

// Execs returns a copy of the recorded Exec calls.
func (s *Store) Execs() []ExecCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ExecCall(nil), s.execs...)
}

// Batches returns a copy of the recorded ExecBatch calls.
func (s *Store) Batches() []BatchCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]BatchCall(nil), s.batches...)
}

// Closed reports whether Close was called.
func (s *Store) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Row builds a storage.Row whose Scan copies vals into the destinations in
// order. A nil value leaves its destination at the zero value, matching how a
// SQL NULL scans into a pointer destination.
func Row(vals ...any) storage.Row { return scanRow{vals: vals} }

type scanRow struct {
	vals []any
}

func (r scanRow) Scan(dest ...any) error {
	if len(dest) != len(r.vals) {
		return fmt.Errorf("storagetest: scan %d destinations, row has %d values", len(dest), len(r.vals))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d)
		if dv.Kind() != reflect.Pointer || dv.IsNil() {
			return fmt.Errorf("storagetest: destination %d is not a non-nil pointer", i)
		}
		if r.vals[i] == nil {
			continue
		}
		sv := reflect.ValueOf(r.vals[i])
		el := dv.Elem()
		switch {
		case sv.Type().AssignableTo(el.Type()):
			el.Set(sv)
		case sv.Type().ConvertibleTo(el.Type()):
			el.Set(sv.Convert(el.Type()))
		case el.Kind() == reflect.Pointer && sv.Type().AssignableTo(el.Type().Elem()):
			p := reflect.New(el.Type().Elem())
			p.Elem().Set(sv)
			el.Set(p)
		default:
			return fmt.Errorf("storagetest: cannot scan %T into %T", r.vals[i], d)
		}
	}
	return nil
}
