// Package storage defines the narrow relational-store contract consumed by
// the loader, the dead-letter sink, and the quality aggregator. The contract
// mirrors what the engine actually needs: a per-row query, a single execute
// returning the affected-row count, and a batch execute applying one
// statement to many parameter tuples. Each call is one implicit transaction
// that commits on success and rolls back on error.
//
// Backends live in subpackages; Postgres is the only one wired today. The
// pool behind a Store is an explicitly constructed, ownership-scoped object:
// it is built at startup, passed to the components that write through it, and
// closed at shutdown. Nothing reaches for it globally.
package storage

import "context"

// Row is the scanning surface of a single result row.
type Row interface {
	Scan(dest ...any) error
}

// Store is the minimal relational-store contract.
type Store interface {
	// Query runs a parameterized query and calls fn once per result row.
	// fn returning an error stops iteration and is returned as-is.
	Query(ctx context.Context, sql string, args []any, fn func(Row) error) error

	// Exec runs a single parameterized statement and returns the
	// driver-reported affected-row count.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	// ExecBatch applies one statement to every parameter tuple in a single
	// round trip and returns the summed affected-row count.
	ExecBatch(ctx context.Context, sql string, tuples [][]any) (int64, error)

	// Close releases the underlying pool. Safe to call once at shutdown.
	Close()
}
