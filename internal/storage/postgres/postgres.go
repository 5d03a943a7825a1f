// Package postgres implements storage.Store on top of pgx v5 and pgxpool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rosteretl/internal/storage"
)

// Config holds pool construction options.
type Config struct {
	DSN            string
	MaxConns       int32
	ConnectTimeout time.Duration
}

// Store is a Postgres-backed storage.Store.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Store = (*Store)(nil)

// New constructs the pool and verifies connectivity with a ping. The connect
// timeout is the only bound on a stuck dial; callers own the returned store
// and must Close it at shutdown.
func New(ctx context.Context, cfg Config) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.ConnectTimeout > 0 {
		pcfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Query implements storage.Store.
func (s *Store) Query(ctx context.Context, sql string, args []any, fn func(storage.Row) error) error {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("query rows: %w", err)
	}
	return nil
}

// Exec implements storage.Store.
func (s *Store) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("exec: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ExecBatch implements storage.Store. All tuples ship in one pgx batch; the
// summed affected-row count is what insert-or-skip accounting relies on.
func (s *Store) ExecBatch(ctx context.Context, sql string, tuples [][]any) (int64, error) {
	if len(tuples) == 0 {
		return 0, nil
	}
	b := &pgx.Batch{}
	for _, args := range tuples {
		b.Queue(sql, args...)
	}

	br := s.pool.SendBatch(ctx, b)
	defer br.Close()

	var total int64
	for range tuples {
		tag, err := br.Exec()
		if err != nil {
			return total, fmt.Errorf("batch exec: %w", err)
		}
		total += tag.RowsAffected()
	}
	return total, nil
}

// Close implements storage.Store.
func (s *Store) Close() { s.pool.Close() }
