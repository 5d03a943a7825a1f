package storage

import (
	"context"
	"fmt"
)

// schemaDDL creates the persisted tables if they do not exist. id columns are
// database-generated; students.email and departments.name carry the unique
// constraints that insert-or-skip relies on.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS departments (
		id   SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		id            SERIAL PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		name          VARCHAR(255) NOT NULL,
		department_id INTEGER REFERENCES departments(id),
		year          INTEGER,
		phone         VARCHAR(20)
	)`,
	`CREATE TABLE IF NOT EXISTS etl_runs (
		id               SERIAL PRIMARY KEY,
		run_timestamp    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		total_rows       INTEGER NOT NULL DEFAULT 0,
		valid_rows       INTEGER NOT NULL DEFAULT 0,
		invalid_rows     INTEGER NOT NULL DEFAULT 0,
		duplicate_emails INTEGER NOT NULL DEFAULT 0,
		inserted_rows    INTEGER NOT NULL DEFAULT 0,
		skipped_rows     INTEGER NOT NULL DEFAULT 0,
		updated_rows     INTEGER NOT NULL DEFAULT 0,
		duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
		status           VARCHAR(32) NOT NULL,
		error_message    TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS invalid_rows (
		id           SERIAL PRIMARY KEY,
		etl_run_id   INTEGER NOT NULL REFERENCES etl_runs(id),
		raw_data     JSONB NOT NULL,
		error_reason TEXT NOT NULL,
		row_number   INTEGER NOT NULL,
		fingerprint  CHAR(16) NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema bootstraps the persisted schema. Idempotent; intended for
// development and first deployments, not as a migration system.
func EnsureSchema(ctx context.Context, st Store) error {
	for _, ddl := range schemaDDL {
		if _, err := st.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("apply ddl: %w", err)
		}
	}
	return nil
}
