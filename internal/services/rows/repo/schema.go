package repo

import (
	"context"
	"fmt"

	"rowkeeper/internal/modkit/repokit"
	"rowkeeper/internal/platform/store"
)

var tables = map[string]string{
	store.DriverPostgres: `CREATE TABLE IF NOT EXISTS table_row (
	id             BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	type_number    INTEGER     NOT NULL CHECK (type_number >= 1),
	type_selector  TEXT        NOT NULL,
	type_free_text TEXT        NOT NULL CHECK (char_length(type_free_text) <= 1000),
	created_at     TIMESTAMPTZ NOT NULL
)`,
	store.DriverSQLite: `CREATE TABLE IF NOT EXISTS table_row (
	id             INTEGER   PRIMARY KEY AUTOINCREMENT,
	type_number    INTEGER   NOT NULL CHECK (type_number >= 1),
	type_selector  TEXT      NOT NULL,
	type_free_text TEXT      NOT NULL CHECK (length(type_free_text) <= 1000),
	created_at     TIMESTAMP NOT NULL
)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_type_selector ON table_row (type_selector)`,
	`CREATE INDEX IF NOT EXISTS idx_created_at ON table_row (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_selector_number ON table_row (type_selector, type_number)`,
}

// Migrate creates table_row and its indexes for driver, it is safe to run on every start
func Migrate(ctx context.Context, db repokit.TxRunner, driver string) error {
	ddl, ok := tables[driver]
	if !ok {
		return fmt.Errorf("rows: no schema for driver %q", driver)
	}
	return db.Tx(ctx, func(q repokit.Queryer) error {
		for _, stmt := range append([]string{ddl}, indexes...) {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("rows schema: %w", err)
			}
		}
		return nil
	})
}
