// Package rowstest opens a migrated in-memory row store for tests
package rowstest

import (
	"context"
	"testing"

	"rowkeeper/internal/platform/store"
	"rowkeeper/internal/services/rows/repo"
)

// Open returns a private in-memory sqlite store with table_row created
func Open(t testing.TB) *store.Store {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, store.Config{
		Driver: store.DriverSQLite,
		SQLite: store.SQLiteConfig{Path: ":memory:"},
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(ctx) })
	if err := repo.Migrate(ctx, st.SQL, st.Driver); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return st
}

// Count reads the row count directly
func Count(t testing.TB, st *store.Store) int64 {
	t.Helper()
	n, err := store.Scalar[int64](context.Background(), st.SQL, `SELECT COUNT(*) FROM table_row`)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
