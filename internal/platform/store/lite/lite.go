// Package lite provides an embedded SQLite client on database/sql and go-sqlite3
package lite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Config configures the sqlite connection
type Config struct {
	// Path is a file path or ":memory:"
	Path        string
	BusyTimeout time.Duration
}

// Lite is a sqlite client
// one open connection serializes writers, which sqlite requires anyway
type Lite struct {
	DB *sql.DB
}

// Open opens the database in WAL mode and verifies it answers
func Open(ctx context.Context, cfg Config) (*Lite, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_foreign_keys=on", path, busy.Milliseconds())
	if path == ":memory:" {
		// private per Open; the single pooled connection keeps the data alive
		dsn = fmt.Sprintf(":memory:?_busy_timeout=%d", busy.Milliseconds())
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping %s: %w", path, err)
	}
	return &Lite{DB: db}, nil
}

// Close closes the database
func (l *Lite) Close() error {
	if l == nil || l.DB == nil {
		return nil
	}
	return l.DB.Close()
}
