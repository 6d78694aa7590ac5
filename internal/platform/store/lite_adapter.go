package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rowkeeper/internal/platform/store/lite"
)

// sqlQuerier is the query surface shared by *sql.DB and *sql.Tx
type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// liteAdapter wraps lite.Lite and implements TxRunner
type liteAdapter struct {
	l *lite.Lite
	liteConn
}

type liteConn struct {
	q sqlQuerier
	tracing
}

func newLiteAdapter(l *lite.Lite, t tracing) *liteAdapter {
	return &liteAdapter{l: l, liteConn: liteConn{q: l.DB, tracing: t}}
}

func (a *liteAdapter) Ping(ctx context.Context) error { return a.l.DB.PingContext(ctx) }

func (a *liteAdapter) Close() error { return a.l.Close() }

func (a *liteAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.l.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(liteConn{q: tx, tracing: a.tracing}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (c liteConn) Exec(ctx context.Context, query string, args ...any) (CommandTag, error) {
	start := time.Now()
	res, err := c.q.ExecContext(ctx, query, args...)
	c.emit(ctx, query, args, start, err)
	if err != nil {
		return nil, err
	}
	return resultTag{res}, nil
}

func (c liteConn) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := c.q.QueryContext(ctx, query, args...)
	c.emit(ctx, query, args, start, err)
	if err != nil {
		return nil, err
	}
	return liteRows{r: rs}, nil
}

func (c liteConn) QueryRow(ctx context.Context, query string, args ...any) Row {
	start := time.Now()
	r := c.q.QueryRowContext(ctx, query, args...)
	return scanHook{r: r, after: func(err error) {
		if errors.Is(err, sql.ErrNoRows) {
			err = nil
		}
		c.emit(ctx, query, args, start, err)
	}}
}

type resultTag struct{ r sql.Result }

func (t resultTag) RowsAffected() int64 {
	n, _ := t.r.RowsAffected()
	return n
}

type liteRows struct{ r *sql.Rows }

func (x liteRows) Next() bool            { return x.r.Next() }
func (x liteRows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x liteRows) Err() error            { return x.r.Err() }
func (x liteRows) Close()                { _ = x.r.Close() }
func (x liteRows) Columns() []string {
	cols, _ := x.r.Columns()
	return cols
}
