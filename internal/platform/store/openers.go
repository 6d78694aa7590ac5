package store

import (
	"context"
	"fmt"
	"time"

	chx "rowkeeper/internal/platform/store/ch"
	"rowkeeper/internal/platform/store/lite"
	"rowkeeper/internal/platform/store/pg"
)

// openPG opens the pool and publishes the adapter only after a ping succeeds
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		AppName:  cfg.AppName,
		MaxConns: cfg.PG.MaxConns,
	}, nil)
	if err != nil {
		return nil, err
	}

	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = 20
	}
	pingTimeout := cfg.PG.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}
	const (
		backoffStart   = 150 * time.Millisecond
		backoffCeiling = 2 * time.Second
	)

	var lastErr error
	backoff := backoffStart
	for i := 0; i < attempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = p.Pool.Ping(toCtx)
		cancel()
		if lastErr == nil {
			return newPGAdapter(p, sqlTracing(s, "pg", cfg.PG.LogSQL, cfg.PG.SlowQueryMs)), nil
		}

		s.Log.Warn().Err(lastErr).Int("attempt", i+1).Dur("backoff", backoff).Msg("postgres not ready")
		select {
		case <-ctx.Done():
			p.Close()
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, backoffCeiling)
	}

	p.Close()
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, lastErr)
}

func openLite(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	l, err := lite.Open(ctx, lite.Config{Path: cfg.SQLite.Path, BusyTimeout: cfg.SQLite.BusyTimeout})
	if err != nil {
		return nil, err
	}
	return newLiteAdapter(l, sqlTracing(s, "sqlite", cfg.SQLite.LogSQL, cfg.SQLite.SlowQueryMs)), nil
}

func openCH(ctx context.Context, cfg Config, _ *Store) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{DSN: cfg.CH.DSN, Role: cfg.CH.Role})
	if err != nil {
		return nil, err
	}
	return &clickhouseAdapter{inner: c}, nil
}

// sqlTracing always reports slow queries; logSQL adds every statement
func sqlTracing(s *Store, component string, logSQL bool, slowMs int) tracing {
	t := tracing{slow: time.Duration(slowMs) * time.Millisecond}
	if logSQL || slowMs > 0 {
		t.tracer = Tracer(s.Log, component)
		if !logSQL {
			t.tracer = slowOnly{t.tracer}
		}
	}
	return t
}

// slowOnly forwards slow or failed queries only
type slowOnly struct{ next QueryTracer }

func (f slowOnly) OnQuery(ctx context.Context, ev QueryEvent) {
	if ev.Slow || ev.Err != nil {
		f.next.OnQuery(ctx, ev)
	}
}
