package store

import (
	"context"
	"strings"
	"time"

	"rowkeeper/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one statement executed through an adapter
type QueryEvent struct {
	SQL     string
	Args    []any
	Elapsed time.Duration
	Err     error
	Slow    bool
}

// QueryTracer receives query events
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs every query at debug level regardless of the root level, slow ones at warn
func Tracer(root logger.Logger, component string) QueryTracer {
	return &zlTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", component).Logger()}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(_ context.Context, ev QueryEvent) {
	evt := z.log.Debug()
	if ev.Slow || ev.Err != nil {
		evt = z.log.Warn()
	}
	evt.Dur("elapsed", ev.Elapsed).
		Bool("slow", ev.Slow).
		Str("sql", strings.Join(strings.Fields(ev.SQL), " ")).
		Int("args", len(ev.Args)).
		Err(ev.Err).
		Msg("sql query")
}

// tracing is embedded by adapters that emit QueryEvents
type tracing struct {
	tracer QueryTracer
	slow   time.Duration
}

func (t tracing) emit(ctx context.Context, sql string, args []any, start time.Time, err error) {
	if t.tracer == nil {
		return
	}
	elapsed := time.Since(start)
	t.tracer.OnQuery(ctx, QueryEvent{
		SQL:     sql,
		Args:    args,
		Elapsed: elapsed,
		Err:     err,
		Slow:    t.slow > 0 && elapsed >= t.slow,
	})
}
