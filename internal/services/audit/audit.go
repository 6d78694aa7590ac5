// Package audit holds the observers that run after a row is durably created
package audit

import (
	"context"
	"time"

	"rowkeeper/internal/core/notify"
	"rowkeeper/internal/platform/logger"
	"rowkeeper/internal/platform/store"
	rows "rowkeeper/internal/services/rows/domain"
)

// Table receives one line per audited row when clickhouse is enabled
const Table = "row_audit"

const ddl = `CREATE TABLE IF NOT EXISTS ` + Table + ` (
	row_id        Int64,
	type_number   Int32,
	type_selector String,
	event         LowCardinality(String),
	created_at    DateTime64(6, 'UTC'),
	audited_at    DateTime64(6, 'UTC')
) ENGINE = MergeTree
ORDER BY (created_at, row_id)`

// Notification logs every created row
func Notification() notify.Observer[rows.Row] {
	return notify.ObserverFunc[rows.Row]{
		Label: "notification",
		Fn: func(ctx context.Context, r rows.Row) error {
			logger.C(ctx).Info().Int64("row_id", r.ID).Msgf("Row created event: %d", r.ID)
			return nil
		},
	}
}

// Auditor logs every created row and, with a sink, appends it to row_audit
type Auditor struct {
	sink store.Clickhouse
	now  func() time.Time
}

// NewAuditor builds the audit observer; sink may be nil
func NewAuditor(sink store.Clickhouse) *Auditor {
	return &Auditor{sink: sink, now: time.Now}
}

// Name implements notify.Observer
func (a *Auditor) Name() string { return "audit" }

// Observe implements notify.Observer
func (a *Auditor) Observe(ctx context.Context, r rows.Row) error {
	logger.C(ctx).Info().Int64("row_id", r.ID).Msgf("Audit: Row with ID %d was created", r.ID)
	if a.sink == nil {
		return nil
	}
	return a.sink.Insert(ctx, Table, [][]any{{
		r.ID, r.TypeNumber, r.TypeSelector, "created", r.CreatedAt.UTC(), a.now().UTC(),
	}})
}

// Bootstrap creates row_audit when a sink is configured
func Bootstrap(ctx context.Context, sink store.Clickhouse) error {
	if sink == nil {
		return nil
	}
	return sink.Exec(ctx, ddl)
}

// Attach bootstraps the sink and subscribes both observers to n
func Attach(ctx context.Context, n *notify.Notifier[rows.Row], sink store.Clickhouse) error {
	if err := Bootstrap(ctx, sink); err != nil {
		return err
	}
	n.Subscribe(Notification())
	n.Subscribe(NewAuditor(sink))
	logger.Named("audit").Info().Bool("clickhouse", sink != nil).Msg("row observers attached")
	return nil
}
