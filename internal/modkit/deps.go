// Package modkit provides module wiring and core deps
package modkit

import (
	"rowkeeper/internal/core/ratelimit"
	"rowkeeper/internal/core/workpool"
	"rowkeeper/internal/modkit/repokit"
	"rowkeeper/internal/platform/config"
	"rowkeeper/internal/platform/logger"
	"rowkeeper/internal/platform/metrics"
	"rowkeeper/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf

	// SQL is the relational store and Driver names its dialect
	SQL    repokit.TxRunner
	Driver string

	// CH is nil unless the clickhouse sink is enabled
	CH store.Clickhouse

	Metrics *metrics.Metrics
	Pool    *workpool.Pool
	Limiter *ratelimit.Limiter
}

// FromStore copies the store seams into d
func (d Deps) FromStore(st *store.Store) Deps {
	if st == nil {
		return d
	}
	d.SQL = st.SQL
	d.Driver = st.Driver
	d.CH = st.CH
	return d
}

// Ready reports whether the deps every row module needs are present
func (d Deps) Ready() bool { return d.SQL != nil && d.Pool != nil }
