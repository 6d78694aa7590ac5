// Package metrics records service counters and latencies on a prometheus registry
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rowkeeper"

// Ingest outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics is the recorder handed to services
// a nil *Metrics is valid and records nothing
type Metrics struct {
	reg *prometheus.Registry

	created  prometheus.Counter
	deleted  prometheus.Counter
	rejected prometheus.Counter
	queries  prometheus.Histogram
	ingest   *prometheus.HistogramVec
	ingested *prometheus.CounterVec
	exports  *prometheus.CounterVec
}

// Timer measures one query
type Timer struct{ start time.Time }

// New registers every collector on a fresh registry, plus the go and process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		created: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_created_total",
			Help:      "Number of rows created through the single create endpoint",
		}),
		deleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_deleted_total",
			Help:      "Number of rows deleted",
		}),
		rejected: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_rejected_total",
			Help:      "Number of write requests rejected by the rate limiter",
		}),
		queries: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Latency of paged row queries",
			Buckets:   prometheus.DefBuckets,
		}),
		ingest: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Duration of bulk ingestion jobs grouped by strategy and outcome",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
		}, []string{"strategy", "outcome"}),
		ingested: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_rows_total",
			Help:      "Number of rows persisted by bulk ingestion grouped by strategy",
		}, []string{"strategy"}),
		exports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Number of exports grouped by format",
		}, []string{"format"}),
	}
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// StartTimer starts a query timer
func (m *Metrics) StartTimer() Timer { return Timer{start: time.Now()} }

// StopTimer observes the elapsed time since StartTimer
func (m *Metrics) StopTimer(t Timer) time.Duration {
	d := time.Since(t.start)
	if m != nil {
		m.queries.Observe(d.Seconds())
	}
	return d
}

// IncrementCreated counts one created row
func (m *Metrics) IncrementCreated() {
	if m != nil {
		m.created.Inc()
	}
}

// IncrementDeleted counts one deleted row
func (m *Metrics) IncrementDeleted() {
	if m != nil {
		m.deleted.Inc()
	}
}

// IncrementRejected counts one rate limited request
func (m *Metrics) IncrementRejected() {
	if m != nil {
		m.rejected.Inc()
	}
}

// ObserveIngest records a finished bulk job; rows counts toward ingest_rows_total on success
func (m *Metrics) ObserveIngest(strategy, outcome string, rows int, d time.Duration) {
	if m == nil {
		return
	}
	m.ingest.WithLabelValues(strategy, outcome).Observe(d.Seconds())
	if outcome == OutcomeSuccess {
		m.ingested.WithLabelValues(strategy).Add(float64(rows))
	}
}

// IncrementExport counts one export in format
func (m *Metrics) IncrementExport(format string) {
	if m != nil {
		m.exports.WithLabelValues(format).Inc()
	}
}

// Collector accessors, read by tests through prometheus/testutil

func (m *Metrics) Created() prometheus.Counter               { return m.created }
func (m *Metrics) Deleted() prometheus.Counter               { return m.deleted }
func (m *Metrics) Rejected() prometheus.Counter              { return m.rejected }
func (m *Metrics) Ingested() *prometheus.CounterVec          { return m.ingested }
func (m *Metrics) Exports() *prometheus.CounterVec           { return m.exports }
func (m *Metrics) IngestDurations() *prometheus.HistogramVec { return m.ingest }
