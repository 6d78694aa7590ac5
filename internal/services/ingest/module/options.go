package module

import (
	"time"

	"rowkeeper/internal/platform/config"
	"rowkeeper/internal/services/ingest/service"
)

// Options are read from INGEST_ keys; WORKERS and QUEUE size the shared pool in main
type Options struct {
	Threshold   int
	FlushSize   int
	MaxBulk     int
	JobHistory  int
	ReportDelay time.Duration
	MaxBody     int64
	// StatementTimeout bounds each postgres batch transaction statement, 0 disables it
	StatementTimeout time.Duration
}

// FromConfig reads options under cfg's INGEST_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("INGEST_")
	return Options{
		Threshold:        c.MayInt("THRESHOLD", service.DefaultThreshold),
		FlushSize:        c.MayInt("FLUSH_SIZE", service.DefaultFlushSize),
		MaxBulk:          c.MayInt("MAX_BULK", service.DefaultMaxBulk),
		JobHistory:       c.MayInt("JOB_HISTORY", service.DefaultJobHistory),
		ReportDelay:      c.MayDuration("REPORT_DELAY", service.DefaultReportDelay),
		MaxBody:          int64(c.MayInt("MAX_BODY", 8<<20)),
		StatementTimeout: c.MayDuration("STATEMENT_TIMEOUT", 30*time.Second),
	}
}
