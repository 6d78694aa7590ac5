package service

import (
	"context"
	"time"

	"rowkeeper/internal/core/workpool"
	perr "rowkeeper/internal/platform/errors"
	"rowkeeper/internal/platform/logger"
	"rowkeeper/internal/services/ingest/domain"
	rows "rowkeeper/internal/services/rows/domain"
)

// DefaultReportDelay simulates report work
const DefaultReportDelay = 5 * time.Second

var reportMessages = map[domain.ReportKind]string{
	domain.ReportGenerate: "Report generation started",
	domain.ReportMonthly:  "Monthly report generation started",
	domain.ReportExcel:    "Excel export started",
}

// Reports runs the report placeholders on the pool
type Reports struct {
	pool  *workpool.Pool
	repo  rows.StorageRepo
	delay time.Duration
}

// NewReports binds the placeholders to pool and repo; delay < 0 means DefaultReportDelay
func NewReports(pool *workpool.Pool, repo rows.StorageRepo, delay time.Duration) *Reports {
	if delay < 0 {
		delay = DefaultReportDelay
	}
	return &Reports{pool: pool, repo: repo, delay: delay}
}

// Report queues kind for userID and returns the 202 body
func (r *Reports) Report(ctx context.Context, kind domain.ReportKind, userID int64) (rows.ReportAccepted, error) {
	msg, ok := reportMessages[kind]
	if !ok {
		return rows.ReportAccepted{}, perr.Validationf("unknown report %q", kind)
	}
	logger.C(ctx).Info().Str("report", string(kind)).Int64("user_id", userID).Msg("report requested")

	err := r.pool.Submit("report:"+string(kind), func(base context.Context) {
		r.run(base, kind, userID)
	})
	if err != nil {
		return rows.ReportAccepted{}, err
	}
	return rows.ReportAccepted{Status: "processing", Message: msg, UserID: userID}, nil
}

func (r *Reports) run(ctx context.Context, kind domain.ReportKind, userID int64) {
	log := logger.Named("reports").With().Str("report", string(kind)).Int64("user_id", userID).Logger()
	log.Info().Msg("generating report")

	if err := sleep(ctx, r.delay); err != nil {
		log.Warn().Err(err).Msg("report cancelled")
		return
	}
	if kind != domain.ReportGenerate {
		log.Info().Msg("report finished")
		return
	}

	all, err := r.repo.All(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate report")
		return
	}
	log.Info().Int("rows", len(all)).Msg("report generated successfully")
}

// sleep waits d or until ctx ends
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
