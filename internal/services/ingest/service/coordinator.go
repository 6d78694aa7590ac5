// Package service runs bulk ingestion and report placeholders on the worker pool
package service

import (
	"context"
	"runtime/debug"
	"time"

	"rowkeeper/internal/core/workpool"
	perr "rowkeeper/internal/platform/errors"
	"rowkeeper/internal/platform/logger"
	"rowkeeper/internal/platform/metrics"
	"rowkeeper/internal/services/ingest/domain"
	rows "rowkeeper/internal/services/rows/domain"

	"github.com/google/uuid"
)

// Defaults for Options
const (
	DefaultThreshold = 50
	DefaultMaxBulk   = 10000
)

// Options tunes the coordinator
type Options struct {
	// Threshold is the request size at which the batch writer takes over
	Threshold int
	// MaxBulk caps the number of rows in one request
	MaxBulk int
}

// Coordinator picks a writer by request size and runs it on the pool
type Coordinator struct {
	pool       *workpool.Pool
	sequential domain.Writer
	batch      domain.Writer
	jobs       *Jobs
	metrics    *metrics.Metrics
	opt        Options
	newID      func() string
}

// NewCoordinator wires the writers to pool; m may be nil
func NewCoordinator(pool *workpool.Pool, sequential, batch domain.Writer, jobs *Jobs, m *metrics.Metrics, opt Options) *Coordinator {
	if pool == nil || sequential == nil || batch == nil || jobs == nil {
		panic("ingest.Coordinator requires a pool, both writers and a job registry")
	}
	if opt.Threshold <= 0 {
		opt.Threshold = DefaultThreshold
	}
	if opt.MaxBulk <= 0 {
		opt.MaxBulk = DefaultMaxBulk
	}
	return &Coordinator{
		pool:       pool,
		sequential: sequential,
		batch:      batch,
		jobs:       jobs,
		metrics:    m,
		opt:        opt,
		newID:      uuid.NewString,
	}
}

// Strategy returns optimized_batch for n >= threshold, sequential otherwise
func (c *Coordinator) Strategy(n int) domain.Strategy {
	if n >= c.opt.Threshold {
		return domain.StrategyOptimizedBatch
	}
	return domain.StrategySequential
}

func (c *Coordinator) writer(s domain.Strategy) domain.Writer {
	if s == domain.StrategyOptimizedBatch {
		return c.batch
	}
	return c.sequential
}

// SubmitBulk queues reqs and returns at once; a full queue is ErrorCodeUnavailable
func (c *Coordinator) SubmitBulk(ctx context.Context, reqs []rows.CreateRowRequest) (*Pending, error) {
	if len(reqs) == 0 {
		return nil, perr.Validationf("bulk request must contain at least one row")
	}
	if len(reqs) > c.opt.MaxBulk {
		return nil, perr.Validationf("bulk request exceeds %d rows", c.opt.MaxBulk)
	}
	for i, req := range reqs {
		if _, err := rows.CleanFreeText(req.TypeFreeText); err != nil {
			return nil, perr.WithField(perr.Validationf("[%d] %s", i, perr.WireFrom(err).Message), "typeFreeText")
		}
	}

	strategy := c.Strategy(len(reqs))
	p := newPending(c.newID(), strategy, len(reqs))
	w := c.writer(strategy)

	c.jobs.put(p)
	err := c.pool.Submit("bulk:"+string(strategy), func(base context.Context) {
		c.run(logger.WithJob(base, p.JobID), w, p, reqs)
	})
	if err != nil {
		c.jobs.remove(p.JobID)
		return nil, err
	}
	logger.C(ctx).Info().Str("job_id", p.JobID).Str("strategy", string(strategy)).Int("count", len(reqs)).Msg("bulk creation queued")
	return p, nil
}

// run executes the writer and settles p; writer panics become job failures
func (c *Coordinator) run(ctx context.Context, w domain.Writer, p *Pending, reqs []rows.CreateRowRequest) {
	log := logger.C(ctx)
	start := time.Now()
	var (
		stored []rows.Row
		err    error
	)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("bulk writer panicked")
			err = perr.Newf(perr.ErrorCodeWriteFailure, "bulk writer panicked: %v", r)
		}
		outcome := metrics.OutcomeSuccess
		if err != nil {
			outcome = metrics.OutcomeFailure
		}
		c.metrics.ObserveIngest(string(p.Strategy), outcome, len(stored), time.Since(start))
		p.finish(domain.Outcome{Strategy: p.Strategy, Rows: stored, Count: len(stored)}, err)
	}()

	log.Info().Str("strategy", string(p.Strategy)).Int("count", len(reqs)).Msg("starting bulk creation")
	stored, err = w.Write(ctx, reqs)
	if err != nil {
		log.Error().Err(err).Int("stored", len(stored)).Msg("bulk creation failed")
		return
	}
	log.Info().Int("count", len(stored)).Msgf("completed bulk creation of %d rows", len(stored))
}

// Accept submits reqs and shapes the 202 body
func (c *Coordinator) Accept(ctx context.Context, reqs []rows.CreateRowRequest) (domain.BulkAccepted, error) {
	p, err := c.SubmitBulk(ctx, reqs)
	if err != nil {
		return domain.BulkAccepted{}, err
	}
	return domain.BulkAccepted{
		Status:   "processing",
		Message:  "Bulk creation started",
		Count:    p.Count,
		Strategy: p.Strategy,
		JobID:    p.JobID,
	}, nil
}

// Job looks up a bulk job by id
func (c *Coordinator) Job(_ context.Context, id string) (domain.JobView, error) {
	p, ok := c.jobs.Get(id)
	if !ok {
		return domain.JobView{}, perr.NotFoundf("bulk job %s not found", id)
	}
	return p.View(), nil
}
