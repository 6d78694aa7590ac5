// Package service contains the synchronous row workflows
package service

import (
	"context"
	"time"

	"rowkeeper/internal/core/export"
	"rowkeeper/internal/modkit/repokit"
	perr "rowkeeper/internal/platform/errors"
	"rowkeeper/internal/platform/logger"
	"rowkeeper/internal/platform/metrics"
	"rowkeeper/internal/services/rows/domain"

	"github.com/rs/zerolog"
)

// Service defines the rows service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the rows service
type Svc struct {
	db      repokit.TxRunner
	binder  repokit.Binder[domain.StorageRepo]
	Repo    domain.StorageRepo
	events  domain.Publisher
	metrics *metrics.Metrics
	exports *export.Registry
	driver  string
	now     func() time.Time
}

// New constructs the rows service; events and m may be nil
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo], events domain.Publisher, m *metrics.Metrics, driver string) *Svc {
	if db == nil {
		panic("rows.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("rows.Service requires a non nil Repo binder")
	}
	s := &Svc{
		db:      db,
		binder:  binder,
		Repo:    binder.Bind(db),
		events:  events,
		metrics: m,
		driver:  driver,
		now:     time.Now,
	}
	s.exports = export.NewRegistry(export.SourceFunc(s.snapshot))
	return s
}

// Create sanitizes, stores and announces one row
func (s *Svc) Create(ctx context.Context, req domain.CreateRowRequest) (domain.Row, error) {
	log := logger.C(ctx)
	before := s.countForLog(ctx)
	log.Debug().Int64("count", before).Msg("BEFORE rows.Create | TableRow count")

	row, err := domain.CleanRow(req, s.now())
	if err != nil {
		return domain.Row{}, err
	}
	id, err := s.Repo.Insert(ctx, row)
	if err != nil {
		return domain.Row{}, perr.FromStore(err, perr.ErrorCodeWriteFailure, "insert row")
	}
	row.ID = id

	if s.events != nil {
		s.events.Publish(ctx, row)
	}
	s.metrics.IncrementCreated()

	after := s.countForLog(ctx)
	log.Debug().Int64("count", after).Int64("change", after-before).Msg("AFTER rows.Create | TableRow count")
	return row, nil
}

// countForLog only queries when debug logging is on
func (s *Svc) countForLog(ctx context.Context) int64 {
	if logger.C(ctx).GetLevel() > zerolog.DebugLevel {
		return -1
	}
	n, err := s.Repo.Count(ctx)
	if err != nil {
		return -1
	}
	return n
}

// Delete removes a row, a missing id is ErrorCodeNotFound
func (s *Svc) Delete(ctx context.Context, id int64) error {
	ok, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return perr.FromStore(err, perr.ErrorCodeDB, "delete row")
	}
	if !ok {
		return perr.NotFoundf("row %d not found", id)
	}
	s.metrics.IncrementDeleted()
	return nil
}

// List returns one page plus the total count
func (s *Svc) List(ctx context.Context, q domain.PageQuery) (domain.RowPage, error) {
	if q.Page < 0 {
		return domain.RowPage{}, perr.WithField(perr.Validationf("page must be at least 0"), "page")
	}
	if q.Size < 1 || q.Size > domain.MaxPageSize {
		return domain.RowPage{}, perr.WithField(perr.Validationf("size must be between 1 and %d", domain.MaxPageSize), "size")
	}

	t := s.metrics.StartTimer()
	defer func() {
		d := s.metrics.StopTimer(t)
		logger.C(ctx).Debug().Dur("elapsed", d).Int("page", q.Page).Msg("rows.List query")
	}()

	var out domain.RowPage
	err := s.db.Tx(ctx, func(tx repokit.Queryer) error {
		r := s.binder.Bind(tx)
		data, err := r.Page(ctx, q.Offset(), q.Size)
		if err != nil {
			return err
		}
		total, err := r.Count(ctx)
		if err != nil {
			return err
		}
		out = domain.RowPage{Data: data, TotalCount: total, Page: q.Page, Size: q.Size}
		return nil
	})
	if err != nil {
		return domain.RowPage{}, perr.FromStore(err, perr.ErrorCodeDB, "list rows")
	}
	if out.Data == nil {
		out.Data = []domain.Row{}
	}
	return out, nil
}

// Export encodes every row in the named format
func (s *Svc) Export(ctx context.Context, format string) (domain.ExportFile, error) {
	res, err := s.exports.Export(ctx, format)
	if err != nil {
		return domain.ExportFile{}, err
	}
	if f, err := export.ParseFormat(format); err == nil {
		s.metrics.IncrementExport(f.String())
	}
	return domain.ExportFile(res), nil
}

func (s *Svc) snapshot(ctx context.Context) ([]export.Record, error) {
	rows, err := s.Repo.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]export.Record, len(rows))
	for i, r := range rows {
		out[i] = r.Record()
	}
	return out, nil
}

// Health counts rows to prove the table answers
func (s *Svc) Health(ctx context.Context) domain.DBHealth {
	n, err := s.Repo.Count(ctx)
	if err != nil {
		return domain.DBHealth{Status: "DOWN", Error: err.Error()}
	}
	return domain.DBHealth{Status: "UP", TotalRows: &n, Database: s.driver}
}
