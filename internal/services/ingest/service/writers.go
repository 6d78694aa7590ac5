package service

import (
	"context"
	"fmt"
	"time"

	"rowkeeper/internal/modkit/repokit"
	perr "rowkeeper/internal/platform/errors"
	"rowkeeper/internal/platform/logger"
	rows "rowkeeper/internal/services/rows/domain"
)

// DefaultFlushSize is the number of rows per multi row insert
const DefaultFlushSize = 50

// SequentialWriter inserts one row at a time outside any transaction
// a failure on item k leaves items before k stored
type SequentialWriter struct {
	db     repokit.TxRunner
	binder repokit.Binder[rows.StorageRepo]
	now    func() time.Time
}

// NewSequentialWriter binds the writer to db
func NewSequentialWriter(db repokit.TxRunner, binder repokit.Binder[rows.StorageRepo]) *SequentialWriter {
	return &SequentialWriter{db: db, binder: binder, now: time.Now}
}

// Write stores reqs in order
func (w *SequentialWriter) Write(ctx context.Context, reqs []rows.CreateRowRequest) ([]rows.Row, error) {
	repo := w.binder.Bind(w.db)
	out := make([]rows.Row, 0, len(reqs))
	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		row, err := rows.CleanRow(req, w.now())
		if err != nil {
			return out, perr.WithField(perr.Validationf("[%d] %s", i, perr.WireFrom(err).Message), "typeFreeText")
		}
		id, err := repo.Insert(ctx, row)
		if err != nil {
			logger.C(ctx).Error().Err(err).Int("index", i).Int("stored", len(out)).Msg("sequential insert failed")
			return out, perr.FromStore(err, perr.ErrorCodeWriteFailure, fmt.Sprintf("insert row %d", i))
		}
		row.ID = id
		out = append(out, row)
	}
	return out, nil
}

// BatchWriter builds every row up front and flushes them in windows inside one transaction
type BatchWriter struct {
	db        repokit.TxRunner
	binder    repokit.Binder[rows.StorageRepo]
	flushSize int
	now       func() time.Time
}

// NewBatchWriter binds the writer to db; flushSize <= 0 uses DefaultFlushSize
func NewBatchWriter(db repokit.TxRunner, binder repokit.Binder[rows.StorageRepo], flushSize int) *BatchWriter {
	if flushSize <= 0 {
		flushSize = DefaultFlushSize
	}
	return &BatchWriter{db: db, binder: binder, flushSize: flushSize, now: time.Now}
}

// Write stores reqs all or nothing; the result keeps input order
func (w *BatchWriter) Write(ctx context.Context, reqs []rows.CreateRowRequest) ([]rows.Row, error) {
	now := w.now()
	built := make([]rows.Row, len(reqs))
	for i, req := range reqs {
		row, err := rows.CleanRow(req, now)
		if err != nil {
			return nil, perr.WithField(perr.Validationf("[%d] %s", i, perr.WireFrom(err).Message), "typeFreeText")
		}
		built[i] = row
	}

	err := w.db.Tx(ctx, func(tx repokit.Queryer) error {
		repo := w.binder.Bind(tx)
		for start := 0; start < len(built); start += w.flushSize {
			end := min(start+w.flushSize, len(built))
			ids, err := repo.InsertMany(ctx, built[start:end])
			if err != nil {
				return err
			}
			for j, id := range ids {
				built[start+j].ID = id
			}
		}
		return nil
	})
	if err != nil {
		logger.C(ctx).Error().Err(err).Int("rows", len(built)).Msg("batch insert rolled back")
		return nil, perr.FromStore(err, perr.ErrorCodeWriteFailure, fmt.Sprintf("insert %d rows", len(built)))
	}
	return built, nil
}
