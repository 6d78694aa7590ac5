package domain

import (
	"context"
)

// StorageRepo is the persistence surface for rows, bound to a pool or a transaction
type StorageRepo interface {
	Insert(ctx context.Context, r Row) (int64, error)
	// InsertMany writes rows in one statement and returns their ids in input order
	InsertMany(ctx context.Context, rows []Row) ([]int64, error)
	Count(ctx context.Context) (int64, error)
	// Delete reports whether a row was removed
	Delete(ctx context.Context, id int64) (bool, error)
	Page(ctx context.Context, offset, limit int) ([]Row, error)
	All(ctx context.Context) ([]Row, error)
}

// ServicePort is consumed by the rows handlers
type ServicePort interface {
	Create(ctx context.Context, req CreateRowRequest) (Row, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, q PageQuery) (RowPage, error)
	Export(ctx context.Context, format string) (ExportFile, error)
	Health(ctx context.Context) DBHealth
}

// ExportFile is an encoded snapshot
type ExportFile struct {
	Payload     []byte
	ContentType string
	FileName    string
}

// Publisher announces durably created rows
type Publisher interface {
	Publish(ctx context.Context, r Row)
}
