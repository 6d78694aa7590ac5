// Package domain holds the bulk ingestion and report contracts
package domain

import (
	"context"

	rows "rowkeeper/internal/services/rows/domain"
)

// Strategy names how a bulk request is persisted
type Strategy string

// Strategies
const (
	StrategySequential     Strategy = "sequential"
	StrategyOptimizedBatch Strategy = "optimized_batch"
)

// JobStatus is the lifecycle of a bulk job
type JobStatus string

// Job states
const (
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Outcome is what a finished bulk job produced
type Outcome struct {
	Strategy Strategy
	Rows     []rows.Row
	Count    int
}

// BulkAccepted is the 202 body for POST /rows/bulk
type BulkAccepted struct {
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	Count    int      `json:"count"`
	Strategy Strategy `json:"strategy"`
	JobID    string   `json:"jobId"`
}

// JobView is the body for GET /rows/bulk/{jobId}
type JobView struct {
	JobID    string     `json:"jobId"`
	Status   JobStatus  `json:"status"`
	Strategy Strategy   `json:"strategy"`
	Count    int        `json:"count"`
	Error    string     `json:"error,omitempty"`
	Rows     []rows.Row `json:"rows,omitempty"`
}

// ReportKind selects a report placeholder
type ReportKind string

// Report kinds
const (
	ReportGenerate ReportKind = "generate"
	ReportMonthly  ReportKind = "monthly"
	ReportExcel    ReportKind = "excel"
)

// Writer persists a batch of requests and returns the stored rows in input order
type Writer interface {
	Write(ctx context.Context, reqs []rows.CreateRowRequest) ([]rows.Row, error)
}

// WriterFunc adapts a function to Writer
type WriterFunc func(ctx context.Context, reqs []rows.CreateRowRequest) ([]rows.Row, error)

// Write calls f
func (f WriterFunc) Write(ctx context.Context, reqs []rows.CreateRowRequest) ([]rows.Row, error) {
	return f(ctx, reqs)
}

// ServicePort is consumed by the ingest handlers
type ServicePort interface {
	Accept(ctx context.Context, reqs []rows.CreateRowRequest) (BulkAccepted, error)
	Job(ctx context.Context, id string) (JobView, error)
	Report(ctx context.Context, kind ReportKind, userID int64) (rows.ReportAccepted, error)
}
