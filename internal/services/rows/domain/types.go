// Package domain holds the row model shared by the rows, ingest and audit services
package domain

import (
	"time"
	"unicode/utf8"

	"rowkeeper/internal/core/export"
	"rowkeeper/internal/core/sanitize"
	perr "rowkeeper/internal/platform/errors"
)

// Row is a stored record
type Row struct {
	ID           int64     `json:"id"`
	TypeNumber   int32     `json:"typeNumber"`
	TypeSelector string    `json:"typeSelector"`
	TypeFreeText string    `json:"typeFreeText"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Record converts r to its export shape
func (r Row) Record() export.Record { return export.Record(r) }

// CreateRowRequest is the client payload for one row
type CreateRowRequest struct {
	TypeNumber   *int64 `json:"typeNumber"   validate:"required,min=1,max=2147483647"`
	TypeSelector string `json:"typeSelector" validate:"required,notblank"`
	TypeFreeText string `json:"typeFreeText" validate:"required,notblank,max=1000"`
}

// MaxFreeTextLen bounds the stored typeFreeText in characters
const MaxFreeTextLen = 1000

// CleanFreeText sanitizes s and checks the stored bound
// NFC can lengthen text that passed request validation
func CleanFreeText(s string) (string, error) {
	out := sanitize.Clean(s)
	if utf8.RuneCountInString(out) > MaxFreeTextLen {
		return "", perr.WithField(perr.Validationf("typeFreeText must be at most %d characters after sanitizing", MaxFreeTextLen), "typeFreeText")
	}
	return out, nil
}

// CleanRow builds an unsaved row from req, sanitizing its free text
func CleanRow(req CreateRowRequest, now time.Time) (Row, error) {
	text, err := CleanFreeText(req.TypeFreeText)
	if err != nil {
		return Row{}, err
	}
	return NewRow(req, text, now), nil
}

// NewRow builds an unsaved row from req with freeText already sanitized
// createdAt is UTC truncated to microseconds so every backend stores it exactly
func NewRow(req CreateRowRequest, freeText string, now time.Time) Row {
	var n int32
	if req.TypeNumber != nil {
		n = int32(*req.TypeNumber)
	}
	return Row{
		TypeNumber:   n,
		TypeSelector: req.TypeSelector,
		TypeFreeText: freeText,
		CreatedAt:    now.UTC().Truncate(time.Microsecond),
	}
}

// Paging bounds
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageQuery selects one page of rows, Page is zero based
type PageQuery struct {
	Page int
	Size int
}

// Offset is the number of rows before the page
func (q PageQuery) Offset() int { return q.Page * q.Size }

// RowPage is the list response
type RowPage struct {
	Data       []Row `json:"data"`
	TotalCount int64 `json:"totalCount"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
}

// DBHealth reports whether the row table answers
type DBHealth struct {
	Status    string `json:"status"`
	TotalRows *int64 `json:"total_rows,omitempty"`
	Database  string `json:"database,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ReportAccepted is the 202 body for report placeholders
type ReportAccepted struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}
