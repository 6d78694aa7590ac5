// Package export encodes row snapshots into downloadable files
package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	perr "rowkeeper/internal/platform/errors"
	"rowkeeper/internal/platform/logger"
)

// Record is the exported shape of a stored row
type Record struct {
	ID           int64     `json:"id"`
	TypeNumber   int32     `json:"typeNumber"`
	TypeSelector string    `json:"typeSelector"`
	TypeFreeText string    `json:"typeFreeText"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Format is a supported export format
type Format uint8

const (
	FormatCSV Format = iota + 1
	FormatJSON
	FormatXML
)

var formatNames = map[Format]string{
	FormatCSV:  "csv",
	FormatJSON: "json",
	FormatXML:  "xml",
}

// Formats lists every supported format in a stable order
func Formats() []Format { return []Format{FormatCSV, FormatJSON, FormatXML} }

func (f Format) String() string {
	if n, ok := formatNames[f]; ok {
		return n
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// ParseFormat matches name case-insensitively
func ParseFormat(name string) (Format, error) {
	for f, n := range formatNames {
		if strings.EqualFold(strings.TrimSpace(name), n) {
			return f, nil
		}
	}
	return 0, perr.UnsupportedFormat(name)
}

// Encoder serializes a full snapshot
type Encoder interface {
	Encode(rows []Record) ([]byte, error)
	ContentType() string
	Extension() string
}

// Result is an encoded snapshot ready to be served as an attachment
type Result struct {
	Payload     []byte
	ContentType string
	FileName    string
}

// Source yields the rows to export
type Source interface {
	Snapshot(ctx context.Context) ([]Record, error)
}

// SourceFunc adapts a function into a Source
type SourceFunc func(ctx context.Context) ([]Record, error)

// Snapshot implements Source
func (f SourceFunc) Snapshot(ctx context.Context) ([]Record, error) { return f(ctx) }

// Registry resolves formats to encoders and runs exports
type Registry struct {
	encoders map[Format]Encoder
	src      Source
	now      func() time.Time
}

// NewRegistry builds a registry with the csv, json and xml encoders over src
func NewRegistry(src Source) *Registry {
	return &Registry{
		encoders: map[Format]Encoder{
			FormatCSV:  CSV{},
			FormatJSON: JSON{},
			FormatXML:  XML{},
		},
		src: src,
		now: time.Now,
	}
}

// Encoder returns the encoder for f
func (r *Registry) Encoder(f Format) (Encoder, error) {
	enc, ok := r.encoders[f]
	if !ok {
		return nil, perr.UnsupportedFormat(f.String())
	}
	return enc, nil
}

// Export snapshots the source and encodes it in the named format
func (r *Registry) Export(ctx context.Context, name string) (Result, error) {
	f, err := ParseFormat(name)
	if err != nil {
		return Result{}, err
	}
	enc, err := r.Encoder(f)
	if err != nil {
		return Result{}, err
	}

	log := logger.C(ctx)
	log.Info().Str("format", f.String()).Msg("starting export")

	rows, err := r.src.Snapshot(ctx)
	if err != nil {
		return Result{}, perr.FromStore(err, perr.ErrorCodeDB, "export snapshot failed")
	}
	payload, err := enc.Encode(rows)
	if err != nil {
		return Result{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "encode %s", f)
	}

	log.Info().Str("format", f.String()).Int("bytes", len(payload)).Int("rows", len(rows)).Msg("export completed")
	return Result{
		Payload:     payload,
		ContentType: enc.ContentType(),
		FileName:    FileName(r.now(), enc.Extension()),
	}, nil
}

// FileName is export_<unix millis>.<ext>
func FileName(at time.Time, ext string) string {
	return fmt.Sprintf("export_%d.%s", at.UnixMilli(), ext)
}

// Timestamp renders createdAt for the text formats
func Timestamp(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }
