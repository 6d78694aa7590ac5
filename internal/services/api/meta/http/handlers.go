// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"rowkeeper/internal/core/version"
	"rowkeeper/internal/modkit/httpkit"
	rows "rowkeeper/internal/services/rows/domain"
)

// Pinger is satisfied by adapters that expose Ping
type Pinger interface {
	Ping(stdctx.Context) error
}

// RowHealth reports on the row table
type RowHealth interface {
	Health(ctx stdctx.Context) rows.DBHealth
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	// SQLName labels the SQL check, e.g. sqlite or postgres
	SQLName string
	SQL     any
	CH      any
	Rows    RowHealth
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.GetEnvelope(r, "/health", h.health)
	httpkit.GetEnvelope(r, "/ready", h.ready)
	httpkit.GetEnvelope(r, "/version", h.version)
	httpkit.Get(r, "/db", h.db)
}

//
// Swagger DTOs and route docs
//

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"       example:"true"`
	Service string `json:"service"  example:"rowkeeper-api"`
	Started string `json:"started"  example:"2025-09-03T13:00:00Z"`
	Uptime  int64  `json:"uptime"   example:"300"`
	Now     string `json:"now"      example:"2025-09-03T13:05:00Z"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"   example:"sqlite"`
	Status string `json:"status" example:"ok"` // ok fail skipped unknown
	Error  string `json:"error,omitempty" example:"database is locked"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2025-09-03T13:05:00Z"`
}

// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(time.Since(h.deps.StartedAt) / time.Second),
		Now:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// @Summary Readiness probe with dependency checks
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	check := func(name string, c any) ReadyCheck {
		if c == nil {
			return ReadyCheck{Name: name, Status: "skipped"}
		}
		if p, ok := c.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
			}
			return ReadyCheck{Name: name, Status: "ok"}
		}
		return ReadyCheck{Name: name, Status: "unknown"}
	}

	sqlName := h.deps.SQLName
	if sqlName == "" {
		sqlName = "sql"
	}
	db := check(sqlName, h.deps.SQL)
	ch := check("clickhouse", h.deps.CH)

	// clickhouse is optional, only the relational store decides ok
	overall := "ok"
	switch {
	case db.Status == "fail":
		overall = "fail"
	case db.Status != "ok" || ch.Status == "fail":
		overall = "degraded"
	}

	return ReadyResponse{
		Status: overall,
		Checks: []ReadyCheck{db, ch},
		Now:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// @Summary Row table health
// @Tags Meta
// @Produce json
// @Success 200 {object} domain.DBHealth
// @Failure 503 {object} domain.DBHealth
// @Router /meta/db [get]
func (h *handlers) db(r *http.Request) (any, error) {
	if h.deps.Rows == nil {
		return httpkit.Bare(http.StatusServiceUnavailable, rows.DBHealth{Status: "DOWN", Error: "row store not configured"}), nil
	}
	health := h.deps.Rows.Health(r.Context())
	if health.Status != "UP" {
		return httpkit.Bare(http.StatusServiceUnavailable, health), nil
	}
	return health, nil
}
