// Package module wires bulk ingestion and the report placeholders into the API
package module

import (
	"rowkeeper/internal/modkit"
	"rowkeeper/internal/modkit/httpkit"
	"rowkeeper/internal/modkit/repokit"
	"rowkeeper/internal/platform/logger"
	"rowkeeper/internal/platform/store"
	"rowkeeper/internal/services/ingest/domain"
	ingesthttp "rowkeeper/internal/services/ingest/http"
	"rowkeeper/internal/services/ingest/service"
	rowsmod "rowkeeper/internal/services/rows/module"
)

// Ports exposed by the ingest module
type Ports struct {
	Service domain.ServicePort
	Jobs    *service.Jobs
}

// Module implements the ingest module
type Module struct {
	opt   Options
	svc   *service.Svc
	ports Ports
}

// New builds the coordinator on deps.Pool and the row store exposed by rows
func New(deps modkit.Deps, rows rowsmod.Ports) *Module {
	if deps.Pool == nil {
		logger.Named("ingest").Panic().Msg("ingest requires a worker pool")
	}
	o := FromConfig(deps.Cfg)

	batchDB := rows.DB
	if deps.Driver == store.DriverPostgres && o.StatementTimeout > 0 {
		batchDB = repokit.WithBeginHooks(rows.DB, repokit.StatementTimeout(o.StatementTimeout))
	}

	jobs, err := service.NewJobs(o.JobHistory)
	if err != nil {
		logger.Named("ingest").Panic().Err(err).Int("size", o.JobHistory).Msg("job registry")
	}
	coord := service.NewCoordinator(deps.Pool,
		service.NewSequentialWriter(rows.DB, rows.Binder),
		service.NewBatchWriter(batchDB, rows.Binder, o.FlushSize),
		jobs, deps.Metrics,
		service.Options{Threshold: o.Threshold, MaxBulk: o.MaxBulk},
	)
	reports := service.NewReports(deps.Pool, rows.Binder.Bind(rows.DB), o.ReportDelay)
	svc := service.New(coord, reports)

	return &Module{opt: o, svc: svc, ports: Ports{Service: svc, Jobs: jobs}}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "ingest" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes registers on a router already scoped to /rows
// the api passes it to the rows module through modkit.WithRegister
func (m *Module) MountRoutes(r httpkit.Router) {
	ingesthttp.Register(r, m.svc, m.opt.MaxBody)
}
