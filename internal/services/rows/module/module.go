// Package module wires the rows service into the API using modkit
package module

import (
	"context"
	"time"

	"rowkeeper/internal/modkit"
	"rowkeeper/internal/modkit/httpkit"
	"rowkeeper/internal/modkit/repokit"
	"rowkeeper/internal/platform/logger"
	str "rowkeeper/internal/platform/strings"
	"rowkeeper/internal/services/rows/domain"
	rowshttp "rowkeeper/internal/services/rows/http"
	"rowkeeper/internal/services/rows/repo"
	"rowkeeper/internal/services/rows/service"
)

// Ports exposed by the rows module
type Ports struct {
	Service domain.ServicePort
	Binder  repokit.Binder[domain.StorageRepo]
	DB      repokit.TxRunner
}

// Module implements the rows module
type Module struct {
	deps  modkit.Deps
	built modkit.Built
	svc   *service.Svc
	ports Ports
}

// New constructs the rows module and bootstraps table_row when AutoMigrate is on
// events may be nil
func New(deps modkit.Deps, events domain.Publisher, opts ...modkit.Option) *Module {
	o := FromConfig(deps.Cfg)
	b := modkit.Build(append([]modkit.Option{modkit.WithName("rows"), modkit.WithPrefix("/rows")}, opts...)...)

	if o.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := repo.Migrate(ctx, deps.SQL, deps.Driver); err != nil {
			logger.Named("rows").Panic().Err(err).Str("driver", deps.Driver).Msg("rows schema bootstrap failed")
		}
	}

	binder := repo.New()
	svc := service.New(deps.SQL, binder, events, deps.Metrics, deps.Driver)

	return &Module{
		deps:  deps,
		built: b,
		svc:   svc,
		ports: Ports{Service: svc, Binder: binder, DB: deps.SQL},
	}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return str.MustString(m.built.Name, "module name") }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes mounts /rows plus any routes other modules registered under it
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) {
		rowshttp.Register(rr, m.svc)
	})
}
