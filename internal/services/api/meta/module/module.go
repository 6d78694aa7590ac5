// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	"rowkeeper/internal/core/version"
	"rowkeeper/internal/modkit"
	"rowkeeper/internal/modkit/httpkit"
	str "rowkeeper/internal/platform/strings"

	metahttp "rowkeeper/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	built modkit.Built
	deps  metahttp.Deps
}

// New constructs a meta module; rows may be nil, /meta/db then answers DOWN
func New(deps modkit.Deps, rows metahttp.RowHealth, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	hd := metahttp.Deps{
		ServiceName: version.Service,
		StartedAt:   time.Now(),
		SQLName:     deps.Driver,
		SQL:         deps.SQL,
		CH:          deps.CH,
		Rows:        rows,
	}
	return &Module{built: b, deps: hd}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) {
		metahttp.Register(rr, m.deps)
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.built.Name, "meta") }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
