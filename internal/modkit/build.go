package modkit

import (
	"net/http"

	"rowkeeper/internal/modkit/httpkit"
	str "rowkeeper/internal/platform/strings"
)

// Built is a plain struct with the fields modules care about
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any

	Subrouter func(httpkit.Router) httpkit.Router
	// Register runs every WithRegister hook in order
	Register func(httpkit.Router)
}

// Build applies opts and fills hook defaults
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	if c.subrouter == nil {
		c.subrouter = func(r httpkit.Router) httpkit.Router { return r }
	}
	hooks := append(([]func(httpkit.Router))(nil), c.register...)
	return Built{
		Name:      c.name,
		Prefix:    c.prefix,
		Mw:        append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:     c.ports,
		Subrouter: c.subrouter,
		Register: func(r httpkit.Router) {
			for _, h := range hooks {
				h(r)
			}
		},
	}
}

// Mount attaches a module's routes at b.Prefix with its middleware, then calls own and the
// external hooks. Modules call this from MountRoutes
func (b Built) Mount(r httpkit.Router, own func(httpkit.Router)) {
	r.Route(str.MustPrefix(b.Prefix), func(rr httpkit.Router) {
		if len(b.Mw) > 0 {
			rr.Use(b.Mw...)
		}
		rr = b.Subrouter(rr)
		if own != nil {
			own(rr)
		}
		b.Register(rr)
	})
}
