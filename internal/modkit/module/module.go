// Package module holds the module contract and the port lookup helpers
//
// It sits apart from modkit so a module can export its own Ports type without an
// import cycle through modkit.
package module

import (
	phttp "rowkeeper/internal/platform/net/http"
)

// Module mounts routes and exposes a ports bundle for cross module wiring
type Module interface {
	Name() string
	MountRoutes(r phttp.Router)
	Ports() any
}
