package modkit

import (
	"rowkeeper/internal/modkit/module"
)

// Module is the surface every API module implements, see module.Module
type Module = module.Module

// Builder constructs a Module from shared deps and options
type Builder func(Deps, ...Option) Module
