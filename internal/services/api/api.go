// Package api assembles the HTTP API from the service modules
package api

import (
	"context"
	"net/http"
	"time"

	"rowkeeper/internal/core/notify"
	"rowkeeper/internal/core/ratelimit"
	"rowkeeper/internal/core/workpool"
	"rowkeeper/internal/platform/config"
	"rowkeeper/internal/platform/logger"
	"rowkeeper/internal/platform/metrics"
	phttp "rowkeeper/internal/platform/net/http"
	"rowkeeper/internal/platform/store"

	"rowkeeper/internal/modkit"
	"rowkeeper/internal/modkit/httpkit"
	"rowkeeper/internal/modkit/module"
	"rowkeeper/internal/modkit/swaggerkit"

	metamod "rowkeeper/internal/services/api/meta/module"
	"rowkeeper/internal/services/audit"
	ingestmod "rowkeeper/internal/services/ingest/module"
	rowsdomain "rowkeeper/internal/services/rows/domain"
	rowsmod "rowkeeper/internal/services/rows/module"
)

// Options are the API options
type Options struct {
	// Config is the root view; modules add their own prefixes
	Config config.Conf
	Store  *store.Store

	Metrics  *metrics.Metrics
	Pool     *workpool.Pool
	Notifier *notify.Notifier[rowsdomain.Row]
	// Limiter may be nil, writes are then never throttled
	Limiter *ratelimit.Limiter

	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) error {
	deps := modkit.Deps{
		Log:     *logger.Named("api"),
		Cfg:     opt.Config,
		Metrics: opt.Metrics,
		Pool:    opt.Pool,
		Limiter: opt.Limiter,
	}.FromStore(opt.Store)

	// observers first so the first created row is already audited
	if opt.Notifier != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := audit.Attach(ctx, opt.Notifier, deps.CH); err != nil {
			return err
		}
	}

	// ingest hangs off /rows, so rows calls back into it while mounting
	var ingest *ingestmod.Module
	var events rowsdomain.Publisher
	if opt.Notifier != nil {
		events = opt.Notifier
	}
	rows := rowsmod.New(deps, events, modkit.WithRegister(func(rr httpkit.Router) {
		ingest.MountRoutes(rr)
	}))
	rowsPorts := module.MustPortsOf[rowsmod.Ports](rows)
	ingest = ingestmod.New(deps, rowsPorts)
	meta := metamod.New(deps, rowsPorts.Service)

	mods := []module.Module{meta, rows, ingest}
	for _, m := range mods {
		module.Register(m)
	}

	stack := httpkit.StackOptionsFromConfig(opt.Config.Prefix("CORE_API_"), opt.Config.Prefix("RATELIMIT_"))
	stack.OnReject = func(*http.Request) { opt.Metrics.IncrementRejected() }
	if opt.Limiter != nil {
		stack.Limiter = opt.Limiter
	}

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
	if opt.Metrics != nil {
		r.Handle("/metrics", opt.Metrics.Handler())
	}

	// ingest is not mounted on its own, rows mounts it under /rows
	httpkit.MountAPIV1(r, httpkit.CommonStack(stack), func(api httpkit.Router) {
		meta.MountRoutes(api)
		rows.MountRoutes(api)
	})

	logger.Named("api").Info().Strs("modules", module.Names()).Msg("api mounted")
	return nil
}
