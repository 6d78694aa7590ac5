// @title         Rowkeeper API
// @version       1.0.0
// @description   Row ingestion, bulk loading and exports

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rowkeeper/internal/core/notify"
	"rowkeeper/internal/core/ratelimit"
	"rowkeeper/internal/core/version"
	"rowkeeper/internal/core/workpool"
	"rowkeeper/internal/platform/config"
	"rowkeeper/internal/platform/logger"
	"rowkeeper/internal/platform/metrics"
	phttp "rowkeeper/internal/platform/net/http"
	"rowkeeper/internal/platform/store"
	rowsdomain "rowkeeper/internal/services/rows/domain"

	"rowkeeper/internal/services/api"
)

func main() {
	logger.Init(logger.FromEnv())
	l := logger.Get()

	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	rlCfg := root.Prefix("RATELIMIT_")

	// open the platform store (sqlite or postgres, clickhouse when enabled)
	st, err := store.Open(context.Background(), store.ConfigFromEnv(version.Service), store.WithLogger(*logger.Named("store")))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}

	m := metrics.New()
	pool := workpool.New(workpool.ConfigFromEnv(root.Prefix("INGEST_")))
	events := notify.New[rowsdomain.Row](root.MayInt("NOTIFY_MAX_IN_FLIGHT", notify.DefaultMaxInFlight))

	var limiter *ratelimit.Limiter
	if rlCfg.MayBool("ENABLED", true) {
		limiter, err = ratelimit.New(ratelimit.FromConfig(rlCfg))
		if err != nil {
			l.Panic().Err(err).Msg("rate limiter")
		}
	}

	// http server (reads CORE_API_PORT and the timeouts)
	srv := phttp.NewServer(apiCfg)
	err = api.Mount(srv.Router(), api.Options{
		Config:         root,
		Store:          st,
		Metrics:        m,
		Pool:           pool,
		Notifier:       events,
		Limiter:        limiter,
		EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
		EnableProfiler: apiCfg.MayBool("ENABLE_PROFILER", false),
	})
	if err != nil {
		l.Panic().Err(err).Msg("api.Mount failed")
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(context.Background()) }()
	l.Info().Str("version", version.Info().Version).Str("addr", srv.Addr()).Msg("rowkeeper api started")

	select {
	case <-sigCtx.Done():
		l.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			l.Error().Err(err).Msg("http server stopped")
		}
	}

	grace := apiCfg.MayDuration("SHUTDOWN_TIMEOUT", 30*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	// server first so no new work arrives, then the queues, then storage
	if err := srv.Shutdown(ctx); err != nil {
		l.Error().Err(err).Msg("http shutdown")
	}
	if err := pool.Close(ctx); err != nil {
		l.Error().Err(err).Int("queued", pool.Queued()).Msg("worker pool did not drain")
	}
	if err := events.Close(ctx); err != nil {
		l.Error().Err(err).Msg("notifier did not drain")
	}
	if err := st.Close(ctx); err != nil {
		l.Error().Err(err).Msg("failed to close store")
	}
	l.Info().Msg("bye")
}
