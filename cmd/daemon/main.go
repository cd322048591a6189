// SPDX-License-Identifier: MIT

// Command daemon runs the option-chain simulation service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/chainforge/optionsim/internal/api"
	"github.com/chainforge/optionsim/internal/archive"
	"github.com/chainforge/optionsim/internal/config"
	"github.com/chainforge/optionsim/internal/history"
	oslog "github.com/chainforge/optionsim/internal/log"
	"github.com/chainforge/optionsim/internal/session"
	"github.com/chainforge/optionsim/internal/sim"
	"github.com/chainforge/optionsim/internal/telemetry"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// cleanupInterval is how often the expiry sweep runs.
const cleanupInterval = 5 * time.Minute

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()
	if *showVersion {
		fmt.Printf("optionsim %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	cfg := config.Load()
	oslog.Configure(oslog.Config{Level: cfg.LogLevel, Service: "optionsim"})
	logger := oslog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracer, err := telemetry.Setup(ctx, cfg.Tracing, "optionsim", version)
	if err != nil {
		logger.Warn().Err(err).Str("exporter", cfg.Tracing.Exporter).
			Msg("trace exporter unavailable, span export disabled")
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	store := buildStore(ctx, cfg)

	var source sim.HistoricalSource
	repo, err := history.Connect(ctx, cfg.ClickHouse)
	if err != nil {
		logger.Warn().Err(err).Str("addr", cfg.ClickHouse.Addr()).
			Msg("clickhouse unavailable, historical methods disabled")
	} else {
		defer func() { _ = repo.Close() }()
		source = repo
	}

	arch, err := archive.Connect(ctx, cfg.Mongo)
	if err != nil {
		logger.Warn().Err(err).Msg("mongodb unavailable, archiving disabled")
		arch = nil
	}

	simulator := sim.New(source)
	manager := session.NewManager(store, simulator, arch)
	server := api.NewServer(manager)

	go runCleanup(ctx, manager, logger)

	httpServer := &http.Server{
		Addr: cfg.Listen,
		Handler: server.Router(api.Options{
			RateLimit:      cfg.RateLimit,
			TracingService: "optionsim",
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Listen).Str("store", cfg.StoreBackend).
			Str("version", version).Msg("listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server failed")
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown incomplete")
		os.Exit(1)
	}
	logger.Info().Msg("shutdown complete")
}

// buildStore picks the configured session store, falling back to the
// in-process store when Redis is not reachable.
func buildStore(ctx context.Context, cfg config.Config) session.Store {
	logger := oslog.WithComponent("daemon")
	if cfg.StoreBackend != "redis" {
		logger.Info().Msg("using in-process session store")
		return session.NewMemoryStore()
	}
	client, err := session.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Redis.Addr()).
			Msg("redis unavailable, falling back to in-process store")
		return session.NewMemoryStore()
	}
	logger.Info().Str("addr", cfg.Redis.Addr()).
		Dur("ttl", cfg.SessionTTL).Msg("using redis session store")
	return session.NewRedisStore(client, cfg.SessionPrefix, cfg.SessionTTL)
}

// runCleanup sweeps expired sessions until the context ends.
func runCleanup(ctx context.Context, manager *session.Manager, logger zerolog.Logger) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := manager.CleanupSessions(ctx); err != nil {
				logger.Warn().Err(err).Msg("cleanup sweep failed")
			}
		}
	}
}
