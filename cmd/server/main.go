// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/kamaleshsk123/Weather-Dashboard/internal/api"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/config"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/logging"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/provider"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/supervisor"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/supervisor/services"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/weathercache"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Bool("persistent", cfg.Cache.Persistent).
		Str("cache_path", cfg.Cache.Path).
		Str("provider", cfg.Provider.BaseURL).
		Msg("Starting Weather Dashboard")

	weather := provider.New(providerConfig(cfg.Provider, retryPolicy(cfg.Retry)))

	// Reads never wait for the cache; the fetcher goes upstream until it is ready.
	cacheProvider := weathercache.NewProviderWithOptions(cacheOptions(cfg.Cache))
	defer func() {
		if err := cacheProvider.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing weather cache")
		}
	}()

	fetcher := weathercache.NewFetcher(cacheProvider)
	fetcher.SetFetchTimeout(fetchTimeout(cfg))
	sweeper := weathercache.NewSweeper(cacheProvider, cfg.Cache.SweepInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), treeConfig(cfg.Supervisor))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === CACHE LAYER ===

	initCache := func(ctx context.Context) error {
		_, err := cacheProvider.Get(ctx)
		return err
	}
	tree.AddCacheService(services.NewCacheInitService(initCache, cacheReady(cacheProvider, func() {
		tree.AddCacheService(services.NewSweeperService(sweeper))
	})))

	// === API LAYER ===

	handler := api.NewHandler(cacheProvider, fetcher, weather, sweeper)
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, middlewareConfig(cfg.Server)),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	stop()

	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Weather Dashboard stopped")
}
