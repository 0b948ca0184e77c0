// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

// Package main is the entry point for the Gladius server.
//
// Gladius sits in front of the Battle.net game data API and serves
// normalized, cached leaderboard data. The server initializes components in
// the following order:
//
//  1. Configuration: Koanf v2 with env vars, config.yaml, and defaults
//  2. Cache store: memory, BadgerDB, SQLite, or Redis backend
//  3. Upstream client: OAuth2 client-credentials, retry, circuit breaker
//  4. Leaderboard service: normalization, filtering, pagination
//  5. HTTP API: chi router with rate limiting and Prometheus metrics
//  6. Supervisor tree: suture-managed HTTP server and cache sweep loop
//
// # Configuration
//
// Upstream credentials are required:
//
//	export BNET_CLIENT_ID=your-client-id
//	export BNET_CLIENT_SECRET=your-client-secret
//	./gladius
//
// With a persistent cache:
//
//	export CACHE_BACKEND=badger
//	export CACHE_PATH=/var/lib/gladius/cache
//	./gladius
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the server stops accepting
// connections, waits for in-flight requests up to the configured shutdown
// timeout, then closes the cache store.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drantham/gladius/internal/api"
	"github.com/drantham/gladius/internal/cache"
	"github.com/drantham/gladius/internal/cached"
	"github.com/drantham/gladius/internal/config"
	"github.com/drantham/gladius/internal/leaderboard"
	"github.com/drantham/gladius/internal/logging"
	"github.com/drantham/gladius/internal/pagination"
	"github.com/drantham/gladius/internal/supervisor"
	"github.com/drantham/gladius/internal/supervisor/services"
	"github.com/drantham/gladius/internal/upstream"
)

// version is set at build time via -ldflags "-X main.version=...".
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
		Str("region", cfg.Upstream.Region).
		Str("cache_backend", cfg.Cache.Backend).
		Msg("Starting Gladius")

	store, err := cache.NewStore(cfg.Cache)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize cache store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Cache store close failed")
		}
	}()

	client := upstream.NewClient(cfg.Upstream)
	leaderboards := leaderboard.NewService(
		client,
		cached.New(store, cfg.Cache.TTL),
		cfg.Upstream.Region,
		cfg.Upstream.Locale,
		pagination.Config{
			DefaultLimit: cfg.API.DefaultPageSize,
			MaxLimit:     cfg.API.MaxPageSize,
		},
	)

	handler := api.NewHandler(leaderboards, store, version)
	router := api.NewRouter(handler, cfg.API)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	if cfg.Server.ShutdownTimeout > 0 {
		treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	}
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)
	tree.AddStorageService(services.NewSweepService(store, cfg.Cache.SweepInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, treeCfg.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Server stopped gracefully")
}
