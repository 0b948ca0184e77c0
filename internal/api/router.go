// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

// Package api provides the HTTP surface: chi routing, middleware and
// endpoint handlers over the leaderboard engine and cache diagnostics.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drantham/gladius/internal/config"
)

// Router wires handlers and middleware into the served mux.
type Router struct {
	handler *Handler
	apiCfg  config.APIConfig
}

// NewRouter builds a router over the handler set.
func NewRouter(handler *Handler, apiCfg config.APIConfig) *Router {
	return &Router{handler: handler, apiCfg: apiCfg}
}

// Setup returns the fully configured HTTP handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global stack, applied to all routes in order.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORSHandler(router.apiCfg.CORSOrigins))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())

		r.Get("/health", router.handler.Health)

		r.Group(func(r chi.Router) {
			r.Use(RateLimiter(router.apiCfg))

			r.Route("/leaderboards/{game}", func(r chi.Router) {
				r.Get("/pvp/{bracket}", router.handler.LeaderboardPvP)
				r.Get("/mythic-plus", router.handler.LeaderboardMythicPlus)
			})

			r.Route("/cache", func(r chi.Router) {
				r.Get("/entries", router.handler.CacheEntries)
				r.Get("/entries/{key}", router.handler.CacheEntry)
				r.Get("/stats", router.handler.CacheStats)
			})

			r.Get("/metrics/summary", router.handler.MetricsSummary)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
