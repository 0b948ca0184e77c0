// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

// Package metrics provides Prometheus instrumentation for Gladius.
//
// All metrics are pre-declared package-level vectors with fixed label
// schemas. Components either use the typed Record* helpers or go through the
// Registry facade, which fails fast on unregistered metric names and keeps
// label cardinality predictable by substituting "unknown" for absent labels.
//
// Instrumented concerns:
//   - Cache effectiveness (hit/miss per key prefix)
//   - Upstream request attempts and latency
//   - OAuth token refreshes
//   - Circuit breaker state
//   - API endpoint latency and throughput
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Cache Metrics
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gladius_cache_requests_total",
			Help: "Total number of cache store reads by key prefix and result",
		},
		[]string{"prefix", "result"}, // result: "hit" or "miss"
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gladius_cache_entries",
			Help: "Current number of cache entries by state",
		},
		[]string{"state"}, // "active" or "expired"
	)

	CacheSweepDeletions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gladius_cache_sweep_deleted_total",
			Help: "Total number of expired cache entries removed by the sweep",
		},
	)

	// Upstream Client Metrics
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gladius_upstream_requests_total",
			Help: "Total number of upstream API request attempts by outcome",
		},
		[]string{"region", "outcome"}, // outcome: success, retry, failure, not_found
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gladius_upstream_request_duration_seconds",
			Help:    "Upstream API request duration in seconds",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"region"},
	)

	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gladius_token_refreshes_total",
			Help: "Total number of OAuth token refresh attempts by outcome",
		},
		[]string{"region", "outcome"}, // outcome: success, failure
	)

	// Circuit Breaker Metrics
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gladius_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	BreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gladius_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	BreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gladius_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker by outcome",
		},
		[]string{"name", "outcome"}, // outcome: success, failure, rejected
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gladius_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gladius_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordCacheRequest records a cache store read.
// The prefix is the first colon-delimited segment of the key, which maps
// one-to-one to a resource type and makes per-resource hit rates observable.
// It goes through the Registry facade so the name-addressed path stays on
// the same code the diagnostics endpoint reads from.
func RecordCacheRequest(prefix string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	defaultRegistry.Increment("gladius_cache_requests_total", 1, map[string]string{
		"prefix": prefix,
		"result": result,
	})
}

// RecordCacheSweep records the result of an expiry sweep.
func RecordCacheSweep(deleted int) {
	if deleted > 0 {
		CacheSweepDeletions.Add(float64(deleted))
	}
}

// UpdateCacheGauges updates the entry-count gauges from store stats.
func UpdateCacheGauges(active, expired int) {
	CacheEntries.WithLabelValues("active").Set(float64(active))
	CacheEntries.WithLabelValues("expired").Set(float64(expired))
}

// RecordUpstreamAttempt records a single upstream request attempt.
// Outcome is one of: success, retry, failure, not_found.
func RecordUpstreamAttempt(region, outcome string, duration time.Duration) {
	UpstreamRequests.WithLabelValues(orUnknown(region), orUnknown(outcome)).Inc()
	UpstreamRequestDuration.WithLabelValues(orUnknown(region)).Observe(duration.Seconds())
}

// RecordTokenRefresh records an OAuth token refresh attempt.
func RecordTokenRefresh(region string, ok bool) {
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	TokenRefreshes.WithLabelValues(orUnknown(region), outcome).Inc()
}

// RecordAPIRequest records an API request with status and duration.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// orUnknown substitutes the sentinel label value for empty labels.
// Empty label values would otherwise fragment metric series unpredictably.
func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
