// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

// Package models defines the response envelope and shared DTOs for the
// Gladius HTTP API.
package models

import "time"

// APIResponse is the standard response envelope for all API endpoints.
// It provides consistent structure for both successful and error responses,
// with metadata carrying cache provenance for observability.
//
// Example success:
//
//	{
//	  "status": "success",
//	  "data": {...},
//	  "metadata": {
//	    "timestamp": "2026-08-31T12:00:00Z",
//	    "cache": {"key": "pvp:retail:us:37:3v3", "cached": true, "age_ms": 1200}
//	  }
//	}
//
// Example error:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "invalid_input",
//	    "message": "cursor must match offset:<digits>",
//	    "details": {"field": "cursor"}
//	  },
//	  "metadata": {"timestamp": "2026-08-31T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp time.Time  `json:"timestamp"`
	Cache     *CacheMeta `json:"cache,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Codes are stable and machine-readable:
//   - invalid_input: bad cursor, bad limit, unsupported/ambiguous filter
//   - not_found: upstream resource does not exist
//   - upstream_failed: upstream returned a non-2xx or is unreachable
//   - season_unavailable: upstream season index empty or malformed
//   - rate_limited: too many requests to this service
//   - internal: unclassified failure (details never include stack traces)
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// CacheMeta describes the cache provenance of a returned value. It is
// derived at read time from the stored entry and never persisted itself.
//
// FetchedAt is reconstructed from the entry's own recorded TTL
// (expiresAt - ttl), so it stays correct even when the entry was written
// under an older TTL policy than the current category default.
type CacheMeta struct {
	Key       string    `json:"key"`
	Cached    bool      `json:"cached"`
	TTLMs     int64     `json:"ttl_ms"`
	ExpiresAt time.Time `json:"expires_at"`
	FetchedAt time.Time `json:"fetched_at"`
	AgeMs     int64     `json:"age_ms"`
}
