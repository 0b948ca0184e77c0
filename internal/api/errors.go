// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/sony/gobreaker/v2"

	"github.com/drantham/gladius/internal/leaderboard"
	"github.com/drantham/gladius/internal/logging"
	"github.com/drantham/gladius/internal/pagination"
	"github.com/drantham/gladius/internal/upstream"
)

// Stable machine-readable error codes. Domain and resiliency errors map
// onto these unchanged through every layer; only genuinely unexpected
// failures collapse into "internal", and those never leak details.
const (
	CodeInvalidInput      = "invalid_input"
	CodeNotFound          = "not_found"
	CodeUpstreamFailed    = "upstream_failed"
	CodeSeasonUnavailable = "season_unavailable"
	CodeRateLimited       = "rate_limited"
	CodeInternal          = "internal"
)

// respondDomainError classifies a domain or resiliency error and writes
// the matching error envelope.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		inputErr  *pagination.InputError
		filterErr *leaderboard.FilterError
		seasonErr *leaderboard.SeasonError
		statusErr *upstream.StatusError
		tokenErr  *upstream.TokenError
	)

	switch {
	case errors.As(err, &inputErr):
		respondError(w, http.StatusBadRequest, CodeInvalidInput, inputErr.Error(),
			map[string]interface{}{"field": inputErr.Field})

	case errors.As(err, &filterErr):
		respondError(w, http.StatusBadRequest, CodeInvalidInput, filterErr.Error(),
			map[string]interface{}{"field": filterErr.Field})

	case errors.Is(err, upstream.ErrNotFound):
		respondError(w, http.StatusNotFound, CodeNotFound, "upstream resource not found", nil)

	case errors.As(err, &seasonErr):
		respondError(w, http.StatusBadGateway, CodeSeasonUnavailable, seasonErr.Error(), nil)

	case errors.As(err, &statusErr):
		respondError(w, http.StatusBadGateway, CodeUpstreamFailed, "upstream request failed",
			map[string]interface{}{"upstream_status": statusErr.Status})

	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		// The breaker is shedding load; the upstream is known-unhealthy and
		// the request was never sent.
		respondError(w, http.StatusServiceUnavailable, CodeUpstreamFailed, "upstream temporarily unavailable", nil)

	case errors.As(err, &tokenErr):
		respondError(w, http.StatusBadGateway, CodeUpstreamFailed, "upstream authentication failed",
			map[string]interface{}{"upstream_status": tokenErr.Status})

	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, CodeUpstreamFailed, "upstream request timed out", nil)

	case errors.Is(err, context.Canceled):
		// The client went away; the status is best-effort.
		respondError(w, http.StatusServiceUnavailable, CodeInternal, "request canceled", nil)

	default:
		logging.Ctx(r.Context()).Error().Err(err).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Msg("unclassified API error")
		respondError(w, http.StatusInternalServerError, CodeInternal, "internal error", nil)
	}
}
