// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/drantham/gladius/internal/cache"
	"github.com/drantham/gladius/internal/leaderboard"
	"github.com/drantham/gladius/internal/metrics"
	"github.com/drantham/gladius/internal/pagination"
)

// Handler carries the dependencies of every endpoint.
type Handler struct {
	leaderboards *leaderboard.Service
	store        cache.Store
	metrics      *metrics.Registry
	startedAt    time.Time
	version      string
}

// NewHandler builds the endpoint handler set.
func NewHandler(leaderboards *leaderboard.Service, store cache.Store, version string) *Handler {
	return &Handler{
		leaderboards: leaderboards,
		store:        store,
		metrics:      metrics.NewRegistry(),
		startedAt:    time.Now(),
		version:      version,
	}
}

// cacheDiagPageConfig bounds the cache diagnostics listing. The diagnostics
// surface is operator-facing and carries wider limits than the public
// leaderboard pages.
var cacheDiagPageConfig = pagination.Config{DefaultLimit: 50, MaxLimit: 500}

// leaderboardQuery is the validated query surface shared by the
// leaderboard endpoints.
type leaderboardQuery struct {
	Region  string `validate:"omitempty,oneof=us eu kr tw"`
	Locale  string `validate:"omitempty,max=8"`
	Season  int    `validate:"omitempty,min=1"`
	Realm   string `validate:"omitempty,slug"`
	Class   string `validate:"omitempty,slug"`
	Spec    string `validate:"omitempty,slug"`
	Role    string `validate:"omitempty,oneof=tank healer dps"`
	Faction string `validate:"omitempty,oneof=horde alliance"`
	Cursor  string `validate:"omitempty,cursor"`
}

func leaderboardQueryFromRequest(r *http.Request) (leaderboardQuery, error) {
	q := r.URL.Query()
	season, err := getIntParam(r, "season", 0)
	if err != nil {
		return leaderboardQuery{}, err
	}
	return leaderboardQuery{
		Region:  q.Get("region"),
		Locale:  q.Get("locale"),
		Season:  season,
		Realm:   q.Get("realm"),
		Class:   q.Get("class"),
		Spec:    q.Get("spec"),
		Role:    q.Get("role"),
		Faction: q.Get("faction"),
		Cursor:  q.Get("cursor"),
	}, nil
}

func (q leaderboardQuery) options(r *http.Request) leaderboard.Options {
	return leaderboard.Options{
		Region:   q.Region,
		Locale:   q.Locale,
		SeasonID: q.Season,
		Filter: leaderboard.Filter{
			Realm:   q.Realm,
			Class:   q.Class,
			Spec:    q.Spec,
			Role:    q.Role,
			Faction: q.Faction,
		},
		Page: pagination.Request{
			Cursor: q.Cursor,
			Limit:  r.URL.Query().Get("limit"),
		},
	}
}

// LeaderboardPvP serves GET /api/v1/leaderboards/{game}/pvp/{bracket}.
func (h *Handler) LeaderboardPvP(w http.ResponseWriter, r *http.Request) {
	game := chi.URLParam(r, "game")
	bracket := chi.URLParam(r, "bracket")

	query, err := leaderboardQueryFromRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&query); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	result, meta, err := h.leaderboards.GetPvPLeaderboard(r.Context(), game, bracket, query.options(r))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, result, &meta)
}

// LeaderboardMythicPlus serves GET /api/v1/leaderboards/{game}/mythic-plus.
func (h *Handler) LeaderboardMythicPlus(w http.ResponseWriter, r *http.Request) {
	game := chi.URLParam(r, "game")

	query, err := leaderboardQueryFromRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&query); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	opts := query.options(r)
	if opts.Period, err = getIntParam(r, "period", 0); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, err.Error(), nil)
		return
	}
	if opts.ConnectedRealmID, err = getIntParam(r, "connected_realm", 0); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, err.Error(), nil)
		return
	}
	if opts.DungeonID, err = getIntParam(r, "dungeon", 0); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, err.Error(), nil)
		return
	}

	result, meta, err := h.leaderboards.GetMythicPlusLeaderboard(r.Context(), game, opts)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, result, &meta)
}

// cacheEntryDTO is the diagnostic view of one cache entry.
type cacheEntryDTO struct {
	Key         string          `json:"key"`
	ExpiresAt   time.Time       `json:"expires_at"`
	FetchedAt   time.Time       `json:"fetched_at"`
	TTLMs       int64           `json:"ttl_ms"`
	RemainingMs int64           `json:"remaining_ms"`
	Value       json.RawMessage `json:"value,omitempty"`
}

func entryDTO(e cache.Entry, includeValue bool) cacheEntryDTO {
	dto := cacheEntryDTO{
		Key:         e.Key,
		ExpiresAt:   e.ExpiresAt,
		FetchedAt:   e.FetchedAt(),
		TTLMs:       e.TTL.Milliseconds(),
		RemainingMs: time.Until(e.ExpiresAt).Milliseconds(),
	}
	if includeValue {
		dto.Value = json.RawMessage(e.Value)
	}
	return dto
}

// CacheEntries serves GET /api/v1/cache/entries: read-only diagnostics of
// live entries by key prefix, paginated.
func (h *Handler) CacheEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	includeValue := q.Get("include_value") == "true"

	entries, err := h.store.List(r.Context(), q.Get("prefix"), 0, includeValue)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	dtos := make([]cacheEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = entryDTO(e, includeValue)
	}

	page, err := pagination.Apply(dtos, pagination.Request{
		Cursor: q.Get("cursor"),
		Limit:  q.Get("limit"),
	}, cacheDiagPageConfig)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, page, nil)
}

// CacheEntry serves GET /api/v1/cache/entries/{key}: a single entry with
// its value and remaining TTL.
func (h *Handler) CacheEntry(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	entry, err := h.store.Get(r.Context(), key)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if entry == nil {
		respondError(w, http.StatusNotFound, CodeNotFound, "no such cache entry", nil)
		return
	}
	respondSuccess(w, entryDTO(*entry, true), nil)
}

// CacheStats serves GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, stats, nil)
}

// MetricsSummary serves GET /api/v1/metrics/summary: a JSON snapshot of
// current metric values, for inspection without a Prometheus scrape.
func (h *Handler) MetricsSummary(w http.ResponseWriter, r *http.Request) {
	values, err := h.metrics.List()
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, values, nil)
}

// Health serves GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, map[string]interface{}{
		"status":         "ok",
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	}, nil)
}
