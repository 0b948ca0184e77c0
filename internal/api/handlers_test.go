// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/drantham/gladius/internal/cache"
	"github.com/drantham/gladius/internal/cached"
	"github.com/drantham/gladius/internal/config"
	"github.com/drantham/gladius/internal/leaderboard"
	"github.com/drantham/gladius/internal/metrics"
	"github.com/drantham/gladius/internal/models"
	"github.com/drantham/gladius/internal/pagination"
	"github.com/drantham/gladius/internal/upstream"
)

// stubFetcher serves canned upstream JSON per path.
type stubFetcher struct {
	responses map[string]string
}

func (f *stubFetcher) FetchJSON(_ context.Context, path string, _ upstream.RequestOptions, out interface{}) error {
	body, ok := f.responses[path]
	if !ok {
		return fmt.Errorf("%w: %s", upstream.ErrNotFound, path)
	}
	return json.Unmarshal([]byte(body), out)
}

func testServer(t *testing.T, apiCfg config.APIConfig) (*httptest.Server, cache.Store) {
	t.Helper()

	fetcher := &stubFetcher{responses: map[string]string{
		"/data/wow/pvp-season/index": `{"seasons": [{"id": 37}], "current_season": {"id": 37}}`,
		"/data/wow/pvp-season/37/pvp-leaderboard/3v3": `{
			"season": {"id": 37},
			"bracket": {"id": 1, "type": "ARENA_3v3"},
			"entries": [
				{"rank": 1, "rating": 3100,
				 "character": {"id": 1, "name": "Shade", "realm": {"slug": "stormrage"}},
				 "faction": {"type": "HORDE"},
				 "season_match_statistics": {"played": 100, "won": 70, "lost": 30}},
				{"rank": 2, "rating": 3000,
				 "character": {"id": 2, "name": "Lumen", "realm": {"slug": "area-52"}},
				 "faction": {"type": "ALLIANCE"},
				 "season_match_statistics": {"played": 90, "won": 60, "lost": 30}}
			]
		}`,
	}}

	store := cache.NewMemoryStore()
	c := cached.New(store, config.TTLConfig{
		PvP: 5 * time.Minute, Leaderboards: 5 * time.Minute, Seasons: 30 * time.Minute,
	})
	svc := leaderboard.NewService(fetcher, c, "us", "en_US", pagination.Config{
		DefaultLimit: apiCfg.DefaultPageSize,
		MaxLimit:     apiCfg.MaxPageSize,
	})
	handler := NewHandler(svc, store, "test")
	srv := httptest.NewServer(NewRouter(handler, apiCfg).Setup())
	t.Cleanup(srv.Close)
	return srv, store
}

func getEnvelope(t *testing.T, url string) (int, models.APIResponse) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var envelope models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope from %s: %v", url, err)
	}
	return resp.StatusCode, envelope
}

func TestLeaderboardPvPEndpoint(t *testing.T) {
	srv, _ := testServer(t, config.APIConfig{RateLimitDisabled: true})

	status, envelope := getEnvelope(t, srv.URL+"/api/v1/leaderboards/retail/pvp/3v3")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if envelope.Status != "success" {
		t.Errorf("envelope status = %q", envelope.Status)
	}
	if envelope.Metadata.Cache == nil {
		t.Fatal("metadata.cache missing")
	}
	if envelope.Metadata.Cache.Cached {
		t.Error("first request reported cached=true")
	}

	// Second request served from cache.
	_, envelope = getEnvelope(t, srv.URL+"/api/v1/leaderboards/retail/pvp/3v3")
	if envelope.Metadata.Cache == nil || !envelope.Metadata.Cache.Cached {
		t.Error("second request reported cached=false")
	}
}

func TestLeaderboardPvPFilterByFaction(t *testing.T) {
	srv, _ := testServer(t, config.APIConfig{RateLimitDisabled: true})

	status, envelope := getEnvelope(t, srv.URL+"/api/v1/leaderboards/retail/pvp/3v3?faction=alliance")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	data, _ := json.Marshal(envelope.Data)
	var result leaderboard.Result
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Page.Total != 1 {
		t.Errorf("Total = %d, want 1 alliance entry", result.Page.Total)
	}
}

func TestLeaderboardPvPValidation(t *testing.T) {
	srv, _ := testServer(t, config.APIConfig{RateLimitDisabled: true})

	tests := []struct {
		name  string
		query string
	}{
		{"bad region", "?region=moon"},
		{"bad cursor", "?cursor=page:3"},
		{"bad role", "?role=support"},
		{"bad faction", "?faction=pandaren"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, envelope := getEnvelope(t, srv.URL+"/api/v1/leaderboards/retail/pvp/3v3"+tt.query)
			if status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", status)
			}
			if envelope.Error == nil || envelope.Error.Code != CodeInvalidInput {
				t.Errorf("error = %+v, want invalid_input", envelope.Error)
			}
		})
	}
}

func TestNonIntegerParamsRejected(t *testing.T) {
	srv, _ := testServer(t, config.APIConfig{RateLimitDisabled: true})

	tests := []struct {
		name string
		path string
	}{
		{"pvp season", "/api/v1/leaderboards/retail/pvp/3v3?season=abc"},
		{"mythic period", "/api/v1/leaderboards/retail/mythic-plus?connected_realm=11&dungeon=197&period=abc"},
		{"mythic connected realm", "/api/v1/leaderboards/retail/mythic-plus?connected_realm=abc&dungeon=197"},
		{"mythic dungeon", "/api/v1/leaderboards/retail/mythic-plus?connected_realm=11&dungeon=abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, envelope := getEnvelope(t, srv.URL+tt.path)
			if status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", status)
			}
			if envelope.Error == nil || envelope.Error.Code != CodeInvalidInput {
				t.Fatalf("error = %+v, want invalid_input", envelope.Error)
			}
			// A malformed value must not read as a missing parameter.
			if strings.Contains(envelope.Error.Message, "required") {
				t.Errorf("message %q reads as a missing parameter", envelope.Error.Message)
			}
		})
	}
}

func TestLeaderboardPvPAmbiguousSpec(t *testing.T) {
	srv, _ := testServer(t, config.APIConfig{RateLimitDisabled: true})

	status, envelope := getEnvelope(t, srv.URL+"/api/v1/leaderboards/retail/pvp/3v3?spec=holy")
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if envelope.Error == nil || envelope.Error.Code != CodeInvalidInput {
		t.Errorf("error = %+v, want invalid_input", envelope.Error)
	}
}

func TestLeaderboardPvPNotFound(t *testing.T) {
	srv, _ := testServer(t, config.APIConfig{RateLimitDisabled: true})

	status, envelope := getEnvelope(t, srv.URL+"/api/v1/leaderboards/retail/pvp/9v9")
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
	if envelope.Error == nil || envelope.Error.Code != CodeNotFound {
		t.Errorf("error = %+v, want not_found", envelope.Error)
	}
}

func TestMythicPlusRequiresDungeon(t *testing.T) {
	srv, _ := testServer(t, config.APIConfig{RateLimitDisabled: true})

	status, envelope := getEnvelope(t, srv.URL+"/api/v1/leaderboards/retail/mythic-plus")
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if envelope.Error == nil || envelope.Error.Code != CodeInvalidInput {
		t.Errorf("error = %+v", envelope.Error)
	}
}

func TestCacheDiagnosticsEndpoints(t *testing.T) {
	srv, store := testServer(t, config.APIConfig{RateLimitDisabled: true})
	ctx := context.Background()

	if err := store.Set(ctx, "pvp:retail:us:37:3v3", []byte(`{"x":1}`), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, "seasons:retail:us:pvp-current", []byte(`37`), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// List by prefix.
	status, envelope := getEnvelope(t, srv.URL+"/api/v1/cache/entries?prefix=pvp:")
	if status != http.StatusOK {
		t.Fatalf("entries status = %d", status)
	}
	data, _ := json.Marshal(envelope.Data)
	var page struct {
		Results []cacheEntryDTO `json:"results"`
		Total   int             `json:"total"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Total != 1 || page.Results[0].Key != "pvp:retail:us:37:3v3" {
		t.Errorf("page = %+v", page)
	}
	if page.Results[0].Value != nil {
		t.Error("value included without include_value=true")
	}

	// Single entry carries the value and remaining TTL.
	status, envelope = getEnvelope(t, srv.URL+"/api/v1/cache/entries/pvp:retail:us:37:3v3")
	if status != http.StatusOK {
		t.Fatalf("entry status = %d", status)
	}
	data, _ = json.Marshal(envelope.Data)
	var dto cacheEntryDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if string(dto.Value) != `{"x":1}` {
		t.Errorf("value = %s", dto.Value)
	}
	if dto.RemainingMs <= 0 || dto.RemainingMs > time.Minute.Milliseconds() {
		t.Errorf("RemainingMs = %d", dto.RemainingMs)
	}

	// Missing entry is a 404.
	status, _ = getEnvelope(t, srv.URL+"/api/v1/cache/entries/absent:key")
	if status != http.StatusNotFound {
		t.Errorf("missing entry status = %d, want 404", status)
	}

	// Stats.
	status, envelope = getEnvelope(t, srv.URL+"/api/v1/cache/stats")
	if status != http.StatusOK {
		t.Fatalf("stats status = %d", status)
	}
	data, _ = json.Marshal(envelope.Data)
	var stats cache.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Active != 2 {
		t.Errorf("Active = %d, want 2", stats.Active)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := testServer(t, config.APIConfig{RateLimitDisabled: true})

	status, envelope := getEnvelope(t, srv.URL+"/api/v1/health")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if envelope.Status != "success" {
		t.Errorf("envelope status = %q", envelope.Status)
	}
}

func TestMetricsSummaryEndpoint(t *testing.T) {
	srv, _ := testServer(t, config.APIConfig{RateLimitDisabled: true})

	// Bump the request counter before reading the summary.
	if status, _ := getEnvelope(t, srv.URL+"/api/v1/health"); status != http.StatusOK {
		t.Fatalf("health status = %d", status)
	}

	status, envelope := getEnvelope(t, srv.URL+"/api/v1/metrics/summary")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if envelope.Status != "success" {
		t.Errorf("envelope status = %q", envelope.Status)
	}

	raw, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("remarshal data: %v", err)
	}
	var values []metrics.Value
	if err := json.Unmarshal(raw, &values); err != nil {
		t.Fatalf("decode values: %v", err)
	}

	var sawAPIRequests bool
	for _, v := range values {
		if v.Name == "gladius_api_requests_total" && v.Value > 0 {
			sawAPIRequests = true
		}
	}
	if !sawAPIRequests {
		t.Error("summary missing gladius_api_requests_total with nonzero value")
	}
}

func TestRateLimitEnvelope(t *testing.T) {
	srv, _ := testServer(t, config.APIConfig{RateLimitRequests: 1, RateLimitWindow: time.Minute})

	if status, _ := getEnvelope(t, srv.URL+"/api/v1/health"); status != http.StatusOK {
		// Health is outside the rate-limited group.
		t.Fatalf("health status = %d", status)
	}

	first, _ := getEnvelope(t, srv.URL+"/api/v1/cache/stats")
	if first != http.StatusOK {
		t.Fatalf("first status = %d", first)
	}
	second, envelope := getEnvelope(t, srv.URL+"/api/v1/cache/stats")
	if second != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", second)
	}
	if envelope.Error == nil || envelope.Error.Code != CodeRateLimited {
		t.Errorf("error = %+v, want rate_limited", envelope.Error)
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := testServer(t, config.APIConfig{RateLimitDisabled: true})

	resp, err := http.Get(srv.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}
