// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package leaderboard

import (
	"context"
	"fmt"

	"github.com/drantham/gladius/internal/cache"
	"github.com/drantham/gladius/internal/cached"
	"github.com/drantham/gladius/internal/logging"
	"github.com/drantham/gladius/internal/models"
	"github.com/drantham/gladius/internal/pagination"
	"github.com/drantham/gladius/internal/upstream"
)

// Fetcher is the slice of the upstream client the engine needs.
type Fetcher interface {
	FetchJSON(ctx context.Context, path string, opts upstream.RequestOptions, out interface{}) error
}

// defaultPageConfig bounds leaderboard pagination when no sizes are
// configured.
var defaultPageConfig = pagination.Config{DefaultLimit: 25, MaxLimit: 100}

// Options qualifies a leaderboard request. Zero values fall back to the
// service defaults (region, locale) or to upstream-resolved identities
// (season, period).
type Options struct {
	Region string
	Locale string

	// SeasonID pins a PvP season; 0 resolves the current season.
	SeasonID int

	// Mythic+ only. Period 0 resolves the current keystone period;
	// ConnectedRealmID and DungeonID are required.
	Period           int
	ConnectedRealmID int
	DungeonID        int

	Filter Filter
	Page   pagination.Request
}

// Result is a normalized, filtered, paginated leaderboard view.
type Result struct {
	Game     string                 `json:"game"`
	Region   string                 `json:"region"`
	SeasonID int                    `json:"season_id,omitempty"`
	PeriodID int                    `json:"period_id,omitempty"`
	Bracket  string                 `json:"bracket,omitempty"`
	Dungeon  string                 `json:"dungeon,omitempty"`
	Page     pagination.Page[Entry] `json:"leaderboard"`
}

// Service is the leaderboard normalization engine. It owns canonical entry
// construction but delegates caching to the orchestration layer, which
// treats the normalized entry set as an opaque payload.
type Service struct {
	client        Fetcher
	cache         *cached.Cache
	defaultRegion string
	defaultLocale string
	page          pagination.Config
}

// NewService builds the engine over an upstream fetcher and a cache. A zero
// page config falls back to the built-in sizes.
func NewService(client Fetcher, c *cached.Cache, defaultRegion, defaultLocale string, page pagination.Config) *Service {
	if page.DefaultLimit <= 0 || page.MaxLimit <= 0 {
		page = defaultPageConfig
	}
	return &Service{
		client:        client,
		cache:         c,
		defaultRegion: defaultRegion,
		defaultLocale: defaultLocale,
		page:          page,
	}
}

// GetPvPLeaderboard returns the normalized PvP leaderboard for a bracket
// (2v2, 3v3, rbg, or a solo shuffle bracket like shuffle-rogue-subtlety).
//
// The full normalized entry set is what gets cached; filters, percentiles
// and pagination are applied per request on top of it, so every filter
// combination shares one upstream fetch per season/bracket.
func (s *Service) GetPvPLeaderboard(ctx context.Context, game, bracket string, opts Options) (*Result, models.CacheMeta, error) {
	filter, err := opts.Filter.resolve()
	if err != nil {
		return nil, models.CacheMeta{}, err
	}
	shuffleSpec, err := shuffleSpecFromBracket(bracket)
	if err != nil {
		return nil, models.CacheMeta{}, err
	}

	region, locale := s.regionLocale(opts)
	season := opts.SeasonID
	if season == 0 {
		season, err = s.currentSeason(ctx, game, region)
		if err != nil {
			return nil, models.CacheMeta{}, err
		}
	}

	key := cache.BuildKey("pvp", game, region, itoa(season), bracket)
	entries, meta, err := cached.Fetch(ctx, s.cache, key, cached.CategoryPvP, func(ctx context.Context) ([]Entry, error) {
		path := fmt.Sprintf("/data/wow/pvp-season/%d/pvp-leaderboard/%s", season, bracket)
		var raw rawPvPLeaderboard
		if err := s.client.FetchJSON(ctx, path, upstream.RequestOptions{
			Region:    region,
			Locale:    locale,
			Namespace: namespaceFor("dynamic", game, region),
		}, &raw); err != nil {
			return nil, err
		}
		normalized := normalizePvP(&raw, bracket, shuffleSpec)
		logging.Debug().
			Str("key", key).
			Int("entries", len(normalized)).
			Msg("normalized pvp leaderboard")
		return normalized, nil
	})
	if err != nil {
		return nil, meta, err
	}

	page, err := s.window(entries, filter, opts.Page)
	if err != nil {
		return nil, meta, err
	}
	return &Result{
		Game:     game,
		Region:   region,
		SeasonID: season,
		Bracket:  bracket,
		Page:     page,
	}, meta, nil
}

// GetMythicPlusLeaderboard returns the normalized Mythic+ leaderboard for
// a dungeon on a connected realm. Period 0 resolves the current keystone
// period.
func (s *Service) GetMythicPlusLeaderboard(ctx context.Context, game string, opts Options) (*Result, models.CacheMeta, error) {
	filter, err := opts.Filter.resolve()
	if err != nil {
		return nil, models.CacheMeta{}, err
	}
	if opts.ConnectedRealmID <= 0 {
		return nil, models.CacheMeta{}, &FilterError{Field: "connected_realm", Reason: "a connected realm id is required"}
	}
	if opts.DungeonID <= 0 {
		return nil, models.CacheMeta{}, &FilterError{Field: "dungeon", Reason: "a dungeon id is required"}
	}

	region, locale := s.regionLocale(opts)
	period := opts.Period
	if period == 0 {
		period, err = s.currentPeriod(ctx, game, region)
		if err != nil {
			return nil, models.CacheMeta{}, err
		}
	}

	key := cache.BuildKey("leaderboards", game, region,
		itoa(opts.ConnectedRealmID), itoa(opts.DungeonID), itoa(period))
	var dungeon string
	entries, meta, err := cached.Fetch(ctx, s.cache, key, cached.CategoryLeaderboards, func(ctx context.Context) ([]Entry, error) {
		path := fmt.Sprintf("/data/wow/connected-realm/%d/mythic-leaderboard/%d/period/%d",
			opts.ConnectedRealmID, opts.DungeonID, period)
		var raw rawMythicLeaderboard
		if err := s.client.FetchJSON(ctx, path, upstream.RequestOptions{
			Region:    region,
			Locale:    locale,
			Namespace: namespaceFor("dynamic", game, region),
		}, &raw); err != nil {
			return nil, err
		}
		return normalizeMythic(&raw), nil
	})
	if err != nil {
		return nil, meta, err
	}

	page, err := s.window(entries, filter, opts.Page)
	if err != nil {
		return nil, meta, err
	}
	if len(entries) > 0 {
		dungeon = entries[0].DungeonOrBracket
	}
	return &Result{
		Game:     game,
		Region:   region,
		PeriodID: period,
		Dungeon:  dungeon,
		Page:     page,
	}, meta, nil
}

// window applies filter, percentile and pagination, in that order.
// Percentiles are computed over the filtered set so they answer "where in
// this view", and rank order from upstream is preserved throughout.
func (s *Service) window(entries []Entry, filter resolved, page pagination.Request) (pagination.Page[Entry], error) {
	filtered := filter.apply(entries)
	computePercentiles(filtered)
	return pagination.Apply(filtered, page, s.page)
}

func (s *Service) regionLocale(opts Options) (string, string) {
	region := opts.Region
	if region == "" {
		region = s.defaultRegion
	}
	locale := opts.Locale
	if locale == "" {
		locale = s.defaultLocale
	}
	return region, locale
}
