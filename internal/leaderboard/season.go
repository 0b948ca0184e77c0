// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package leaderboard

import (
	"context"
	"errors"
	"strconv"

	"github.com/drantham/gladius/internal/cache"
	"github.com/drantham/gladius/internal/cached"
	"github.com/drantham/gladius/internal/upstream"
)

// Season identity changes far less often than leaderboard contents, so the
// resolved "current season" is cached under its own key and category,
// decoupled from the leaderboard fetch it feeds. It is resolved from the
// season index rather than hard-coded: the maximum known id wins, with the
// upstream-declared current season as a floor.

// currentSeason resolves the current PvP season id for a game/region.
func (s *Service) currentSeason(ctx context.Context, game, region string) (int, error) {
	key := cache.BuildKey("seasons", game, region, "pvp-current")
	id, _, err := cached.Fetch(ctx, s.cache, key, cached.CategorySeasons, func(ctx context.Context) (int, error) {
		var idx rawSeasonIndex
		err := s.client.FetchJSON(ctx, "/data/wow/pvp-season/index", upstream.RequestOptions{
			Region:    region,
			Namespace: namespaceFor("dynamic", game, region),
		}, &idx)
		if err != nil {
			if errors.Is(err, upstream.ErrNotFound) {
				return 0, &SeasonError{Game: game, Region: region, Reason: "season index not found"}
			}
			return 0, err
		}

		max := idx.CurrentSeason.ID
		for _, season := range idx.Seasons {
			if season.ID > max {
				max = season.ID
			}
		}
		if max <= 0 {
			return 0, &SeasonError{Game: game, Region: region, Reason: "season index empty"}
		}
		return max, nil
	})
	return id, err
}

// currentPeriod resolves the current Mythic+ keystone period id.
func (s *Service) currentPeriod(ctx context.Context, game, region string) (int, error) {
	key := cache.BuildKey("seasons", game, region, "mythic-period-current")
	id, _, err := cached.Fetch(ctx, s.cache, key, cached.CategorySeasons, func(ctx context.Context) (int, error) {
		var idx rawPeriodIndex
		err := s.client.FetchJSON(ctx, "/data/wow/mythic-keystone/period/index", upstream.RequestOptions{
			Region:    region,
			Namespace: namespaceFor("dynamic", game, region),
		}, &idx)
		if err != nil {
			if errors.Is(err, upstream.ErrNotFound) {
				return 0, &SeasonError{Game: game, Region: region, Reason: "period index not found"}
			}
			return 0, err
		}

		max := idx.CurrentPeriod.ID
		for _, period := range idx.Periods {
			if period.ID > max {
				max = period.ID
			}
		}
		if max <= 0 {
			return 0, &SeasonError{Game: game, Region: region, Reason: "period index empty"}
		}
		return max, nil
	})
	return id, err
}

// namespaceFor builds the upstream namespace for a game variant and
// region: "dynamic-us" for retail, "dynamic-classic-us" for classic.
func namespaceFor(kind, game, region string) string {
	if game != "" && game != "retail" {
		return kind + "-" + game + "-" + region
	}
	return upstream.Namespace(kind, region)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
