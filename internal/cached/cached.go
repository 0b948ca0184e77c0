// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

// Package cached layers read-through caching over the upstream client.
// Callers ask for a typed value under a cache key; the package serves it
// from the store when fresh, and otherwise runs the supplied fetch exactly
// once per key across concurrent callers before writing the result back.
package cached

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/drantham/gladius/internal/cache"
	"github.com/drantham/gladius/internal/config"
	"github.com/drantham/gladius/internal/logging"
	"github.com/drantham/gladius/internal/models"
)

// Category names a TTL class. Each cached resource belongs to exactly one
// category; FetchTTL can override the category policy per call.
type Category string

const (
	CategoryPvP          Category = "pvp"
	CategoryLeaderboards Category = "leaderboards"
	CategorySeasons      Category = "seasons"
	CategoryProfile      Category = "profile"
	CategoryEquipment    Category = "equipment"
	CategoryRealms       Category = "realms"
	CategoryMedia        Category = "media"
)

// defaultTTL backs any category missing from configuration.
const defaultTTL = 5 * time.Minute

// Cache binds a store to the configured TTL policy and deduplicates
// concurrent fills per key.
type Cache struct {
	store cache.Store
	ttls  map[Category]time.Duration
	group singleflight.Group
}

// New builds a Cache over store using the per-category TTLs in cfg.
func New(store cache.Store, cfg config.TTLConfig) *Cache {
	return &Cache{
		store: store,
		ttls: map[Category]time.Duration{
			CategoryPvP:          cfg.PvP,
			CategoryLeaderboards: cfg.Leaderboards,
			CategorySeasons:      cfg.Seasons,
			CategoryProfile:      cfg.Profile,
			CategoryEquipment:    cfg.Equipment,
			CategoryRealms:       cfg.Realms,
			CategoryMedia:        cfg.Media,
		},
	}
}

// TTL returns the configured duration for a category.
func (c *Cache) TTL(category Category) time.Duration {
	if ttl, ok := c.ttls[category]; ok && ttl > 0 {
		return ttl
	}
	return defaultTTL
}

// Store exposes the underlying store for the cache admin endpoints.
func (c *Cache) Store() cache.Store {
	return c.store
}

// fillResult carries a singleflight fill back to every waiting caller.
type fillResult struct {
	raw  []byte
	meta models.CacheMeta
}

// Fetch returns the value under key, fetching and caching it on a miss.
//
// Concurrent misses for the same key share a single fetch; late arrivals
// that join an in-flight fill still see cached=false, since their value
// came from upstream rather than the store. Fetch errors are returned as-is
// and never cached, so the next caller retries.
//
// The returned CacheMeta derives entirely from the stored entry: age and
// fetch time come from the entry's own recorded TTL, not from the current
// category policy, so provenance stays truthful after a TTL reconfiguration.
func Fetch[T any](ctx context.Context, c *Cache, key string, category Category, fetch func(ctx context.Context) (T, error)) (T, models.CacheMeta, error) {
	return fetchWithTTL(ctx, c, key, c.TTL(category), fetch)
}

// FetchTTL is Fetch with an explicit per-call TTL overriding the category
// policy. Non-positive TTLs fall back to the package default.
func FetchTTL[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, models.CacheMeta, error) {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return fetchWithTTL(ctx, c, key, ttl, fetch)
}

func fetchWithTTL[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, models.CacheMeta, error) {
	var zero T

	entry, err := c.store.Get(ctx, key)
	if err != nil {
		// A broken store read degrades to a fetch rather than failing the
		// request outright.
		logging.Warn().Err(err).Str("key", key).Msg("cache read failed, fetching upstream")
	}
	if entry != nil {
		var value T
		if err := json.Unmarshal(entry.Value, &value); err != nil {
			logging.Warn().Err(err).Str("key", key).Msg("cached value undecodable, refetching")
			_ = c.store.Delete(ctx, key)
		} else {
			return value, metaFromEntry(entry, true), nil
		}
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		if err := c.store.Set(ctx, key, raw, ttl); err != nil {
			// Serve the fetched value even when the write-back fails.
			logging.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
		return fillResult{
			raw: raw,
			meta: models.CacheMeta{
				Key:       key,
				Cached:    false,
				TTLMs:     ttl.Milliseconds(),
				ExpiresAt: now.Add(ttl),
				FetchedAt: now,
			},
		}, nil
	})
	if err != nil {
		return zero, models.CacheMeta{Key: key}, err
	}

	res := v.(fillResult)
	var value T
	if err := json.Unmarshal(res.raw, &value); err != nil {
		return zero, models.CacheMeta{Key: key}, err
	}
	return value, res.meta, nil
}

// Invalidate drops the entry under key, forcing the next Fetch to go
// upstream.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

func metaFromEntry(entry *cache.Entry, cached bool) models.CacheMeta {
	fetchedAt := entry.FetchedAt()
	return models.CacheMeta{
		Key:       entry.Key,
		Cached:    cached,
		TTLMs:     entry.TTL.Milliseconds(),
		ExpiresAt: entry.ExpiresAt,
		FetchedAt: fetchedAt,
		AgeMs:     time.Since(fetchedAt).Milliseconds(),
	}
}
