// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/drantham/gladius/internal/config"
	"github.com/drantham/gladius/internal/metrics"
)

// NewStore builds the store selected by cfg.Backend and wraps it with
// hit/miss instrumentation. All callers should go through this constructor;
// the concrete backends stay uninstrumented so tests can assert raw behavior.
func NewStore(cfg config.CacheConfig) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Backend {
	case "memory":
		store = NewMemoryStore()
	case "badger":
		store, err = NewBadgerStore(cfg.Path)
	case "sqlite":
		store, err = NewSQLiteStore(cfg.Path)
	case "redis":
		store, err = NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(store), nil
}

// Instrument wraps a store so every Get records a hit or miss counter
// labeled by the key's first colon-delimited segment.
func Instrument(s Store) Store {
	if _, ok := s.(*instrumentedStore); ok {
		return s
	}
	return &instrumentedStore{next: s}
}

type instrumentedStore struct {
	next Store
}

func (s *instrumentedStore) Get(ctx context.Context, key string) (*Entry, error) {
	entry, err := s.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	metrics.RecordCacheRequest(KeyPrefix(key), entry != nil)
	return entry, nil
}

func (s *instrumentedStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.next.Set(ctx, key, value, ttl)
}

func (s *instrumentedStore) Delete(ctx context.Context, key string) error {
	return s.next.Delete(ctx, key)
}

func (s *instrumentedStore) List(ctx context.Context, prefix string, limit int, includeValue bool) ([]Entry, error) {
	return s.next.List(ctx, prefix, limit, includeValue)
}

func (s *instrumentedStore) Stats(ctx context.Context) (Stats, error) {
	stats, err := s.next.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}
	metrics.UpdateCacheGauges(stats.Active, stats.Expired)
	return stats, nil
}

func (s *instrumentedStore) Cleanup(ctx context.Context) (int, error) {
	deleted, err := s.next.Cleanup(ctx)
	if err != nil {
		return deleted, err
	}
	metrics.RecordCacheSweep(deleted)
	return deleted, nil
}

func (s *instrumentedStore) Close() error {
	return s.next.Close()
}
