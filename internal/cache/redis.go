// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package cache

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
)

// RedisStore keeps cache entries in Redis so multiple instances can share a
// cache. Each key stores a JSON envelope carrying the value alongside its
// expiry metadata; Redis native key expiry backs the TTL, so the sweeper has
// nothing to do for this backend.
type RedisStore struct {
	r       redis.Cmdable
	closeFn func() error
}

// NewRedisStore connects to Redis at addr and verifies the connection.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	return &RedisStore{r: client, closeFn: client.Close}, nil
}

// NewRedisStoreFromClient wraps an existing client. Used by tests.
func NewRedisStoreFromClient(r redis.Cmdable) *RedisStore {
	return &RedisStore{r: r}
}

// Get returns the entry for key, or (nil, nil) when absent or expired.
func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	raw, err := s.r.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache entry: %w", err)
	}

	var env storedEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// A corrupt envelope is unrecoverable; drop it and report a miss.
		_ = s.r.Del(ctx, key).Err()
		return nil, nil
	}

	entry := env.entry(key, true)
	if entry.Expired(time.Now()) {
		_ = s.r.Del(ctx, key).Err()
		return nil, nil
	}
	return &entry, nil
}

// Set stores value under key. Redis key expiry mirrors the envelope TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", ttl)
	}
	raw, err := json.Marshal(newEnvelope(value, ttl, time.Now()))
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := s.r.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.r.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// List scans for live keys with the given prefix, sorted by key. SCAN is
// cursor-based and non-blocking, which matters when the keyspace is shared.
func (s *RedisStore) List(ctx context.Context, prefix string, limit int, includeValue bool) ([]Entry, error) {
	var keys []string
	iter := s.r.Scan(ctx, 0, prefix+"*", 256).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan cache keys: %w", err)
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		if limit > 0 && len(entries) >= limit {
			break
		}
		entry, err := s.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			continue
		}
		if !includeValue {
			entry.Value = nil
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// Stats counts live keys. Redis evicts expired keys itself, so the expired
// count is always zero here.
func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	var total int
	iter := s.r.Scan(ctx, 0, "*", 256).Iterator()
	for iter.Next(ctx) {
		total++
	}
	if err := iter.Err(); err != nil {
		return Stats{}, fmt.Errorf("scan cache keys: %w", err)
	}
	return Stats{Total: total, Active: total}, nil
}

// Cleanup is a no-op: Redis expires keys natively.
func (s *RedisStore) Cleanup(ctx context.Context) (int, error) {
	return 0, nil
}

// Close releases the underlying client if this store owns one.
func (s *RedisStore) Close() error {
	if s == nil || s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}
