// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is a thread-safe in-memory Store. It is the default for tests
// and for deployments that do not need cache persistence across restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

// Get returns the entry for key, or (nil, nil) if absent or expired.
// Expired entries are removed on read.
func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if e.Expired(time.Now()) {
		s.mu.Lock()
		// Re-check under write lock; a concurrent Set may have replaced it.
		if cur, ok := s.entries[key]; ok && cur.Expired(time.Now()) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, nil
	}

	out := e
	out.Value = append([]byte(nil), e.Value...)
	return &out, nil
}

// Set upserts the entry for key, replacing both value and expiry.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", ttl)
	}
	now := time.Now()
	s.mu.Lock()
	s.entries[key] = Entry{
		Key:       key,
		Value:     append([]byte(nil), value...),
		ExpiresAt: now.Add(ttl),
		TTL:       ttl,
	}
	s.mu.Unlock()
	return nil
}

// Delete removes the entry for key. Deleting an absent key is not an error.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// List returns up to limit non-expired entries with the given key prefix, in
// key order.
func (s *MemoryStore) List(_ context.Context, prefix string, limit int, includeValue bool) ([]Entry, error) {
	now := time.Now()

	s.mu.RLock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		if prefix == "" || strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]Entry, 0, limit)
	for _, k := range keys {
		if limit > 0 && len(out) >= limit {
			break
		}
		e := s.entries[k]
		if e.Expired(now) {
			continue
		}
		item := Entry{Key: e.Key, ExpiresAt: e.ExpiresAt, TTL: e.TTL}
		if includeValue {
			item.Value = append([]byte(nil), e.Value...)
		}
		out = append(out, item)
	}
	s.mu.RUnlock()

	return out, nil
}

// Stats counts total, active, and not-yet-swept expired entries.
func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	now := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{Total: len(s.entries)}
	for _, e := range s.entries {
		if e.Expired(now) {
			stats.Expired++
		} else {
			stats.Active++
		}
	}
	return stats, nil
}

// Cleanup removes all expired entries.
func (s *MemoryStore) Cleanup(_ context.Context) (int, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for k, e := range s.entries {
		if e.Expired(now) {
			delete(s.entries, k)
			deleted++
		}
	}
	return deleted, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
