// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

// Package cache provides the TTL key/value store that fronts every upstream
// call.
//
// The Store interface abstracts the physical backend; four implementations
// are provided (in-memory, BadgerDB, SQLite, Redis) and selected via the
// factory in factory.go. Entries carry both an absolute expiry and their
// original TTL: the expiry drives eviction, while the TTL lets readers
// reconstruct when the value was fetched without a second lookup.
//
// Expired entries are logically absent: Get drops them lazily and reports a
// miss, and a periodic sweep (Cleanup) bulk-deletes them. The cache is a
// performance optimization, never a system of record — it may be dropped and
// rebuilt at any time without correctness loss.
package cache

import (
	"context"
	"time"
)

// Entry is a single cached row. Value holds the serialized payload;
// serialization format is the caller's concern (the orchestration layer
// stores JSON).
//
// Invariant: ExpiresAt == fetch time + TTL at creation. Both are recorded so
// that age can be derived from the entry's own TTL even if the caller's
// current TTL policy has since changed.
type Entry struct {
	Key       string        `json:"key"`
	Value     []byte        `json:"value,omitempty"`
	ExpiresAt time.Time     `json:"expires_at"`
	TTL       time.Duration `json:"ttl"`
}

// Expired reports whether the entry is past its expiry at the given instant.
func (e *Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// FetchedAt reconstructs when the entry's value was fetched.
func (e *Entry) FetchedAt() time.Time {
	return e.ExpiresAt.Add(-e.TTL)
}

// Stats summarizes the store contents. Expired counts rows that are past
// expiry but not yet swept.
type Stats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Expired int `json:"expired"`
}

// Store is the cache storage contract. All implementations must be safe for
// concurrent use; backends handle their own write serialization and require
// no external locking from callers.
//
// Get returns (nil, nil) on a miss, including the case where the stored
// entry has expired — expired rows are dropped on read.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// List returns entries whose key starts with prefix, in key order, up to
	// limit. Values are elided unless includeValue is set. Intended for
	// diagnostics, not correctness-critical use.
	List(ctx context.Context, prefix string, limit int, includeValue bool) ([]Entry, error)

	Stats(ctx context.Context) (Stats, error)

	// Cleanup bulk-deletes expired rows and returns how many were removed.
	Cleanup(ctx context.Context) (int, error)

	Close() error
}

// storedEnvelope is the serialized row format used by the badger and redis
// backends, which store opaque byte values.
type storedEnvelope struct {
	Value     []byte `json:"v"`
	ExpiresAt int64  `json:"exp"`    // unix milliseconds
	TTLMs     int64  `json:"ttl_ms"`
}

func (s *storedEnvelope) entry(key string, includeValue bool) Entry {
	e := Entry{
		Key:       key,
		ExpiresAt: time.UnixMilli(s.ExpiresAt),
		TTL:       time.Duration(s.TTLMs) * time.Millisecond,
	}
	if includeValue {
		e.Value = s.Value
	}
	return e
}

func newEnvelope(value []byte, ttl time.Duration, now time.Time) storedEnvelope {
	return storedEnvelope{
		Value:     value,
		ExpiresAt: now.Add(ttl).UnixMilli(),
		TTLMs:     ttl.Milliseconds(),
	}
}
