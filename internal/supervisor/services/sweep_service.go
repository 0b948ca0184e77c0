// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package services

import (
	"context"
	"time"

	"github.com/drantham/gladius/internal/logging"
)

// CleanupStore is the slice of cache.Store the sweep loop needs.
type CleanupStore interface {
	Cleanup(ctx context.Context) (int, error)
}

// SweepService periodically removes expired cache entries. Lazy expiry on
// read keeps responses correct without it, but disk-backed stores grow
// without a sweep.
type SweepService struct {
	store    CleanupStore
	interval time.Duration
	name     string
}

// NewSweepService builds the sweep loop. A non-positive interval defaults
// to 5 minutes.
func NewSweepService(store CleanupStore, interval time.Duration) *SweepService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SweepService{
		store:    store,
		interval: interval,
		name:     "cache-sweeper",
	}
}

// Serve implements suture.Service. It sweeps once at startup and then on
// every tick until the context is canceled.
func (s *SweepService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *SweepService) sweep(ctx context.Context) {
	start := time.Now()
	deleted, err := s.store.Cleanup(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Cache sweep failed")
		return
	}
	if deleted > 0 {
		logging.Debug().
			Int("deleted", deleted).
			Dur("duration", time.Since(start)).
			Msg("Cache sweep completed")
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *SweepService) String() string {
	return s.name
}
