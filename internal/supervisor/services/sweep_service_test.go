// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type mockCleanupStore struct {
	calls atomic.Int32
	err   error
}

func (m *mockCleanupStore) Cleanup(_ context.Context) (int, error) {
	m.calls.Add(1)
	if m.err != nil {
		return 0, m.err
	}
	return 3, nil
}

func TestSweepServiceDefaults(t *testing.T) {
	svc := NewSweepService(&mockCleanupStore{}, 0)
	if svc.interval != 5*time.Minute {
		t.Errorf("interval = %v, want 5m default", svc.interval)
	}
	if svc.String() != "cache-sweeper" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestSweepServiceSweepsOnStartAndTick(t *testing.T) {
	store := &mockCleanupStore{}
	svc := NewSweepService(store, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.After(time.Second)
	for store.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d sweeps before deadline", store.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestSweepServiceSurvivesCleanupError(t *testing.T) {
	store := &mockCleanupStore{err: errors.New("disk gone")}
	svc := NewSweepService(store, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve returned %v, want deadline exceeded", err)
	}
	if store.calls.Load() < 2 {
		t.Errorf("sweep stopped after error, calls = %d", store.calls.Load())
	}
}
