// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package upstream

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// RetryPolicy decides, given the attempt number that just failed (1-based)
// and its error, whether to try again and after what delay. Keeping the
// policy a pure function lets tests exercise it without timers.
type RetryPolicy func(attempt int, err error) (retry bool, delay time.Duration)

// NewBackoffPolicy builds the standard policy: up to maxRetries additional
// attempts for retryable errors, exponential backoff from base capped at
// max, with up to 25% random jitter to avoid synchronized retries.
func NewBackoffPolicy(maxRetries int, base, max time.Duration) RetryPolicy {
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	if max < base {
		max = base
	}
	return func(attempt int, err error) (bool, time.Duration) {
		if attempt > maxRetries || !IsRetryable(err) {
			return false, 0
		}
		delay := base << (attempt - 1)
		if delay > max || delay < base {
			delay = max
		}
		jitter := time.Duration(rand.Int63n(int64(delay)/4 + 1))
		return true, delay + jitter
	}
}

// Retry runs fn until it succeeds, the policy declines, or ctx is done.
// fn receives the 1-based attempt number. A cancellation mid-wait aborts
// immediately and surfaces the context error, not the last attempt's.
func Retry(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context, attempt int) error) error {
	for attempt := 1; ; attempt++ {
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		// An aborted attempt is not a failure to retry.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		retry, delay := policy(attempt, err)
		if !retry {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
