// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package upstream

import (
	"errors"
	"fmt"
)

// ErrNotFound marks an upstream 404. It is never retried and maps to a 404
// at the API surface, distinct from every other upstream failure.
var ErrNotFound = errors.New("upstream resource not found")

// StatusError is a non-2xx upstream response. Body is truncated for
// diagnostics; full payloads never flow into error values.
type StatusError struct {
	Status int
	Body   string
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream request failed: %d from %s: %s", e.Status, e.URL, e.Body)
}

// Retryable reports whether the status is worth another attempt: timeouts,
// throttling, and any 5xx. Other 4xx responses are caller errors and fail
// on first attempt.
func (e *StatusError) Retryable() bool {
	switch e.Status {
	case 408, 425, 429:
		return true
	}
	return e.Status >= 500
}

// TokenError is a failed OAuth token exchange.
type TokenError struct {
	Region string
	Status int
	Body   string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("token acquisition failed for region %s: %d: %s", e.Region, e.Status, e.Body)
}

// Retryable mirrors StatusError: the token endpoint throttles and rolls like
// any other upstream.
func (e *TokenError) Retryable() bool {
	switch e.Status {
	case 408, 425, 429:
		return true
	}
	return e.Status >= 500
}

// IsRetryable classifies an error for the retry policy. HTTP failures
// consult their status; anything non-HTTP (transport failure, EOF, DNS) is
// retryable; ErrNotFound and context cancellation never are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	var te *TokenError
	if errors.As(err, &te) {
		return te.Retryable()
	}
	// Transport-level failure.
	return true
}

const maxErrorBody = 512

// truncateBody bounds the response body carried inside error values.
func truncateBody(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody]) + "..."
	}
	return string(b)
}
