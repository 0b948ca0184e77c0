// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

// Package pagination implements stateless offset pagination over in-memory
// ordered sequences. Cursors encode only an offset, so pages remain
// resumable across process restarts and cache refreshes.
package pagination

import (
	"fmt"
	"strconv"
	"strings"
)

const cursorPrefix = "offset:"

// InputError marks invalid caller-supplied cursor or limit values. It maps
// to a 400 at the API surface and is never retried.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Request carries the raw, unvalidated pagination inputs from a caller.
// Both fields are strings straight from the query layer; validation
// happens in Apply.
type Request struct {
	Cursor string
	Limit  string
}

// Config sets the per-endpoint pagination bounds.
type Config struct {
	DefaultLimit int
	MaxLimit     int
}

// State describes the resolved window and its neighboring cursors.
// NextCursor is empty iff the window reaches the end of the sequence;
// PreviousCursor is empty iff the window starts at zero.
type State struct {
	Limit          int    `json:"limit"`
	Offset         int    `json:"offset"`
	Cursor         string `json:"cursor,omitempty"`
	NextCursor     string `json:"next_cursor,omitempty"`
	PreviousCursor string `json:"previous_cursor,omitempty"`
}

// Page is one paginated view over a sequence.
type Page[T any] struct {
	Results []T   `json:"results"`
	Total   int   `json:"total"`
	State   State `json:"pagination"`
}

// FormatCursor encodes an offset as a cursor.
func FormatCursor(offset int) string {
	return cursorPrefix + strconv.Itoa(offset)
}

// ParseCursor decodes a cursor produced by FormatCursor. The format is
// exact: "offset:" followed by decimal digits only.
func ParseCursor(cursor string) (int, error) {
	rest, ok := strings.CutPrefix(cursor, cursorPrefix)
	if !ok || rest == "" {
		return 0, &InputError{Field: "cursor", Reason: fmt.Sprintf("%q does not match offset:<digits>", cursor)}
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, &InputError{Field: "cursor", Reason: fmt.Sprintf("%q does not match offset:<digits>", cursor)}
		}
	}
	offset, err := strconv.Atoi(rest)
	if err != nil {
		return 0, &InputError{Field: "cursor", Reason: fmt.Sprintf("offset in %q out of range", cursor)}
	}
	return offset, nil
}

// Apply slices items to the window described by req.
//
// A malformed cursor or an out-of-range limit is an InputError; an offset
// beyond the end of items is not — the window clamps to the end and yields
// an empty (but valid) final page, so pagination degrades gracefully when
// a result set shrinks between requests.
func Apply[T any](items []T, req Request, cfg Config) (Page[T], error) {
	limit, err := resolveLimit(req.Limit, cfg)
	if err != nil {
		return Page[T]{}, err
	}

	offset := 0
	if req.Cursor != "" {
		offset, err = ParseCursor(req.Cursor)
		if err != nil {
			return Page[T]{}, err
		}
	}

	total := len(items)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	state := State{
		Limit:  limit,
		Offset: offset,
		Cursor: FormatCursor(offset),
	}
	if end < total {
		state.NextCursor = FormatCursor(end)
	}
	if offset > 0 {
		prev := offset - limit
		if prev < 0 {
			prev = 0
		}
		state.PreviousCursor = FormatCursor(prev)
	}

	// Copy the window so callers cannot mutate the (possibly cached) source.
	results := make([]T, end-offset)
	copy(results, items[offset:end])

	return Page[T]{Results: results, Total: total, State: state}, nil
}

func resolveLimit(raw string, cfg Config) (int, error) {
	max := cfg.MaxLimit
	if max <= 0 {
		max = 100
	}
	if raw == "" {
		limit := cfg.DefaultLimit
		if limit <= 0 || limit > max {
			limit = max
		}
		return limit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &InputError{Field: "limit", Reason: fmt.Sprintf("%q is not an integer", raw)}
	}
	if limit < 1 || limit > max {
		return 0, &InputError{Field: "limit", Reason: fmt.Sprintf("%d outside [1, %d]", limit, max)}
	}
	return limit, nil
}
