// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package leaderboard

import "fmt"

// FilterError marks invalid or ambiguous filter input. It maps to a 400 at
// the API surface and is never retried.
type FilterError struct {
	Field  string
	Reason string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid filter %s: %s", e.Field, e.Reason)
}

// SeasonError marks an unusable upstream season index. It maps to a 502:
// the caller did nothing wrong, the upstream data is unavailable or
// malformed.
type SeasonError struct {
	Game   string
	Region string
	Reason string
}

func (e *SeasonError) Error() string {
	return fmt.Sprintf("season unavailable for %s/%s: %s", e.Game, e.Region, e.Reason)
}
