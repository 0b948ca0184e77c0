// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package cache

import "strings"

// BuildKey builds a deterministic cache key from semantic parts (entity
// type, game, region, locale, identifiers, sub-resource). Each part is
// lower-cased with runs of non-alphanumeric characters collapsed to a single
// hyphen; empty parts are skipped; parts are joined with colons.
//
//	BuildKey("character", "retail", "US", "Stormrage", "Thiaba", "profile")
//	// -> "character:retail:us:stormrage:thiaba:profile"
//
// The first segment is the key prefix used to label cache metrics, so it
// should always be the entity type.
func BuildKey(parts ...string) string {
	normalized := make([]string, 0, len(parts))
	for _, part := range parts {
		p := normalizeKeyPart(part)
		if p == "" {
			continue
		}
		normalized = append(normalized, p)
	}
	return strings.Join(normalized, ":")
}

// KeyPrefix returns the first colon-delimited segment of a key.
func KeyPrefix(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}

// normalizeKeyPart lower-cases a part and collapses every run of
// non-alphanumeric characters to a single hyphen.
func normalizeKeyPart(part string) string {
	part = strings.ToLower(strings.TrimSpace(part))
	if part == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(part))
	pendingHyphen := false
	for _, r := range part {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
