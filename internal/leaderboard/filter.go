// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package leaderboard

import (
	"fmt"
	"strings"
)

// Filter narrows a normalized leaderboard. All set fields must match
// (exact-match AND) against canonicalized entry fields, never against raw
// upstream payloads. An entry matches when at least one member satisfies
// every member-level condition.
type Filter struct {
	Realm   string
	Class   string
	Spec    string
	Role    string
	Faction string
}

// resolved is a validated filter with reference-table lookups done once.
type resolved struct {
	realm   string
	class   *Class
	spec    *Spec
	role    string
	faction string
}

// resolve validates filter values against the reference table. A spec slug
// shared by several classes must be narrowed by a class filter; otherwise
// it is ambiguous and rejected rather than guessed.
func (f Filter) resolve() (resolved, error) {
	r := resolved{
		realm:   strings.ToLower(strings.TrimSpace(f.Realm)),
		faction: strings.ToLower(strings.TrimSpace(f.Faction)),
	}

	if role := strings.ToLower(strings.TrimSpace(f.Role)); role != "" {
		switch role {
		case RoleTank, RoleHealer, RoleDPS:
			r.role = role
		default:
			return resolved{}, &FilterError{Field: "role", Reason: fmt.Sprintf("%q is not one of tank, healer, dps", f.Role)}
		}
	}

	if slug := strings.ToLower(strings.TrimSpace(f.Class)); slug != "" {
		class, ok := ClassBySlug(slug)
		if !ok {
			return resolved{}, &FilterError{Field: "class", Reason: fmt.Sprintf("unknown class %q", f.Class)}
		}
		r.class = &class
	}

	if slug := strings.ToLower(strings.TrimSpace(f.Spec)); slug != "" {
		candidates := SpecsBySlug(slug)
		switch {
		case len(candidates) == 0:
			return resolved{}, &FilterError{Field: "spec", Reason: fmt.Sprintf("unknown spec %q", f.Spec)}
		case r.class != nil:
			spec, ok := SpecBySlugAndClass(slug, r.class.ID)
			if !ok {
				return resolved{}, &FilterError{Field: "spec", Reason: fmt.Sprintf("class %q has no spec %q", r.class.Slug, slug)}
			}
			r.spec = &spec
		case len(candidates) > 1:
			names := make([]string, len(candidates))
			for i, s := range candidates {
				c, _ := ClassByID(s.ClassID)
				names[i] = c.Slug
			}
			return resolved{}, &FilterError{
				Field:  "spec",
				Reason: fmt.Sprintf("%q is ambiguous across classes (%s); add a class filter", slug, strings.Join(names, ", ")),
			}
		default:
			r.spec = &candidates[0]
		}
	}

	return r, nil
}

// apply returns the entries matching the filter, preserving order. The
// input slice is never mutated.
func (r resolved) apply(entries []Entry) []Entry {
	if r.realm == "" && r.class == nil && r.spec == nil && r.role == "" && r.faction == "" {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if r.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

func (r resolved) matches(e Entry) bool {
	for _, m := range e.Members {
		if r.matchesMember(m) {
			return true
		}
	}
	return false
}

func (r resolved) matchesMember(m Member) bool {
	if r.realm != "" && m.Realm.Slug != r.realm {
		return false
	}
	if r.faction != "" && (m.Faction == nil || *m.Faction != r.faction) {
		return false
	}
	if r.role != "" && (m.Role == nil || *m.Role != r.role) {
		return false
	}
	if r.class != nil && (m.ClassID == nil || *m.ClassID != r.class.ID) {
		return false
	}
	if r.spec != nil && (m.SpecID == nil || *m.SpecID != r.spec.ID) {
		return false
	}
	return true
}
