// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package leaderboard

import (
	"errors"
	"testing"
)

func memberWithSpec(name, realm string, specID int, faction string) Member {
	m := Member{Name: name, Realm: Realm{Slug: realm}}
	if f := normalizeFaction(faction); f != "" {
		m.Faction = &f
	}
	if spec, ok := SpecByID(specID); ok {
		backfillFromSpec(&m, spec)
	}
	return m
}

func testEntries() []Entry {
	return []Entry{
		{Rank: 1, Members: []Member{memberWithSpec("Shade", "stormrage", 261, "HORDE")}},   // subtlety rogue
		{Rank: 2, Members: []Member{memberWithSpec("Sting", "area-52", 259, "ALLIANCE")}},  // assassination rogue
		{Rank: 3, Members: []Member{memberWithSpec("Lumen", "stormrage", 65, "ALLIANCE")}}, // holy paladin
		{Rank: 4, Members: []Member{memberWithSpec("Vess", "tichondrius", 257, "HORDE")}},  // holy priest
		{Rank: 5, Members: []Member{
			memberWithSpec("Brick", "illidan", 268, "HORDE"), // brewmaster monk
			memberWithSpec("Slice", "illidan", 261, "HORDE"), // subtlety rogue
		}},
	}
}

func mustResolve(t *testing.T, f Filter) resolved {
	t.Helper()
	r, err := f.resolve()
	if err != nil {
		t.Fatalf("resolve(%+v): %v", f, err)
	}
	return r
}

func TestFilterClassAndSpec(t *testing.T) {
	entries := testEntries()

	got := mustResolve(t, Filter{Class: "rogue", Spec: "subtlety"}).apply(entries)
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Rank != 1 || got[1].Rank != 5 {
		t.Errorf("ranks = %d, %d; rank order broken", got[0].Rank, got[1].Rank)
	}
	for _, e := range got {
		found := false
		for _, m := range e.Members {
			if m.ClassSlug != nil && *m.ClassSlug == "rogue" && m.SpecSlug != nil && *m.SpecSlug == "subtlety" {
				found = true
			}
		}
		if !found {
			t.Errorf("entry rank %d has no subtlety rogue member", e.Rank)
		}
	}
}

func TestFilterAmbiguousSpecNeedsClass(t *testing.T) {
	_, err := Filter{Spec: "holy"}.resolve()
	var fe *FilterError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FilterError", err)
	}
	if fe.Field != "spec" {
		t.Errorf("Field = %q, want spec", fe.Field)
	}

	// The same slug with a narrowing class filter is fine.
	r := mustResolve(t, Filter{Class: "paladin", Spec: "holy"})
	got := r.apply(testEntries())
	if len(got) != 1 || got[0].Rank != 3 {
		t.Errorf("holy paladin filter got %+v, want only rank 3", got)
	}

	r = mustResolve(t, Filter{Class: "priest", Spec: "holy"})
	got = r.apply(testEntries())
	if len(got) != 1 || got[0].Rank != 4 {
		t.Errorf("holy priest filter got %+v, want only rank 4", got)
	}
}

func TestFilterUnambiguousSpecAlone(t *testing.T) {
	got := mustResolve(t, Filter{Spec: "subtlety"}).apply(testEntries())
	if len(got) != 2 {
		t.Errorf("got %d entries, want 2", len(got))
	}
}

func TestFilterValidation(t *testing.T) {
	bad := []Filter{
		{Class: "gnome"},
		{Spec: "sunshine"},
		{Role: "support"},
		{Class: "rogue", Spec: "fire"},
	}
	for _, f := range bad {
		_, err := f.resolve()
		var fe *FilterError
		if !errors.As(err, &fe) {
			t.Errorf("resolve(%+v) err = %v, want *FilterError", f, err)
		}
	}
}

func TestFilterRealmRoleFaction(t *testing.T) {
	entries := testEntries()

	got := mustResolve(t, Filter{Realm: "stormrage"}).apply(entries)
	if len(got) != 2 {
		t.Errorf("realm filter got %d, want 2", len(got))
	}

	got = mustResolve(t, Filter{Role: "tank"}).apply(entries)
	if len(got) != 1 || got[0].Rank != 5 {
		t.Errorf("tank filter got %+v, want rank 5", got)
	}

	got = mustResolve(t, Filter{Faction: "alliance"}).apply(entries)
	if len(got) != 2 {
		t.Errorf("faction filter got %d, want 2", len(got))
	}

	// AND semantics across fields, within a single member.
	got = mustResolve(t, Filter{Realm: "illidan", Spec: "subtlety"}).apply(entries)
	if len(got) != 1 || got[0].Rank != 5 {
		t.Errorf("combined filter got %+v, want rank 5", got)
	}
	got = mustResolve(t, Filter{Realm: "stormrage", Class: "rogue", Faction: "alliance"}).apply(entries)
	if len(got) != 0 {
		t.Errorf("cross-member filter matched %d entries, want 0", len(got))
	}
}

func TestFilterEmptyPassesThrough(t *testing.T) {
	entries := testEntries()
	got := mustResolve(t, Filter{}).apply(entries)
	if len(got) != len(entries) {
		t.Errorf("empty filter got %d entries, want %d", len(got), len(entries))
	}
}
