// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

// Package leaderboard normalizes the upstream API's divergent leaderboard
// payload shapes into one canonical, filterable, paginated view. PvP
// brackets, solo shuffle, character-embedded bracket views and Mythic+
// leaderboards all flow through the same Entry type.
package leaderboard

import (
	"math"
	"strings"
	"time"
)

// Realm identifies a realm. Some upstream shapes carry only the slug.
type Realm struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Slug string `json:"slug"`
}

// Member is one character inside a leaderboard entry. Class and spec
// identifiers and their human names are mutually derivable through the
// static reference table: when upstream supplies one side the other is
// backfilled, and when neither is present the fields stay null rather than
// being fabricated.
type Member struct {
	CharacterID int64   `json:"character_id,omitempty"`
	Name        string  `json:"name"`
	Realm       Realm   `json:"realm"`
	ClassID     *int    `json:"class_id"`
	ClassName   *string `json:"class_name"`
	ClassSlug   *string `json:"class_slug"`
	SpecID      *int    `json:"spec_id"`
	SpecName    *string `json:"spec_name"`
	SpecSlug    *string `json:"spec_slug"`
	Role        *string `json:"role"`
	Faction     *string `json:"faction"`
}

// Affix is one keystone affix active for a Mythic+ entry.
type Affix struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	StartingLevel int    `json:"starting_level,omitempty"`
}

// Entry is the canonical leaderboard row.
type Entry struct {
	Rank             int        `json:"rank"`
	Rating           int        `json:"rating,omitempty"`
	Percentile       float64    `json:"percentile"`
	DungeonOrBracket string     `json:"dungeon_or_bracket"`
	KeystoneLevel    int        `json:"keystone_level,omitempty"`
	DurationMs       int64      `json:"duration_ms,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	Affixes          []Affix    `json:"affixes,omitempty"`
	Wins             *int       `json:"wins,omitempty"`
	Losses           *int       `json:"losses,omitempty"`
	Played           *int       `json:"played,omitempty"`
	Members          []Member   `json:"members"`
}

// normalizePvP canonicalizes a PvP bracket leaderboard, covering both the
// leaderboard shape and the character-embedded variant. Solo shuffle
// brackets ("shuffle-<class>-<spec>") carry their class and spec in the
// bracket name rather than per entry; shuffleSpec, when non-nil, backfills
// every member.
func normalizePvP(raw *rawPvPLeaderboard, bracket string, shuffleSpec *Spec) []Entry {
	entries := make([]Entry, 0, len(raw.Entries))
	for _, re := range raw.Entries {
		// Rank probe order: "rank" then "ranking".
		rank := re.Rank
		if rank == 0 {
			rank = re.Ranking
		}

		// Character probe order: "character" then "profile".
		char := re.Character
		if char == nil {
			char = re.Profile
		}

		// Statistics probe order: "season_match_statistics" then
		// "match_statistics". Counts stay null when neither is present;
		// zero is a real value only when upstream said so.
		stats := re.SeasonMatchStatistics
		if stats == nil {
			stats = re.MatchStatistics
		}

		m := Member{}
		if char != nil {
			m.CharacterID = char.ID
			m.Name = char.Name
			m.Realm = normalizeRealm(char.Realm)
		}
		if f := normalizeFaction(re.Faction.Type); f != "" {
			m.Faction = &f
		}
		if shuffleSpec != nil {
			backfillFromSpec(&m, *shuffleSpec)
		}

		e := Entry{
			Rank:             rank,
			Rating:           re.Rating,
			DungeonOrBracket: bracket,
			Members:          []Member{m},
		}
		if stats != nil {
			won, lost, played := stats.Won, stats.Lost, stats.Played
			e.Wins, e.Losses, e.Played = &won, &lost, &played
		}
		entries = append(entries, e)
	}
	return entries
}

// normalizeMythic canonicalizes a Mythic+ dungeon leaderboard. The period's
// keystone affixes apply to every entry.
func normalizeMythic(raw *rawMythicLeaderboard) []Entry {
	dungeon := raw.Map.Name

	var affixes []Affix
	for _, ka := range raw.KeystoneAffixes {
		affixes = append(affixes, Affix{
			ID:            ka.KeystoneAffix.ID,
			Name:          ka.KeystoneAffix.Name,
			StartingLevel: ka.StartingLevel,
		})
	}

	entries := make([]Entry, 0, len(raw.LeadingGroups))
	for _, g := range raw.LeadingGroups {
		members := make([]Member, 0, len(g.Members))
		for _, rm := range g.Members {
			m := Member{}
			if rm.Profile != nil {
				m.CharacterID = rm.Profile.ID
				m.Name = rm.Profile.Name
				m.Realm = normalizeRealm(rm.Profile.Realm)
			}
			if f := normalizeFaction(rm.Faction.Type); f != "" {
				m.Faction = &f
			}
			backfillSpec(&m, rm.Specialization.ID, rm.Specialization.Name)
			members = append(members, m)
		}

		e := Entry{
			Rank:             g.Ranking,
			DungeonOrBracket: dungeon,
			KeystoneLevel:    g.KeystoneLevel,
			DurationMs:       g.Duration,
			Affixes:          affixes,
			Members:          members,
		}
		if g.CompletedTimestamp > 0 {
			t := time.UnixMilli(g.CompletedTimestamp).UTC()
			e.CompletedAt = &t
		}
		entries = append(entries, e)
	}
	return entries
}

// backfillSpec fills a member's spec and class fields from whichever spec
// identifier upstream provided. An id takes precedence over a name; an
// unknown id with a name falls back to a slug lookup. Unresolvable input
// leaves every field null.
func backfillSpec(m *Member, specID int, specName string) {
	if spec, ok := SpecByID(specID); ok {
		backfillFromSpec(m, spec)
		return
	}
	if specName == "" {
		return
	}
	slug := Slugify(specName)
	candidates := SpecsBySlug(slug)
	if len(candidates) == 1 {
		backfillFromSpec(m, candidates[0])
		return
	}
	// Ambiguous or unknown: keep the name, leave identifiers null.
	name := specName
	m.SpecName = &name
	m.SpecSlug = &slug
}

func backfillFromSpec(m *Member, spec Spec) {
	id, name, slug, role := spec.ID, spec.Name, spec.Slug, spec.Role
	m.SpecID = &id
	m.SpecName = &name
	m.SpecSlug = &slug
	m.Role = &role
	if class, ok := ClassByID(spec.ClassID); ok {
		cid, cname, cslug := class.ID, class.Name, class.Slug
		m.ClassID = &cid
		m.ClassName = &cname
		m.ClassSlug = &cslug
	}
}

// computePercentiles assigns percentiles over an already rank-sorted set:
// index i of total maps to ((total-i)/total)*100, rounded to one decimal.
// The top entry in any non-empty set scores 100.0.
func computePercentiles(entries []Entry) {
	total := len(entries)
	if total == 0 {
		return
	}
	for i := range entries {
		p := float64(total-i) / float64(total) * 100
		entries[i].Percentile = math.Round(p*10) / 10
	}
}

// shuffleSpecFromBracket extracts the class/spec encoded in a solo shuffle
// bracket name such as "shuffle-rogue-subtlety". Non-shuffle brackets
// return nil. A shuffle bracket naming an unknown pair is a caller error.
func shuffleSpecFromBracket(bracket string) (*Spec, error) {
	rest, ok := strings.CutPrefix(bracket, "shuffle-")
	if !ok {
		return nil, nil
	}
	// Class slugs may themselves contain hyphens (death-knight,
	// demon-hunter), so match whole class slugs rather than splitting on
	// the first hyphen.
	for _, c := range classes {
		if cut, found := strings.CutPrefix(rest, c.Slug+"-"); found {
			if spec, ok := SpecBySlugAndClass(cut, c.ID); ok {
				return &spec, nil
			}
			return nil, &FilterError{Field: "bracket", Reason: "unknown spec " + cut + " for class " + c.Slug}
		}
	}
	return nil, &FilterError{Field: "bracket", Reason: "unknown shuffle bracket " + bracket}
}

// Slugify lower-cases a display name and joins words with hyphens, matching
// upstream slug conventions ("Beast Mastery" -> "beast-mastery").
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// normalizeRealm maps the raw realm reference field by field; the raw and
// canonical structs are not layout-compatible.
func normalizeRealm(r rawRealm) Realm {
	return Realm{ID: r.ID, Name: r.Name, Slug: r.Slug}
}

func normalizeFaction(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
