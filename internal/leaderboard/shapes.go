// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package leaderboard

// Raw upstream payload shapes. The upstream API is not self-consistent:
// PvP bracket leaderboards, character-embedded bracket views, and Mythic+
// leaderboards each nest the same information under different names.
// Every known variant is declared here as an explicit struct and reconciled
// in normalize.go through ordered field probes, so the mapping stays
// auditable instead of living in scattered nil checks.

// rawSeasonIndex is the PvP season index payload.
type rawSeasonIndex struct {
	Seasons []struct {
		ID int `json:"id"`
	} `json:"seasons"`
	CurrentSeason struct {
		ID int `json:"id"`
	} `json:"current_season"`
}

// rawPeriodIndex is the Mythic+ keystone period index payload.
type rawPeriodIndex struct {
	Periods []struct {
		ID int `json:"id"`
	} `json:"periods"`
	CurrentPeriod struct {
		ID int `json:"id"`
	} `json:"current_period"`
}

// rawRealm appears inside character references; some shapes carry only the
// slug, others the full triple.
type rawRealm struct {
	ID   int    `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// rawCharacter covers both the leaderboard "character" object and the
// Mythic+ member "profile" object.
type rawCharacter struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Realm rawRealm `json:"realm"`
}

// rawStatistics covers win/loss counts under either of upstream's two
// names for them.
type rawStatistics struct {
	Played int `json:"played"`
	Won    int `json:"won"`
	Lost   int `json:"lost"`
}

// rawPvPEntry is one row of a PvP bracket leaderboard, including the
// character-embedded variant which renames rank and statistics.
type rawPvPEntry struct {
	// Rank vs Ranking: leaderboard rows use "rank", character-embedded
	// bracket views use "ranking".
	Rank    int `json:"rank"`
	Ranking int `json:"ranking"`

	Rating int `json:"rating"`

	// Character vs Profile: same object, two names.
	Character *rawCharacter `json:"character"`
	Profile   *rawCharacter `json:"profile"`

	Faction struct {
		Type string `json:"type"`
	} `json:"faction"`

	// SeasonMatchStatistics vs MatchStatistics: same counts, two names.
	SeasonMatchStatistics *rawStatistics `json:"season_match_statistics"`
	MatchStatistics       *rawStatistics `json:"match_statistics"`
}

// rawPvPLeaderboard is a PvP bracket leaderboard payload.
type rawPvPLeaderboard struct {
	Season struct {
		ID int `json:"id"`
	} `json:"season"`
	Name    string `json:"name"`
	Bracket struct {
		ID   int    `json:"id"`
		Type string `json:"type"`
	} `json:"bracket"`
	Entries []rawPvPEntry `json:"entries"`
}

// rawMythicMember is one member of a Mythic+ leading group.
type rawMythicMember struct {
	Profile *rawCharacter `json:"profile"`
	Faction struct {
		Type string `json:"type"`
	} `json:"faction"`
	Specialization struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"specialization"`
}

// rawMythicGroup is one row of a Mythic+ leaderboard.
type rawMythicGroup struct {
	Ranking            int               `json:"ranking"`
	Duration           int64             `json:"duration"`
	CompletedTimestamp int64             `json:"completed_timestamp"`
	KeystoneLevel      int               `json:"keystone_level"`
	Members            []rawMythicMember `json:"members"`
}

// rawMythicLeaderboard is a Mythic+ dungeon leaderboard payload. Affixes
// apply to the whole period, so upstream carries them once at the top level
// rather than per group.
type rawMythicLeaderboard struct {
	Map struct {
		Name string `json:"name"`
		ID   int    `json:"id"`
	} `json:"map"`
	MapChallengeModeID int `json:"map_challenge_mode_id"`
	Period             int `json:"period"`
	KeystoneAffixes    []struct {
		KeystoneAffix struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"keystone_affix"`
		StartingLevel int `json:"starting_level"`
	} `json:"keystone_affixes"`
	LeadingGroups []rawMythicGroup `json:"leading_groups"`
}
