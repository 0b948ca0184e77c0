// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package leaderboard

// Static reference table of playable classes and specializations keyed by
// game-data ID. Upstream payloads routinely carry only half of an
// identifier pair (spec id without name, class name without id); this table
// backfills the missing half deterministically instead of issuing extra
// upstream lookups.
//
// Spec slugs are NOT unique across classes: holy, protection, frost and
// restoration each belong to two classes. Resolving such a slug without a
// class to narrow it is a caller error, never a guess.

// Role buckets used by upstream and by the role filter.
const (
	RoleTank   = "tank"
	RoleHealer = "healer"
	RoleDPS    = "dps"
)

// Class is one playable class.
type Class struct {
	ID   int
	Name string
	Slug string
}

// Spec is one specialization of a class.
type Spec struct {
	ID      int
	Name    string
	Slug    string
	ClassID int
	Role    string
}

var classes = []Class{
	{1, "Warrior", "warrior"},
	{2, "Paladin", "paladin"},
	{3, "Hunter", "hunter"},
	{4, "Rogue", "rogue"},
	{5, "Priest", "priest"},
	{6, "Death Knight", "death-knight"},
	{7, "Shaman", "shaman"},
	{8, "Mage", "mage"},
	{9, "Warlock", "warlock"},
	{10, "Monk", "monk"},
	{11, "Druid", "druid"},
	{12, "Demon Hunter", "demon-hunter"},
	{13, "Evoker", "evoker"},
}

var specs = []Spec{
	{71, "Arms", "arms", 1, RoleDPS},
	{72, "Fury", "fury", 1, RoleDPS},
	{73, "Protection", "protection", 1, RoleTank},

	{65, "Holy", "holy", 2, RoleHealer},
	{66, "Protection", "protection", 2, RoleTank},
	{70, "Retribution", "retribution", 2, RoleDPS},

	{253, "Beast Mastery", "beast-mastery", 3, RoleDPS},
	{254, "Marksmanship", "marksmanship", 3, RoleDPS},
	{255, "Survival", "survival", 3, RoleDPS},

	{259, "Assassination", "assassination", 4, RoleDPS},
	{260, "Outlaw", "outlaw", 4, RoleDPS},
	{261, "Subtlety", "subtlety", 4, RoleDPS},

	{256, "Discipline", "discipline", 5, RoleHealer},
	{257, "Holy", "holy", 5, RoleHealer},
	{258, "Shadow", "shadow", 5, RoleDPS},

	{250, "Blood", "blood", 6, RoleTank},
	{251, "Frost", "frost", 6, RoleDPS},
	{252, "Unholy", "unholy", 6, RoleDPS},

	{262, "Elemental", "elemental", 7, RoleDPS},
	{263, "Enhancement", "enhancement", 7, RoleDPS},
	{264, "Restoration", "restoration", 7, RoleHealer},

	{62, "Arcane", "arcane", 8, RoleDPS},
	{63, "Fire", "fire", 8, RoleDPS},
	{64, "Frost", "frost", 8, RoleDPS},

	{265, "Affliction", "affliction", 9, RoleDPS},
	{266, "Demonology", "demonology", 9, RoleDPS},
	{267, "Destruction", "destruction", 9, RoleDPS},

	{268, "Brewmaster", "brewmaster", 10, RoleTank},
	{269, "Windwalker", "windwalker", 10, RoleDPS},
	{270, "Mistweaver", "mistweaver", 10, RoleHealer},

	{102, "Balance", "balance", 11, RoleDPS},
	{103, "Feral", "feral", 11, RoleDPS},
	{104, "Guardian", "guardian", 11, RoleTank},
	{105, "Restoration", "restoration", 11, RoleHealer},

	{577, "Havoc", "havoc", 12, RoleDPS},
	{581, "Vengeance", "vengeance", 12, RoleTank},

	{1467, "Devastation", "devastation", 13, RoleDPS},
	{1468, "Preservation", "preservation", 13, RoleHealer},
	{1473, "Augmentation", "augmentation", 13, RoleDPS},
}

var (
	classByID   = make(map[int]Class, len(classes))
	classBySlug = make(map[string]Class, len(classes))
	specByID    = make(map[int]Spec, len(specs))
	specsBySlug = make(map[string][]Spec, len(specs))
)

func init() {
	for _, c := range classes {
		classByID[c.ID] = c
		classBySlug[c.Slug] = c
	}
	for _, s := range specs {
		specByID[s.ID] = s
		specsBySlug[s.Slug] = append(specsBySlug[s.Slug], s)
	}
}

// ClassByID looks up a class by game-data id.
func ClassByID(id int) (Class, bool) {
	c, ok := classByID[id]
	return c, ok
}

// ClassBySlug looks up a class by slug.
func ClassBySlug(slug string) (Class, bool) {
	c, ok := classBySlug[slug]
	return c, ok
}

// SpecByID looks up a spec by game-data id.
func SpecByID(id int) (Spec, bool) {
	s, ok := specByID[id]
	return s, ok
}

// SpecsBySlug returns every spec carrying the slug, across classes.
func SpecsBySlug(slug string) []Spec {
	return specsBySlug[slug]
}

// SpecBySlugAndClass resolves a spec slug within one class.
func SpecBySlugAndClass(slug string, classID int) (Spec, bool) {
	for _, s := range specsBySlug[slug] {
		if s.ClassID == classID {
			return s, true
		}
	}
	return Spec{}, false
}
