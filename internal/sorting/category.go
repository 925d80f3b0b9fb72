package sorting

import (
	"strconv"

	"github.com/keyxmakerx/itemsorter/internal/plugins/items"
)

// Spell preparation modes that form their own category regardless of level.
const (
	PrepAtWill = "atwill"
	PrepInnate = "innate"
	PrepPact   = "pact"
)

// Feat categories.
const (
	FeatActive  = "active"
	FeatPassive = "passive"
)

// Category is the assignment group of an item: its type, plus a subtype for
// spells and feats ("spell_pact", "spell_0", "feat_passive").
type Category string

// Classify returns the category of item.
func Classify(item *items.Item) Category {
	var subtype string
	switch item.Type {
	case items.TypeSpell:
		subtype = spellSubtype(item.System)
	case items.TypeFeat:
		subtype = featSubtype(item.System)
	}
	if subtype == "" {
		return Category(item.Type)
	}
	return Category(string(item.Type) + "_" + subtype)
}

// spellSubtype is the preparation mode for at-will, innate and pact spells,
// otherwise the spell level (0 for cantrips and missing levels).
func spellSubtype(sys items.System) string {
	if sys.Preparation != nil {
		switch mode := sys.Preparation.Mode; mode {
		case PrepAtWill, PrepInnate, PrepPact:
			return mode
		}
	}
	return strconv.Itoa(sys.Level)
}

// featSubtype splits feats on whether they have an activation type.
func featSubtype(sys items.System) string {
	if sys.Activation == nil || sys.Activation.Type == "" {
		return FeatPassive
	}
	return FeatActive
}
