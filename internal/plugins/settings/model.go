// Package settings manages the sort configuration. Selections are stored as
// strings in the sort_settings key-value table and resolved per item type
// through a fallback chain: category-specific selection, then the family
// fallback when the specific value is "default", then nothing when the
// value is "none".
package settings

import (
	"fmt"
	"slices"
	"strings"

	"github.com/keyxmakerx/itemsorter/internal/apperror"
	"github.com/keyxmakerx/itemsorter/internal/plugins/items"
	"github.com/keyxmakerx/itemsorter/internal/sorting"
)

// --- Selections ---

// Sentinel selection values.
const (
	SelectionNone    = "none"
	SelectionDefault = "default"
)

// Direction suffixes of a stored selection.
const (
	suffixAsc  = "_asc"
	suffixDesc = "_desc"
)

// Default selections when nothing is stored.
const (
	DefaultFallbackPrimary   = "name_asc"
	DefaultFallbackSecondary = SelectionNone
	DefaultSpecific          = SelectionDefault
)

// ParseSelection decodes a stored selection into an option. "none" decodes
// to nil. A bare criterion name is read as ascending. "default" is not a
// decodable selection; the resolver replaces it before parsing.
func ParseSelection(value string) (*sorting.Option, error) {
	if value == SelectionNone {
		return nil, nil
	}

	name, desc := value, false
	switch {
	case strings.HasSuffix(value, suffixDesc):
		name, desc = strings.TrimSuffix(value, suffixDesc), true
	case strings.HasSuffix(value, suffixAsc):
		name = strings.TrimSuffix(value, suffixAsc)
	}

	c := sorting.Criterion(name)
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownCriterion, value)
	}
	return &sorting.Option{Criterion: c, Descending: desc}, nil
}

// FormatSelection encodes an option as a stored selection.
func FormatSelection(opt *sorting.Option) string {
	if opt == nil {
		return SelectionNone
	}
	if opt.Descending {
		return string(opt.Criterion) + suffixDesc
	}
	return string(opt.Criterion) + suffixAsc
}

// --- Families and categories ---

// Family is a category-family sharing one fallback configuration.
type Family string

const (
	FamilyInventory Family = "Inventory"
	FamilyFeatures  Family = "Features"
	FamilySpells    Family = "Spells"
)

// Slot is the primary or secondary position of a selection.
type Slot string

const (
	SlotPrimary   Slot = "Primary"
	SlotSecondary Slot = "Secondary"
)

// familyCriteria are the criteria each family's fallback may select in
// addition to name.
var familyCriteria = map[Family][]sorting.Criterion{
	FamilyInventory: {sorting.CriterionWeight, sorting.CriterionTotalWeight, sorting.CriterionQuantity, sorting.CriterionUsage},
	FamilyFeatures:  {},
	FamilySpells:    {sorting.CriterionUsage, sorting.CriterionSchool, sorting.CriterionTarget},
}

// binding ties an item type to its configuration. Category is empty for
// spells, which read the family fallback directly.
type binding struct {
	family   Family
	category string
	extra    []sorting.Criterion
}

var featExtra = []sorting.Criterion{sorting.CriterionRequirements, sorting.CriterionUsage}

var typeBindings = map[items.ItemType]binding{
	items.TypeWeapon:     {family: FamilyInventory, category: "Weapons"},
	items.TypeEquipment:  {family: FamilyInventory, category: "Equipment"},
	items.TypeConsumable: {family: FamilyInventory, category: "Consumables"},
	items.TypeTool:       {family: FamilyInventory, category: "Tools"},
	items.TypeBackpack:   {family: FamilyInventory, category: "Backpacks"},
	items.TypeLoot:       {family: FamilyInventory, category: "Loot"},

	items.TypeRace:       {family: FamilyFeatures, category: "Race"},
	items.TypeBackground: {family: FamilyFeatures, category: "Background"},
	items.TypeClass:      {family: FamilyFeatures, category: "Class"},
	items.TypeSubclass:   {family: FamilyFeatures, category: "Class"},
	items.TypeFeat:       {family: FamilyFeatures, category: "Other", extra: featExtra},

	items.TypeSpell: {family: FamilySpells},
}

// --- Keys ---

// Boolean switches.
const (
	KeyLegacySorter       = "enableLegacySorter"
	KeyFeatsByRequirement = "sortFeatsByRequirement"
)

// FallbackKey is the setting key of a family fallback slot.
func FallbackKey(f Family, s Slot) string {
	return "sort" + string(f) + "Fallback" + string(s)
}

// SpecificKey is the setting key of a category-specific slot.
func SpecificKey(f Family, category string, s Slot) string {
	return "sort" + string(f) + category + string(s)
}

// Definition describes one setting: its key, default and legal values.
type Definition struct {
	Key     string   `json:"key"`
	Default string   `json:"default"`
	Choices []string `json:"choices"`
}

// Flags are the boolean switches.
type Flags struct {
	// LegacySorter selects the durable assignment engine instead of live
	// panel reconciliation.
	LegacySorter bool `json:"enable_legacy_sorter"`

	// FeatsByRequirement orders feats by requirements text in the durable
	// assignment engine.
	FeatsByRequirement bool `json:"sort_feats_by_requirement"`
}

// Change is delivered to subscribers after a setting is written.
type Change struct {
	Key   string
	Value string
}

// SettingValue is a definition with its current value for API responses.
type SettingValue struct {
	Definition
	Value string `json:"value"`
}

// selectionChoices expands criteria into asc and desc selections around
// name, followed by none.
func selectionChoices(criteria []sorting.Criterion) []string {
	choices := []string{"name_asc", "name_desc"}
	for _, c := range criteria {
		choices = append(choices, string(c)+suffixAsc, string(c)+suffixDesc)
	}
	return append(choices, SelectionNone)
}

var (
	definitions   []Definition
	definitionMap map[string]Definition
)

func init() {
	boolChoices := []string{"true", "false"}
	definitions = []Definition{
		{Key: KeyLegacySorter, Default: "false", Choices: boolChoices},
		{Key: KeyFeatsByRequirement, Default: "false", Choices: boolChoices},
	}

	for _, f := range []Family{FamilyInventory, FamilyFeatures, FamilySpells} {
		choices := selectionChoices(familyCriteria[f])
		definitions = append(definitions,
			Definition{Key: FallbackKey(f, SlotPrimary), Default: DefaultFallbackPrimary, Choices: choices},
			Definition{Key: FallbackKey(f, SlotSecondary), Default: DefaultFallbackSecondary, Choices: choices},
		)
	}

	seen := map[string]bool{}
	for _, t := range []items.ItemType{
		items.TypeWeapon, items.TypeEquipment, items.TypeConsumable, items.TypeTool,
		items.TypeBackpack, items.TypeLoot, items.TypeRace, items.TypeBackground,
		items.TypeClass, items.TypeSubclass, items.TypeFeat,
	} {
		b := typeBindings[t]
		if seen[b.category] {
			continue
		}
		seen[b.category] = true

		criteria := slices.Concat(b.extra, familyCriteria[b.family])
		criteria = slices.Compact(sortedCriteria(criteria))
		choices := append([]string{SelectionDefault}, selectionChoices(criteria)...)
		for _, s := range []Slot{SlotPrimary, SlotSecondary} {
			definitions = append(definitions, Definition{
				Key:     SpecificKey(b.family, b.category, s),
				Default: DefaultSpecific,
				Choices: choices,
			})
		}
	}

	definitionMap = make(map[string]Definition, len(definitions))
	for _, d := range definitions {
		definitionMap[d.Key] = d
	}
}

// sortedCriteria returns a sorted copy so duplicates are adjacent.
func sortedCriteria(in []sorting.Criterion) []sorting.Criterion {
	out := slices.Clone(in)
	slices.Sort(out)
	return out
}

// Definitions returns every known setting in a stable order.
func Definitions() []Definition {
	return slices.Clone(definitions)
}

// Lookup returns the definition for key.
func Lookup(key string) (Definition, bool) {
	d, ok := definitionMap[key]
	return d, ok
}
