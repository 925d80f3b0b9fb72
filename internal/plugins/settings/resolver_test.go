package settings

import (
	"errors"
	"testing"

	"github.com/keyxmakerx/itemsorter/internal/apperror"
	"github.com/keyxmakerx/itemsorter/internal/plugins/items"
	"github.com/keyxmakerx/itemsorter/internal/sorting"
)

func opt(c sorting.Criterion, desc bool) *sorting.Option {
	return &sorting.Option{Criterion: c, Descending: desc}
}

func assertOption(t *testing.T, slot string, got, want *sorting.Option) {
	t.Helper()
	switch {
	case got == nil && want == nil:
	case got == nil || want == nil:
		t.Errorf("%s: got %+v, want %+v", slot, got, want)
	case *got != *want:
		t.Errorf("%s: got %+v, want %+v", slot, *got, *want)
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		in   string
		want *sorting.Option
	}{
		{"name_asc", opt(sorting.CriterionName, false)},
		{"weight_desc", opt(sorting.CriterionWeight, true)},
		{"totalWeight_asc", opt(sorting.CriterionTotalWeight, false)},
		{"school", opt(sorting.CriterionSchool, false)},
		{"none", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSelection(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertOption(t, tt.in, got, tt.want)
		})
	}
}

func TestParseSelection_Unknown(t *testing.T) {
	for _, in := range []string{"colour_asc", "default", ""} {
		if _, err := ParseSelection(in); !errors.Is(err, apperror.ErrUnknownCriterion) {
			t.Errorf("ParseSelection(%q): expected ErrUnknownCriterion, got %v", in, err)
		}
	}
}

func TestFormatSelection(t *testing.T) {
	if got := FormatSelection(opt(sorting.CriterionUsage, true)); got != "usage_desc" {
		t.Errorf("got %q", got)
	}
	if got := FormatSelection(nil); got != SelectionNone {
		t.Errorf("got %q", got)
	}
}

func TestResolver_Defaults(t *testing.T) {
	r := NewResolver(nil)
	for _, typ := range []items.ItemType{items.TypeWeapon, items.TypeFeat, items.TypeSpell} {
		c := r.ForType(typ)
		assertOption(t, string(typ)+" primary", c.Primary, opt(sorting.CriterionName, false))
		assertOption(t, string(typ)+" secondary", c.Secondary, nil)
	}
}

func TestResolver_BaseHasNoCriteria(t *testing.T) {
	c := NewResolver(nil).ForType(items.TypeBase)
	if c.Primary != nil || c.Secondary != nil {
		t.Errorf("expected no criteria for base, got %+v", c)
	}
}

func TestResolver_SpecificOverridesFamily(t *testing.T) {
	r := NewResolver(map[string]string{
		FallbackKey(FamilyInventory, SlotPrimary):              "quantity_asc",
		SpecificKey(FamilyInventory, "Weapons", SlotPrimary):   "weight_desc",
		SpecificKey(FamilyInventory, "Weapons", SlotSecondary): "name_asc",
	})

	w := r.ForType(items.TypeWeapon)
	assertOption(t, "weapon primary", w.Primary, opt(sorting.CriterionWeight, true))
	assertOption(t, "weapon secondary", w.Secondary, opt(sorting.CriterionName, false))

	l := r.ForType(items.TypeLoot)
	assertOption(t, "loot primary", l.Primary, opt(sorting.CriterionQuantity, false))
	assertOption(t, "loot secondary", l.Secondary, nil)
}

func TestResolver_DefaultFallsThroughToNone(t *testing.T) {
	r := NewResolver(map[string]string{
		FallbackKey(FamilyFeatures, SlotPrimary):          "none",
		SpecificKey(FamilyFeatures, "Race", SlotPrimary): "default",
	})
	c := r.ForType(items.TypeRace)
	assertOption(t, "race primary", c.Primary, nil)
}

func TestResolver_ClassAndSubclassShareSettings(t *testing.T) {
	r := NewResolver(map[string]string{
		SpecificKey(FamilyFeatures, "Class", SlotPrimary): "name_desc",
	})
	for _, typ := range []items.ItemType{items.TypeClass, items.TypeSubclass} {
		assertOption(t, string(typ), r.ForType(typ).Primary, opt(sorting.CriterionName, true))
	}
}

func TestResolver_SpellsReadFamilyDirectly(t *testing.T) {
	r := NewResolver(map[string]string{
		FallbackKey(FamilySpells, SlotPrimary):   "school_asc",
		FallbackKey(FamilySpells, SlotSecondary): "target_desc",
	})
	c := r.ForType(items.TypeSpell)
	assertOption(t, "spell primary", c.Primary, opt(sorting.CriterionSchool, false))
	assertOption(t, "spell secondary", c.Secondary, opt(sorting.CriterionTarget, true))
}

func TestResolver_UnknownStoredValueIsAbsent(t *testing.T) {
	r := NewResolver(map[string]string{
		SpecificKey(FamilyInventory, "Tools", SlotPrimary):   "colour_asc",
		SpecificKey(FamilyInventory, "Tools", SlotSecondary): "weight_asc",
	})
	c := r.ForType(items.TypeTool)
	assertOption(t, "tool primary", c.Primary, nil)
	assertOption(t, "tool secondary", c.Secondary, opt(sorting.CriterionWeight, false))
}

func TestResolver_Flags(t *testing.T) {
	f := NewResolver(map[string]string{KeyLegacySorter: "true"}).Flags()
	if !f.LegacySorter || f.FeatsByRequirement {
		t.Errorf("unexpected flags: %+v", f)
	}
	if f := NewResolver(map[string]string{KeyFeatsByRequirement: "maybe"}).Flags(); f.FeatsByRequirement {
		t.Error("expected unparseable flag to fall back to false")
	}
}

func TestDefinitions_Choices(t *testing.T) {
	tests := []struct {
		key     string
		allowed []string
		denied  []string
	}{
		{FallbackKey(FamilyInventory, SlotPrimary), []string{"name_asc", "totalWeight_desc", "usage_asc", "none"}, []string{"default", "school_asc"}},
		{FallbackKey(FamilyFeatures, SlotSecondary), []string{"name_desc", "none"}, []string{"usage_asc", "requirements_asc"}},
		{FallbackKey(FamilySpells, SlotPrimary), []string{"school_asc", "target_desc"}, []string{"weight_asc"}},
		{SpecificKey(FamilyFeatures, "Other", SlotPrimary), []string{"default", "requirements_asc", "usage_desc"}, []string{"weight_asc"}},
		{SpecificKey(FamilyInventory, "Loot", SlotSecondary), []string{"default", "quantity_desc"}, []string{"requirements_asc"}},
		{KeyLegacySorter, []string{"true", "false"}, []string{"yes"}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			def, ok := Lookup(tt.key)
			if !ok {
				t.Fatalf("key %s not defined", tt.key)
			}
			set := map[string]bool{}
			for _, c := range def.Choices {
				set[c] = true
			}
			for _, c := range tt.allowed {
				if !set[c] {
					t.Errorf("expected %q to be allowed", c)
				}
			}
			for _, c := range tt.denied {
				if set[c] {
					t.Errorf("expected %q to be rejected", c)
				}
			}
		})
	}
}

func TestDefinitions_Keys(t *testing.T) {
	// 2 switches, 3 families x 2 slots, 10 categories x 2 slots.
	if got := len(Definitions()); got != 28 {
		t.Errorf("expected 28 definitions, got %d", got)
	}
	if _, ok := Lookup(SpecificKey(FamilySpells, "", SlotPrimary)); ok {
		t.Error("spells must not have a specific layer")
	}
	if _, ok := Lookup("sortFeaturesSubclassPrimary"); ok {
		t.Error("subclass must share the class settings")
	}
}
