package sorting

import (
	"slices"
	"testing"

	"github.com/keyxmakerx/itemsorter/internal/plugins/items"
)

func spell(id, name string, level int, mode string) items.Item {
	it := items.Item{ID: id, Name: name, Type: items.TypeSpell, System: items.System{Level: level}}
	if mode != "" {
		it.System.Preparation = &items.Preparation{Mode: mode}
	}
	return it
}

func feat(id, name, activation, requirements string) items.Item {
	it := items.Item{ID: id, Name: name, Type: items.TypeFeat, System: items.System{Requirements: requirements}}
	if activation != "" {
		it.System.Activation = &items.Activation{Type: activation}
	}
	return it
}

func rankedIDs(r []Ranked) []string {
	ids := make([]string, 0, len(r))
	for _, x := range r {
		ids = append(ids, x.ID)
	}
	return ids
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		item items.Item
		want Category
	}{
		{"weapon", items.Item{Type: items.TypeWeapon}, "weapon"},
		{"cantrip", spell("", "", 0, ""), "spell_0"},
		{"prepared level 3", spell("", "", 3, "prepared"), "spell_3"},
		{"pact", spell("", "", 3, PrepPact), "spell_pact"},
		{"at will", spell("", "", 1, PrepAtWill), "spell_atwill"},
		{"innate", spell("", "", 2, PrepInnate), "spell_innate"},
		{"active feat", feat("", "", "action", ""), "feat_active"},
		{"passive feat", feat("", "", "", ""), "feat_passive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(&tt.item); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCalculateItemSorts_NameOrderWithStride(t *testing.T) {
	list := named("bravo", "Charlie", "Alfa", "Delta")
	sorts := CalculateItemSorts(list, AssignOptions{})

	want := map[string]int{"Alfa": 1000, "bravo": 2000, "Charlie": 3000, "Delta": 4000}
	for _, it := range list {
		if got := sorts[it.ID].Sort; got != want[it.Name] {
			t.Errorf("%s: sort = %d, want %d", it.Name, got, want[it.Name])
		}
	}
}

func TestCalculateItemSorts_CustomStride(t *testing.T) {
	sorts := CalculateItemSorts(named("b", "a"), AssignOptions{Stride: 10})
	if sorts["b"].Sort != 10 || sorts["a"].Sort != 20 {
		t.Errorf("unexpected sorts: %+v", sorts)
	}
}

func TestCalculateItemSorts_Deterministic(t *testing.T) {
	list := []items.Item{
		{ID: "w1", Name: "Sword", Type: items.TypeWeapon, Sort: 7},
		{ID: "w2", Name: "axe", Type: items.TypeWeapon},
		spell("s1", "Fireball", 3, ""),
		spell("s2", "Light", 0, ""),
		feat("f1", "Alert", "", ""),
	}

	first := CalculateItemSorts(list, AssignOptions{})
	for i := range list {
		list[i].Sort = first[list[i].ID].Sort
	}
	second := CalculateItemSorts(list, AssignOptions{})

	for id, s := range first {
		if second[id] != s {
			t.Errorf("%s: first %d, second %d", id, s.Sort, second[id].Sort)
		}
	}
	if pending := PendingUpdates(list, second); len(pending) != 0 {
		t.Errorf("expected no pending updates on rerun, got %+v", pending)
	}
}

func TestRank_SpellCategoriesAreIndependent(t *testing.T) {
	list := []items.Item{
		spell("pact", "Hex", 1, PrepPact),
		spell("l1", "Bless", 1, ""),
		spell("innate", "Darkness", 2, PrepInnate),
		spell("cantrip", "Zephyr", 0, ""),
		spell("atwill", "Mage Hand", 0, PrepAtWill),
	}
	ranked := Rank(list, AssignOptions{})

	for _, r := range ranked {
		if r.Rank != 1 {
			t.Errorf("%s: expected rank 1 in its own category, got %d", r.ID, r.Rank)
		}
	}

	ids := rankedIDs(ranked)
	if slices.Index(ids, "cantrip") > slices.Index(ids, "l1") {
		t.Errorf("expected cantrip category before level 1, got %v", ids)
	}
}

func TestRank_FeatSplit(t *testing.T) {
	list := []items.Item{
		feat("p1", "Alert", "", ""),
		feat("a1", "Zealous Strike", "bonus", ""),
		feat("p2", "Tough", "", ""),
		feat("a2", "Action Surge", "action", ""),
	}
	got := rankedIDs(Rank(list, AssignOptions{}))
	want := []string{"a2", "a1", "p1", "p2"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRank_RequirementsToggle(t *testing.T) {
	list := []items.Item{
		feat("x", "Aardvark", "", "Wizard 5"),
		feat("y", "Zebra", "", "Fighter 2"),
	}

	off := rankedIDs(Rank(list, AssignOptions{}))
	if !slices.Equal(off, []string{"x", "y"}) {
		t.Errorf("toggle off: got %v, want name order", off)
	}

	on := rankedIDs(Rank(list, AssignOptions{FeatsByRequirement: true}))
	if !slices.Equal(on, []string{"y", "x"}) {
		t.Errorf("toggle on: got %v, want requirements order", on)
	}
}

func TestRank_RequirementsIgnoredForNonFeats(t *testing.T) {
	list := []items.Item{
		{ID: "1", Name: "B", Type: items.TypeLoot, System: items.System{Requirements: "a"}},
		{ID: "2", Name: "A", Type: items.TypeLoot, System: items.System{Requirements: "z"}},
	}
	got := rankedIDs(Rank(list, AssignOptions{FeatsByRequirement: true}))
	if !slices.Equal(got, []string{"2", "1"}) {
		t.Errorf("got %v, want name order", got)
	}
}

func TestPendingUpdates_OnlyChanged(t *testing.T) {
	list := []items.Item{
		{ID: "1", Sort: 1000},
		{ID: "2", Sort: 0},
	}
	sorts := map[string]ItemSort{
		"1": {ID: "1", Sort: 1000},
		"2": {ID: "2", Sort: 2000},
	}
	got := PendingUpdates(list, sorts)
	if len(got) != 1 || got[0].ID != "2" {
		t.Errorf("expected only item 2 pending, got %+v", got)
	}
}
