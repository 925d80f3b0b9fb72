package sheets

import (
	"slices"
	"testing"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/keyxmakerx/itemsorter/internal/plugins/settings"
)

const tidySheet = `<div class="tidy5e-sheet">` +
	`<section data-tidy-sheet-part="item-table">` +
	`<header>Inventory</header>` +
	`<div class="items">` +
	`<div data-item-id="c">Charlie</div>` +
	`<div data-item-id="a">Alfa</div>` +
	`<div data-item-id="b">bravo</div>` +
	`<div class="item-table-footer">Add</div>` +
	`</div>` +
	`</section>` +
	`<ol class="item-list">` +
	`<li class="item" data-item-id="d">Delta</li>` +
	`<li class="item" data-item-id="a">Alfa</li>` +
	`</ol>` +
	`</div>`

func TestTidy5eFinder(t *testing.T) {
	root := mustParse(t, tidySheet)
	sections := Tidy5eFinder(root)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	sec := sections[0]
	if !hasClass(sec.Container, "items") {
		t.Errorf("expected the .items body as container, got <%s class=%q>", sec.Container.Data, attr(sec.Container, "class"))
	}
	if len(sec.Items) != 3 {
		t.Errorf("expected 3 items, got %d", len(sec.Items))
	}
	if sec.Reference == nil || !hasClass(sec.Reference, "item-table-footer") {
		t.Error("expected the footer as reference node")
	}
}

func TestTidy5eFinder_RequiresRootClass(t *testing.T) {
	root := mustParse(t, `<div class="sheet"><section data-tidy-sheet-part="item-table"><div data-item-id="a"></div></section></div>`)
	if got := Tidy5eFinder(root); got != nil {
		t.Errorf("expected no sections without a Tidy5e root, got %d", len(got))
	}
}

func TestTidy5eFinder_TableWithoutItemsBody(t *testing.T) {
	root := mustParse(t, `<div class="tidy5e-kgar"><section data-tidy-sheet-part="item-table"><div data-item-id="a"></div><div data-item-id="b"></div></section></div>`)
	sections := Tidy5eFinder(root)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if attr(sections[0].Container, "data-tidy-sheet-part") != "item-table" {
		t.Error("expected the table itself as container")
	}
	if sections[0].Reference != nil {
		t.Error("expected no reference node")
	}
}

func TestGenericFinder_SkipsNodesWithoutID(t *testing.T) {
	root := mustParse(t, `<div><ol class="item-list"><li class="item" data-item-id="a"></li><li class="item">header row</li><li class="item" data-item-id=""></li></ol><ol class="item-list"></ol></div>`)
	sections := GenericFinder(root)
	if len(sections) != 1 {
		t.Fatalf("expected 1 non-empty section, got %d", len(sections))
	}
	if len(sections[0].Items) != 1 {
		t.Errorf("expected 1 item node, got %d", len(sections[0].Items))
	}
}

func TestFindSections_FirstMatchWins(t *testing.T) {
	root := mustParse(t, tidySheet)
	if _, err := Reconcile(root, loot(), settings.NewResolver(nil).ForType, DefaultFinders); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, want := idsIn(t, root, ".items"), []string{"a", "b", "c"}; !slices.Equal(got, want) {
		t.Errorf("tidy table: got %v, want %v", got, want)
	}
	// The generic list is not touched once the Tidy5e finder matched.
	if got, want := idsIn(t, root, ".item-list"), []string{"d", "a"}; !slices.Equal(got, want) {
		t.Errorf("generic list: got %v, want %v", got, want)
	}
	children := elementChildren(cascadia.Query(root, tidyItems))
	if !hasClass(children[len(children)-1], "item-table-footer") {
		t.Error("expected the tidy footer to stay last")
	}
}

func TestFindSections_FallsBackToGeneric(t *testing.T) {
	root := mustParse(t, genericSheet)
	sections := FindSections(root, DefaultFinders)
	if len(sections) != 1 || !hasClass(sections[0].Container, "item-list") {
		t.Fatalf("expected the generic finder to match, got %+v", sections)
	}
}

func TestFindSections_CustomChain(t *testing.T) {
	root := mustParse(t, genericSheet)
	calls := 0
	never := func(*html.Node) []Section { calls++; return nil }
	if got := FindSections(root, []Finder{never, GenericFinder}); len(got) != 1 {
		t.Errorf("expected generic sections, got %d", len(got))
	}
	if calls != 1 {
		t.Errorf("expected the first finder to be tried once, got %d", calls)
	}
	if got := FindSections(nil, DefaultFinders); got != nil {
		t.Error("expected nil for a nil root")
	}
}
