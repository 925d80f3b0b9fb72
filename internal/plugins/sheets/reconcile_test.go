package sheets

import (
	"errors"
	"slices"
	"testing"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/keyxmakerx/itemsorter/internal/apperror"
	"github.com/keyxmakerx/itemsorter/internal/plugins/items"
	"github.com/keyxmakerx/itemsorter/internal/plugins/settings"
)

func mustParse(t *testing.T, markup string) *html.Node {
	t.Helper()
	root, err := parseRoot(markup)
	if err != nil {
		t.Fatalf("parsing markup: %v", err)
	}
	return root
}

// idsIn returns the data-item-id values under the first match of sel.
func idsIn(t *testing.T, root *html.Node, sel string) []string {
	t.Helper()
	container := cascadia.Query(root, cascadia.MustCompile(sel))
	if container == nil {
		t.Fatalf("no element matches %s", sel)
	}
	var ids []string
	for _, n := range cascadia.QueryAll(container, tidyItem) {
		ids = append(ids, attr(n, "data-item-id"))
	}
	return ids
}

func elementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func loot() *items.Collection {
	return items.NewCollection([]items.Item{
		{ID: "a", Name: "Alfa", Type: items.TypeLoot},
		{ID: "b", Name: "bravo", Type: items.TypeLoot},
		{ID: "c", Name: "Charlie", Type: items.TypeLoot},
		{ID: "d", Name: "Delta", Type: items.TypeLoot},
	})
}

const genericSheet = `<div class="sheet"><ol class="item-list">` +
	`<li class="item" data-item-id="b">bravo</li>` +
	`<li class="item" data-item-id="c">Charlie</li>` +
	`<li class="item" data-item-id="a">Alfa</li>` +
	`<li class="item" data-item-id="d">Delta</li>` +
	`<li class="item-footer">Add item</li>` +
	`</ol></div>`

func TestReconcile_GenericNameAscending(t *testing.T) {
	root := mustParse(t, genericSheet)

	n, err := Reconcile(root, loot(), settings.NewResolver(nil).ForType, DefaultFinders)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 section, got %d", n)
	}
	if got, want := idsIn(t, root, ".item-list"), []string{"a", "b", "c", "d"}; !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReconcile_FooterStaysLast(t *testing.T) {
	root := mustParse(t, genericSheet)
	if _, err := Reconcile(root, loot(), settings.NewResolver(nil).ForType, DefaultFinders); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list := cascadia.Query(root, genericList)
	children := elementChildren(list)
	if len(children) != 5 {
		t.Fatalf("expected 5 children, got %d", len(children))
	}
	if !hasClass(children[4], "item-footer") {
		t.Errorf("expected footer to stay last, got %s", attr(children[4], "class"))
	}
}

func TestReconcile_NameDescending(t *testing.T) {
	root := mustParse(t, genericSheet)
	resolver := settings.NewResolver(map[string]string{
		settings.SpecificKey(settings.FamilyInventory, "Loot", settings.SlotPrimary): "name_desc",
	})
	if _, err := Reconcile(root, loot(), resolver.ForType, DefaultFinders); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := idsIn(t, root, ".item-list"), []string{"d", "c", "b", "a"}; !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReconcile_UnmappedNodesAreKept(t *testing.T) {
	root := mustParse(t, `<div><ol class="item-list">`+
		`<li class="item" data-item-id="c">Charlie</li>`+
		`<li class="item" data-item-id="ghost">?</li>`+
		`<li class="item" data-item-id="a">Alfa</li>`+
		`</ol></div>`)

	if _, err := Reconcile(root, loot(), settings.NewResolver(nil).ForType, DefaultFinders); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := idsIn(t, root, ".item-list")
	if want := []string{"ghost", "a", "c"}; !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReconcile_IsIdempotent(t *testing.T) {
	root := mustParse(t, genericSheet)
	criteria := settings.NewResolver(nil).ForType
	for i := 0; i < 3; i++ {
		if _, err := Reconcile(root, loot(), criteria, DefaultFinders); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got, want := idsIn(t, root, ".item-list"), []string{"a", "b", "c", "d"}; !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReconcile_PerTypeCriteria(t *testing.T) {
	coll := items.NewCollection([]items.Item{
		{ID: "w1", Name: "Axe", Type: items.TypeWeapon, System: items.System{Weight: 4}},
		{ID: "w2", Name: "Bow", Type: items.TypeWeapon, System: items.System{Weight: 2}},
		{ID: "w3", Name: "Club", Type: items.TypeWeapon, System: items.System{Weight: 3}},
	})
	root := mustParse(t, `<div><ol class="item-list">`+
		`<li class="item" data-item-id="w1"></li>`+
		`<li class="item" data-item-id="w2"></li>`+
		`<li class="item" data-item-id="w3"></li>`+
		`</ol></div>`)
	resolver := settings.NewResolver(map[string]string{
		settings.SpecificKey(settings.FamilyInventory, "Weapons", settings.SlotPrimary): "weight_desc",
	})

	if _, err := Reconcile(root, coll, resolver.ForType, DefaultFinders); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := idsIn(t, root, ".item-list"), []string{"w1", "w3", "w2"}; !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReconcile_MissingContext(t *testing.T) {
	criteria := settings.NewResolver(nil).ForType
	if _, err := Reconcile(nil, loot(), criteria, DefaultFinders); !errors.Is(err, apperror.ErrMissingContext) {
		t.Errorf("nil root: expected ErrMissingContext, got %v", err)
	}
	root := mustParse(t, genericSheet)
	if _, err := Reconcile(root, nil, criteria, DefaultFinders); !errors.Is(err, apperror.ErrMissingContext) {
		t.Errorf("nil items: expected ErrMissingContext, got %v", err)
	}
}

func TestReconcile_NoSections(t *testing.T) {
	root := mustParse(t, `<div><p>No items here.</p></div>`)
	n, err := Reconcile(root, loot(), settings.NewResolver(nil).ForType, DefaultFinders)
	if err != nil || n != 0 {
		t.Errorf("expected a silent skip, got n=%d err=%v", n, err)
	}
}
