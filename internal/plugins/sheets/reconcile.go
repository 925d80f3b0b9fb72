package sheets

import (
	"fmt"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/keyxmakerx/itemsorter/internal/apperror"
	"github.com/keyxmakerx/itemsorter/internal/plugins/items"
	"github.com/keyxmakerx/itemsorter/internal/sorting"
)

func logger() *slog.Logger {
	return slog.Default().With(slog.String("module", "item-sorter"))
}

// CriteriaFunc resolves the configured criteria for an item type.
type CriteriaFunc func(items.ItemType) sorting.Criteria

// Reconcile reorders the item nodes of every section found under root by
// the configured criteria of their backing items. Nodes that do not map to
// an item stay in the section with empty criterion values and are ordered
// by their id and position. It returns the number of sections reordered.
func Reconcile(root *html.Node, coll *items.Collection, criteria CriteriaFunc, finders []Finder) (int, error) {
	if root == nil || coll == nil {
		err := fmt.Errorf("%w: panel root or actor items missing", apperror.ErrMissingContext)
		logger().Debug("not sorting panel", slog.Any("error", err))
		return 0, err
	}

	sections := FindSections(root, finders)
	if len(sections) == 0 {
		logger().Debug("no item sections found in panel")
		return 0, nil
	}

	for _, sec := range sections {
		reconcileSection(sec, coll, criteria)
	}
	return len(sections), nil
}

func reconcileSection(sec Section, coll *items.Collection, criteria CriteriaFunc) {
	entries := make([]sorting.Entry[*html.Node], 0, len(sec.Items))
	for i, n := range sec.Items {
		id := attr(n, "data-item-id")
		var (
			item *items.Item
			c    sorting.Criteria
		)
		if it, ok := coll.Get(id); ok {
			item = it
			c = criteria(it.Type)
		}
		entries = append(entries, sorting.BuildSortKey(n, id, item, c, i))
	}

	sorting.SortEntries(entries)

	for _, e := range entries {
		move(e.Ref, sec)
	}
}

// move detaches n and reinserts it before the section's reference node, or
// at the end of the container when there is none.
func move(n *html.Node, sec Section) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	if sec.Reference != nil && sec.Reference.Parent != nil {
		sec.Reference.Parent.InsertBefore(n, sec.Reference)
		return
	}
	sec.Container.AppendChild(n)
}
