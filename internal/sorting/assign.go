package sorting

import (
	"cmp"
	"slices"

	"github.com/keyxmakerx/itemsorter/internal/collator"
	"github.com/keyxmakerx/itemsorter/internal/plugins/items"
)

// DefaultStride spaces consecutive ranks in the persisted sort field.
const DefaultStride = 1000

// AssignOptions configures persisted-order assignment.
type AssignOptions struct {
	// Stride multiplies each rank. Zero means DefaultStride.
	Stride int

	// FeatsByRequirement orders feats by requirements text before name.
	FeatsByRequirement bool
}

// ItemSort is a computed persisted sort value for one item.
type ItemSort struct {
	ID   string `json:"id"`
	Sort int    `json:"sort"`
}

// assignment is the per-item sort detail for the assignment comparator.
type assignment struct {
	id        string
	category  Category
	alternate string
	name      string
}

// Ranked is one item's position in the assignment order.
type Ranked struct {
	ID       string
	Category Category
	Rank     int
	Sort     int
}

// Rank orders items by category, then requirements text when enabled for
// feats, then name, then id, and numbers them within each category starting
// at 1. The result is in that order.
func Rank(list []items.Item, opts AssignOptions) []Ranked {
	stride := cmp.Or(opts.Stride, DefaultStride)

	details := make([]assignment, 0, len(list))
	for i := range list {
		it := &list[i]
		d := assignment{id: it.ID, category: Classify(it), name: it.Name}
		if it.Type == items.TypeFeat && opts.FeatsByRequirement {
			d.alternate = it.System.Requirements
		}
		details = append(details, d)
	}

	slices.SortStableFunc(details, func(a, b assignment) int {
		return cmp.Or(
			collator.Compare(string(a.category), string(b.category)),
			collator.Compare(a.alternate, b.alternate),
			collator.Compare(a.name, b.name),
			collator.Compare(a.id, b.id),
		)
	})

	ranked := make([]Ranked, 0, len(details))
	rank := 0
	for i, d := range details {
		if i == 0 || d.category != details[i-1].category {
			rank = 0
		}
		rank++
		ranked = append(ranked, Ranked{ID: d.id, Category: d.category, Rank: rank, Sort: rank * stride})
	}
	return ranked
}

// CalculateItemSorts returns the stride-spaced sort value for every item,
// keyed by id.
func CalculateItemSorts(list []items.Item, opts AssignOptions) map[string]ItemSort {
	ranked := Rank(list, opts)
	sorts := make(map[string]ItemSort, len(ranked))
	for _, r := range ranked {
		sorts[r.ID] = ItemSort{ID: r.ID, Sort: r.Sort}
	}
	return sorts
}

// PendingUpdates returns the computed sorts that differ from the stored
// values, in the items' insertion order. An empty result means nothing
// needs writing.
func PendingUpdates(list []items.Item, sorts map[string]ItemSort) []ItemSort {
	var pending []ItemSort
	for _, it := range list {
		s, ok := sorts[it.ID]
		if ok && s.Sort != it.Sort {
			pending = append(pending, s)
		}
	}
	return pending
}
