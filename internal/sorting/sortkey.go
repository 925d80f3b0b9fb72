package sorting

import (
	"log/slog"
	"slices"
	"strconv"

	"github.com/keyxmakerx/itemsorter/internal/collator"
	"github.com/keyxmakerx/itemsorter/internal/plugins/items"
)

// logger returns the package logger tagged with the engine's module label.
func logger() *slog.Logger {
	return slog.Default().With(slog.String("module", "item-sorter"))
}

// Key is one comparator key. A key with Absent set compares as the empty
// string.
type Key struct {
	Value      string
	Absent     bool
	Descending bool
}

// Entry is a ranked node: an opaque reference plus its keys in comparator
// order (primary, secondary, persisted sort, item id, position).
type Entry[T any] struct {
	Ref  T
	Keys []Key
}

// BuildSortKey computes the comparator keys for the node at position index.
// item is nil when the node's id resolves to no backing item; such nodes get
// absent criterion keys and sort on id and position only. Criteria naming an
// unknown criterion are logged and treated as absent.
func BuildSortKey[T any](ref T, itemID string, item *items.Item, criteria Criteria, index int) Entry[T] {
	keys := make([]Key, 0, 5)

	for _, opt := range criteria.Slots() {
		if item == nil || opt == nil {
			keys = append(keys, Key{Absent: true})
			continue
		}
		v, err := Extract(item, opt.Criterion)
		if err != nil {
			logger().Error("unexpected sort setting",
				slog.String("item_id", item.ID),
				slog.Any("error", err),
			)
			keys = append(keys, Key{Absent: true})
			continue
		}
		keys = append(keys, Key{Value: v, Descending: opt.Descending})
	}

	var persisted string
	if item != nil {
		persisted = strconv.Itoa(item.Sort)
		itemID = item.ID
	}
	keys = append(keys,
		Key{Value: persisted},
		Key{Value: itemID},
		Key{Value: strconv.Itoa(index)},
	)

	return Entry[T]{Ref: ref, Keys: keys}
}

// Compare orders two entries key by key with the locale comparator. The
// first differing key decides; its result is inverted when either side's
// key is descending.
func Compare[T any](a, b Entry[T]) int {
	n := min(len(a.Keys), len(b.Keys))
	for i := 0; i < n; i++ {
		ka, kb := a.Keys[i], b.Keys[i]
		c := collator.Compare(ka.Value, kb.Value)
		if c == 0 {
			continue
		}
		if ka.Descending || kb.Descending {
			return -c
		}
		return c
	}
	return 0
}

// SortEntries stable-sorts entries in place by Compare.
func SortEntries[T any](entries []Entry[T]) {
	slices.SortStableFunc(entries, Compare[T])
}
