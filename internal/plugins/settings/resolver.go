package settings

import (
	"log/slog"

	"github.com/keyxmakerx/itemsorter/internal/plugins/items"
	"github.com/keyxmakerx/itemsorter/internal/sorting"
)

// Resolver answers "which criteria apply to this item type" from a snapshot
// of stored values. It is immutable and safe for concurrent use.
type Resolver struct {
	values map[string]string
}

// NewResolver creates a resolver over stored values. Missing keys take
// their defaults.
func NewResolver(values map[string]string) *Resolver {
	snapshot := make(map[string]string, len(values))
	for k, v := range values {
		snapshot[k] = v
	}
	return &Resolver{values: snapshot}
}

// value returns the stored value for key or its default.
func (r *Resolver) value(key string) string {
	if v, ok := r.values[key]; ok && v != "" {
		return v
	}
	if d, ok := Lookup(key); ok {
		return d.Default
	}
	return ""
}

// ForType returns the effective criteria for an item type. Types without a
// configuration, such as base, resolve to no criteria.
func (r *Resolver) ForType(t items.ItemType) sorting.Criteria {
	b, ok := typeBindings[t]
	if !ok {
		return sorting.Criteria{}
	}
	return sorting.Criteria{
		Primary:   r.resolveSlot(b, SlotPrimary),
		Secondary: r.resolveSlot(b, SlotSecondary),
	}
}

// resolveSlot walks specific, then family fallback, then none. Spells have
// no specific layer.
func (r *Resolver) resolveSlot(b binding, s Slot) *sorting.Option {
	key := FallbackKey(b.family, s)
	raw := r.value(key)
	if b.category != "" {
		key = SpecificKey(b.family, b.category, s)
		raw = r.value(key)
		if raw == SelectionDefault {
			key = FallbackKey(b.family, s)
			raw = r.value(key)
		}
	}

	opt, err := ParseSelection(raw)
	if err != nil {
		slog.Error("unexpected sort setting",
			slog.String("module", "item-sorter"),
			slog.String("key", key),
			slog.Any("error", err),
		)
		return nil
	}
	return opt
}

// Flags decodes the boolean switches.
func (r *Resolver) Flags() Flags {
	return Flags{
		LegacySorter:       parseBool(r.value(KeyLegacySorter), false),
		FeatsByRequirement: parseBool(r.value(KeyFeatsByRequirement), false),
	}
}
