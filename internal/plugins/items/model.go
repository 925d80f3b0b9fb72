// Package items is the document store for actors and their items. It owns
// the persisted integer `sort` field that the durable ordering engine writes,
// and publishes create/update/delete events plus a pre-update interception
// chain so other plugins can react to, rewrite, or veto item changes.
package items

import (
	"strings"
	"time"
)

// --- Domain Models ---

// ItemType is the closed set of item categories.
type ItemType string

const (
	TypeBase ItemType = "base"

	TypeWeapon     ItemType = "weapon"
	TypeEquipment  ItemType = "equipment"
	TypeConsumable ItemType = "consumable"
	TypeTool       ItemType = "tool"
	TypeBackpack   ItemType = "backpack"
	TypeLoot       ItemType = "loot"

	TypeRace       ItemType = "race"
	TypeBackground ItemType = "background"
	TypeClass      ItemType = "class"
	TypeSubclass   ItemType = "subclass"
	TypeFeat       ItemType = "feat"

	TypeSpell ItemType = "spell"
)

var validTypes = map[ItemType]bool{
	TypeBase: true, TypeWeapon: true, TypeEquipment: true, TypeConsumable: true,
	TypeTool: true, TypeBackpack: true, TypeLoot: true, TypeRace: true,
	TypeBackground: true, TypeClass: true, TypeSubclass: true, TypeFeat: true,
	TypeSpell: true,
}

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	return validTypes[t]
}

// Actor owns a collection of items.
type Actor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Item is one inventory, feature or spell entry of an actor.
type Item struct {
	ID      string   `json:"id"`
	ActorID string   `json:"actor_id"`
	Name    string   `json:"name"`
	Type    ItemType `json:"type"`

	// Sort is the persisted order. Larger sorts later; values are neither
	// unique nor dense.
	Sort int `json:"sort"`

	// System is the type-dependent attribute bag. Stored as JSON.
	System System `json:"system"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// System holds the nested attributes of an item. Which fields are populated
// depends on the item type; missing numbers read as zero.
type System struct {
	// Physical items.
	Quantity float64 `json:"quantity,omitempty"`
	Weight   float64 `json:"weight,omitempty"`

	// Anything that can be used.
	Activation *Activation `json:"activation,omitempty"`

	// Spells.
	Preparation *Preparation `json:"preparation,omitempty"`
	Level       int          `json:"level,omitempty"`
	School      string       `json:"school,omitempty"`
	Target      *Target      `json:"target,omitempty"`

	// Feats.
	Requirements string `json:"requirements,omitempty"`
}

// Activation describes how an item is used (e.g., "bonus" action, 10 "minute").
type Activation struct {
	Type string  `json:"type,omitempty"`
	Cost float64 `json:"cost,omitempty"`
}

// Preparation describes how a spell is made available.
type Preparation struct {
	Mode string `json:"mode,omitempty"`
}

// Target describes what a spell affects (e.g., a 20 "radius").
type Target struct {
	Type  string  `json:"type,omitempty"`
	Value float64 `json:"value,omitempty"`
}

// --- Collections ---

// Collection is an actor's items in insertion order with lookup by id.
type Collection struct {
	items []Item
	index map[string]int
}

// NewCollection builds a Collection. Later duplicates of an id shadow
// earlier ones for lookup but both stay in All.
func NewCollection(items []Item) *Collection {
	c := &Collection{
		items: items,
		index: make(map[string]int, len(items)),
	}
	for i, it := range items {
		c.index[it.ID] = i
	}
	return c
}

// Get returns the item with the given id.
func (c *Collection) Get(id string) (*Item, bool) {
	if c == nil || id == "" {
		return nil, false
	}
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return &c.items[i], true
}

// All returns the items in insertion order.
func (c *Collection) All() []Item {
	if c == nil {
		return nil
	}
	return c.items
}

// Len returns the number of items.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// --- Mutations ---

// CreateItemInput is the validated input for creating an item.
type CreateItemInput struct {
	Name   string   `json:"name"`
	Type   ItemType `json:"type"`
	Sort   int      `json:"sort"`
	System System   `json:"system"`
}

// Validate checks required fields.
func (in CreateItemInput) Validate() string {
	if strings.TrimSpace(in.Name) == "" {
		return "item name is required"
	}
	if !in.Type.Valid() {
		return "unknown item type"
	}
	return ""
}

// Changes is a pending partial update of one item. Nil fields are not
// changing. The item type is immutable and cannot be changed.
type Changes struct {
	ID     string  `json:"id"`
	Name   *string `json:"name,omitempty"`
	Sort   *int    `json:"sort,omitempty"`
	System *System `json:"system,omitempty"`
}

// OnlySort reports whether sort is the only field being changed.
func (c *Changes) OnlySort() bool {
	return c.Sort != nil && c.Name == nil && c.System == nil
}

// Apply returns a copy of item with the changes applied.
func (c *Changes) Apply(item Item) Item {
	if c.Name != nil {
		item.Name = *c.Name
	}
	if c.Sort != nil {
		item.Sort = *c.Sort
	}
	if c.System != nil {
		item.System = *c.System
	}
	return item
}

// UpdateOptions travels with every mutation and is handed to hooks.
type UpdateOptions struct {
	// UserID is the user performing the change.
	UserID string `json:"user_id"`

	// SorterUpdate marks writes made by the durable ordering engine so its
	// own listeners do not react to them.
	SorterUpdate bool `json:"sorter_update"`
}

// UpdateResult reports which changes were applied and which were vetoed by
// a pre-update hook.
type UpdateResult struct {
	Updated []Item   `json:"updated"`
	Vetoed  []string `json:"vetoed"`
}
