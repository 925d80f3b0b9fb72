// Package sorting holds the ordering primitives shared by both engines: the
// criterion value extractor, the multi-key comparator used by panel
// reconciliation, and the category/rank assignment used for the persisted
// sort field.
package sorting

// Criterion is a named, extractable sort dimension.
type Criterion string

const (
	CriterionName         Criterion = "name"
	CriterionQuantity     Criterion = "quantity"
	CriterionWeight       Criterion = "weight"
	CriterionTotalWeight  Criterion = "totalWeight"
	CriterionUsage        Criterion = "usage"
	CriterionSchool       Criterion = "school"
	CriterionTarget       Criterion = "target"
	CriterionRequirements Criterion = "requirements"
)

var knownCriteria = map[Criterion]bool{
	CriterionName: true, CriterionQuantity: true, CriterionWeight: true,
	CriterionTotalWeight: true, CriterionUsage: true, CriterionSchool: true,
	CriterionTarget: true, CriterionRequirements: true,
}

// Valid reports whether the extractor knows c.
func (c Criterion) Valid() bool {
	return knownCriteria[c]
}

// Option is one resolved sort slot: a criterion and its direction.
type Option struct {
	Criterion  Criterion `json:"criterion"`
	Descending bool      `json:"descending"`
}

// Criteria is the effective (primary, secondary) pair for an item. A nil
// slot contributes nothing and falls through to the tie-breakers.
type Criteria struct {
	Primary   *Option `json:"primary"`
	Secondary *Option `json:"secondary"`
}

// Slots returns the two slots in comparator order.
func (c Criteria) Slots() [2]*Option {
	return [2]*Option{c.Primary, c.Secondary}
}

// ActivationTypes is the ordered activation vocabulary used by the usage
// encoding. Position, not name, decides order.
var ActivationTypes = []string{
	"none", "action", "bonus", "reaction", "minute", "hour", "day",
	"special", "legendary", "mythic", "lair", "crew",
}

// TargetTypes is the ordered target vocabulary used by the target encoding.
var TargetTypes = []string{
	"self", "ally", "enemy", "creature", "object", "space", "creatureOrObject",
	"radius", "sphere", "cylinder", "cone", "square", "cube", "line", "wall",
}

// SpellSchools lists the school codes. School values sort alphabetically by
// code; this list is only used to validate input.
var SpellSchools = []string{"abj", "con", "div", "enc", "evo", "ill", "nec", "trs"}
