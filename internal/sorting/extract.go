package sorting

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/keyxmakerx/itemsorter/internal/apperror"
	"github.com/keyxmakerx/itemsorter/internal/plugins/items"
)

// bucketSize separates vocabulary buckets in the usage and target
// encodings. It must exceed any realistic cost or area value.
const bucketSize = 1_000_000

// Extract returns the value of criterion c for item, encoded so that the
// locale comparator reproduces the intended domain order. Unknown criteria
// return an error wrapping apperror.ErrUnknownCriterion.
func Extract(item *items.Item, c Criterion) (string, error) {
	sys := item.System
	switch c {
	case CriterionName:
		return item.Name, nil
	case CriterionQuantity:
		return formatNumber(sys.Quantity), nil
	case CriterionWeight:
		return formatNumber(sys.Weight), nil
	case CriterionTotalWeight:
		return formatNumber(sys.Weight * sys.Quantity), nil
	case CriterionUsage:
		return Usage(item), nil
	case CriterionSchool:
		return sys.School, nil
	case CriterionTarget:
		return Target(item), nil
	case CriterionRequirements:
		return sys.Requirements, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownCriterion, string(c))
	}
}

// Usage encodes activation type then cost as one number. Items without an
// activation, or with a type outside the vocabulary, land in bucket zero
// and sort first.
func Usage(item *items.Item) string {
	var (
		typ  string
		cost float64
	)
	if a := item.System.Activation; a != nil {
		typ, cost = a.Type, a.Cost
	}
	return encodeBucket(ActivationTypes, typ, cost)
}

// Target encodes target type then area value as one number. No target sorts
// first.
func Target(item *items.Item) string {
	var (
		typ   string
		value float64
	)
	if t := item.System.Target; t != nil {
		typ, value = t.Type, t.Value
	}
	return encodeBucket(TargetTypes, typ, value)
}

// encodeBucket returns (index(typ)+1)*bucketSize + value.
func encodeBucket(vocabulary []string, typ string, value float64) string {
	idx := -1
	if typ != "" {
		idx = slices.Index(vocabulary, typ)
	}
	return formatNumber(float64(idx+1)*bucketSize + value)
}

// formatNumber renders v without exponent or trailing zeros.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
