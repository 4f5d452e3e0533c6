// Package allocation plans how a requested quantity is served from stock
// split across attribute combinations.
//
// The allocator only reads its snapshot. Callers commit a plan against live
// availability inside their own transaction.
package allocation

import (
	"rental-engine/core/attributes"
	"rental-engine/core/determinism"
)

// Combination is one stock record: a combination of attribute values and how
// many units of it are available.
type Combination struct {
	Key        string                `json:"combination_key"`
	Attributes attributes.Attributes `json:"selected_attributes"`
	Available  int64                 `json:"available_quantity"`
}

// available never reports negative stock
func (c Combination) available() int64 {
	if c.Available < 0 {
		return 0
	}
	return c.Available
}

// Allocation is the quantity taken from one combination
type Allocation struct {
	CombinationKey string                `json:"combination_key"`
	Attributes     attributes.Attributes `json:"selected_attributes"`
	Quantity       int64                 `json:"quantity"`
}

// Plan is a complete allocation. A nil *Plan means the request cannot be served.
type Plan struct {
	Mode        attributes.SelectionMode `json:"mode"`
	Allocations []Allocation             `json:"allocations"`
}

// Total returns the quantity the plan serves
func (p *Plan) Total() int64 {
	var total int64
	for _, a := range p.Allocations {
		total += a.Quantity
	}
	return total
}

// SortKey orders combinations by their axis-ordered key:value string, then by stored key
func SortKey(axes []attributes.Axis, c Combination) string {
	return attributes.BuildPartialCombinationKey(axes, c.Attributes) + "\x00" + c.Key
}

// MatchingCombinations returns the combinations compatible with selected, in input order
func MatchingCombinations(combos []Combination, selected map[string]string) []Combination {
	var out []Combination
	for _, c := range combos {
		if attributes.MatchesSelected(selected, c.Attributes) {
			out = append(out, c)
		}
	}
	return out
}

func sortedMatches(axes []attributes.Axis, combos []Combination, selected map[string]string) []Combination {
	matches := MatchingCombinations(combos, selected)
	determinism.SortSlice(matches, func(a, b Combination) bool {
		return SortKey(axes, a) < SortKey(axes, b)
	})
	return matches
}

// ResolveBestCombination returns the first matching combination, in sort key
// order, that can serve quantity on its own. Nil means that exact selection is
// out of stock; callers must not split the request instead.
func ResolveBestCombination(axes []attributes.Axis, combos []Combination, selected map[string]string, quantity int64) *Combination {
	if quantity <= 0 {
		return nil
	}
	for _, c := range sortedMatches(axes, combos, selected) {
		if c.available() >= quantity {
			best := c
			return &best
		}
	}
	return nil
}

// AllocateAcrossCombinations greedily takes stock from matching combinations in
// sort key order until quantity is met. It returns nil unless the whole
// quantity can be served.
func AllocateAcrossCombinations(axes []attributes.Axis, combos []Combination, selected map[string]string, quantity int64) []Allocation {
	if quantity <= 0 {
		return nil
	}

	remaining := quantity
	var allocations []Allocation
	for _, c := range sortedMatches(axes, combos, selected) {
		if remaining == 0 {
			break
		}
		take := min(c.available(), remaining)
		if take == 0 {
			continue
		}
		allocations = append(allocations, Allocation{
			CombinationKey: c.Key,
			Attributes:     c.Attributes,
			Quantity:       take,
		})
		remaining -= take
	}

	if remaining > 0 {
		return nil
	}
	return allocations
}

// SelectionCapacity is the largest quantity Allocate can serve for selected:
// the best single combination for a full selection, the sum otherwise.
func SelectionCapacity(axes []attributes.Axis, combos []Combination, selected map[string]string) int64 {
	mode := attributes.SelectionModeOf(axes, selected)
	var capacity int64
	for _, c := range MatchingCombinations(combos, selected) {
		if mode == attributes.SelectionFull {
			capacity = max(capacity, c.available())
		} else {
			capacity += c.available()
		}
	}
	return capacity
}

// Allocate picks the allocation mode from the selection and returns a complete plan or nil
func Allocate(axes []attributes.Axis, combos []Combination, selected map[string]string, quantity int64) *Plan {
	mode := attributes.SelectionModeOf(axes, selected)

	if mode == attributes.SelectionFull {
		best := ResolveBestCombination(axes, combos, selected, quantity)
		if best == nil {
			return nil
		}
		return &Plan{
			Mode: mode,
			Allocations: []Allocation{{
				CombinationKey: best.Key,
				Attributes:     best.Attributes,
				Quantity:       quantity,
			}},
		}
	}

	allocations := AllocateAcrossCombinations(axes, combos, selected, quantity)
	if allocations == nil {
		return nil
	}
	return &Plan{Mode: mode, Allocations: allocations}
}
