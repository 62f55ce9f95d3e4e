package inventory

import (
	"badboys-inventory-api/internal/catalog"
	"badboys-inventory-api/pkg/apperror"
)

// Candidate is one container-unlock outcome with its draw weight.
type Candidate struct {
	Item   *catalog.Item
	Weight int
}

// BuildPool weights each candidate by its rarity tier. The pool order follows
// the input order; Pick depends only on the weight table and the draw, never
// on any implicit catalog ordering.
func BuildPool(items []*catalog.Item) []Candidate {
	pool := make([]Candidate, 0, len(items))
	for _, it := range items {
		pool = append(pool, Candidate{Item: it, Weight: it.Rarity.Weight()})
	}
	return pool
}

// TotalWeight sums the pool's weights.
func TotalWeight(pool []Candidate) int {
	total := 0
	for _, c := range pool {
		total += c.Weight
	}
	return total
}

// Pick resolves a uniform draw r in [0, TotalWeight(pool)) to a candidate via
// cumulative-weight sampling: walk the pool subtracting each weight from r
// until it goes negative. Pure function of the pool and the draw.
func Pick(pool []Candidate, r int) (*catalog.Item, error) {
	if len(pool) == 0 {
		return nil, apperror.Validation("container has no possible rewards")
	}
	if r < 0 || r >= TotalWeight(pool) {
		return nil, apperror.Validation("draw outside the pool's weight range")
	}

	for _, c := range pool {
		r -= c.Weight
		if r < 0 {
			return c.Item, nil
		}
	}

	// Unreachable while the range check above holds.
	return pool[len(pool)-1].Item, nil
}
