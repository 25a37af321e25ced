package book

import (
	"errors"
	"fmt"
)

// Rules is the immutable aggregation subscription: the minimum total amount
// each bucket must reach before a new bucket starts, a fallback minimum for
// buckets past the table, and the cap on raw levels admitted into the
// aggregated view.
type Rules struct {
	minimumAmounts []uint64
	fallback       uint64
	maxDepth       int
}

// NewRules validates and builds a subscription. Every threshold must be
// positive and maxDepth at least one.
func NewRules(minimumAmounts []uint64, fallback uint64, maxDepth int) (Rules, error) {
	for i, amount := range minimumAmounts {
		if amount == 0 {
			return Rules{}, fmt.Errorf("minimum amount at index %d must be positive", i)
		}
	}
	if fallback == 0 {
		return Rules{}, errors.New("fallback minimum amount must be positive")
	}
	if maxDepth <= 0 {
		return Rules{}, errors.New("max depth must be positive")
	}
	return Rules{
		minimumAmounts: append([]uint64(nil), minimumAmounts...),
		fallback:       fallback,
		maxDepth:       maxDepth,
	}, nil
}

// Threshold returns the minimum total amount for the bucket at index.
func (r Rules) Threshold(index int) uint64 {
	if index >= len(r.minimumAmounts) {
		return r.fallback
	}
	return r.minimumAmounts[index]
}

// MaxDepth returns the maximum number of raw levels the aggregated view
// covers.
func (r Rules) MaxDepth() int { return r.maxDepth }
