package book

import "slices"

// Rebuild is the obvious aggregator: it recomputes the whole bucket ladder
// from the raw levels on every update. O(n) per call, but trivially correct.
// It backs the stress tests and gives the replay benchmark its baseline.
type Rebuild[S Side] struct {
	side          S
	levels        *ladder[S]
	maxDepthPrice uint64
	aggregated    []Level
	rules         Rules
}

// NewRebuild constructs an empty rebuild-from-scratch book.
func NewRebuild[S Side](rules Rules) *Rebuild[S] {
	var side S
	return &Rebuild[S]{
		side:          side,
		levels:        newLadder[S](),
		maxDepthPrice: side.Worst(),
		rules:         rules,
	}
}

// SetQuote sets the absolute resting amount at price and rebuilds the
// aggregated ladder with one ordered pass.
func (b *Rebuild[S]) SetQuote(price, newAmount uint64) {
	if newAmount == 0 {
		b.levels.delete(price)
	} else {
		b.levels.set(price, newAmount)
	}

	b.aggregated = b.aggregated[:0]
	admitted := 0
	b.levels.ascend(func(q Quote) bool {
		if admitted == b.rules.MaxDepth() {
			return false
		}
		admitted++
		b.maxDepthPrice = q.Price
		if len(b.aggregated) == 0 {
			b.aggregated = append(b.aggregated, Level{LastPrice: q.Price, TotalAmount: q.Amount})
			return true
		}
		index := len(b.aggregated) - 1
		if b.aggregated[index].TotalAmount >= b.rules.Threshold(index) {
			b.aggregated = append(b.aggregated, Level{LastPrice: q.Price, TotalAmount: q.Amount})
		} else {
			b.aggregated[index].LastPrice = q.Price
			b.aggregated[index].TotalAmount += q.Amount
		}
		return true
	})
	if b.levels.len() < b.rules.MaxDepth() {
		b.maxDepthPrice = b.side.Worst()
	}
}

// Best returns the best raw quote on this side, if any.
func (b *Rebuild[S]) Best() (Quote, bool) { return b.levels.first() }

// RawLevels returns the raw ladder best-to-worst.
func (b *Rebuild[S]) RawLevels() []Quote {
	out := make([]Quote, 0, b.levels.len())
	b.levels.ascend(func(q Quote) bool {
		out = append(out, q)
		return true
	})
	return out
}

// AggregatedLevels returns the current buckets, best-first.
func (b *Rebuild[S]) AggregatedLevels() []Level {
	return slices.Clone(b.aggregated)
}

// MaxDepthPrice returns the worst admitted price, or the side's Worst
// sentinel when fewer than maxDepth levels exist.
func (b *Rebuild[S]) MaxDepthPrice() uint64 { return b.maxDepthPrice }

// AggregatedTuples projects the buckets to (price, amount) pairs.
func (b *Rebuild[S]) AggregatedTuples() [][2]uint64 {
	out := make([][2]uint64, len(b.aggregated))
	for i, level := range b.aggregated {
		out[i] = [2]uint64{level.LastPrice, level.TotalAmount}
	}
	return out
}
