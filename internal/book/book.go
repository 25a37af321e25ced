package book

import "slices"

// Level is one aggregated bucket: a contiguous run of raw levels ending at
// LastPrice, shown as their summed amount.
type Level struct {
	LastPrice   uint64
	TotalAmount uint64
}

// Aggregator is the operation surface shared by the incremental Book and
// the Rebuild reference.
type Aggregator interface {
	SetQuote(price, newAmount uint64)
	Best() (Quote, bool)
	RawLevels() []Quote
	AggregatedLevels() []Level
	MaxDepthPrice() uint64
	AggregatedTuples() [][2]uint64
}

// Book maintains one side of an L2 book together with a depth-limited,
// threshold-aggregated view of it, updated incrementally: each SetQuote
// touches only the buckets the change shifts, not the whole ladder.
//
// Invariants between calls:
//   - bucket tail prices are strictly monotone in the side's order;
//   - every bucket except the last meets its threshold, and only just —
//     dropping the bucket's last raw level would put it under;
//   - the buckets cover exactly the best min(levels, maxDepth) raw prices;
//   - maxDepthPrice is the worst admitted price, or the side's Worst
//     sentinel while the ladder is shallower than maxDepth.
//
// Not safe for concurrent use; the caller owns serialization.
type Book[S Side] struct {
	side          S
	levels        *ladder[S]
	maxDepthPrice uint64
	aggregated    []Level
	rules         Rules
}

// New constructs an empty book for the given subscription.
func New[S Side](rules Rules) *Book[S] {
	var side S
	return &Book[S]{
		side:          side,
		levels:        newLadder[S](),
		maxDepthPrice: side.Worst(),
		rules:         rules,
	}
}

// SetQuote sets the absolute resting amount at price. Zero removes the
// level. Inputs are trusted; internal inconsistencies panic.
func (b *Book[S]) SetQuote(price, newAmount uint64) {
	if current, ok := b.levels.get(price); ok {
		switch {
		case newAmount > current:
			b.addQuote(price, newAmount-current)
		case newAmount < current:
			b.removeQuote(price, current-newAmount)
		}
		return
	}
	if newAmount != 0 {
		b.addQuote(price, newAmount)
	}
}

// Best returns the best raw quote on this side, if any.
func (b *Book[S]) Best() (Quote, bool) { return b.levels.first() }

// RawLevels returns the raw ladder best-to-worst. Levels past the depth
// window are included: they are stored, just not aggregated.
func (b *Book[S]) RawLevels() []Quote {
	out := make([]Quote, 0, b.levels.len())
	b.levels.ascend(func(q Quote) bool {
		out = append(out, q)
		return true
	})
	return out
}

// AggregatedLevels returns the current buckets, best-first.
func (b *Book[S]) AggregatedLevels() []Level {
	return slices.Clone(b.aggregated)
}

// MaxDepthPrice returns the worst admitted price, or the side's Worst
// sentinel when fewer than maxDepth levels exist.
func (b *Book[S]) MaxDepthPrice() uint64 { return b.maxDepthPrice }

// AggregatedTuples projects the buckets to (price, amount) pairs.
func (b *Book[S]) AggregatedTuples() [][2]uint64 {
	out := make([][2]uint64, len(b.aggregated))
	for i, level := range b.aggregated {
		out[i] = [2]uint64{level.LastPrice, level.TotalAmount}
	}
	return out
}

// worseThan reports whether price falls outside the depth window.
func (b *Book[S]) worseThan(price, than uint64) bool {
	return b.side.Less(than, price)
}

// search locates price among the bucket tail prices.
func (b *Book[S]) search(price uint64) (int, bool) {
	return slices.BinarySearchFunc(b.aggregated, price, func(level Level, p uint64) int {
		switch {
		case b.side.Less(level.LastPrice, p):
			return -1
		case level.LastPrice == p:
			return 0
		default:
			return 1
		}
	})
}

func (b *Book[S]) amountAt(price uint64) uint64 {
	amount, ok := b.levels.get(price)
	if !ok {
		panic("book: aggregated bucket references a missing raw level")
	}
	return amount
}

// addQuote raises the amount at price by delta, inserting the level if new,
// then rebalances the buckets rightwards.
func (b *Book[S]) addQuote(price, delta uint64) {
	if b.levels.len() == 0 {
		b.levels.set(price, delta)
		b.aggregated = append(b.aggregated, Level{LastPrice: price, TotalAmount: delta})
		if b.rules.MaxDepth() == 1 {
			b.maxDepthPrice = price
		}
		return
	}

	current, ok := b.levels.get(price)
	isNewPrice := !ok
	b.levels.set(price, current+delta)

	index, found := b.search(price)
	if found {
		// price is already some bucket's tail; its run just grew.
		b.aggregated[index].TotalAmount += delta
		return
	}
	if index == len(b.aggregated) {
		if b.worseThan(price, b.maxDepthPrice) {
			// Outside the depth window. The raw ladder keeps the entry.
			return
		}
		// maxDepthPrice must be the Worst sentinel here; the window may
		// close on this very insert.
		if b.levels.len() == b.rules.MaxDepth() {
			b.maxDepthPrice = price
		}
		index--
		b.aggregated[index].LastPrice = price
		b.aggregated[index].TotalAmount += delta
	} else {
		b.aggregated[index].TotalAmount += delta
		if isNewPrice {
			// A key appeared on the better side of the cutoff: the window
			// slides one slot better and may evict the old worst level.
			b.updateMaxDepthPriceOnInsert()
			b.cutByMaxDepth()
		}
	}
	b.propagateSurplus(index)
}

// updateMaxDepthPriceOnInsert recomputes the cutoff after a key was
// inserted on the better side of it.
func (b *Book[S]) updateMaxDepthPriceOnInsert() {
	if b.maxDepthPrice == b.side.Worst() {
		if b.levels.len() == b.rules.MaxDepth() {
			last, ok := b.levels.last()
			if !ok {
				panic("book: depth reached with an empty ladder")
			}
			b.maxDepthPrice = last.Price
		}
		return
	}
	prev, ok := b.levels.prev(b.maxDepthPrice)
	if !ok {
		panic("book: depth cutoff has no predecessor")
	}
	b.maxDepthPrice = prev.Price
}

// cutByMaxDepth evicts the single raw level the window slide pushed past
// the cutoff, shrinking (or dropping) the last bucket.
func (b *Book[S]) cutByMaxDepth() {
	last := len(b.aggregated) - 1
	lastPrice := b.aggregated[last].LastPrice
	if !b.worseThan(lastPrice, b.maxDepthPrice) {
		return
	}
	amount := b.amountAt(lastPrice)
	if prev, ok := b.levels.prev(lastPrice); ok {
		b.aggregated[last].TotalAmount -= amount
		b.aggregated[last].LastPrice = prev.Price
		if b.aggregated[last].TotalAmount == 0 {
			b.aggregated = b.aggregated[:last]
		}
	} else {
		b.aggregated = b.aggregated[:last]
	}
}

// propagateSurplus sheds raw levels from bucket index into the next bucket
// for as long as the bucket stays at-or-above threshold without them, then
// repeats on the next bucket. Each shed moves exactly one raw level, so the
// walk is linear in levels moved.
func (b *Book[S]) propagateSurplus(index int) {
	for ; index < len(b.aggregated); index++ {
		lastAmount := b.amountAt(b.aggregated[index].LastPrice)
		if b.aggregated[index].TotalAmount-lastAmount < b.rules.Threshold(index) {
			return
		}
		for {
			price, amount := b.aggregated[index].LastPrice, lastAmount
			if !b.worseThan(price, b.maxDepthPrice) {
				if index+1 == len(b.aggregated) {
					b.aggregated = append(b.aggregated, Level{LastPrice: price, TotalAmount: amount})
				} else {
					b.aggregated[index+1].TotalAmount += amount
				}
			}
			b.aggregated[index].TotalAmount -= amount
			prev, ok := b.levels.prev(price)
			if !ok {
				panic("book: bucket emptied below its threshold during surplus shed")
			}
			b.aggregated[index].LastPrice = prev.Price
			lastAmount = prev.Amount
			if b.aggregated[index].TotalAmount-lastAmount < b.rules.Threshold(index) {
				break
			}
		}
	}
}

// removeQuote lowers the amount at price by delta, erasing the level when
// it reaches zero, then rebalances the buckets leftwards. The zeroed key
// stays in the ladder until the end so cursor lookups stay anchored on it.
func (b *Book[S]) removeQuote(price, delta uint64) {
	current := b.amountAt(price)
	if current < delta {
		panic("book: removing more than the resting amount")
	}
	current -= delta
	b.levels.set(price, current)
	erased := current == 0

	if erased && !b.worseThan(price, b.maxDepthPrice) {
		b.updateMaxDepthPriceOnRemove()
	}

	index, found := b.search(price)
	switch {
	case found:
		b.aggregated[index].TotalAmount -= delta
		b.propagateShortage(index)
		switch {
		case !erased:
			b.dropTrailingEmpty()
		case b.aggregated[index].LastPrice != price:
			// Shortage pulls already replaced the tail with a worse price.
			b.dropTrailingEmpty()
		case b.aggregated[index].TotalAmount == 0:
			// Nothing left to pull; must be the tail bucket.
			b.aggregated = b.aggregated[:len(b.aggregated)-1]
		default:
			if prev, ok := b.levels.prev(price); ok {
				b.aggregated[index].LastPrice = prev.Price
			} else {
				b.aggregated = b.aggregated[:len(b.aggregated)-1]
			}
		}
	case index == len(b.aggregated):
		// Beyond every bucket; only the raw ladder changes.
	default:
		b.aggregated[index].TotalAmount -= delta
		b.propagateShortage(index)
		b.dropTrailingEmpty()
	}

	if erased {
		b.levels.delete(price)
	}
}

// updateMaxDepthPriceOnRemove slides the window one slot worse after a key
// inside it was erased, admitting the first level past the old cutoff.
func (b *Book[S]) updateMaxDepthPriceOnRemove() {
	if b.maxDepthPrice == b.side.Worst() {
		return
	}
	next, ok := b.levels.next(b.maxDepthPrice)
	if !ok {
		b.maxDepthPrice = b.side.Worst()
		return
	}
	b.maxDepthPrice = next.Price
	index := len(b.aggregated) - 1
	if b.aggregated[index].TotalAmount < b.rules.Threshold(index) {
		b.aggregated[index].LastPrice = next.Price
		b.aggregated[index].TotalAmount += next.Amount
	} else {
		b.aggregated = append(b.aggregated, Level{LastPrice: next.Price, TotalAmount: next.Amount})
	}
}

// propagateShortage pulls raw levels from deeper buckets into bucket index
// until it meets its threshold again, then advances to the next deficient
// bucket. Buckets drained on the way hold zero transiently; removeQuote
// clears the trailing ones afterwards.
func (b *Book[S]) propagateShortage(index int) {
restart:
	for {
		if b.aggregated[index].TotalAmount >= b.rules.Threshold(index) {
			return
		}
		cursor := b.aggregated[index].LastPrice
		steal := index + 1
		for {
			next, ok := b.levels.next(cursor)
			if !ok {
				return
			}
			if b.worseThan(next.Price, b.maxDepthPrice) {
				return
			}
			b.aggregated[index].LastPrice = next.Price
			b.aggregated[index].TotalAmount += next.Amount
			if steal < len(b.aggregated) {
				b.aggregated[steal].TotalAmount -= next.Amount
				if b.aggregated[steal].TotalAmount == 0 {
					steal++
				}
			}
			cursor = next.Price
			if b.aggregated[index].TotalAmount < b.rules.Threshold(index) {
				continue
			}
			if index+1 >= len(b.aggregated) {
				return
			}
			if b.aggregated[index+1].TotalAmount != 0 {
				index++
				continue restart
			}
			// The next bucket was drained into this one; skip it and keep
			// pulling for the one after with the same cursor.
			index++
		}
	}
}

func (b *Book[S]) dropTrailingEmpty() {
	for len(b.aggregated) > 0 && b.aggregated[len(b.aggregated)-1].TotalAmount == 0 {
		b.aggregated = b.aggregated[:len(b.aggregated)-1]
	}
}
