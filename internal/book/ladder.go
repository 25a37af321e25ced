package book

import "github.com/google/btree"

// ladderDegree controls the B-tree node size; with degree 32 a node holds up
// to 63 quotes (about 1 KiB of uint64 pairs).
const ladderDegree = 32

// Quote is one raw price level: the total resting amount at a price.
type Quote struct {
	Price  uint64
	Amount uint64
}

// ladder is the raw side of the book: a price→amount map kept sorted by the
// side's order, with predecessor/successor lookup in O(log n).
type ladder[S Side] struct {
	tree *btree.BTreeG[Quote]
}

func newLadder[S Side]() *ladder[S] {
	var side S
	return &ladder[S]{
		tree: btree.NewG(ladderDegree, func(a, b Quote) bool {
			return side.Less(a.Price, b.Price)
		}),
	}
}

func (l *ladder[S]) get(price uint64) (uint64, bool) {
	q, ok := l.tree.Get(Quote{Price: price})
	if !ok {
		return 0, false
	}
	return q.Amount, true
}

func (l *ladder[S]) set(price, amount uint64) {
	l.tree.ReplaceOrInsert(Quote{Price: price, Amount: amount})
}

func (l *ladder[S]) delete(price uint64) {
	l.tree.Delete(Quote{Price: price})
}

func (l *ladder[S]) len() int { return l.tree.Len() }

// first returns the best quote on this side.
func (l *ladder[S]) first() (Quote, bool) { return l.tree.Min() }

// last returns the worst quote on this side.
func (l *ladder[S]) last() (Quote, bool) { return l.tree.Max() }

// prev returns the quote immediately better than price in the side's order.
func (l *ladder[S]) prev(price uint64) (Quote, bool) {
	var out Quote
	var found bool
	l.tree.DescendLessOrEqual(Quote{Price: price}, func(q Quote) bool {
		if q.Price == price {
			return true
		}
		out, found = q, true
		return false
	})
	return out, found
}

// next returns the quote immediately worse than price in the side's order.
func (l *ladder[S]) next(price uint64) (Quote, bool) {
	var out Quote
	var found bool
	l.tree.AscendGreaterOrEqual(Quote{Price: price}, func(q Quote) bool {
		if q.Price == price {
			return true
		}
		out, found = q, true
		return false
	})
	return out, found
}

// ascend visits quotes best-to-worst until fn returns false.
func (l *ladder[S]) ascend(fn func(Quote) bool) {
	l.tree.Ascend(fn)
}
