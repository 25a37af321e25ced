package book

import "math"

// Side fixes the price ordering for one half of the book. Asks sort
// ascending (best ask = lowest price), bids descending (best bid = highest
// price). The engine is written once against this interface; instantiating
// Book[Ask] or Book[Bid] selects the half.
type Side interface {
	// Less reports whether price a is better-or-earlier than b in this
	// side's order.
	Less(a, b uint64) bool
	// Worst is the sentinel ordered after every real price on this side.
	// It is never a valid quote price.
	Worst() uint64
}

// Ask orders prices ascending.
type Ask struct{}

func (Ask) Less(a, b uint64) bool { return a < b }
func (Ask) Worst() uint64         { return math.MaxUint64 }

// Bid orders prices descending. Zero is the worst sentinel, so a bid at
// price zero is not representable.
type Bid struct{}

func (Bid) Less(a, b uint64) bool { return a > b }
func (Bid) Worst() uint64         { return 0 }
