package feed

import "math/rand"

// Synthetic produces a reproducible stream of already-scaled updates:
// mostly resizes over a narrow price band, with a small share of outright
// removals. It stands in for a real feed in demo runs and drives the replay
// benchmark when no capture file is at hand.
type Synthetic struct {
	rng        *rand.Rand
	priceSpan  uint64
	amountSpan uint64
}

// NewSynthetic seeds a generator. Prices fall in [1, priceSpan], amounts in
// [0, amountSpan].
func NewSynthetic(seed int64, priceSpan, amountSpan uint64) *Synthetic {
	if priceSpan == 0 {
		priceSpan = 42
	}
	if amountSpan == 0 {
		amountSpan = 17
	}
	return &Synthetic{
		rng:        rand.New(rand.NewSource(seed)),
		priceSpan:  priceSpan,
		amountSpan: amountSpan,
	}
}

// Next returns the next update as (side, price ticks, amount ticks). Around
// one update in a hundred is forced to a removal.
func (s *Synthetic) Next() (BookSide, uint64, uint64) {
	side := SideAsk
	if s.rng.Intn(2) == 0 {
		side = SideBid
	}
	price := 1 + uint64(s.rng.Int63n(int64(s.priceSpan)))
	amount := uint64(s.rng.Int63n(int64(s.amountSpan) + 1))
	if s.rng.Intn(101) == 0 {
		amount = 0
	}
	return side, price, amount
}
