package book

import (
	"math/rand"
	"testing"
)

type benchUpdate struct {
	price  uint64
	amount uint64
}

func benchUpdates(n int) []benchUpdate {
	rng := rand.New(rand.NewSource(1))
	updates := make([]benchUpdate, n)
	for i := range updates {
		updates[i] = benchUpdate{
			price:  uint64(1 + rng.Intn(400)),
			amount: uint64(rng.Intn(1000)),
		}
	}
	return updates
}

func BenchmarkSetQuoteIncremental(b *testing.B) {
	rules, err := NewRules([]uint64{200, 600, 1500, 800}, 1200, 300)
	if err != nil {
		b.Fatal(err)
	}
	updates := benchUpdates(4096)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		book := New[Ask](rules)
		for _, u := range updates {
			book.SetQuote(u.price, u.amount)
		}
	}
}

func BenchmarkSetQuoteRebuild(b *testing.B) {
	rules, err := NewRules([]uint64{200, 600, 1500, 800}, 1200, 300)
	if err != nil {
		b.Fatal(err)
	}
	updates := benchUpdates(4096)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		book := NewRebuild[Ask](rules)
		for _, u := range updates {
			book.SetQuote(u.price, u.amount)
		}
	}
}
