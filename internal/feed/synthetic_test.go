package feed

import "testing"

func TestSyntheticDeterministic(t *testing.T) {
	a := NewSynthetic(7, 42, 17)
	b := NewSynthetic(7, 42, 17)
	for i := 0; i < 1000; i++ {
		sideA, priceA, amountA := a.Next()
		sideB, priceB, amountB := b.Next()
		if sideA != sideB || priceA != priceB || amountA != amountB {
			t.Fatalf("step %d: generators with the same seed diverged", i)
		}
	}
}

func TestSyntheticRanges(t *testing.T) {
	gen := NewSynthetic(0, 42, 17)
	zeros := 0
	for i := 0; i < 10000; i++ {
		side, price, amount := gen.Next()
		if side != SideBid && side != SideAsk {
			t.Fatalf("bad side %q", side)
		}
		if price < 1 || price > 42 {
			t.Fatalf("price %d out of range", price)
		}
		if amount > 17 {
			t.Fatalf("amount %d out of range", amount)
		}
		if amount == 0 {
			zeros++
		}
	}
	// Zero amounts come from the [0,17] draw plus the forced share; with
	// 10k samples both are always represented.
	if zeros == 0 {
		t.Fatal("no removal updates generated")
	}
}
