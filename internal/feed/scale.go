package feed

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scaler converts the feed's fractional prices and amounts into the integer
// ticks the books operate on, by multiplying with a fixed power of ten.
// Values that do not land exactly on a tick are rejected rather than
// rounded: a feed whose precision exceeds the configured exponent is a
// configuration error, not noise.
type Scaler struct {
	ratio decimal.Decimal
}

// NewScaler builds a scaler multiplying by 10^exponent.
func NewScaler(exponent int32) Scaler {
	return Scaler{ratio: decimal.New(1, exponent)}
}

// ToTicks converts a fractional value to integer ticks.
func (s Scaler) ToTicks(value float64) (uint64, error) {
	scaled := decimal.NewFromFloat(value).Mul(s.ratio)
	if scaled.IsNegative() {
		return 0, fmt.Errorf("negative value %v", value)
	}
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("value %v does not scale to whole ticks", value)
	}
	return scaled.BigInt().Uint64(), nil
}

// ScaleUpdate converts an update's price and amount to ticks.
func (s Scaler) ScaleUpdate(u Update) (price, amount uint64, err error) {
	if price, err = s.ToTicks(u.Price); err != nil {
		return 0, 0, fmt.Errorf("price: %w", err)
	}
	if amount, err = s.ToTicks(u.Amount); err != nil {
		return 0, 0, fmt.Errorf("amount: %w", err)
	}
	return price, amount, nil
}
