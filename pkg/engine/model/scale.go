package model

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrOffTick         = errors.New("price not on tick grid")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
)

// PriceScale is the number of decimal places an instrument quotes in.
// The book works in integer ticks: tick = price * 10^scale. Keeping
// floats out of the price keys is what makes level equality exact.
type PriceScale int32

// ToTicks converts a decimal price to ticks, rejecting prices off the
// tick grid.
func (s PriceScale) ToTicks(price decimal.Decimal) (int64, error) {
	shifted := price.Shift(int32(s))
	if !shifted.IsInteger() {
		return 0, ErrOffTick
	}
	return shifted.IntPart(), nil
}

// FromTicks converts ticks back to a decimal price.
func (s PriceScale) FromTicks(ticks int64) decimal.Decimal {
	return decimal.New(ticks, -int32(s))
}
