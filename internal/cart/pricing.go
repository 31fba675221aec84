package cart

import "math"

// FinalPriceCents computes the price of one ticket:
// (event base price + ticket type modifier) × sector multiplier, rounded
// to the nearest cent.  The modifier may be negative (reduced tickets)
// but the subtotal never drops below zero, and a seatless ticket uses a
// multiplier of 1.
func FinalPriceCents(baseCents uint32, modifierCents int32, multiplier *float64) uint32 {
	subtotal := int64(baseCents) + int64(modifierCents)
	if subtotal < 0 {
		subtotal = 0
	}
	m := 1.0
	if multiplier != nil {
		m = *multiplier
	}
	total := math.Round(float64(subtotal) * m)
	if total < 0 {
		return 0
	}
	return uint32(total)
}
