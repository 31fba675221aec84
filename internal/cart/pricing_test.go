package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinalPriceCents(t *testing.T) {
	mult := func(f float64) *float64 { return &f }

	// No sector assigned: multiplier defaults to 1.
	assert.Equal(t, uint32(2500), FinalPriceCents(2000, 500, nil))

	assert.Equal(t, uint32(3750), FinalPriceCents(2000, 500, mult(1.5)))
	assert.Equal(t, uint32(1250), FinalPriceCents(2000, 500, mult(0.5)))

	// Reduced ticket types can undercut the base price.
	assert.Equal(t, uint32(1500), FinalPriceCents(2000, -500, nil))

	// Subtotal floors at zero even with an oversized discount.
	assert.Equal(t, uint32(0), FinalPriceCents(1000, -2000, mult(2)))

	// Free sectors are allowed (multiplier 0).
	assert.Equal(t, uint32(0), FinalPriceCents(2000, 500, mult(0)))

	// Rounds to the nearest cent: 1999 * 1.1 = 2198.9.
	assert.Equal(t, uint32(2199), FinalPriceCents(1999, 0, mult(1.1)))
}
