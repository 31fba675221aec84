package seatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowLabel(t *testing.T) {
	cases := map[int]string{
		0:  "A",
		1:  "B",
		25: "Z",
		26: "AA",
		27: "AB",
		51: "AZ",
		52: "BA",
	}
	for idx, want := range cases {
		assert.Equal(t, want, RowLabel(idx))
	}
	assert.Equal(t, "", RowLabel(-1))
}

func TestRowIndexRoundTrip(t *testing.T) {
	for i := 0; i < 100; i++ {
		idx, ok := RowIndex(RowLabel(i))
		assert.True(t, ok)
		assert.Equal(t, i, idx)
	}
	_, ok := RowIndex("")
	assert.False(t, ok)
	_, ok = RowIndex("A1")
	assert.False(t, ok)
	idx, ok := RowIndex(" aa ")
	assert.True(t, ok)
	assert.Equal(t, 26, idx)
}

func TestSeatAt(t *testing.T) {
	assert.Equal(t, Seat{Row: "A", Number: 1}, SeatAt(0))
	assert.Equal(t, Seat{Row: "A", Number: 10}, SeatAt(9))
	assert.Equal(t, Seat{Row: "B", Number: 1}, SeatAt(10))
	assert.Equal(t, Seat{Row: "B", Number: 2}, SeatAt(11))
}

// Capacity 12 gives rows A1-A10 and B1-B2.  With eleven seats claimed the
// twelfth claim lands on B2 and a thirteenth finds nothing.
func TestFirstFreeFillsSector(t *testing.T) {
	occupied := map[Seat]struct{}{}
	for i := 0; i < 11; i++ {
		s, ok := FirstFree(12, occupied)
		assert.True(t, ok)
		occupied[s] = struct{}{}
	}
	last, ok := FirstFree(12, occupied)
	assert.True(t, ok)
	assert.Equal(t, Seat{Row: "B", Number: 2}, last)
	occupied[last] = struct{}{}

	_, ok = FirstFree(12, occupied)
	assert.False(t, ok)
}

func TestFirstFreeSkipsHoles(t *testing.T) {
	occupied := map[Seat]struct{}{
		{Row: "A", Number: 1}: {},
		{Row: "A", Number: 3}: {},
	}
	s, ok := FirstFree(20, occupied)
	assert.True(t, ok)
	assert.Equal(t, Seat{Row: "A", Number: 2}, s)
}

func TestFirstFreeZeroCapacity(t *testing.T) {
	_, ok := FirstFree(0, nil)
	assert.False(t, ok)
}

func TestSeatValid(t *testing.T) {
	assert.True(t, Seat{Row: "A", Number: 1}.Valid(1))
	assert.False(t, Seat{Row: "A", Number: 2}.Valid(1))
	assert.True(t, Seat{Row: "B", Number: 2}.Valid(12))
	assert.False(t, Seat{Row: "B", Number: 3}.Valid(12))
	assert.False(t, Seat{Row: "A", Number: 0}.Valid(12))
	assert.False(t, Seat{Row: "A", Number: 11}.Valid(120))
	assert.False(t, Seat{Row: "1", Number: 1}.Valid(12))
}

func TestComputeAvailability(t *testing.T) {
	a := Compute(8, 6)
	assert.Equal(t, 2, a.Remaining)
	assert.False(t, a.Unlimited)
	assert.True(t, a.CanReserve(2))
	assert.False(t, a.CanReserve(3))

	full := Compute(8, 8)
	assert.Equal(t, 0, full.Remaining)
	assert.False(t, full.CanReserve(1))

	// Oversold (sector shrunk after sale) floors at zero.
	over := Compute(8, 9)
	assert.Equal(t, 0, over.Remaining)

	unlimited := Compute(0, 500)
	assert.True(t, unlimited.Unlimited)
	assert.Equal(t, 0, unlimited.Remaining)
	assert.True(t, unlimited.CanReserve(1000))
}
