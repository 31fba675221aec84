// Package seatmap synthesizes the seat grid of a sector and performs the
// availability arithmetic of the allocation core.  Seats are not stored
// as rows in the database: a sector's capacity is partitioned into rows
// of RowSize seats, enumerated in row-major order, and only claimed seats
// ever materialize as seat_assignments records.
package seatmap

import "strings"

// RowSize is the number of seats per synthesized row.
const RowSize = 10

// Seat identifies one position within a sector: a row label and a 1-based
// seat number within that row.
type Seat struct {
	Row    string
	Number uint32
}

// RowLabel converts a zero-based row index into a bijective base-26 label:
// 0 -> A, 25 -> Z, 26 -> AA, 27 -> AB and so on.  Sectors larger than 260
// seats therefore keep well-defined row labels.  Negative indices yield
// an empty string.
func RowLabel(i int) string {
	if i < 0 {
		return ""
	}
	var b []byte
	for {
		b = append(b, byte('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(b)-1; j < k; j, k = j+1, k-1 {
		b[j], b[k] = b[k], b[j]
	}
	return string(b)
}

// RowIndex converts a row label back into its zero-based index.  It
// accepts lower- and upper-case ASCII letters and reports false for any
// other input.
func RowIndex(label string) (int, bool) {
	s := strings.ToUpper(strings.TrimSpace(label))
	if s == "" {
		return -1, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch < 'A' || ch > 'Z' {
			return -1, false
		}
		n = n*26 + int(ch-'A'+1)
	}
	return n - 1, true
}

// SeatAt returns the seat at the given zero-based index in row-major
// enumeration order.  Index 0 is A1, index RowSize is B1, and the last
// row is cut short when capacity is not a multiple of RowSize.
func SeatAt(index int) Seat {
	return Seat{
		Row:    RowLabel(index / RowSize),
		Number: uint32(index%RowSize) + 1,
	}
}

// FirstFree walks the grid of a sector with the given capacity in
// row-major, ascending-number order and returns the first seat absent
// from occupied.  The second return value is false when every seat is
// taken (or capacity is zero).
func FirstFree(capacity uint32, occupied map[Seat]struct{}) (Seat, bool) {
	for i := 0; i < int(capacity); i++ {
		s := SeatAt(i)
		if _, taken := occupied[s]; !taken {
			return s, true
		}
	}
	return Seat{}, false
}

// Valid reports whether the seat exists within a sector of the given
// capacity.
func (s Seat) Valid(capacity uint32) bool {
	idx, ok := RowIndex(s.Row)
	if !ok || s.Number < 1 || s.Number > RowSize {
		return false
	}
	pos := idx*RowSize + int(s.Number) - 1
	return pos < int(capacity)
}

// Availability is the capacity picture of one event.  A ceiling of zero
// means no sectors are linked and sales are not gated by capacity at all;
// that state is surfaced through Unlimited instead of a magic zero so
// callers cannot mistake it for "sold out".
type Availability struct {
	Ceiling   int  `json:"ceiling"`
	Sold      int  `json:"sold"`
	Remaining int  `json:"remaining"`
	Unlimited bool `json:"unlimited"`
}

// Compute derives the availability of an event from its ticket ceiling
// and the number of tickets counted against it.  Remaining is floored at
// zero: overshoot can happen when a sector is shrunk after tickets were
// sold, and must not surface as a negative count.
func Compute(ceiling, sold int) Availability {
	a := Availability{Ceiling: ceiling, Sold: sold}
	if ceiling == 0 {
		a.Unlimited = true
		return a
	}
	if r := ceiling - sold; r > 0 {
		a.Remaining = r
	}
	return a
}

// CanReserve reports whether quantity more tickets fit under the
// availability's ceiling.
func (a Availability) CanReserve(quantity int) bool {
	return a.Unlimited || a.Sold+quantity <= a.Ceiling
}
