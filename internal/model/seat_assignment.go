package model

import "time"

// SeatAssignment binds one ticket to one specific (row, seat number)
// within a sector for one event.  The storage layer carries a unique key
// over (event_id, sector_id, row_label, seat_number) so that at most one
// active ticket can ever hold a given seat; concurrent claims of the same
// seat are resolved by the database, not by application locks.
//
// Fields:
//  ID         – primary key identifier.
//  TicketID   – ticket holding the seat; the row cascades away when the
//               ticket is deleted.
//  EventID    – event the seat is claimed for.
//  SectorID   – sector containing the seat.
//  RowLabel   – bijective base-26 row label (A..Z, AA, AB, ...).
//  SeatNumber – 1-based seat number within the row.
//  CreatedAt  – creation timestamp.
type SeatAssignment struct {
	ID         uint64    // seat_assignments.id
	TicketID   uint64    // seat_assignments.ticket_id
	EventID    uint64    // seat_assignments.event_id
	SectorID   uint64    // seat_assignments.sector_id
	RowLabel   string    // seat_assignments.row_label
	SeatNumber uint32    // seat_assignments.seat_number
	CreatedAt  time.Time // seat_assignments.created_at
}
