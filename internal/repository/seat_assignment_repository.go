package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/seatwise/ticketing/internal/model"
	"github.com/seatwise/ticketing/internal/seatmap"
)

// SeatAssignmentRepo provides data access to seat_assignments, the table
// binding tickets to concrete seats.  The table carries a unique key over
// (event_id, sector_id, row_label, seat_number); that constraint, not
// application code, is what ultimately guarantees seat exclusivity under
// concurrent claims.
type SeatAssignmentRepo struct {
	db *sql.DB
}

// NewSeatAssignmentRepo returns a new SeatAssignmentRepo bound to the
// given database.
func NewSeatAssignmentRepo(db *sql.DB) *SeatAssignmentRepo {
	return &SeatAssignmentRepo{db: db}
}

// OccupiedTx returns the set of seats already claimed in a sector for an
// event, cart and purchased tickets alike.  It is issued inside the
// claiming transaction so the subsequent insert works against the same
// snapshot it validated.
func (r *SeatAssignmentRepo) OccupiedTx(ctx context.Context, tx *sql.Tx, eventID, sectorID uint64) (map[seatmap.Seat]struct{}, error) {
	const q = `SELECT row_label, seat_number FROM seat_assignments
	           WHERE event_id = ? AND sector_id = ?`
	rows, err := tx.QueryContext(ctx, q, eventID, sectorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	occupied := make(map[seatmap.Seat]struct{})
	for rows.Next() {
		var s seatmap.Seat
		if err := rows.Scan(&s.Row, &s.Number); err != nil {
			return nil, err
		}
		occupied[s] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return occupied, nil
}

// CountBySector counts claimed seats per sector for an event in one
// query.  Sectors without any claims are absent from the map.  Used by
// the availability endpoint to derive free counts without walking grids.
func (r *SeatAssignmentRepo) CountBySector(ctx context.Context, eventID uint64) (map[uint64]int, error) {
	const q = `SELECT sector_id, COUNT(*) FROM seat_assignments
	           WHERE event_id = ? GROUP BY sector_id`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[uint64]int)
	for rows.Next() {
		var sectorID uint64
		var n int
		if err := rows.Scan(&sectorID, &n); err != nil {
			return nil, err
		}
		counts[sectorID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// ClaimTx inserts a seat assignment within the claiming transaction.  A
// duplicate-key rejection means a concurrent transaction claimed the
// same seat between our occupancy read and this insert; that case is
// surfaced as ErrSeatConflict so the caller can re-read and retry.  On
// success the generated ID is populated on the record.
func (r *SeatAssignmentRepo) ClaimTx(ctx context.Context, tx *sql.Tx, a *model.SeatAssignment) error {
	const q = `INSERT INTO seat_assignments (ticket_id, event_id, sector_id, row_label, seat_number)
	           VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, a.TicketID, a.EventID, a.SectorID, a.RowLabel, a.SeatNumber)
	if err != nil {
		if IsDuplicateKey(err) {
			return ErrSeatConflict
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByTicketTx returns the seat assignment of a ticket, or nil when the
// ticket is seatless.  A ticket holds at most one assignment.
func (r *SeatAssignmentRepo) GetByTicketTx(ctx context.Context, tx *sql.Tx, ticketID uint64) (*model.SeatAssignment, error) {
	const q = `SELECT id, ticket_id, event_id, sector_id, row_label, seat_number, created_at
	           FROM seat_assignments WHERE ticket_id = ?`
	var a model.SeatAssignment
	err := tx.QueryRowContext(ctx, q, ticketID).Scan(
		&a.ID, &a.TicketID, &a.EventID, &a.SectorID, &a.RowLabel, &a.SeatNumber, &a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteByTicketTx removes the seat assignment of a ticket, freeing the
// seat for other buyers.  Deleting a seatless ticket's assignment is a
// no-op.
func (r *SeatAssignmentRepo) DeleteByTicketTx(ctx context.Context, tx *sql.Tx, ticketID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM seat_assignments WHERE ticket_id = ?`, ticketID)
	return err
}
