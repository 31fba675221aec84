package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/seatwise/ticketing/internal/model"
	"github.com/seatwise/ticketing/internal/repository"
	"github.com/seatwise/ticketing/internal/seatmap"
)

// claimSeatTx finds and claims the lowest free seat of a sector for the
// ticket, inside the caller's transaction.  The find-then-insert
// sequence is a check-then-act race by construction; the unique key on
// seat_assignments arbitrates it.  On a duplicate-key rejection the
// occupancy is re-read (the transaction runs read committed, so the
// winner's row is visible) and the next candidate is tried, up to
// claimAttempts times.  A sector with no free seat left, or a claim that
// keeps losing races, yields ErrNoSeatsAvailable.
func (s *Service) claimSeatTx(ctx context.Context, tx *sql.Tx, ticketID uint64, eventID uint64, sector *model.Sector) (*model.SeatAssignment, error) {
	for attempt := 0; attempt < claimAttempts; attempt++ {
		occupied, err := s.seats.OccupiedTx(ctx, tx, eventID, sector.ID)
		if err != nil {
			return nil, err
		}
		seat, ok := seatmap.FirstFree(sector.Capacity, occupied)
		if !ok {
			return nil, repository.ErrNoSeatsAvailable
		}
		assignment := &model.SeatAssignment{
			TicketID:   ticketID,
			EventID:    eventID,
			SectorID:   sector.ID,
			RowLabel:   seat.Row,
			SeatNumber: seat.Number,
		}
		err = s.seats.ClaimTx(ctx, tx, assignment)
		if err == nil {
			return assignment, nil
		}
		if !errors.Is(err, repository.ErrSeatConflict) {
			return nil, fmt.Errorf("claim seat %s%d: %w", seat.Row, seat.Number, err)
		}
	}
	return nil, repository.ErrNoSeatsAvailable
}

// autoAssignSeatTx claims a seat for a ticket that has none, walking the
// event's sectors best first (highest price multiplier) until a claim
// succeeds.  A ticket that already holds a seat is returned as-is.  When
// every sector is exhausted it returns ErrNoSeatsAvailable; with no
// sectors linked at all the ticket simply stays seatless and nil is
// returned.
func (s *Service) autoAssignSeatTx(ctx context.Context, tx *sql.Tx, ticket *model.Ticket) (*model.SeatAssignment, error) {
	existing, err := s.seats.GetByTicketTx(ctx, tx, ticket.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	sectors, err := s.sectors.ListByEvent(ctx, ticket.EventID)
	if err != nil {
		return nil, err
	}
	if len(sectors) == 0 {
		return nil, nil
	}
	for i := range sectors {
		assignment, err := s.claimSeatTx(ctx, tx, ticket.ID, ticket.EventID, &sectors[i])
		if errors.Is(err, repository.ErrNoSeatsAvailable) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return assignment, nil
	}
	return nil, repository.ErrNoSeatsAvailable
}

// AutoAssignSeat claims the best available seat for an unassigned cart
// ticket owned by the user.  It is a no-op success when the ticket
// already holds a seat.
func (s *Service) AutoAssignSeat(ctx context.Context, userID, ticketID uint64) (*model.SeatAssignment, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	ticket, err := s.ownedCartTicketTx(ctx, tx, ticketID, userID)
	if err != nil {
		return nil, err
	}
	assignment, err := s.autoAssignSeatTx(ctx, tx, ticket)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return assignment, nil
}

// ReassignSector moves a cart ticket to a different sector: the existing
// assignment is deleted, then a seat in the new sector is claimed.  When
// the new sector is full the deletion still stands — the ticket ends up
// seatless and the caller gets ErrNoSeatsAvailable, which the UI uses to
// prompt for another sector.  This ordering is deliberate and mirrors
// how the sale flow has always behaved; do not "fix" it by restoring the
// old seat.
func (s *Service) ReassignSector(ctx context.Context, userID, ticketID, sectorID uint64) (*model.SeatAssignment, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	ticket, err := s.ownedCartTicketTx(ctx, tx, ticketID, userID)
	if err != nil {
		return nil, err
	}
	sector, err := s.sectors.GetLinkedTx(ctx, tx, ticket.EventID, sectorID)
	if err != nil {
		return nil, err
	}
	if err := s.seats.DeleteByTicketTx(ctx, tx, ticket.ID); err != nil {
		return nil, err
	}
	assignment, err := s.claimSeatTx(ctx, tx, ticket.ID, ticket.EventID, sector)
	if errors.Is(err, repository.ErrNoSeatsAvailable) {
		// Commit anyway: the old seat is released even though no new
		// one was claimed.
		if cerr := tx.Commit(); cerr != nil {
			return nil, cerr
		}
		committed = true
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return assignment, nil
}

// ownedCartTicketTx loads a ticket and verifies it is a CART ticket
// owned by the user.  Foreign and purchased tickets surface as
// ErrNotFound so callers cannot probe other users' tickets.
func (s *Service) ownedCartTicketTx(ctx context.Context, tx *sql.Tx, ticketID, userID uint64) (*model.Ticket, error) {
	ticket, err := s.tickets.GetTx(ctx, tx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != model.TicketStatusCart || ticket.UserID == nil || *ticket.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return ticket, nil
}
