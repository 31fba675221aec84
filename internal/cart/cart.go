package cart

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/seatwise/ticketing/internal/model"
	"github.com/seatwise/ticketing/internal/repository"
	"github.com/seatwise/ticketing/internal/seatmap"
)

// AddToCartInput describes a request to put tickets into a user's cart.
// The ticket type is assumed to be validated against the event upstream.
// SectorID is optional: when set, a seat in that sector is claimed for
// every ticket; when nil the tickets stay seatless until reassigned or
// auto-assigned.
type AddToCartInput struct {
	EventID      uint64
	TicketTypeID uint64
	UserID       uint64
	SectorID     *uint64
	Quantity     int
}

// AddedTicket pairs a created cart ticket with its seat assignment, nil
// when the ticket is seatless.
type AddedTicket struct {
	Ticket model.Ticket          `json:"ticket"`
	Seat   *model.SeatAssignment `json:"seat,omitempty"`
}

// AddToCart creates Quantity cart tickets for the user in a single
// transaction.  The event's ticket ceiling is checked inside the same
// transaction as the inserts; when the remaining capacity cannot absorb
// the whole quantity, ErrCapacityExceeded is returned and nothing is
// created.  Holder fields start empty (placeholders to be filled before
// checkout) and every ticket gets a fresh QR token.
func (s *Service) AddToCart(ctx context.Context, in AddToCartInput) ([]AddedTicket, error) {
	if in.Quantity <= 0 {
		in.Quantity = 1
	}
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

	ceiling, err := s.sectors.TicketCeilingTx(ctx, tx, in.EventID)
	if err != nil {
		return nil, err
	}
	sold, err := s.tickets.SoldCountTx(ctx, tx, in.EventID, true)
	if err != nil {
		return nil, err
	}
	if !seatmap.Compute(ceiling, sold).CanReserve(in.Quantity) {
		return nil, repository.ErrCapacityExceeded
	}

	var sector *model.Sector
	if in.SectorID != nil {
		sector, err = s.sectors.GetLinkedTx(ctx, tx, in.EventID, *in.SectorID)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	added := make([]AddedTicket, 0, in.Quantity)
	for i := 0; i < in.Quantity; i++ {
		userID := in.UserID
		cartedAt := now
		ticket := model.Ticket{
			EventID:      in.EventID,
			TicketTypeID: in.TicketTypeID,
			Status:       model.TicketStatusCart,
			UserID:       &userID,
			CartedAt:     &cartedAt,
			QRToken:      uuid.NewString(),
		}
		if err := s.tickets.CreateTx(ctx, tx, &ticket); err != nil {
			return nil, err
		}
		at := AddedTicket{Ticket: ticket}
		if sector != nil {
			assignment, err := s.claimSeatTx(ctx, tx, ticket.ID, in.EventID, sector)
			if err != nil {
				// Sector full mid-batch: roll the whole add back so the
				// user is not left with a partially seated batch.
				return nil, err
			}
			at.Seat = assignment
		}
		added = append(added, at)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return added, nil
}

// UpdateCartInput carries the mutable fields of a cart ticket.  Nil
// pointers leave the field unchanged.
type UpdateCartInput struct {
	HolderName    *string
	HolderSurname *string
	HolderGender  *string
	TicketTypeID  *uint64
}

// UpdateCartItem mutates holder fields and/or ticket type of one of the
// user's cart tickets.  Purchased tickets are immutable; targeting one
// (or someone else's ticket) yields ErrNotFound.  Changing the ticket
// type never touches the seat assignment — moving sectors is
// ReassignSector's job.
func (s *Service) UpdateCartItem(ctx context.Context, userID, ticketID uint64, in UpdateCartInput) error {
	return s.tickets.UpdateCartTicket(ctx, ticketID, userID,
		in.HolderName, in.HolderSurname, in.HolderGender, in.TicketTypeID)
}

// RemoveFromCart deletes one of the user's cart tickets, cascading its
// seat assignment away.  It is idempotent: a ticket that is missing,
// already purchased or owned by someone else reports false without
// error.
func (s *Service) RemoveFromCart(ctx context.Context, userID, ticketID uint64) (bool, error) {
	return s.tickets.DeleteCartTicket(ctx, ticketID, userID)
}

// GetCart returns the user's cart tickets, oldest first, with final
// prices computed as (base + type modifier) × sector multiplier.
func (s *Service) GetCart(ctx context.Context, userID uint64) ([]repository.CartItem, error) {
	items, err := s.tickets.ListCartByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].FinalPriceCents = FinalPriceCents(
			items[i].BasePriceCents, items[i].PriceModifierCents, items[i].PriceMultiplier)
	}
	return items, nil
}
