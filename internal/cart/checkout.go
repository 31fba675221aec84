package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/seatwise/ticketing/internal/model"
	"github.com/seatwise/ticketing/internal/repository"
)

// IncompleteTicketError reports which tickets in a checkout batch are
// missing holder data.  The caller surfaces the IDs so the user can fill
// in the offending entries.
type IncompleteTicketError struct {
	TicketIDs []uint64
}

func (e *IncompleteTicketError) Error() string {
	return fmt.Sprintf("tickets missing holder data: %v", e.TicketIDs)
}

// Checkout finalizes a batch of the user's cart tickets in one
// transaction: every ticket must exist, belong to the user, be status
// CART and carry a non-empty holder name and surname.  All tickets
// transition to PURCHASED together with the order creation, or none do.
// The rows are locked for the duration so a concurrent sweep or second
// checkout cannot race the transition.
//
// Failure modes: ErrNotFound (missing or non-cart ticket),
// ErrNotOwner (foreign ticket — a hard error here, unlike removal),
// *IncompleteTicketError (holder data missing, all offenders listed),
// ErrCapacityExceeded (safety net for sectors shrunk mid-sale).
func (s *Service) Checkout(ctx context.Context, userID uint64, ticketIDs []uint64, paymentMethod string) (*model.Order, error) {
	if len(ticketIDs) == 0 {
		return nil, repository.ErrNotFound
	}
	// Deduplicate so a repeated ID cannot break the affected-rows check.
	seen := make(map[uint64]struct{}, len(ticketIDs))
	ids := make([]uint64, 0, len(ticketIDs))
	for _, id := range ticketIDs {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
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

	tickets, err := s.tickets.SelectForCheckoutTx(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	var incomplete []uint64
	events := make(map[uint64]int)
	for _, id := range ids {
		t, ok := tickets[id]
		if !ok {
			return nil, repository.ErrNotFound
		}
		if t.UserID == nil || *t.UserID != userID {
			return nil, repository.ErrNotOwner
		}
		if t.Status != model.TicketStatusCart {
			return nil, repository.ErrNotFound
		}
		if strings.TrimSpace(t.HolderName) == "" || strings.TrimSpace(t.HolderSurname) == "" {
			incomplete = append(incomplete, id)
		}
		events[t.EventID]++
	}
	if len(incomplete) > 0 {
		return nil, &IncompleteTicketError{TicketIDs: incomplete}
	}

	// Capacity safety net.  Cart tickets already counted against the
	// ceiling when they were added, so this only trips when a sector was
	// shrunk after the fact; better to refuse here than oversell.
	for eventID, qty := range events {
		ceiling, err := s.sectors.TicketCeilingTx(ctx, tx, eventID)
		if err != nil {
			return nil, err
		}
		if ceiling == 0 {
			continue
		}
		purchased, err := s.tickets.SoldCountTx(ctx, tx, eventID, false)
		if err != nil {
			return nil, err
		}
		if purchased+qty > ceiling {
			return nil, repository.ErrCapacityExceeded
		}
	}

	if err := s.tickets.MarkPurchasedTx(ctx, tx, ids); err != nil {
		return nil, err
	}
	order := &model.Order{
		Reference:     uuid.NewString(),
		PaymentMethod: paymentMethod,
	}
	if err := s.orders.CreateTx(ctx, tx, order); err != nil {
		return nil, err
	}
	if err := s.orders.LinkTicketsTx(ctx, tx, order.ID, ids); err != nil {
		return nil, err
	}
	if err := s.orders.LinkUserTx(ctx, tx, order.ID, userID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return order, nil
}
