// Package cart implements the allocation core of the ticketing platform:
// the capacity model, the seat allocator, the cart line item lifecycle
// and the abandoned-cart sweep.  Every mutating operation runs as one
// request-scoped database transaction; concurrency across requests is
// mediated entirely by the database (unique keys plus row locks), never
// by in-process state.
package cart

import (
	"context"
	"database/sql"

	"github.com/seatwise/ticketing/internal/model"
	"github.com/seatwise/ticketing/internal/repository"
	"github.com/seatwise/ticketing/internal/seatmap"
)

// claimAttempts bounds the find-then-insert retry loop of a seat claim.
// Each lost race re-reads occupancy and tries the next candidate; after
// this many conflicts the sector is reported full.
const claimAttempts = 3

// Service exposes the allocation operations.  It owns no state beyond
// the database handle and its repositories; a single Service is shared
// by all requests.
type Service struct {
	db      *sql.DB
	events  *repository.EventRepo
	sectors *repository.SectorRepo
	tickets *repository.TicketRepo
	seats   *repository.SeatAssignmentRepo
	orders  *repository.OrderRepo
}

// NewService constructs a Service over the given database handle.
func NewService(db *sql.DB) *Service {
	return &Service{
		db:      db,
		events:  repository.NewEventRepo(db),
		sectors: repository.NewSectorRepo(db),
		tickets: repository.NewTicketRepo(db),
		seats:   repository.NewSeatAssignmentRepo(db),
		orders:  repository.NewOrderRepo(db),
	}
}

// begin opens a READ COMMITTED transaction.  Read committed (rather than
// InnoDB's default repeatable read) matters for the claim retry loop:
// after a duplicate-key conflict the occupancy re-read must observe the
// competitor's freshly committed row, or every retry would pick the same
// seat and lose again.
func (s *Service) begin(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// Event resolves an event by ID for the handler layer.
func (s *Service) Event(ctx context.Context, eventID uint64) (*model.Event, error) {
	return s.events.GetByID(ctx, eventID)
}

// Availability reports the capacity picture of an event: the summed
// sector ceiling, the ticket count against it (cart included) and the
// remainder.  An event with no linked sectors is Unlimited.
func (s *Service) Availability(ctx context.Context, eventID uint64) (seatmap.Availability, error) {
	ceiling, err := s.sectors.TicketCeiling(ctx, eventID)
	if err != nil {
		return seatmap.Availability{}, err
	}
	sold, err := s.tickets.SoldCount(ctx, eventID, true)
	if err != nil {
		return seatmap.Availability{}, err
	}
	return seatmap.Compute(ceiling, sold), nil
}

// SectorAvailability is the per-sector free seat count of one event.
type SectorAvailability struct {
	Sector    model.Sector `json:"sector"`
	FreeSeats int          `json:"free_seats"`
}

// SectorsWithAvailability returns the event's sellable sectors, best
// first, each with its free seat count.  The counts are advisory: they
// can drift the moment they are read and claims revalidate against the
// unique key anyway.
func (s *Service) SectorsWithAvailability(ctx context.Context, eventID uint64) ([]SectorAvailability, error) {
	sectors, err := s.sectors.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	claimed, err := s.seats.CountBySector(ctx, eventID)
	if err != nil {
		return nil, err
	}
	out := make([]SectorAvailability, 0, len(sectors))
	for _, sec := range sectors {
		free := int(sec.Capacity) - claimed[sec.ID]
		if free < 0 {
			free = 0
		}
		out = append(out, SectorAvailability{Sector: sec, FreeSeats: free})
	}
	return out, nil
}

// Orders returns the user's order history, newest first.
func (s *Service) Orders(ctx context.Context, userID uint64) ([]repository.OrderSummary, error) {
	return s.orders.ListByUser(ctx, userID)
}
