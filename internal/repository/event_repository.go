package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/seatwise/ticketing/internal/model"
)

// EventRepo provides read access to events.  Event CRUD belongs to the
// administrative service; handlers only need existence checks and the
// base price.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// GetByID loads a single event.  ErrNotFound is returned when no event
// with the given ID exists.
func (r *EventRepo) GetByID(ctx context.Context, eventID uint64) (*model.Event, error) {
	const q = `SELECT id, location_id, name, base_price_cents, starts_at, created_at
	           FROM events WHERE id = ?`
	var e model.Event
	err := r.db.QueryRowContext(ctx, q, eventID).Scan(
		&e.ID, &e.LocationID, &e.Name, &e.BasePriceCents, &e.StartsAt, &e.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}
