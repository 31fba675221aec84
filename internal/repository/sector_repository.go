package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/seatwise/ticketing/internal/model"
)

// SectorRepo provides read access to sectors and the event_sectors link
// table.  Sector CRUD itself belongs to the location-management service;
// the allocation core only needs to resolve which sectors are sellable
// for an event and how much capacity they contribute.
type SectorRepo struct {
	db *sql.DB
}

// NewSectorRepo returns a new SectorRepo bound to the given database.
func NewSectorRepo(db *sql.DB) *SectorRepo { return &SectorRepo{db: db} }

// GetByID loads a single sector.  ErrNotFound is returned when no sector
// with the given ID exists.
func (r *SectorRepo) GetByID(ctx context.Context, sectorID uint64) (*model.Sector, error) {
	const q = `SELECT id, location_id, name, capacity, price_multiplier, created_at, updated_at
	           FROM sectors WHERE id = ?`
	var s model.Sector
	err := r.db.QueryRowContext(ctx, q, sectorID).Scan(
		&s.ID, &s.LocationID, &s.Name, &s.Capacity, &s.PriceMultiplier, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByEvent returns the sectors linked to an event, best sectors first
// (price multiplier descending, ID ascending as a tiebreak).  The auto
// assigner walks this order when a buyer picked no sector.  An event with
// no linked sectors yields an empty slice.
func (r *SectorRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Sector, error) {
	const q = `SELECT s.id, s.location_id, s.name, s.capacity, s.price_multiplier, s.created_at, s.updated_at
	           FROM sectors s
	           JOIN event_sectors es ON es.sector_id = s.id
	           WHERE es.event_id = ?
	           ORDER BY s.price_multiplier DESC, s.id ASC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sectors := make([]model.Sector, 0)
	for rows.Next() {
		var s model.Sector
		if err := rows.Scan(&s.ID, &s.LocationID, &s.Name, &s.Capacity, &s.PriceMultiplier, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sectors = append(sectors, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sectors, nil
}

// TicketCeiling sums the capacity of all sectors linked to the event.
// Zero means no sectors are linked; callers must treat that as
// "unlimited" (capacity gating not configured), never as "sold out".
func (r *SectorRepo) TicketCeiling(ctx context.Context, eventID uint64) (int, error) {
	return ticketCeiling(ctx, r.db, eventID)
}

// TicketCeilingTx is TicketCeiling within an existing transaction, for
// capacity checks that must share a transaction with the write depending
// on them.
func (r *SectorRepo) TicketCeilingTx(ctx context.Context, tx *sql.Tx, eventID uint64) (int, error) {
	return ticketCeiling(ctx, tx, eventID)
}

func ticketCeiling(ctx context.Context, q querier, eventID uint64) (int, error) {
	const query = `SELECT COALESCE(SUM(s.capacity), 0)
	               FROM sectors s
	               JOIN event_sectors es ON es.sector_id = s.id
	               WHERE es.event_id = ?`
	var ceiling int
	if err := q.QueryRowContext(ctx, query, eventID).Scan(&ceiling); err != nil {
		return 0, err
	}
	return ceiling, nil
}

// GetLinkedTx loads a sector and verifies in one query that it is linked
// to the event.  ErrNotFound covers both a missing sector and a sector
// that is not sellable for this event.
func (r *SectorRepo) GetLinkedTx(ctx context.Context, tx *sql.Tx, eventID, sectorID uint64) (*model.Sector, error) {
	const q = `SELECT s.id, s.location_id, s.name, s.capacity, s.price_multiplier, s.created_at, s.updated_at
	           FROM sectors s
	           JOIN event_sectors es ON es.sector_id = s.id
	           WHERE es.event_id = ? AND s.id = ?`
	var s model.Sector
	err := tx.QueryRowContext(ctx, q, eventID, sectorID).Scan(
		&s.ID, &s.LocationID, &s.Name, &s.Capacity, &s.PriceMultiplier, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// querier abstracts over *sql.DB and *sql.Tx for read helpers shared by
// transactional and plain variants.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}
