package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/seatwise/ticketing/internal/model"
)

// TicketRepo provides CRUD operations for tickets across both of their
// lives: cart line items (status CART) and purchased tickets (status
// PURCHASED).  All timestamp comparisons are performed in UTC.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// CreateTx inserts a new ticket within the scope of an existing
// transaction and populates the generated ID on the record.  The caller
// must commit or roll back the transaction.  Status must be CART or
// PURCHASED; CartedAt should be set exactly when status is CART.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	const q = `INSERT INTO tickets
	           (event_id, ticket_type_id, holder_name, holder_surname, holder_gender, status, user_id, carted_at, qr_token)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var carted interface{}
	if t.CartedAt != nil {
		carted = t.CartedAt.UTC().Format("2006-01-02 15:04:05")
	}
	result, err := tx.ExecContext(ctx, q,
		t.EventID, t.TicketTypeID, t.HolderName, t.HolderSurname, t.HolderGender,
		t.Status, t.UserID, carted, t.QRToken,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetTx loads a ticket by ID within a transaction.  ErrNotFound is
// returned when the ticket does not exist.
func (r *TicketRepo) GetTx(ctx context.Context, tx *sql.Tx, ticketID uint64) (*model.Ticket, error) {
	const q = `SELECT id, event_id, ticket_type_id, holder_name, holder_surname, holder_gender,
	                  status, user_id, carted_at, qr_token, created_at, updated_at
	           FROM tickets WHERE id = ?`
	var t model.Ticket
	var userID sql.NullInt64
	var cartedAt sql.NullTime
	err := tx.QueryRowContext(ctx, q, ticketID).Scan(
		&t.ID, &t.EventID, &t.TicketTypeID, &t.HolderName, &t.HolderSurname, &t.HolderGender,
		&t.Status, &userID, &cartedAt, &t.QRToken, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		uid := uint64(userID.Int64)
		t.UserID = &uid
	}
	if cartedAt.Valid {
		ts := cartedAt.Time.UTC()
		t.CartedAt = &ts
	}
	return &t, nil
}

// SoldCount counts tickets for an event.  Purchased tickets are always
// counted; cart tickets are added when includeCart is true.  Capacity
// checks use the cart-inclusive count so that seats sitting in carts are
// not sold twice.
func (r *TicketRepo) SoldCount(ctx context.Context, eventID uint64, includeCart bool) (int, error) {
	return soldCount(ctx, r.db, eventID, includeCart)
}

// SoldCountTx is SoldCount within an existing transaction.
func (r *TicketRepo) SoldCountTx(ctx context.Context, tx *sql.Tx, eventID uint64, includeCart bool) (int, error) {
	return soldCount(ctx, tx, eventID, includeCart)
}

func soldCount(ctx context.Context, q querier, eventID uint64, includeCart bool) (int, error) {
	query := `SELECT COUNT(*) FROM tickets WHERE event_id = ? AND status = 'PURCHASED'`
	if includeCart {
		query = `SELECT COUNT(*) FROM tickets WHERE event_id = ? AND status IN ('PURCHASED', 'CART')`
	}
	var n int
	if err := q.QueryRowContext(ctx, query, eventID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateCartTicket mutates the holder fields and/or ticket type of a
// cart ticket owned by the given user.  Nil pointers leave the
// corresponding column untouched.  It returns ErrNotFound when the
// ticket does not exist, is not status CART or belongs to someone else;
// updates never touch purchased tickets.
func (r *TicketRepo) UpdateCartTicket(ctx context.Context, ticketID, userID uint64, name, surname, gender *string, ticketTypeID *uint64) error {
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 6)
	if name != nil {
		sets = append(sets, "holder_name = ?")
		args = append(args, *name)
	}
	if surname != nil {
		sets = append(sets, "holder_surname = ?")
		args = append(args, *surname)
	}
	if gender != nil {
		sets = append(sets, "holder_gender = ?")
		args = append(args, *gender)
	}
	if ticketTypeID != nil {
		sets = append(sets, "ticket_type_id = ?")
		args = append(args, *ticketTypeID)
	}
	if len(sets) == 0 {
		return nil
	}
	query := `UPDATE tickets SET ` + strings.Join(sets, ", ") +
		` WHERE id = ? AND user_id = ? AND status = 'CART'`
	args = append(args, ticketID, userID)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCartTicket removes a cart ticket owned by the given user.  The
// seat assignment, if any, cascades away with the row.  It reports
// whether a row was actually deleted; a missing, purchased or foreign
// ticket yields (false, nil) so removal stays idempotent.
func (r *TicketRepo) DeleteCartTicket(ctx context.Context, ticketID, userID uint64) (bool, error) {
	const q = `DELETE FROM tickets WHERE id = ? AND user_id = ? AND status = 'CART'`
	result, err := r.db.ExecContext(ctx, q, ticketID, userID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CartItem is one cart ticket enriched with everything needed to price
// and display it: event, ticket type and the optional seat assignment
// with its sector.  Sector fields are nil while the ticket is seatless.
type CartItem struct {
	Ticket             model.Ticket `json:"ticket"`
	EventName          string       `json:"event_name"`
	BasePriceCents     uint32       `json:"base_price_cents"`
	TicketTypeName     string       `json:"ticket_type_name"`
	PriceModifierCents int32        `json:"price_modifier_cents"`
	SectorID           *uint64      `json:"sector_id,omitempty"`
	SectorName         *string      `json:"sector_name,omitempty"`
	PriceMultiplier    *float64     `json:"price_multiplier,omitempty"`
	RowLabel           *string      `json:"row_label,omitempty"`
	SeatNumber         *uint32      `json:"seat_number,omitempty"`
	FinalPriceCents    uint32       `json:"final_price_cents"`
}

// ListCartByUser returns all cart tickets of a user, oldest first, each
// joined with its event, ticket type and (when assigned) seat and
// sector.  FinalPriceCents is left at zero; the service layer computes
// it so the rounding rule lives in one place.
func (r *TicketRepo) ListCartByUser(ctx context.Context, userID uint64) ([]CartItem, error) {
	const q = `SELECT t.id, t.event_id, t.ticket_type_id, t.holder_name, t.holder_surname, t.holder_gender,
	                  t.status, t.carted_at, t.qr_token, t.created_at, t.updated_at,
	                  e.name, e.base_price_cents,
	                  tt.name, tt.price_modifier_cents,
	                  sa.sector_id, s.name, s.price_multiplier, sa.row_label, sa.seat_number
	           FROM tickets t
	           JOIN events e ON e.id = t.event_id
	           JOIN ticket_types tt ON tt.id = t.ticket_type_id
	           LEFT JOIN seat_assignments sa ON sa.ticket_id = t.id
	           LEFT JOIN sectors s ON s.id = sa.sector_id
	           WHERE t.user_id = ? AND t.status = 'CART'
	           ORDER BY t.carted_at ASC, t.id ASC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]CartItem, 0)
	for rows.Next() {
		var it CartItem
		var cartedAt sql.NullTime
		var sectorID sql.NullInt64
		var sectorName sql.NullString
		var multiplier sql.NullFloat64
		var rowLabel sql.NullString
		var seatNumber sql.NullInt64
		if err := rows.Scan(
			&it.Ticket.ID, &it.Ticket.EventID, &it.Ticket.TicketTypeID,
			&it.Ticket.HolderName, &it.Ticket.HolderSurname, &it.Ticket.HolderGender,
			&it.Ticket.Status, &cartedAt, &it.Ticket.QRToken, &it.Ticket.CreatedAt, &it.Ticket.UpdatedAt,
			&it.EventName, &it.BasePriceCents,
			&it.TicketTypeName, &it.PriceModifierCents,
			&sectorID, &sectorName, &multiplier, &rowLabel, &seatNumber,
		); err != nil {
			return nil, err
		}
		uid := userID
		it.Ticket.UserID = &uid
		if cartedAt.Valid {
			ts := cartedAt.Time.UTC()
			it.Ticket.CartedAt = &ts
		}
		if sectorID.Valid {
			sid := uint64(sectorID.Int64)
			it.SectorID = &sid
		}
		if sectorName.Valid {
			sn := sectorName.String
			it.SectorName = &sn
		}
		if multiplier.Valid {
			m := multiplier.Float64
			it.PriceMultiplier = &m
		}
		if rowLabel.Valid {
			rl := rowLabel.String
			it.RowLabel = &rl
		}
		if seatNumber.Valid {
			n := uint32(seatNumber.Int64)
			it.SeatNumber = &n
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// SelectForCheckoutTx loads the given tickets with row locks (FOR
// UPDATE) so their status cannot shift under a concurrent checkout or
// sweep until the transaction finishes.  The result preserves no
// particular order; callers index by ID.
func (r *TicketRepo) SelectForCheckoutTx(ctx context.Context, tx *sql.Tx, ticketIDs []uint64) (map[uint64]model.Ticket, error) {
	if len(ticketIDs) == 0 {
		return map[uint64]model.Ticket{}, nil
	}
	placeholders := make([]string, 0, len(ticketIDs))
	args := make([]interface{}, 0, len(ticketIDs))
	for _, id := range ticketIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	query := `SELECT id, event_id, ticket_type_id, holder_name, holder_surname, holder_gender,
	                 status, user_id, carted_at, qr_token, created_at, updated_at
	          FROM tickets WHERE id IN (` + strings.Join(placeholders, ",") + `) FOR UPDATE`
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets := make(map[uint64]model.Ticket, len(ticketIDs))
	for rows.Next() {
		var t model.Ticket
		var userID sql.NullInt64
		var cartedAt sql.NullTime
		if err := rows.Scan(
			&t.ID, &t.EventID, &t.TicketTypeID, &t.HolderName, &t.HolderSurname, &t.HolderGender,
			&t.Status, &userID, &cartedAt, &t.QRToken, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if userID.Valid {
			uid := uint64(userID.Int64)
			t.UserID = &uid
		}
		if cartedAt.Valid {
			ts := cartedAt.Time.UTC()
			t.CartedAt = &ts
		}
		tickets[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

// MarkPurchasedTx transitions the given tickets from CART to PURCHASED
// and clears their cart timestamps.  It runs within the checkout
// transaction and returns an error when fewer rows changed than
// expected, which indicates a ticket slipped out of CART status despite
// the row locks.
func (r *TicketRepo) MarkPurchasedTx(ctx context.Context, tx *sql.Tx, ticketIDs []uint64) error {
	if len(ticketIDs) == 0 {
		return nil
	}
	placeholders := make([]string, 0, len(ticketIDs))
	args := make([]interface{}, 0, len(ticketIDs))
	for _, id := range ticketIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	query := `UPDATE tickets SET status = 'PURCHASED', carted_at = NULL
	          WHERE id IN (` + strings.Join(placeholders, ",") + `) AND status = 'CART'`
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected != int64(len(ticketIDs)) {
		return ErrNotFound
	}
	return nil
}

// SweepStale deletes all cart tickets whose cart timestamp is older than
// the cutoff.  Seat assignments cascade away with their tickets, which
// frees the seats.  A single bulk statement keeps the sweep safe to run
// concurrently with live cart traffic.  The reclaimed row count is
// returned.
func (r *TicketRepo) SweepStale(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM tickets WHERE status = 'CART' AND carted_at IS NOT NULL AND carted_at < ?`
	result, err := r.db.ExecContext(ctx, q, cutoff.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
