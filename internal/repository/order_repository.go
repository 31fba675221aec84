package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/seatwise/ticketing/internal/model"
)

// OrderRepo provides data access to orders and their join tables.  An
// order groups the tickets finalized by one checkout; it is written once
// inside the checkout transaction and never mutated afterwards.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// CreateTx inserts a new order within the checkout transaction and
// populates the generated ID and creation time on the record.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	const q = `INSERT INTO orders (reference, payment_method) VALUES (?, ?)`
	result, err := tx.ExecContext(ctx, q, o.Reference, o.PaymentMethod)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	const sel = `SELECT created_at FROM orders WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, o.ID).Scan(&o.CreatedAt)
}

// LinkTicketsTx associates all of the order's tickets with it in a
// single bulk insert.  Passing an empty slice has no effect.
func (r *OrderRepo) LinkTicketsTx(ctx context.Context, tx *sql.Tx, orderID uint64, ticketIDs []uint64) error {
	if len(ticketIDs) == 0 {
		return nil
	}
	query := `INSERT INTO order_tickets (order_id, ticket_id) VALUES `
	args := make([]interface{}, 0, len(ticketIDs)*2)
	for i, tid := range ticketIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, orderID, tid)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// LinkUserTx associates the purchasing user with the order.
func (r *OrderRepo) LinkUserTx(ctx context.Context, tx *sql.Tx, orderID, userID uint64) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO order_users (order_id, user_id) VALUES (?, ?)`, orderID, userID)
	return err
}

// ListByUser returns a user's orders, newest first, with the number of
// tickets in each.  Used by the order-history endpoint.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]OrderSummary, error) {
	const q = `SELECT o.id, o.reference, o.payment_method, o.created_at, COUNT(ot.ticket_id)
	           FROM orders o
	           JOIN order_users ou ON ou.order_id = o.id
	           LEFT JOIN order_tickets ot ON ot.order_id = o.id
	           WHERE ou.user_id = ?
	           GROUP BY o.id, o.reference, o.payment_method, o.created_at
	           ORDER BY o.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := make([]OrderSummary, 0)
	for rows.Next() {
		var s OrderSummary
		if err := rows.Scan(&s.ID, &s.Reference, &s.PaymentMethod, &s.CreatedAt, &s.TicketCount); err != nil {
			return nil, err
		}
		orders = append(orders, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// OrderSummary is one row of a user's order history.
type OrderSummary struct {
	ID            uint64    `json:"id"`
	Reference     string    `json:"reference"`
	PaymentMethod string    `json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
	TicketCount   int       `json:"ticket_count"`
}
