// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderCompletedEvent is published after a checkout transaction commits.
// It carries enough information for downstream consumers (receipt email,
// analytics) to act without querying the primary database.
type OrderCompletedEvent struct {
	OrderID       uint64   `json:"order_id"`
	Reference     string   `json:"reference"`
	UserID        uint64   `json:"user_id"`
	TicketIDs     []uint64 `json:"ticket_ids"`
	PaymentMethod string   `json:"payment_method"`
	CompletedAt   string   `json:"completed_at"`
}
