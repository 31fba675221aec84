package model

import "time"

// Order groups the tickets purchased in a single checkout transaction.
// Orders are immutable after creation except for cascading deletes.
// Tickets and users are linked through the order_tickets and order_users
// join tables.
//
// Fields:
//  ID            – primary key identifier.
//  Reference     – opaque reference handed to the payment/notification
//                  subsystems.
//  PaymentMethod – method chosen at checkout (e.g. "card", "paypal").
//  CreatedAt     – checkout timestamp.
type Order struct {
	ID            uint64    // orders.id
	Reference     string    // orders.reference
	PaymentMethod string    // orders.payment_method
	CreatedAt     time.Time // orders.created_at
}
