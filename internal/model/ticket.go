package model

import "time"

// Ticket statuses.  A ticket is a cart line item while status is CART and
// a finalized ticket once PURCHASED.  PURCHASED is terminal under normal
// operation; only an event deletion cascades it away.
const (
	TicketStatusCart      = "CART"
	TicketStatusPurchased = "PURCHASED"
)

// Ticket represents both an in-progress cart item and a purchased ticket,
// distinguished by status.  Holder fields may be empty placeholders while
// the ticket sits in the cart; they must be filled in before checkout.
//
// Fields:
//  ID            – primary key identifier.
//  EventID       – event the ticket admits to.
//  TicketTypeID  – ticket class (adult, reduced, ...).
//  HolderName    – attendee first name; may be empty while in the cart.
//  HolderSurname – attendee surname; may be empty while in the cart.
//  HolderGender  – optional attendee gender.
//  Status        – CART or PURCHASED.
//  UserID        – owning user; nullable for legacy direct-purchase rows.
//  CartedAt      – when the ticket entered the cart; set only while
//                  status is CART, cleared on purchase.  Drives the
//                  abandoned-cart sweep.
//  QRToken       – unique token generated at creation, encoded into the
//                  QR code by the validation subsystem.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Ticket struct {
	ID            uint64     // tickets.id
	EventID       uint64     // tickets.event_id
	TicketTypeID  uint64     // tickets.ticket_type_id
	HolderName    string     // tickets.holder_name
	HolderSurname string     // tickets.holder_surname
	HolderGender  string     // tickets.holder_gender
	Status        string     // tickets.status
	UserID        *uint64    // tickets.user_id (nullable)
	CartedAt      *time.Time // tickets.carted_at (nullable)
	QRToken       string     // tickets.qr_token
	CreatedAt     time.Time  // tickets.created_at
	UpdatedAt     time.Time  // tickets.updated_at
}

// TicketType is a ticket class for an event: a name plus a price modifier
// added to the event's base price before the sector multiplier applies.
type TicketType struct {
	ID                 uint64 // ticket_types.id
	EventID            uint64 // ticket_types.event_id
	Name               string // ticket_types.name
	PriceModifierCents int32  // ticket_types.price_modifier_cents (may be negative)
}
