package model

import "time"

// Event is a sellable happening at a location.  Event CRUD lives in a
// separate administrative service; the allocation core only reads the
// fields that influence pricing and capacity.
//
// Fields:
//  ID             – primary key identifier.
//  LocationID     – location hosting the event.
//  Name           – display name.
//  BasePriceCents – base ticket price before type modifier and sector
//                   multiplier are applied.
//  StartsAt       – when the event begins.
//  CreatedAt      – creation timestamp.
type Event struct {
	ID             uint64    // events.id
	LocationID     uint64    // events.location_id
	Name           string    // events.name
	BasePriceCents uint32    // events.base_price_cents
	StartsAt       time.Time // events.starts_at
	CreatedAt      time.Time // events.created_at
}
