package model

import "time"

// Sector is a physical seating section within a location.  Its capacity
// is partitioned into synthesized rows at sale time; seats are not stored
// as individual records.  The price multiplier scales the final ticket
// price for seats sold in this sector.
//
// Fields:
//  ID              – primary key identifier.
//  LocationID      – location the sector belongs to.
//  Name            – display name (e.g. "Parterre", "Balcony").
//  Capacity        – total number of seats; always >= 0.
//  PriceMultiplier – decimal >= 0 applied to the ticket price.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Sector struct {
	ID              uint64    // sectors.id
	LocationID      uint64    // sectors.location_id
	Name            string    // sectors.name
	Capacity        uint32    // sectors.capacity
	PriceMultiplier float64   // sectors.price_multiplier (DECIMAL)
	CreatedAt       time.Time // sectors.created_at
	UpdatedAt       time.Time // sectors.updated_at
}

// EventSectorLink marks a sector as sellable for one event.  A sector may
// be linked to many events; each event gets its own independent seat map
// over the shared capacity.
type EventSectorLink struct {
	EventID  uint64 // event_sectors.event_id
	SectorID uint64 // event_sectors.sector_id
}
