package cart_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatwise/ticketing/internal/cart"
	"github.com/seatwise/ticketing/internal/repository"
	"github.com/seatwise/ticketing/internal/testutil"
)

const testUser uint64 = 42

func addOne(t *testing.T, svc *cart.Service, eventID, typeID uint64, sectorID *uint64) cart.AddedTicket {
	t.Helper()
	added, err := svc.AddToCart(context.Background(), cart.AddToCartInput{
		EventID:      eventID,
		TicketTypeID: typeID,
		UserID:       testUser,
		SectorID:     sectorID,
		Quantity:     1,
	})
	require.NoError(t, err)
	require.Len(t, added, 1)
	return added[0]
}

func fillHolder(t *testing.T, svc *cart.Service, ticketID uint64) {
	t.Helper()
	name, surname := "Ada", "Lovelace"
	require.NoError(t, svc.UpdateCartItem(context.Background(), testUser, ticketID, cart.UpdateCartInput{
		HolderName:    &name,
		HolderSurname: &surname,
	}))
}

// Sector with capacity 12 (rows A1-A10, B1-B2): the twelfth claim lands
// on B2 and a thirteenth is refused with NoSeatsAvailable.  A second
// sector keeps the event ceiling out of the way.
func TestClaimSeatFillsSector(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.TruncateAll(t, ctx, db)
	svc := cart.NewService(db)

	eventID := testutil.InsertEvent(t, ctx, db, "Rock Night", 2000)
	sectorID := testutil.InsertSector(t, ctx, db, eventID, "Parterre", 12, 1.0)
	testutil.InsertSector(t, ctx, db, eventID, "Balcony", 10, 0.8)
	typeID := testutil.InsertTicketType(t, ctx, db, eventID, "adult", 0)

	for i := 0; i < 11; i++ {
		addOne(t, svc, eventID, typeID, &sectorID)
	}
	twelfth := addOne(t, svc, eventID, typeID, &sectorID)
	require.NotNil(t, twelfth.Seat)
	assert.Equal(t, "B", twelfth.Seat.RowLabel)
	assert.Equal(t, uint32(2), twelfth.Seat.SeatNumber)

	_, err := svc.AddToCart(ctx, cart.AddToCartInput{
		EventID: eventID, TicketTypeID: typeID, UserID: testUser, SectorID: &sectorID, Quantity: 1,
	})
	assert.ErrorIs(t, err, repository.ErrNoSeatsAvailable)
}

// Two linked sectors with capacities 5 and 3 give a ceiling of 8: eight
// seatless adds succeed and the ninth is refused.
func TestEventCeiling(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.TruncateAll(t, ctx, db)
	svc := cart.NewService(db)

	eventID := testutil.InsertEvent(t, ctx, db, "Jazz Evening", 3000)
	testutil.InsertSector(t, ctx, db, eventID, "Front", 5, 1.5)
	testutil.InsertSector(t, ctx, db, eventID, "Back", 3, 1.0)
	typeID := testutil.InsertTicketType(t, ctx, db, eventID, "adult", 0)

	for i := 0; i < 8; i++ {
		addOne(t, svc, eventID, typeID, nil)
	}
	_, err := svc.AddToCart(ctx, cart.AddToCartInput{
		EventID: eventID, TicketTypeID: typeID, UserID: testUser, Quantity: 1,
	})
	assert.ErrorIs(t, err, repository.ErrCapacityExceeded)

	avail, err := svc.Availability(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 8, avail.Ceiling)
	assert.Equal(t, 8, avail.Sold)
	assert.Equal(t, 0, avail.Remaining)
	assert.False(t, avail.Unlimited)
}

func TestAvailabilityUnlimitedWithoutSectors(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.TruncateAll(t, ctx, db)
	svc := cart.NewService(db)

	eventID := testutil.InsertEvent(t, ctx, db, "Open Air", 1000)
	typeID := testutil.InsertTicketType(t, ctx, db, eventID, "adult", 0)

	avail, err := svc.Availability(ctx, eventID)
	require.NoError(t, err)
	assert.True(t, avail.Unlimited)

	// No gating at all: adds keep succeeding.
	for i := 0; i < 20; i++ {
		addOne(t, svc, eventID, typeID, nil)
	}
}

// Two concurrent claims when exactly one seat remains: exactly one wins,
// the loser gets NoSeatsAvailable after its retries.
func TestConcurrentClaimLastSeat(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.TruncateAll(t, ctx, db)
	svc := cart.NewService(db)

	eventID := testutil.InsertEvent(t, ctx, db, "Final Seat", 2000)
	sectorID := testutil.InsertSector(t, ctx, db, eventID, "Pit", 3, 1.0)
	testutil.InsertSector(t, ctx, db, eventID, "Lawn", 50, 0.5)
	typeID := testutil.InsertTicketType(t, ctx, db, eventID, "adult", 0)

	addOne(t, svc, eventID, typeID, &sectorID)
	addOne(t, svc, eventID, typeID, &sectorID)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.AddToCart(ctx, cart.AddToCartInput{
				EventID: eventID, TicketTypeID: typeID, UserID: testUser, SectorID: &sectorID, Quantity: 1,
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	var wins, full int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, repository.ErrNoSeatsAvailable):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, full)

	var claimed int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seat_assignments WHERE sector_id = ?`, sectorID).Scan(&claimed))
	assert.Equal(t, 3, claimed)
}

func TestRemoveFromCartIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.TruncateAll(t, ctx, db)
	svc := cart.NewService(db)

	eventID := testutil.InsertEvent(t, ctx, db, "Gig", 1500)
	sectorID := testutil.InsertSector(t, ctx, db, eventID, "Floor", 10, 1.0)
	typeID := testutil.InsertTicketType(t, ctx, db, eventID, "adult", 0)

	added := addOne(t, svc, eventID, typeID, &sectorID)
	require.NotNil(t, added.Seat)
	assert.Equal(t, "A", added.Seat.RowLabel)
	assert.Equal(t, uint32(1), added.Seat.SeatNumber)

	removed, err := svc.RemoveFromCart(ctx, testUser, added.Ticket.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.RemoveFromCart(ctx, testUser, added.Ticket.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	// The seat is free again: the next claim gets A1 back.
	again := addOne(t, svc, eventID, typeID, &sectorID)
	require.NotNil(t, again.Seat)
	assert.Equal(t, "A", again.Seat.RowLabel)
	assert.Equal(t, uint32(1), again.Seat.SeatNumber)
}

func TestRemoveFromCartForeignTicket(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.TruncateAll(t, ctx, db)
	svc := cart.NewService(db)

	eventID := testutil.InsertEvent(t, ctx, db, "Gig", 1500)
	typeID := testutil.InsertTicketType(t, ctx, db, eventID, "adult", 0)
	added := addOne(t, svc, eventID, typeID, nil)

	removed, err := svc.RemoveFromCart(ctx, testUser+1, added.Ticket.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestReassignSector(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.TruncateAll(t, ctx, db)
	svc := cart.NewService(db)

	eventID := testutil.InsertEvent(t, ctx, db, "Opera", 5000)
	s1 := testutil.InsertSector(t, ctx, db, eventID, "Stalls", 10, 2.0)
	s2 := testutil.InsertSector(t, ctx, db, eventID, "Circle", 10, 1.2)
	full := testutil.InsertSector(t, ctx, db, eventID, "Box", 1, 3.0)
	typeID := testutil.InsertTicketType(t, ctx, db, eventID, "adult", 0)

	added := addOne(t, svc, eventID, typeID, &s1)
	addOne(t, svc, eventID, typeID, &full) // fills the one-seat Box sector

	moved, err := svc.ReassignSector(ctx, testUser, added.Ticket.ID, s2)
	require.NoError(t, err)
	assert.Equal(t, s2, moved.SectorID)

	// Exactly one assignment, and the old seat is free for others.
	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seat_assignments WHERE ticket_id = ?`, added.Ticket.ID).Scan(&count))
	assert.Equal(t, 1, count)

	reclaimed := addOne(t, svc, eventID, typeID, &s1)
	require.NotNil(t, reclaimed.Seat)
	assert.Equal(t, "A", reclaimed.Seat.RowLabel)
	assert.Equal(t, uint32(1), reclaimed.Seat.SeatNumber)

	// Moving into a full sector releases the current seat and leaves the
	// ticket seatless.
	_, err = svc.ReassignSector(ctx, testUser, added.Ticket.ID, full)
	assert.ErrorIs(t, err, repository.ErrNoSeatsAvailable)
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seat_assignments WHERE ticket_id = ?`, added.Ticket.ID).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestAutoAssignPrefersExpensiveSector(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.TruncateAll(t, ctx, db)
	svc := cart.NewService(db)

	eventID := testutil.InsertEvent(t, ctx, db, "Ballet", 4000)
	best := testutil.InsertSector(t, ctx, db, eventID, "Gold", 1, 2.5)
	rest := testutil.InsertSector(t, ctx, db, eventID, "Silver", 10, 1.0)
	typeID := testutil.InsertTicketType(t, ctx, db, eventID, "adult", 0)

	first := addOne(t, svc, eventID, typeID, nil)
	seat, err := svc.AutoAssignSeat(ctx, testUser, first.Ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, seat)
	assert.Equal(t, best, seat.SectorID)

	// Already assigned: a second call is a no-op returning the same seat.
	same, err := svc.AutoAssignSeat(ctx, testUser, first.Ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, seat.ID, same.ID)

	// Gold is full now; the next ticket falls through to Silver.
	second := addOne(t, svc, eventID, typeID, nil)
	seat2, err := svc.AutoAssignSeat(ctx, testUser, second.Ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, seat2)
	assert.Equal(t, rest, seat2.SectorID)
}

func TestCheckoutAtomicity(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.TruncateAll(t, ctx, db)
	svc := cart.NewService(db)

	eventID := testutil.InsertEvent(t, ctx, db, "Theatre", 3000)
	testutil.InsertSector(t, ctx, db, eventID, "Hall", 20, 1.0)
	typeID := testutil.InsertTicketType(t, ctx, db, eventID, "adult", 0)

	complete := addOne(t, svc, eventID, typeID, nil)
	incomplete := addOne(t, svc, eventID, typeID, nil)
	fillHolder(t, svc, complete.Ticket.ID)

	ids := []uint64{complete.Ticket.ID, incomplete.Ticket.ID}
	_, err := svc.Checkout(ctx, testUser, ids, "card")
	var incErr *cart.IncompleteTicketError
	require.ErrorAs(t, err, &incErr)
	assert.Equal(t, []uint64{incomplete.Ticket.ID}, incErr.TicketIDs)

	// Nothing transitioned.
	var cartCount int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE status = 'CART'`).Scan(&cartCount))
	assert.Equal(t, 2, cartCount)

	fillHolder(t, svc, incomplete.Ticket.ID)
	order, err := svc.Checkout(ctx, testUser, ids, "card")
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.NotEmpty(t, order.Reference)

	var purchased int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE status = 'PURCHASED' AND carted_at IS NULL`).Scan(&purchased))
	assert.Equal(t, 2, purchased)

	var linked int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_tickets WHERE order_id = ?`, order.ID).Scan(&linked))
	assert.Equal(t, 2, linked)

	orders, err := svc.Orders(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 2, orders[0].TicketCount)

	// Purchased tickets cannot be checked out again or mutated.
	_, err = svc.Checkout(ctx, testUser, ids, "card")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	name := "Grace"
	err = svc.UpdateCartItem(ctx, testUser, complete.Ticket.ID, cart.UpdateCartInput{HolderName: &name})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCheckoutForeignTicket(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.TruncateAll(t, ctx, db)
	svc := cart.NewService(db)

	eventID := testutil.InsertEvent(t, ctx, db, "Theatre", 3000)
	typeID := testutil.InsertTicketType(t, ctx, db, eventID, "adult", 0)
	added := addOne(t, svc, eventID, typeID, nil)
	fillHolder(t, svc, added.Ticket.ID)

	_, err := svc.Checkout(ctx, testUser+1, []uint64{added.Ticket.ID}, "card")
	assert.ErrorIs(t, err, repository.ErrNotOwner)
}

func TestGetCartPricing(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.TruncateAll(t, ctx, db)
	svc := cart.NewService(db)

	eventID := testutil.InsertEvent(t, ctx, db, "Concert", 2000)
	sectorID := testutil.InsertSector(t, ctx, db, eventID, "VIP", 10, 1.5)
	typeID := testutil.InsertTicketType(t, ctx, db, eventID, "adult", 500)

	seated := addOne(t, svc, eventID, typeID, &sectorID)
	seatless := addOne(t, svc, eventID, typeID, nil)

	items, err := svc.GetCart(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, items, 2)

	prices := map[uint64]uint32{}
	for _, it := range items {
		prices[it.Ticket.ID] = it.FinalPriceCents
	}
	assert.Equal(t, uint32(3750), prices[seated.Ticket.ID])
	assert.Equal(t, uint32(2500), prices[seatless.Ticket.ID])
}

// A cart ticket 25 hours old is reclaimed by Sweep(24) and its seat
// freed; a 23 hour old ticket survives.
func TestSweepReclaimsStaleCarts(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.TruncateAll(t, ctx, db)
	svc := cart.NewService(db)

	eventID := testutil.InsertEvent(t, ctx, db, "Festival", 2500)
	sectorID := testutil.InsertSector(t, ctx, db, eventID, "Field", 10, 1.0)
	typeID := testutil.InsertTicketType(t, ctx, db, eventID, "adult", 0)

	stale := addOne(t, svc, eventID, typeID, &sectorID)
	fresh := addOne(t, svc, eventID, typeID, &sectorID)

	backdate := func(ticketID uint64, hours int) {
		_, err := db.ExecContext(ctx,
			`UPDATE tickets SET carted_at = UTC_TIMESTAMP() - INTERVAL ? HOUR WHERE id = ?`,
			hours, ticketID)
		require.NoError(t, err)
	}
	backdate(stale.Ticket.ID, 25)
	backdate(fresh.Ticket.ID, 23)

	reclaimed, err := svc.Sweep(ctx, 24)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reclaimed)

	var remaining int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE status = 'CART'`).Scan(&remaining))
	assert.Equal(t, 1, remaining)

	// The stale ticket's seat (A1) is claimable again.
	var assigned int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seat_assignments`).Scan(&assigned))
	assert.Equal(t, 1, assigned)

	again := addOne(t, svc, eventID, typeID, &sectorID)
	require.NotNil(t, again.Seat)
	assert.Equal(t, "A", again.Seat.RowLabel)
	assert.Equal(t, uint32(1), again.Seat.SeatNumber)
}
