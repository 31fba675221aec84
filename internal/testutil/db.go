// Package testutil provides the shared database fixture for integration
// tests.  Tests that need MySQL are skipped unless a reachable server is
// configured, so the unit suite stays runnable anywhere.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/seatwise/ticketing/migrations"
)

// defaultTestDSN matches the docker-compose development database.
const defaultTestDSN = "ticketing:ticketing@tcp(localhost:3306)/ticketing_test?charset=utf8mb4&parseTime=true&loc=UTC&multiStatements=false"

// NewTestDB opens the test database named by TICKETING_TEST_DSN (or the
// compose default), applies the schema and registers cleanup.  The test
// is skipped when no server answers the ping.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TICKETING_TEST_DSN")
	if dsn == "" {
		dsn = defaultTestDSN
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(8)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		t.Skipf("skipping MySQL integration tests: %v", err)
	}
	if err := migrations.Apply(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("apply schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TruncateAll empties every allocation table between test cases.
// Foreign key checks are suspended so truncation order does not matter;
// the toggle is session-scoped, so everything runs on one connection.
func TruncateAll(t *testing.T, ctx context.Context, db *sql.DB) {
	t.Helper()
	tables := []string{
		"order_users", "order_tickets", "orders",
		"seat_assignments", "tickets", "ticket_types",
		"event_sectors", "sectors", "events",
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("acquire conn: %v", err)
	}
	defer conn.Close()
	if _, err := conn.ExecContext(ctx, `SET FOREIGN_KEY_CHECKS = 0`); err != nil {
		t.Fatalf("disable fk checks: %v", err)
	}
	for _, tbl := range tables {
		if _, err := conn.ExecContext(ctx, `TRUNCATE TABLE `+tbl); err != nil {
			t.Fatalf("truncate %s: %v", tbl, err)
		}
	}
	if _, err := conn.ExecContext(ctx, `SET FOREIGN_KEY_CHECKS = 1`); err != nil {
		t.Fatalf("enable fk checks: %v", err)
	}
}

// InsertEvent creates an event and returns its ID.
func InsertEvent(t *testing.T, ctx context.Context, db *sql.DB, name string, basePriceCents uint32) uint64 {
	t.Helper()
	res, err := db.ExecContext(ctx,
		`INSERT INTO events (location_id, name, base_price_cents, starts_at) VALUES (1, ?, ?, ?)`,
		name, basePriceCents, time.Now().UTC().Add(72*time.Hour).Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		t.Fatalf("insert event: %v", err)
	}
	id, _ := res.LastInsertId()
	return uint64(id)
}

// InsertSector creates a sector, links it to the event and returns the
// sector ID.
func InsertSector(t *testing.T, ctx context.Context, db *sql.DB, eventID uint64, name string, capacity uint32, multiplier float64) uint64 {
	t.Helper()
	res, err := db.ExecContext(ctx,
		`INSERT INTO sectors (location_id, name, capacity, price_multiplier) VALUES (1, ?, ?, ?)`,
		name, capacity, multiplier,
	)
	if err != nil {
		t.Fatalf("insert sector: %v", err)
	}
	id, _ := res.LastInsertId()
	if _, err := db.ExecContext(ctx,
		`INSERT INTO event_sectors (event_id, sector_id) VALUES (?, ?)`, eventID, id,
	); err != nil {
		t.Fatalf("link sector: %v", err)
	}
	return uint64(id)
}

// InsertTicketType creates a ticket type for the event and returns its ID.
func InsertTicketType(t *testing.T, ctx context.Context, db *sql.DB, eventID uint64, name string, modifierCents int32) uint64 {
	t.Helper()
	res, err := db.ExecContext(ctx,
		`INSERT INTO ticket_types (event_id, name, price_modifier_cents) VALUES (?, ?, ?)`,
		eventID, name, modifierCents,
	)
	if err != nil {
		t.Fatalf("insert ticket type: %v", err)
	}
	id, _ := res.LastInsertId()
	return uint64(id)
}
