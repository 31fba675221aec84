// Command sweeper reclaims abandoned carts.  It deletes cart tickets older
// than the cutoff in one pass and exits, so it can run from cron or a
// Kubernetes CronJob alongside the API server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/seatwise/ticketing/internal/cart"
	"github.com/seatwise/ticketing/internal/config"
	"github.com/seatwise/ticketing/internal/database"
)

func main() {
	hours := flag.Int("hours", 0, "reclaim carts older than this many hours (default: CART_TTL_HOURS)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	cutoff := cfg.CartTTLHours
	if *hours > 0 {
		cutoff = *hours
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Printf("sweeper: database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	reclaimed, err := cart.NewService(db).Sweep(ctx, cutoff)
	if err != nil {
		log.Printf("sweeper: %v", err)
		os.Exit(1)
	}
	log.Printf("sweeper: reclaimed %d stale cart tickets (older than %dh)", reclaimed, cutoff)
}
