package cart

import (
	"context"
	"time"
)

// Sweep deletes all cart tickets older than the given threshold, freeing
// their seats through the seat_assignments cascade, and returns the
// reclaimed count.  It is a single bulk delete: idempotent, safe to
// re-run and safe alongside live cart traffic, since a row past the
// deadline is by definition not one a user is actively editing.  Invoked
// by an external scheduler through cmd/sweeper.
func (s *Service) Sweep(ctx context.Context, olderThanHours int) (int64, error) {
	if olderThanHours <= 0 {
		olderThanHours = 24
	}
	cutoff := time.Now().UTC().Add(-time.Duration(olderThanHours) * time.Hour)
	return s.tickets.SweepStale(ctx, cutoff)
}
