// Package repository implements the persistence layer of the allocation
// core over MySQL.  This file defines the error values shared across the
// repositories and the service layer above them.  These sentinels let
// callers branch on failure scenarios with errors.Is without inspecting
// driver-specific error codes.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrCapacityExceeded is returned when adding tickets would push an event
// past its sector-derived ticket ceiling.  Recoverable: the caller should
// surface the remaining count to the user.
var ErrCapacityExceeded = errors.New("event capacity exceeded")

// ErrNoSeatsAvailable is returned when a sector has no free seat left for
// the event.  Recoverable: the caller should offer alternate sectors.
var ErrNoSeatsAvailable = errors.New("no seats available in sector")

// ErrSeatConflict signals a lost race for one specific seat: the unique
// key on seat_assignments rejected the insert because a concurrent
// transaction claimed the seat first.  Callers retry the find-and-claim
// loop a bounded number of times before escalating to ErrNoSeatsAvailable.
var ErrSeatConflict = errors.New("seat already claimed")

// ErrNotOwner is returned when an operation targets a ticket owned by a
// different user.  Removal operations treat it as not-found (idempotent
// no-op); checkout treats it as a hard error.
var ErrNotOwner = errors.New("ticket not owned by user")

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// IsDuplicateKey reports whether err is a MySQL duplicate-entry error
// (code 1062), the signal that a unique constraint resolved a concurrent
// write race.  Under InnoDB the error aborts only the statement, so the
// surrounding transaction stays usable for a retry.
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
