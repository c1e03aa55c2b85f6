// Package repository implements data access over MySQL. This file defines
// the sentinel errors shared across repositories so handlers can translate
// failure modes into HTTP responses without inspecting SQL errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, such as completing another driver's trip.
// Handlers translate it into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrTripNotFound is returned when a referenced trip does not exist.
var ErrTripNotFound = errors.New("trip not found")

// ErrDriverNotFound is returned when a user has no driver registration but
// attempts a driver-only operation such as publishing trips.
var ErrDriverNotFound = errors.New("driver not found")

// ErrNoCapacity is returned when a trip has no remaining seats. The accept
// transaction uses it to abort cleanly, leaving the request PENDING.
var ErrNoCapacity = errors.New("no remaining capacity")

// ErrAlreadyProcessed is returned when a conditional status update matched
// zero rows: the request was already accepted or rejected by another call,
// or the (request, trip) pair does not exist. The two cases are not
// distinguishable from the update alone and are reported together.
var ErrAlreadyProcessed = errors.New("request not found or already processed")

// ErrDuplicateRequest is returned when a passenger already has an open
// (pending or accepted) request for the same trip.
var ErrDuplicateRequest = errors.New("duplicate request for trip")

// isDuplicateKey reports whether err is MySQL error 1062, a unique-key
// violation. Inserts racing a unique constraint use it to map the driver
// error onto a domain sentinel.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
