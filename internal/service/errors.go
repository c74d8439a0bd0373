// Package service implements the booking transaction manager and the
// waitlist cascade engine.  Both mutate a show's (seats, capacity
// counter, waitlist) state exclusively through repository.Store's
// per-show transaction, so their effects are visible all-at-once.
package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSeatsRequested is returned when a booking request carries an
// empty seat list.
var ErrNoSeatsRequested = errors.New("no seats requested")

// ErrUnknownSeats is returned when a requested seat id does not exist
// or belongs to a different show.
var ErrUnknownSeats = errors.New("seat does not belong to this show")

// ErrInvalidPartySize is returned when a waitlist join requests fewer
// than one seat.
var ErrInvalidPartySize = errors.New("requested seats must be at least 1")

// ErrInsufficientCapacity is returned when a booking would consume
// capacity currently reserved for notified waitlist parties.  The
// seats may still show as AVAILABLE; the counter is what's spoken for.
var ErrInsufficientCapacity = errors.New("not enough unreserved capacity for this booking")

// SeatConflictError reports that some requested seats were booked by
// someone else between selection and commit.  The booking is rejected
// whole; the caller should re-run the arrangement search rather than
// retry the same seats.
type SeatConflictError struct {
	SeatIDs []uint64 // ids of the seats that were already taken
	Labels  []string // human labels of the same seats, e.g. "A7"
}

func (e *SeatConflictError) Error() string {
	if len(e.Labels) > 0 {
		return fmt.Sprintf("seats already booked: %s", strings.Join(e.Labels, ", "))
	}
	return "seats already booked"
}
