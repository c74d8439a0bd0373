// Package repository implements data access for shows, seats, bookings
// and the waitlist over database/sql.  Methods whose name ends in Tx
// run inside a caller-supplied transaction; everything that mutates
// the (seats, capacity counter, waitlist) triple of a show must go
// through Store.WithShowTx so that one show's state changes appear
// all-at-once.
package repository

import "errors"

// ErrShowNotFound is returned when a show lookup or show-scoped
// transaction targets an id with no row.
var ErrShowNotFound = errors.New("show not found")

// ErrBookingNotFound is returned when a booking does not exist, is not
// owned by the caller, or is no longer ACTIVE.  Cancelling twice hits
// this error rather than crashing or double-releasing seats.
var ErrBookingNotFound = errors.New("booking not found")

// ErrAlreadyWaiting is returned when a user tries to join a show's
// waitlist while already holding a WAITING or NOTIFIED entry for it.
var ErrAlreadyWaiting = errors.New("already on waitlist for this show")
