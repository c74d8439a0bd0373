package model

import "time"

// Waitlist entry statuses.  Legal transitions: WAITING→NOTIFIED (the
// cascade reserved capacity), NOTIFIED→EXPIRED (the reclaimer took the
// reservation back), WAITING/NOTIFIED→FULFILLED (the party booked).
// An entry never goes from WAITING straight to EXPIRED.
const (
	WaitlistWaiting   = "WAITING"
	WaitlistNotified  = "NOTIFIED"
	WaitlistFulfilled = "FULFILLED"
	WaitlistExpired   = "EXPIRED"
)

// WaitlistEntry is one party queued for capacity on a sold-out show.
// Entries are ordered strictly by JoinTime (FIFO).  PriorityScore is
// stored for compatibility with the schema but is never consulted when
// draining the queue.
//
// Fields:
//  ID             – primary key identifier.
//  UserID         – user waiting; at most one active entry per (user, show).
//  ShowID         – show being waited on.
//  RequestedSeats – party size the entry needs at once.
//  JoinTime       – queue position; earlier joins drain first.
//  Status         – WAITING, NOTIFIED, FULFILLED or EXPIRED.
//  PriorityScore  – stored but unused by the cascade.
//  ExpiryTime     – set when NOTIFIED; reservation deadline.
type WaitlistEntry struct {
	ID             uint64     // waitlist.id
	UserID         uint64     // waitlist.user_id
	ShowID         uint64     // waitlist.show_id
	RequestedSeats int        // waitlist.requested_seats
	JoinTime       time.Time  // waitlist.join_time
	Status         string     // waitlist.status
	PriorityScore  int        // waitlist.priority_score
	ExpiryTime     *time.Time // waitlist.expiry_time (nullable)
}

// ActiveWaitlist reports whether the entry still occupies the queue or
// a capacity reservation.
func (w WaitlistEntry) ActiveWaitlist() bool {
	return w.Status == WaitlistWaiting || w.Status == WaitlistNotified
}
