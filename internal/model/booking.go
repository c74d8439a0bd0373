package model

import "time"

// Booking statuses.  Cancellation is a soft delete: a cancelled
// booking keeps its row and seat links but no longer owns the seats.
const (
	BookingActive    = "ACTIVE"
	BookingCancelled = "CANCELLED"
)

// Payment statuses.  Payment is simulated with a flat per-seat price,
// so bookings are normally created with PaymentCompleted.
const (
	PaymentPending   = "PENDING"
	PaymentCompleted = "COMPLETED"
	PaymentFailed    = "FAILED"
)

// Booking groups the seats one user bought for one show in a single
// atomic transaction.  The union of seats across all ACTIVE bookings
// of a show is disjoint and exactly the set of seats whose status is
// BOOKED.
//
// Fields:
//  ID               – primary key identifier.
//  UserID           – user who owns the booking.
//  ShowID           – show being booked.
//  BookingTime      – when the booking was committed.
//  TotalAmountCents – seat count × the show's flat per-seat price.
//  PaymentStatus    – PENDING, COMPLETED or FAILED.
//  BookingStatus    – ACTIVE or CANCELLED.
type Booking struct {
	ID               uint64    // bookings.id
	UserID           uint64    // bookings.user_id
	ShowID           uint64    // bookings.show_id
	BookingTime      time.Time // bookings.booking_time
	TotalAmountCents uint32    // bookings.total_amount_cents
	PaymentStatus    string    // bookings.payment_status
	BookingStatus    string    // bookings.booking_status
}
