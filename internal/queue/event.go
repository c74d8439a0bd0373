// Package queue defines message payloads exchanged over the message
// broker plus the publisher and the background consumer that turn
// them into notification log lines.
package queue

// Queue names. The default exchange routes by queue name, so these
// double as routing keys.
const (
	BookingConfirmedQueue = "booking.confirmed"
	WaitlistNotifiedQueue = "waitlist.notified"
)

// BookingConfirmedEvent is published when a booking commits. It
// carries enough for downstream consumers to log or notify without
// querying the primary database.
type BookingConfirmedEvent struct {
	BookingID        uint64   `json:"booking_id"`
	UserID           uint64   `json:"user_id"`
	ShowID           uint64   `json:"show_id"`
	SeatLabels       []string `json:"seats"`
	TotalAmountCents uint32   `json:"total_amount_cents"`
	BookedAt         string   `json:"booked_at"`
}

// WaitlistNotifiedEvent is published when a cascade pass promotes a
// waitlist entry. The promoted user has until ExpiresAt to book
// before the reservation lapses back to the queue.
type WaitlistNotifiedEvent struct {
	EntryID        uint64 `json:"entry_id"`
	UserID         uint64 `json:"user_id"`
	ShowID         uint64 `json:"show_id"`
	RequestedSeats int    `json:"requested_seats"`
	NotifiedAt     string `json:"notified_at"`
	ExpiresAt      string `json:"expires_at"`
}
