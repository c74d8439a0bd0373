package model

import "strconv"

// Seat statuses.  A seat oscillates between AVAILABLE and BOOKED for
// the lifetime of its show; there is no third state.
const (
	SeatAvailable = "AVAILABLE" // seat can be offered to searchers and booked
	SeatBooked    = "BOOKED"    // seat belongs to an active booking
)

// Seat is a single seat of one show's inventory.  Seats are positioned
// by row label and 1-based number within the row, and row labels sort
// lexically in physical front-to-back order (rows are contiguous: if
// rows A and C exist, so does B).
//
// Fields:
//  ID         – primary key identifier, scoped to the show.
//  ShowID     – show that owns this seat.
//  RowLabel   – row letter or string ("A", "B", ...).
//  SeatNumber – position within the row, 1-based and contiguous.
//  Status     – SeatAvailable or SeatBooked.
type Seat struct {
	ID         uint64 // seats.id
	ShowID     uint64 // seats.show_id
	RowLabel   string // seats.row_label
	SeatNumber uint32 // seats.seat_number
	Status     string // seats.status
}

// Label renders the human form of the seat position, e.g. "A7".
func (s Seat) Label() string {
	return s.RowLabel + strconv.FormatUint(uint64(s.SeatNumber), 10)
}
