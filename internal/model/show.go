package model

import "time"

// Show is a single screening of a movie.  Each show owns its seat
// inventory and an available_seats counter.  The counter is the
// authoritative free-capacity figure: every seat booking, seat release
// and waitlist capacity reservation adjusts it inside the same
// per-show transaction that performs the change.
//
// Fields:
//  ID                – primary key identifier.
//  MovieID           – movie being screened.
//  ShowDate          – calendar date of the screening.
//  ShowTime          – start time (HH:MM) on that date.
//  TotalSeats        – number of seats in the theater for this show.
//  AvailableSeats    – free capacity counter (see above).
//  PricePerSeatCents – flat price charged per seat, in cents.
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp.
type Show struct {
	ID                uint64    // shows.id
	MovieID           uint64    // shows.movie_id
	ShowDate          time.Time // shows.show_date
	ShowTime          string    // shows.show_time
	TotalSeats        uint32    // shows.total_seats
	AvailableSeats    int       // shows.available_seats
	PricePerSeatCents uint32    // shows.price_per_seat_cents
	CreatedAt         time.Time // shows.created_at
	UpdatedAt         time.Time // shows.updated_at
}
