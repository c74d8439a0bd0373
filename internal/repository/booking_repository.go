package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/movie-seat-booking/internal/model"
)

// BookingRepo provides access to bookings and the booking_seats join
// relation.  All timestamps are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts the booking inside the given transaction and
// populates its generated ID and booking time.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (user_id, show_id, booking_time, total_amount_cents, payment_status, booking_status)
	           VALUES (?, ?, UTC_TIMESTAMP(), ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.UserID, b.ShowID, b.TotalAmountCents, b.PaymentStatus, b.BookingStatus)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		`SELECT booking_time FROM bookings WHERE id = ?`, b.ID).Scan(&b.BookingTime)
}

// CreateSeatsBulkTx links the booking to its seats in one statement.
func (r *BookingRepo) CreateSeatsBulkTx(ctx context.Context, tx *sql.Tx, bookingID uint64, seatIDs []uint64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO booking_seats (booking_id, seat_id) VALUES `)
	args := make([]interface{}, 0, len(seatIDs)*2)
	for i, sid := range seatIDs {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?)")
		args = append(args, bookingID, sid)
	}
	_, err := tx.ExecContext(ctx, sb.String(), args...)
	return err
}

// GetActiveForUserTx loads an ACTIVE booking owned by the user inside
// the transaction.  ErrBookingNotFound covers all three miss cases so
// callers cannot distinguish foreign bookings from missing ones.
func (r *BookingRepo) GetActiveForUserTx(ctx context.Context, tx *sql.Tx, bookingID, userID uint64) (*model.Booking, error) {
	const q = `SELECT id, user_id, show_id, booking_time, total_amount_cents, payment_status, booking_status
	           FROM bookings
	           WHERE id = ? AND user_id = ? AND booking_status = 'ACTIVE'`
	var b model.Booking
	err := tx.QueryRowContext(ctx, q, bookingID, userID).Scan(
		&b.ID, &b.UserID, &b.ShowID, &b.BookingTime,
		&b.TotalAmountCents, &b.PaymentStatus, &b.BookingStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// ShowIDForUser returns the show a booking belongs to, restricted to
// ACTIVE bookings of the given user.  Cancel uses it to know which
// show transaction to open before re-checking everything inside it.
func (r *BookingRepo) ShowIDForUser(ctx context.Context, bookingID, userID uint64) (uint64, error) {
	var showID uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT show_id FROM bookings WHERE id = ? AND user_id = ? AND booking_status = 'ACTIVE'`,
		bookingID, userID).Scan(&showID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrBookingNotFound
	}
	return showID, err
}

// CancelTx flips an ACTIVE booking to CANCELLED.  The status predicate
// makes the operation idempotent: a second cancel matches no row and
// reports ErrBookingNotFound without touching seats.
func (r *BookingRepo) CancelTx(ctx context.Context, tx *sql.Tx, bookingID, userID uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET booking_status = 'CANCELLED'
		 WHERE id = ? AND user_id = ? AND booking_status = 'ACTIVE'`,
		bookingID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// SeatIDsTx returns the seats linked to a booking.
func (r *BookingRepo) SeatIDsTx(ctx context.Context, tx *sql.Tx, bookingID uint64) ([]uint64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT seat_id FROM booking_seats WHERE booking_id = ?`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// BookingDetail is a booking joined with its show, movie and seat
// labels for display to the owning user.
type BookingDetail struct {
	ID               uint64    `json:"id"`
	ShowID           uint64    `json:"show_id"`
	MovieTitle       string    `json:"movie_title"`
	ShowDate         string    `json:"show_date"`
	ShowTime         string    `json:"show_time"`
	BookingTime      time.Time `json:"booking_time"`
	TotalAmountCents uint32    `json:"total_amount_cents"`
	PaymentStatus    string    `json:"payment_status"`
	BookingStatus    string    `json:"booking_status"`
	Seats            []string  `json:"seats"`
}

// ListByUser returns the user's bookings, newest first, with seat
// labels resolved.  Seats for all bookings are fetched in a single IN
// query and stitched in by booking id.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.show_id, m.title,
	                  DATE_FORMAT(s.show_date, '%Y-%m-%d'), s.show_time,
	                  b.booking_time, b.total_amount_cents, b.payment_status, b.booking_status
	           FROM bookings b
	           JOIN shows s ON s.id = b.show_id
	           JOIN movies m ON m.id = s.movie_id
	           WHERE b.user_id = ?
	           ORDER BY b.booking_time DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d BookingDetail
		if err := rows.Scan(&d.ID, &d.ShowID, &d.MovieTitle, &d.ShowDate, &d.ShowTime,
			&d.BookingTime, &d.TotalAmountCents, &d.PaymentStatus, &d.BookingStatus); err != nil {
			return nil, err
		}
		d.Seats = []string{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}

	args := make([]interface{}, 0, len(details))
	for _, d := range details {
		args = append(args, d.ID)
	}
	seatQ := `SELECT bs.booking_id, CONCAT(se.row_label, se.seat_number)
	          FROM booking_seats bs
	          JOIN seats se ON se.id = bs.seat_id
	          WHERE bs.booking_id IN (` + placeholders(len(details)) + `)
	          ORDER BY bs.booking_id, se.row_label, se.seat_number`
	srows, err := r.db.QueryContext(ctx, seatQ, args...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var bid uint64
		var label string
		if err := srows.Scan(&bid, &label); err != nil {
			return nil, err
		}
		if idx, ok := index[bid]; ok {
			details[idx].Seats = append(details[idx].Seats, label)
		}
	}
	return details, srows.Err()
}
