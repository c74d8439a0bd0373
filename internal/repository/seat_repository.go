package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/movie-seat-booking/internal/model"
)

// SeatRepo provides access to the per-show seat inventory.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// ListByShow returns every seat of a show ordered by row label then
// seat number.  Used for the public seat map.
func (r *SeatRepo) ListByShow(ctx context.Context, showID uint64) ([]model.Seat, error) {
	const q = `SELECT id, show_id, row_label, seat_number, status
	           FROM seats
	           WHERE show_id = ?
	           ORDER BY row_label, seat_number`
	return r.querySeats(ctx, q, showID)
}

// ListAvailableByShow returns the free seats of a show in row-major
// order.  This is the inventory snapshot the arrangement search runs
// over; it is read outside any transaction because search tolerates
// staleness.
func (r *SeatRepo) ListAvailableByShow(ctx context.Context, showID uint64) ([]model.Seat, error) {
	const q = `SELECT id, show_id, row_label, seat_number, status
	           FROM seats
	           WHERE show_id = ? AND status = 'AVAILABLE'
	           ORDER BY row_label, seat_number`
	return r.querySeats(ctx, q, showID)
}

func (r *SeatRepo) querySeats(ctx context.Context, q string, args ...interface{}) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.ShowID, &s.RowLabel, &s.SeatNumber, &s.Status); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// GetByIDsTx loads the given seats of one show inside a transaction.
// Seats from other shows are silently absent from the result, which
// lets the caller reject cross-show seat ids.
func (r *SeatRepo) GetByIDsTx(ctx context.Context, tx *sql.Tx, showID uint64, seatIDs []uint64) ([]model.Seat, error) {
	if len(seatIDs) == 0 {
		return []model.Seat{}, nil
	}
	q := `SELECT id, show_id, row_label, seat_number, status
	      FROM seats
	      WHERE show_id = ? AND id IN (` + placeholders(len(seatIDs)) + `)
	      ORDER BY row_label, seat_number`
	args := make([]interface{}, 0, len(seatIDs)+1)
	args = append(args, showID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]model.Seat, 0, len(seatIDs))
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.ShowID, &s.RowLabel, &s.SeatNumber, &s.Status); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// BulkUpdateStatusTx sets the status of the given seats of one show in
// a single statement.  The caller is responsible for adjusting the
// show's capacity counter in the same transaction.
func (r *SeatRepo) BulkUpdateStatusTx(ctx context.Context, tx *sql.Tx, showID uint64, seatIDs []uint64, status string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	q := `UPDATE seats SET status = ? WHERE show_id = ? AND id IN (` + placeholders(len(seatIDs)) + `)`
	args := make([]interface{}, 0, len(seatIDs)+2)
	args = append(args, status, showID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// placeholders renders "?, ?, ?" for IN clauses.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
