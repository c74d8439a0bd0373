package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/movie-seat-booking/internal/model"
)

// ShowRepo provides access to shows and the show-level free-capacity
// counter.  The counter is only ever adjusted inside a show
// transaction; plain reads may observe it between operations.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo { return &ShowRepo{db: db} }

const showColumns = `id, movie_id, show_date, show_time, total_seats, available_seats, price_per_seat_cents, created_at, updated_at`

func scanShow(row *sql.Row) (*model.Show, error) {
	var sh model.Show
	err := row.Scan(&sh.ID, &sh.MovieID, &sh.ShowDate, &sh.ShowTime,
		&sh.TotalSeats, &sh.AvailableSeats, &sh.PricePerSeatCents,
		&sh.CreatedAt, &sh.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &sh, nil
}

// GetByID loads a show outside any transaction.
func (r *ShowRepo) GetByID(ctx context.Context, showID uint64) (*model.Show, error) {
	return scanShow(r.db.QueryRowContext(ctx,
		`SELECT `+showColumns+` FROM shows WHERE id = ?`, showID))
}

// MovieByShow loads the movie a show screens.  Movies are reference
// data owned elsewhere; this is the only read path the service needs.
func (r *ShowRepo) MovieByShow(ctx context.Context, showID uint64) (*model.Movie, error) {
	var m model.Movie
	err := r.db.QueryRowContext(ctx,
		`SELECT m.id, m.title, m.genre, m.duration_min
		 FROM movies m
		 JOIN shows s ON s.movie_id = m.id
		 WHERE s.id = ?`, showID).
		Scan(&m.ID, &m.Title, &m.Genre, &m.DurationMin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetTx loads a show inside a transaction.  Combined with the row lock
// taken by Store.WithShowTx this gives the current committed counter.
func (r *ShowRepo) GetTx(ctx context.Context, tx *sql.Tx, showID uint64) (*model.Show, error) {
	return scanShow(tx.QueryRowContext(ctx,
		`SELECT `+showColumns+` FROM shows WHERE id = ?`, showID))
}

// AvailableSeatsTx re-reads the free-capacity counter inside the
// transaction.  The cascade calls this per entry because earlier
// grants in the same pass change the value.
func (r *ShowRepo) AvailableSeatsTx(ctx context.Context, tx *sql.Tx, showID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT available_seats FROM shows WHERE id = ?`, showID).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrShowNotFound
	}
	return n, err
}

// AdjustAvailableSeatsTx moves the counter by delta (negative when
// seats or capacity are taken, positive when released).  The caller
// must apply it in the same transaction as the seat or waitlist
// mutation it accounts for.
func (r *ShowRepo) AdjustAvailableSeatsTx(ctx context.Context, tx *sql.Tx, showID uint64, delta int) error {
	if delta == 0 {
		return nil
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE shows SET available_seats = available_seats + ? WHERE id = ?`, delta, showID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrShowNotFound
	}
	return nil
}
