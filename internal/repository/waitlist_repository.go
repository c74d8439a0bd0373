package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/movie-seat-booking/internal/model"
)

// WaitlistRepo provides access to the per-show FIFO waitlist.  Entry
// order is defined by join_time ascending; the stored priority_score
// column is carried through reads but never used for ordering.
type WaitlistRepo struct {
	db *sql.DB
}

// NewWaitlistRepo constructs a WaitlistRepo with the given DB handle.
func NewWaitlistRepo(db *sql.DB) *WaitlistRepo { return &WaitlistRepo{db: db} }

const waitlistColumns = `id, user_id, show_id, requested_seats, join_time, status, priority_score, expiry_time`

func scanEntries(rows *sql.Rows) ([]model.WaitlistEntry, error) {
	defer rows.Close()
	entries := make([]model.WaitlistEntry, 0)
	for rows.Next() {
		var e model.WaitlistEntry
		var expiry sql.NullTime
		if err := rows.Scan(&e.ID, &e.UserID, &e.ShowID, &e.RequestedSeats,
			&e.JoinTime, &e.Status, &e.PriorityScore, &expiry); err != nil {
			return nil, err
		}
		if expiry.Valid {
			t := expiry.Time
			e.ExpiryTime = &t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CreateTx inserts a WAITING entry inside the transaction and
// populates the generated id and join time.  Uniqueness of the active
// entry per (user, show) is enforced by ActiveByUserAndShowTx before
// the insert, under the show lock.
func (r *WaitlistRepo) CreateTx(ctx context.Context, tx *sql.Tx, e *model.WaitlistEntry) error {
	const q = `INSERT INTO waitlist (user_id, show_id, requested_seats, join_time, status, priority_score)
	           VALUES (?, ?, ?, UTC_TIMESTAMP(), 'WAITING', ?)`
	res, err := tx.ExecContext(ctx, q, e.UserID, e.ShowID, e.RequestedSeats, e.PriorityScore)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	e.Status = model.WaitlistWaiting
	return tx.QueryRowContext(ctx,
		`SELECT join_time FROM waitlist WHERE id = ?`, e.ID).Scan(&e.JoinTime)
}

// ActiveByUserAndShowTx returns the user's WAITING or NOTIFIED entry
// for a show, or nil when none exists.
func (r *WaitlistRepo) ActiveByUserAndShowTx(ctx context.Context, tx *sql.Tx, userID, showID uint64) (*model.WaitlistEntry, error) {
	const q = `SELECT ` + waitlistColumns + `
	           FROM waitlist
	           WHERE user_id = ? AND show_id = ? AND status IN ('WAITING', 'NOTIFIED')
	           ORDER BY join_time
	           LIMIT 1`
	rows, err := tx.QueryContext(ctx, q, userID, showID)
	if err != nil {
		return nil, err
	}
	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// WaitingByShowTx snapshots the WAITING entries of a show in FIFO
// order.  The cascade iterates this snapshot; entries that change
// status mid-pass were changed by the pass itself.
func (r *WaitlistRepo) WaitingByShowTx(ctx context.Context, tx *sql.Tx, showID uint64) ([]model.WaitlistEntry, error) {
	const q = `SELECT ` + waitlistColumns + `
	           FROM waitlist
	           WHERE show_id = ? AND status = 'WAITING'
	           ORDER BY join_time ASC, id ASC`
	rows, err := tx.QueryContext(ctx, q, showID)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// MarkNotifiedTx transitions a WAITING entry to NOTIFIED with the
// given expiry deadline.
func (r *WaitlistRepo) MarkNotifiedTx(ctx context.Context, tx *sql.Tx, entryID uint64, expiry time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE waitlist SET status = 'NOTIFIED', expiry_time = ? WHERE id = ? AND status = 'WAITING'`,
		expiry.UTC().Format("2006-01-02 15:04:05"), entryID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("waitlist entry not in WAITING state")
	}
	return nil
}

// MarkFulfilledTx terminates an active entry because its party booked.
func (r *WaitlistRepo) MarkFulfilledTx(ctx context.Context, tx *sql.Tx, entryID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE waitlist SET status = 'FULFILLED' WHERE id = ? AND status IN ('WAITING', 'NOTIFIED')`,
		entryID)
	return err
}

// ExpireNotifiedTx transitions every NOTIFIED entry of a show whose
// deadline has passed to EXPIRED and returns the affected entries so
// the caller can return their reserved capacity.  Selecting before
// updating keeps the operation exactly-once: a second sweep finds no
// NOTIFIED rows past their deadline.
func (r *WaitlistRepo) ExpireNotifiedTx(ctx context.Context, tx *sql.Tx, showID uint64, now time.Time) ([]model.WaitlistEntry, error) {
	cutoff := now.UTC().Format("2006-01-02 15:04:05")
	const sel = `SELECT ` + waitlistColumns + `
	             FROM waitlist
	             WHERE show_id = ? AND status = 'NOTIFIED' AND expiry_time <= ?
	             ORDER BY join_time ASC, id ASC`
	rows, err := tx.QueryContext(ctx, sel, showID, cutoff)
	if err != nil {
		return nil, err
	}
	expired, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return expired, nil
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE waitlist SET status = 'EXPIRED' WHERE show_id = ? AND status = 'NOTIFIED' AND expiry_time <= ?`,
		showID, cutoff)
	if err != nil {
		return nil, err
	}
	return expired, nil
}

// ShowIDsWithExpiredNotified lists shows that currently hold at least
// one NOTIFIED entry past its deadline.  The reclaimer scans this
// outside any transaction, then handles each show under its own lock.
func (r *WaitlistRepo) ShowIDsWithExpiredNotified(ctx context.Context, now time.Time) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT show_id FROM waitlist WHERE status = 'NOTIFIED' AND expiry_time <= ?`,
		now.UTC().Format("2006-01-02 15:04:05"))
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

// Position reports the user's standing on a show's waitlist: 0 when
// NOTIFIED (capacity reserved, go book), -1 when not on the list, and
// n >= 1 for the position in the WAITING queue.
func (r *WaitlistRepo) Position(ctx context.Context, userID, showID uint64) (int, error) {
	const q = `SELECT ` + waitlistColumns + `
	           FROM waitlist
	           WHERE user_id = ? AND show_id = ? AND status IN ('WAITING', 'NOTIFIED')
	           ORDER BY join_time
	           LIMIT 1`
	rows, err := r.db.QueryContext(ctx, q, userID, showID)
	if err != nil {
		return -1, err
	}
	entries, err := scanEntries(rows)
	if err != nil {
		return -1, err
	}
	if len(entries) == 0 {
		return -1, nil
	}
	e := entries[0]
	if e.Status == model.WaitlistNotified {
		return 0, nil
	}
	var ahead int
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM waitlist
		 WHERE show_id = ? AND status = 'WAITING' AND (join_time < ? OR (join_time = ? AND id < ?))`,
		showID, e.JoinTime, e.JoinTime, e.ID).Scan(&ahead)
	if err != nil {
		return -1, err
	}
	return ahead + 1, nil
}
