package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// MySQL error numbers treated as transient: lock wait timeout and
// deadlock.  A unit of work that fails with one of these is retried
// once before the failure is surfaced.
const (
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

// Store owns the database handle and the per-show atomicity unit.
// Every mutating operation on a show (booking, cancellation, waitlist
// join, cascade, reclaim) runs inside WithShowTx for that show, which
// serializes it against all other mutations of the same show while
// leaving other shows completely independent.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store bound to the given database.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// DB exposes the underlying handle for read-only queries that do not
// need the per-show lock.
func (s *Store) DB() *sql.DB { return s.db }

// WithShowTx runs fn inside a transaction that holds an exclusive row
// lock on the show, acquired up front with SELECT ... FOR UPDATE.  The
// lock scopes to a single show id: two shows never contend.  The
// transaction is rolled back on any error or panic and committed
// otherwise.  ErrShowNotFound is returned when the show id has no row.
//
// A transient storage failure (deadlock, lock wait timeout) retries
// the whole unit exactly once; fn must therefore be safe to re-run
// from scratch, which holds for all callers since they read every
// input inside the transaction.
func (s *Store) WithShowTx(ctx context.Context, showID uint64, fn func(tx *sql.Tx) error) error {
	err := s.runShowTx(ctx, showID, fn)
	if err != nil && isTransient(err) {
		err = s.runShowTx(ctx, showID, fn)
	}
	return err
}

func (s *Store) runShowTx(ctx context.Context, showID uint64, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin show tx: %w", err)
	}
	committed := false
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the show row for the duration of the transaction.  All
	// other WithShowTx calls for the same show block here.
	var locked uint64
	if err = tx.QueryRowContext(ctx,
		`SELECT id FROM shows WHERE id = ? FOR UPDATE`, showID,
	).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrShowNotFound
		}
		return fmt.Errorf("lock show %d: %w", showID, err)
	}

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit show tx: %w", err)
	}
	committed = true
	return nil
}

// isTransient reports whether the error is a MySQL lock conflict worth
// one transparent retry.
func isTransient(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == mysqlErrDeadlock || me.Number == mysqlErrLockWaitTimeout
}
