package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db), mock
}

func expectShowLock(mock sqlmock.Sqlmock, showID uint64) {
	mock.ExpectQuery(`SELECT id FROM shows WHERE id = \? FOR UPDATE`).
		WithArgs(showID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(showID))
}

func TestWithShowTxCommitsOnSuccess(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	expectShowLock(mock, 42)
	mock.ExpectCommit()

	ran := false
	err := store.WithShowTx(context.Background(), 42, func(tx *sql.Tx) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithShowTxRollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	expectShowLock(mock, 42)
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := store.WithShowTx(context.Background(), 42, func(tx *sql.Tx) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithShowTxUnknownShow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM shows WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(9)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := store.WithShowTx(context.Background(), 9, func(tx *sql.Tx) error {
		t.Fatal("fn must not run when the show does not exist")
		return nil
	})
	assert.ErrorIs(t, err, ErrShowNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithShowTxRetriesOnceAfterDeadlock(t *testing.T) {
	store, mock := newMockStore(t)

	deadlock := &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}

	mock.ExpectBegin()
	expectShowLock(mock, 42)
	mock.ExpectRollback()

	mock.ExpectBegin()
	expectShowLock(mock, 42)
	mock.ExpectCommit()

	calls := 0
	err := store.WithShowTx(context.Background(), 42, func(tx *sql.Tx) error {
		calls++
		if calls == 1 {
			return deadlock
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithShowTxDoesNotRetryTwice(t *testing.T) {
	store, mock := newMockStore(t)

	timeout := &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}

	mock.ExpectBegin()
	expectShowLock(mock, 42)
	mock.ExpectRollback()

	mock.ExpectBegin()
	expectShowLock(mock, 42)
	mock.ExpectRollback()

	calls := 0
	err := store.WithShowTx(context.Background(), 42, func(tx *sql.Tx) error {
		calls++
		return timeout
	})
	assert.ErrorIs(t, err, timeout)
	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(&mysql.MySQLError{Number: 1213}))
	assert.True(t, isTransient(&mysql.MySQLError{Number: 1205}))
	assert.False(t, isTransient(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isTransient(errors.New("plain")))
	assert.False(t, isTransient(nil))
}
