package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockBookingRepo(t *testing.T) (*BookingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewBookingRepo(db), mock
}

func TestCancelTxFlipsActiveBooking(t *testing.T) {
	repo, mock := newMockBookingRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE bookings SET booking_status = 'CANCELLED'`).
		WithArgs(uint64(3), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := repo.db.Begin()
	require.NoError(t, err)

	assert.NoError(t, repo.CancelTx(context.Background(), tx, 3, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelTxSecondCancelIsNotFound(t *testing.T) {
	repo, mock := newMockBookingRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE bookings SET booking_status = 'CANCELLED'`).
		WithArgs(uint64(3), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := repo.db.Begin()
	require.NoError(t, err)

	err = repo.CancelTx(context.Background(), tx, 3, 5)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestShowIDForUserRejectsForeignBooking(t *testing.T) {
	repo, mock := newMockBookingRepo(t)

	mock.ExpectQuery(`SELECT show_id FROM bookings`).
		WithArgs(uint64(3), uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"show_id"}))

	_, err := repo.ShowIDForUser(context.Background(), 3, 99)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
