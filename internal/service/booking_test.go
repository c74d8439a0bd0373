package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-seat-booking/internal/queue"
	"github.com/iliyamo/movie-seat-booking/internal/repository"
)

// recordingPublisher captures published events so tests can assert on
// what left the transaction boundary.
type recordingPublisher struct {
	confirmed []queue.BookingConfirmedEvent
	notified  []queue.WaitlistNotifiedEvent
}

func (p *recordingPublisher) PublishBookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
	p.confirmed = append(p.confirmed, ev)
	return nil
}

func (p *recordingPublisher) PublishWaitlistNotified(_ context.Context, ev queue.WaitlistNotifiedEvent) error {
	p.notified = append(p.notified, ev)
	return nil
}

var (
	showCols = []string{
		"id", "movie_id", "show_date", "show_time", "total_seats",
		"available_seats", "price_per_seat_cents", "created_at", "updated_at",
	}
	seatCols  = []string{"id", "show_id", "row_label", "seat_number", "status"}
	entryCols = []string{
		"id", "user_id", "show_id", "requested_seats",
		"join_time", "status", "priority_score", "expiry_time",
	}
)

func newBookingFixture(t *testing.T) (*BookingService, *recordingPublisher, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := repository.NewStore(db)
	shows := repository.NewShowRepo(db)
	seats := repository.NewSeatRepo(db)
	bookings := repository.NewBookingRepo(db)
	entries := repository.NewWaitlistRepo(db)
	pub := &recordingPublisher{}
	waitlist := NewWaitlistService(store, shows, entries, pub, 15*time.Minute)
	return NewBookingService(store, shows, seats, bookings, entries, waitlist, pub), pub, mock
}

func expectShowLocked(mock sqlmock.Sqlmock, showID uint64) {
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM shows WHERE id = \? FOR UPDATE`).
		WithArgs(showID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(showID))
}

func showRow(available int, priceCents uint32) *sqlmock.Rows {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(showCols).
		AddRow(7, 1, now, "19:30", 10, available, priceCents, now, now)
}

func TestBookAllOrNothingOnConflict(t *testing.T) {
	svc, pub, mock := newBookingFixture(t)

	expectShowLocked(mock, 7)
	mock.ExpectQuery(`FROM shows WHERE id = \?`).
		WillReturnRows(showRow(5, 1500))
	mock.ExpectQuery(`FROM seats`).
		WillReturnRows(sqlmock.NewRows(seatCols).
			AddRow(101, 7, "A", 1, "AVAILABLE").
			AddRow(102, 7, "A", 2, "BOOKED"))
	mock.ExpectRollback()

	booking, err := svc.Book(context.Background(), 7, 42, []uint64{101, 102})
	require.Nil(t, booking)

	var conflict *SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []uint64{102}, conflict.SeatIDs)
	assert.Equal(t, []string{"A2"}, conflict.Labels)

	// The expectation script contains no UPDATE or INSERT: a conflict
	// must leave every seat and counter untouched.
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, pub.confirmed)
}

func TestBookPurchaseDebitsCounterByPartySize(t *testing.T) {
	svc, pub, mock := newBookingFixture(t)

	booked := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	expectShowLocked(mock, 7)
	mock.ExpectQuery(`FROM shows WHERE id = \?`).
		WillReturnRows(showRow(5, 1500))
	mock.ExpectQuery(`FROM seats`).
		WillReturnRows(sqlmock.NewRows(seatCols).
			AddRow(101, 7, "A", 1, "AVAILABLE").
			AddRow(102, 7, "A", 2, "AVAILABLE"))
	mock.ExpectQuery(`FROM waitlist`).
		WillReturnRows(sqlmock.NewRows(entryCols))
	mock.ExpectExec(`UPDATE seats SET status = \?`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(`SELECT booking_time FROM bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"booking_time"}).AddRow(booked))
	mock.ExpectExec(`INSERT INTO booking_seats`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE shows SET available_seats`).
		WithArgs(-2, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	booking, err := svc.Book(context.Background(), 7, 42, []uint64{101, 102})
	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Equal(t, uint64(11), booking.ID)
	assert.Equal(t, uint32(3000), booking.TotalAmountCents)
	assert.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, pub.confirmed, 1)
	assert.Equal(t, []string{"A1", "A2"}, pub.confirmed[0].SeatLabels)
}

func TestBookFulfilsWaitingEntry(t *testing.T) {
	svc, _, mock := newBookingFixture(t)

	joined := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	booked := joined.Add(2 * time.Hour)
	expectShowLocked(mock, 7)
	mock.ExpectQuery(`FROM shows WHERE id = \?`).
		WillReturnRows(showRow(5, 1500))
	mock.ExpectQuery(`FROM seats`).
		WillReturnRows(sqlmock.NewRows(seatCols).
			AddRow(101, 7, "A", 1, "AVAILABLE").
			AddRow(102, 7, "A", 2, "AVAILABLE"))
	mock.ExpectQuery(`FROM waitlist`).
		WillReturnRows(sqlmock.NewRows(entryCols).
			AddRow(31, 42, 7, 2, joined, "WAITING", 0, nil))
	mock.ExpectExec(`UPDATE seats SET status = \?`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(`SELECT booking_time FROM bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"booking_time"}).AddRow(booked))
	mock.ExpectExec(`INSERT INTO booking_seats`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	// The WAITING entry leaves the queue with the purchase; no capacity
	// credit applies since nothing was reserved for it yet.
	mock.ExpectExec(`UPDATE waitlist SET status = 'FULFILLED'`).
		WithArgs(uint64(31)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE shows SET available_seats`).
		WithArgs(-2, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := svc.Book(context.Background(), 7, 42, []uint64{101, 102})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookCreditsNotifiedReservation(t *testing.T) {
	svc, _, mock := newBookingFixture(t)

	joined := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	expiry := joined.Add(15 * time.Minute)
	booked := joined.Add(5 * time.Minute)
	// Counter is zero: all remaining capacity is reserved for this
	// user's NOTIFIED entry, and booking exactly that party size must
	// leave the counter alone (credit 2, debit 2).
	expectShowLocked(mock, 7)
	mock.ExpectQuery(`FROM shows WHERE id = \?`).
		WillReturnRows(showRow(0, 1500))
	mock.ExpectQuery(`FROM seats`).
		WillReturnRows(sqlmock.NewRows(seatCols).
			AddRow(101, 7, "A", 1, "AVAILABLE").
			AddRow(102, 7, "A", 2, "AVAILABLE"))
	mock.ExpectQuery(`FROM waitlist`).
		WillReturnRows(sqlmock.NewRows(entryCols).
			AddRow(31, 42, 7, 2, joined, "NOTIFIED", 0, expiry))
	mock.ExpectExec(`UPDATE seats SET status = \?`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(`SELECT booking_time FROM bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"booking_time"}).AddRow(booked))
	mock.ExpectExec(`INSERT INTO booking_seats`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE waitlist SET status = 'FULFILLED'`).
		WithArgs(uint64(31)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// No UPDATE shows in the script: the net counter change is zero.
	mock.ExpectCommit()

	_, err := svc.Book(context.Background(), 7, 42, []uint64{101, 102})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRejectsCapacityReservedForOthers(t *testing.T) {
	svc, _, mock := newBookingFixture(t)

	// One free seat on the counter, two physical seats still AVAILABLE:
	// the second seat's capacity belongs to someone else's NOTIFIED
	// reservation and cannot be poached.
	expectShowLocked(mock, 7)
	mock.ExpectQuery(`FROM shows WHERE id = \?`).
		WillReturnRows(showRow(1, 1500))
	mock.ExpectQuery(`FROM seats`).
		WillReturnRows(sqlmock.NewRows(seatCols).
			AddRow(101, 7, "A", 1, "AVAILABLE").
			AddRow(102, 7, "A", 2, "AVAILABLE"))
	mock.ExpectQuery(`FROM waitlist`).
		WillReturnRows(sqlmock.NewRows(entryCols))
	mock.ExpectRollback()

	booking, err := svc.Book(context.Background(), 7, 42, []uint64{101, 102})
	assert.Nil(t, booking)
	assert.ErrorIs(t, err, ErrInsufficientCapacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelReleasesSeatsAndCascades(t *testing.T) {
	svc, pub, mock := newBookingFixture(t)

	joined := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT show_id FROM bookings`).
		WithArgs(uint64(11), uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"show_id"}).AddRow(7))

	expectShowLocked(mock, 7)
	mock.ExpectExec(`UPDATE bookings SET booking_status = 'CANCELLED'`).
		WithArgs(uint64(11), uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT seat_id FROM booking_seats`).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(101).AddRow(102))
	mock.ExpectExec(`UPDATE seats SET status = \?`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE shows SET available_seats`).
		WithArgs(2, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Cascade inside the same transaction: one single waiting, two
	// seats now free, so the entry is promoted and one seat reserved.
	mock.ExpectQuery(`FROM waitlist`).
		WillReturnRows(sqlmock.NewRows(entryCols).
			AddRow(55, 99, 7, 1, joined, "WAITING", 0, nil))
	mock.ExpectQuery(`SELECT available_seats FROM shows`).
		WillReturnRows(sqlmock.NewRows([]string{"available_seats"}).AddRow(2))
	mock.ExpectExec(`UPDATE waitlist SET status = 'NOTIFIED'`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE shows SET available_seats`).
		WithArgs(-1, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	released, err := svc.Cancel(context.Background(), 11, 42)
	require.NoError(t, err)
	assert.Equal(t, 2, released)
	assert.NoError(t, mock.ExpectationsWereMet())

	// The promotion is announced only after the transaction committed.
	require.Len(t, pub.notified, 1)
	assert.Equal(t, uint64(55), pub.notified[0].EntryID)
	assert.Equal(t, uint64(99), pub.notified[0].UserID)
}
