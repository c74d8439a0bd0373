package service

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/iliyamo/movie-seat-booking/internal/model"
	"github.com/iliyamo/movie-seat-booking/internal/queue"
	"github.com/iliyamo/movie-seat-booking/internal/repository"
)

// BookingService runs the booking lifecycle: the all-or-nothing seat
// purchase and the cancellation that hands freed seats to the
// waitlist in the same transaction.
type BookingService struct {
	store    *repository.Store
	shows    *repository.ShowRepo
	seats    *repository.SeatRepo
	bookings *repository.BookingRepo
	entries  *repository.WaitlistRepo
	waitlist *WaitlistService
	events   EventPublisher // may be nil
}

// NewBookingService wires a BookingService.
func NewBookingService(store *repository.Store, shows *repository.ShowRepo, seats *repository.SeatRepo, bookings *repository.BookingRepo, entries *repository.WaitlistRepo, waitlist *WaitlistService, events EventPublisher) *BookingService {
	return &BookingService{
		store:    store,
		shows:    shows,
		seats:    seats,
		bookings: bookings,
		entries:  entries,
		waitlist: waitlist,
		events:   events,
	}
}

// Book purchases the given seats of a show for the user, all or
// nothing.  Under the show lock it re-checks every seat: if any is
// already BOOKED the whole request fails with a SeatConflictError
// listing the losers, and nothing is written.  On success the seats
// flip to BOOKED, a booking row with its seat assignments is created,
// and the capacity counter drops by the party size.
//
// A user booking while holding an active waitlist entry fulfils that
// entry, whether it is still WAITING or already NOTIFIED.  For a
// NOTIFIED entry the capacity the notification had reserved is
// credited back before the purchase is charged, so the counter is not
// debited twice for the same person.
func (s *BookingService) Book(ctx context.Context, showID, userID uint64, seatIDs []uint64) (*model.Booking, error) {
	seatIDs = dedupeIDs(seatIDs)
	if len(seatIDs) == 0 {
		return nil, ErrNoSeatsRequested
	}

	var (
		booking *model.Booking
		labels  []string
		grants  []Grant
	)
	now := time.Now()
	err := s.store.WithShowTx(ctx, showID, func(tx *sql.Tx) error {
		booking = nil
		labels = nil
		grants = nil

		show, err := s.shows.GetTx(ctx, tx, showID)
		if err != nil {
			return err
		}
		seats, err := s.seats.GetByIDsTx(ctx, tx, showID, seatIDs)
		if err != nil {
			return err
		}
		if len(seats) != len(seatIDs) {
			return ErrUnknownSeats
		}
		conflict := &SeatConflictError{}
		for _, seat := range seats {
			if seat.Status != model.SeatAvailable {
				conflict.SeatIDs = append(conflict.SeatIDs, seat.ID)
				conflict.Labels = append(conflict.Labels, seat.Label())
			}
		}
		if len(conflict.SeatIDs) > 0 {
			return conflict
		}

		// Capacity already reserved for a notified waitlist entry of
		// this user is returned before the purchase takes its share.
		// Other parties' reservations stay off limits even while their
		// seats still read AVAILABLE.
		credit := 0
		entry, err := s.entries.ActiveByUserAndShowTx(ctx, tx, userID, showID)
		if err != nil {
			return err
		}
		if entry != nil && entry.Status == model.WaitlistNotified {
			credit = entry.RequestedSeats
		}
		if show.AvailableSeats+credit < len(seatIDs) {
			return ErrInsufficientCapacity
		}

		if err := s.seats.BulkUpdateStatusTx(ctx, tx, showID, seatIDs, model.SeatBooked); err != nil {
			return err
		}

		booking = &model.Booking{
			UserID:           userID,
			ShowID:           showID,
			TotalAmountCents: uint32(len(seatIDs)) * show.PricePerSeatCents,
			PaymentStatus:    model.PaymentCompleted,
			BookingStatus:    model.BookingActive,
		}
		if err := s.bookings.CreateTx(ctx, tx, booking); err != nil {
			return err
		}
		if err := s.bookings.CreateSeatsBulkTx(ctx, tx, booking.ID, seatIDs); err != nil {
			return err
		}

		// Booking fulfils any active waitlist entry of the caller, even
		// one still WAITING: the party is seated, so leaving the entry
		// queued would let a later cascade reserve capacity for it that
		// no one will ever claim.
		if entry != nil && entry.ActiveWaitlist() {
			if err := s.entries.MarkFulfilledTx(ctx, tx, entry.ID); err != nil {
				return err
			}
		}
		if err := s.shows.AdjustAvailableSeatsTx(ctx, tx, showID, credit-len(seatIDs)); err != nil {
			return err
		}

		// A notified party booking fewer seats than it reserved frees
		// the surplus; offer it down the queue right away.
		if credit > len(seatIDs) {
			if grants, err = s.waitlist.CascadeTx(ctx, tx, showID, now); err != nil {
				return err
			}
		}

		for _, seat := range seats {
			labels = append(labels, seat.Label())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishConfirmed(ctx, booking, labels)
	s.waitlist.PublishGrants(ctx, grants, now)
	return booking, nil
}

// Cancel voids the user's active booking, frees its seats, returns
// their capacity, and runs the waitlist cascade before the
// transaction commits so freed seats are offered in queue order with
// no window for a racing walk-in.  Cancelling an already-cancelled or
// foreign booking yields repository.ErrBookingNotFound.  It returns
// the number of seats released.
func (s *BookingService) Cancel(ctx context.Context, bookingID, userID uint64) (int, error) {
	showID, err := s.bookings.ShowIDForUser(ctx, bookingID, userID)
	if err != nil {
		return 0, err
	}

	var (
		released int
		grants   []Grant
	)
	now := time.Now()
	err = s.store.WithShowTx(ctx, showID, func(tx *sql.Tx) error {
		released = 0
		grants = nil

		if err := s.bookings.CancelTx(ctx, tx, bookingID, userID); err != nil {
			return err
		}
		seatIDs, err := s.bookings.SeatIDsTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if err := s.seats.BulkUpdateStatusTx(ctx, tx, showID, seatIDs, model.SeatAvailable); err != nil {
			return err
		}
		if err := s.shows.AdjustAvailableSeatsTx(ctx, tx, showID, len(seatIDs)); err != nil {
			return err
		}
		released = len(seatIDs)
		grants, err = s.waitlist.CascadeTx(ctx, tx, showID, now)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.waitlist.PublishGrants(ctx, grants, now)
	return released, nil
}

func (s *BookingService) publishConfirmed(ctx context.Context, b *model.Booking, labels []string) {
	if s.events == nil || b == nil {
		return
	}
	ev := queue.BookingConfirmedEvent{
		BookingID:        b.ID,
		UserID:           b.UserID,
		ShowID:           b.ShowID,
		SeatLabels:       labels,
		TotalAmountCents: b.TotalAmountCents,
		BookedAt:         b.BookingTime.UTC().Format(time.RFC3339),
	}
	if err := s.events.PublishBookingConfirmed(ctx, ev); err != nil {
		log.Printf("booking: publish confirmed event for booking %d: %v", b.ID, err)
	}
}

// dedupeIDs drops repeated ids while keeping first-seen order.
func dedupeIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
