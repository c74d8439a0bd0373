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

// EventPublisher sends domain events to the message broker.  Publish
// failures are logged and swallowed by callers: events are advisory
// and must never undo a committed transaction.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
	PublishWaitlistNotified(ctx context.Context, ev queue.WaitlistNotifiedEvent) error
}

// Grant records one waitlist promotion decided by a cascade pass: the
// entry moved WAITING→NOTIFIED and RequestedSeats of capacity were
// reserved for it until ExpiresAt.
type Grant struct {
	EntryID        uint64
	UserID         uint64
	ShowID         uint64
	RequestedSeats int
	ExpiresAt      time.Time
}

// WaitlistService owns the waitlist state machine: joining the queue,
// the cascade that drains it after capacity increases, and reclaiming
// expired notification reservations.
type WaitlistService struct {
	store     *repository.Store
	shows     *repository.ShowRepo
	entries   *repository.WaitlistRepo
	events    EventPublisher // may be nil; grants then go unannounced
	notifyTTL time.Duration  // how long a notified party keeps its reservation
}

// NewWaitlistService wires a WaitlistService.  notifyTTL is the
// notification window, fifteen minutes unless configured otherwise.
func NewWaitlistService(store *repository.Store, shows *repository.ShowRepo, entries *repository.WaitlistRepo, events EventPublisher, notifyTTL time.Duration) *WaitlistService {
	return &WaitlistService{
		store:     store,
		shows:     shows,
		entries:   entries,
		events:    events,
		notifyTTL: notifyTTL,
	}
}

// Join adds the user to a show's waitlist with status WAITING.  The
// duplicate check and the insert run under the show lock so two
// concurrent joins by the same user cannot both slip through.
// Returns repository.ErrAlreadyWaiting when the user already has a
// WAITING or NOTIFIED entry for the show.
func (s *WaitlistService) Join(ctx context.Context, userID, showID uint64, requestedSeats int) (*model.WaitlistEntry, error) {
	if requestedSeats < 1 {
		return nil, ErrInvalidPartySize
	}
	entry := &model.WaitlistEntry{
		UserID:         userID,
		ShowID:         showID,
		RequestedSeats: requestedSeats,
	}
	err := s.store.WithShowTx(ctx, showID, func(tx *sql.Tx) error {
		existing, err := s.entries.ActiveByUserAndShowTx(ctx, tx, userID, showID)
		if err != nil {
			return err
		}
		if existing != nil {
			return repository.ErrAlreadyWaiting
		}
		return s.entries.CreateTx(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Position reports the user's queue standing for a show: 0 when
// notified, -1 when absent, n >= 1 when waiting behind n-1 others.
func (s *WaitlistService) Position(ctx context.Context, userID, showID uint64) (int, error) {
	return s.entries.Position(ctx, userID, showID)
}

// planCascade decides which WAITING entries a cascade pass promotes.
// It walks the FIFO snapshot in order, threading the free-capacity
// accumulator through the loop: an entry that fits is granted and the
// accumulator drops by its party size; an entry that does not fit is
// skipped rather than blocked on, since a later, smaller party may
// still fit.
// The returned total is the capacity reserved by all grants together.
//
// Pure over its inputs so the policy is testable without storage.
func planCascade(waiting []model.WaitlistEntry, available int, now time.Time, ttl time.Duration) (grants []Grant, total int) {
	expiry := now.UTC().Add(ttl)
	for _, e := range waiting {
		if e.RequestedSeats < 1 || e.RequestedSeats > available {
			continue
		}
		available -= e.RequestedSeats
		total += e.RequestedSeats
		grants = append(grants, Grant{
			EntryID:        e.ID,
			UserID:         e.UserID,
			ShowID:         e.ShowID,
			RequestedSeats: e.RequestedSeats,
			ExpiresAt:      expiry,
		})
	}
	return grants, total
}

// CascadeTx drains the show's waitlist inside an already-open show
// transaction, immediately after the caller increased the capacity
// counter.  It snapshots the WAITING entries, plans the promotions
// against the current counter, marks each granted entry NOTIFIED with
// its expiry, and commits the reserved capacity as a single counter
// adjustment at the end of the pass.
//
// The returned grants must be published by the caller only after the
// surrounding transaction commits.
func (s *WaitlistService) CascadeTx(ctx context.Context, tx *sql.Tx, showID uint64, now time.Time) ([]Grant, error) {
	waiting, err := s.entries.WaitingByShowTx(ctx, tx, showID)
	if err != nil {
		return nil, err
	}
	if len(waiting) == 0 {
		return nil, nil
	}
	available, err := s.shows.AvailableSeatsTx(ctx, tx, showID)
	if err != nil {
		return nil, err
	}
	grants, total := planCascade(waiting, available, now, s.notifyTTL)
	for _, g := range grants {
		if err := s.entries.MarkNotifiedTx(ctx, tx, g.EntryID, g.ExpiresAt); err != nil {
			return nil, err
		}
	}
	if err := s.shows.AdjustAvailableSeatsTx(ctx, tx, showID, -total); err != nil {
		return nil, err
	}
	return grants, nil
}

// ReclaimShow takes back the reservations of a show's expired NOTIFIED
// entries and immediately re-runs the cascade, since the returned
// capacity may fit the next parties in line.  The whole sweep for the
// show is one transaction.  It returns how many entries expired and
// which entries the re-run promoted.
func (s *WaitlistService) ReclaimShow(ctx context.Context, showID uint64, now time.Time) (int, []Grant, error) {
	var (
		expired int
		grants  []Grant
	)
	err := s.store.WithShowTx(ctx, showID, func(tx *sql.Tx) error {
		expired = 0
		grants = nil
		lapsed, err := s.entries.ExpireNotifiedTx(ctx, tx, showID, now)
		if err != nil {
			return err
		}
		if len(lapsed) == 0 {
			return nil
		}
		expired = len(lapsed)
		returned := 0
		for _, e := range lapsed {
			returned += e.RequestedSeats
		}
		if err := s.shows.AdjustAvailableSeatsTx(ctx, tx, showID, returned); err != nil {
			return err
		}
		grants, err = s.CascadeTx(ctx, tx, showID, now)
		return err
	})
	if err != nil {
		return 0, nil, err
	}
	s.PublishGrants(ctx, grants, now)
	return expired, grants, nil
}

// PublishGrants announces promotions on the broker, best-effort.
func (s *WaitlistService) PublishGrants(ctx context.Context, grants []Grant, now time.Time) {
	if s.events == nil {
		return
	}
	for _, g := range grants {
		ev := queue.WaitlistNotifiedEvent{
			EntryID:        g.EntryID,
			UserID:         g.UserID,
			ShowID:         g.ShowID,
			RequestedSeats: g.RequestedSeats,
			ExpiresAt:      g.ExpiresAt.UTC().Format(time.RFC3339),
			NotifiedAt:     now.UTC().Format(time.RFC3339),
		}
		if err := s.events.PublishWaitlistNotified(ctx, ev); err != nil {
			log.Printf("waitlist: publish notified event for entry %d: %v", g.EntryID, err)
		}
	}
}
