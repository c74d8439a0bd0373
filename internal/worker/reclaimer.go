// Package worker runs the background jobs of the booking server.
package worker

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/movie-seat-booking/internal/repository"
	"github.com/iliyamo/movie-seat-booking/internal/service"
)

// Reclaimer periodically sweeps shows whose notified waitlist entries
// have outlived their booking window, returning the reserved capacity
// to the pool and re-running the cascade so the next parties in line
// are offered the seats.
type Reclaimer struct {
	entries  *repository.WaitlistRepo
	waitlist *service.WaitlistService
	interval time.Duration
}

// NewReclaimer wires a Reclaimer that sweeps every interval.
func NewReclaimer(entries *repository.WaitlistRepo, waitlist *service.WaitlistService, interval time.Duration) *Reclaimer {
	return &Reclaimer{entries: entries, waitlist: waitlist, interval: interval}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
// Intended to be started as a goroutine from main.
func (r *Reclaimer) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Printf("reclaimer: started, sweeping every %s", r.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("reclaimer: stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// sweep finds every show holding at least one expired notification and
// reclaims them one show at a time, each in its own transaction. A
// failing show is logged and skipped; the rest of the sweep continues.
func (r *Reclaimer) sweep(ctx context.Context) {
	now := time.Now()
	showIDs, err := r.entries.ShowIDsWithExpiredNotified(ctx, now)
	if err != nil {
		log.Printf("reclaimer: list shows with expired notifications: %v", err)
		return
	}
	for _, showID := range showIDs {
		expired, grants, err := r.waitlist.ReclaimShow(ctx, showID, now)
		if err != nil {
			log.Printf("reclaimer: show %d: %v", showID, err)
			continue
		}
		if expired > 0 {
			log.Printf("reclaimer: show %d: expired %d notification(s), promoted %d waiting parties", showID, expired, len(grants))
		}
	}
}
