package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const expirationBatchSize = 200

// PendingExpirer cancels pending bookings older than a cutoff
type PendingExpirer interface {
	ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// BookingExpirationJob cancels bookings a vendor never answered, returning their seats
type BookingExpirationJob struct {
	expirer  PendingExpirer
	ttl      time.Duration
	interval time.Duration
	ticker   *time.Ticker
	done     chan bool
	running  sync.Mutex
}

func NewBookingExpirationJob(expirer PendingExpirer, ttl, interval time.Duration) *BookingExpirationJob {
	return &BookingExpirationJob{
		expirer:  expirer,
		ttl:      ttl,
		interval: interval,
		done:     make(chan bool),
	}
}

// Start runs a check immediately and then on every interval
func (j *BookingExpirationJob) Start(ctx context.Context) {
	slog.Info("Starting booking expiration job", "check_interval", j.interval, "ttl", j.ttl)

	j.ticker = time.NewTicker(j.interval)

	go j.checkExpiredBookings(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.checkExpiredBookings(ctx)
			case <-j.done:
				slog.Info("Booking expiration job stopped")
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (j *BookingExpirationJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

// checkExpiredBookings drains stale pending bookings in batches. Overlapping
// ticks are skipped while a previous run is still going.
func (j *BookingExpirationJob) checkExpiredBookings(ctx context.Context) {
	if !j.running.TryLock() {
		return
	}
	defer j.running.Unlock()

	cutoff := time.Now().Add(-j.ttl)
	total := 0
	for {
		expired, err := j.expirer.ExpirePending(ctx, cutoff, expirationBatchSize)
		if err != nil {
			slog.Error("Failed to expire bookings", "error", err)
			return
		}
		total += expired
		if expired < expirationBatchSize {
			break
		}
	}

	if total > 0 {
		slog.Info("Expired pending bookings", "count", total, "cutoff", cutoff)
	} else {
		slog.Debug("No expired bookings found")
	}
}
