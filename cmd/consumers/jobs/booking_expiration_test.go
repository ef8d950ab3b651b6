package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeExpirer struct {
	batches []int
	calls   int
	cutoffs []time.Time
	err     error
}

func (f *fakeExpirer) ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	if f.err != nil {
		return 0, f.err
	}
	if f.calls >= len(f.batches) {
		return 0, nil
	}
	n := f.batches[f.calls]
	f.calls++
	return n, nil
}

func TestCheckExpiredBookingsDrainsBatches(t *testing.T) {
	expirer := &fakeExpirer{batches: []int{expirationBatchSize, expirationBatchSize, 3}}
	job := NewBookingExpirationJob(expirer, time.Hour, time.Minute)

	job.checkExpiredBookings(context.Background())

	assert.Equal(t, 3, expirer.calls)
	for _, cutoff := range expirer.cutoffs {
		assert.WithinDuration(t, time.Now().Add(-time.Hour), cutoff, 5*time.Second)
	}
}

func TestCheckExpiredBookingsStopsOnError(t *testing.T) {
	expirer := &fakeExpirer{err: errors.New("connection refused")}
	job := NewBookingExpirationJob(expirer, time.Hour, time.Minute)

	job.checkExpiredBookings(context.Background())

	assert.Len(t, expirer.cutoffs, 1)
}
