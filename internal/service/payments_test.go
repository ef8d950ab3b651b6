package service

import (
	"context"
	"errors"
	"testing"

	"seatpao/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	confirmed map[string]models.ConfirmedSession
	err       error
}

func (c *mapCache) Confirmed(ctx context.Context, sessionID string) (*models.ConfirmedSession, error) {
	if c.err != nil {
		return nil, c.err
	}
	confirmed, ok := c.confirmed[sessionID]
	if !ok {
		return nil, nil
	}
	return &confirmed, nil
}

func (c *mapCache) MarkConfirmed(ctx context.Context, sessionID string, confirmed models.ConfirmedSession) error {
	if c.err != nil {
		return c.err
	}
	c.confirmed[sessionID] = confirmed
	return nil
}

func TestConfirmationCacheShortCircuits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cache := &mapCache{confirmed: make(map[string]models.ConfirmedSession)}
	f.services.Payments.confirmations = cache

	ticket := f.approvedTicket(t, 4, 2000)
	booking := f.book(t, ticket.ID, 1)
	_, err := f.services.Bookings.AcceptBooking(ctx, booking.ID)
	require.NoError(t, err)
	session, err := f.services.Payments.InitiatePayment(ctx, booking.ID)
	require.NoError(t, err)
	f.gateway.pay(session.ID, "pi_cached")

	_, err = f.services.Payments.ConfirmPayment(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_cached", cache.confirmed[session.ID].TransactionID)
	assert.Equal(t, 1, f.gateway.retrieves)

	again, err := f.services.Payments.ConfirmPayment(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, again.Duplicate)
	assert.Equal(t, booking.ID, again.BookingID)
	assert.Equal(t, 1, f.gateway.retrieves)
}

func TestConfirmationCacheFailureIsIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.services.Payments.confirmations = &mapCache{err: errors.New("redis down")}

	ticket := f.approvedTicket(t, 4, 2000)
	booking := f.book(t, ticket.ID, 1)
	_, err := f.services.Bookings.AcceptBooking(ctx, booking.ID)
	require.NoError(t, err)
	session, err := f.services.Payments.InitiatePayment(ctx, booking.ID)
	require.NoError(t, err)
	f.gateway.pay(session.ID, "pi_nocache")

	result, err := f.services.Payments.ConfirmPayment(ctx, session.ID)
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.Equal(t, 1, f.store.PaymentCount())
}

func TestCheckoutIdempotencyKeyIsStable(t *testing.T) {
	booking := &models.Booking{ID: "b-1", TotalPrice: 4500}
	assert.Equal(t, checkoutIdempotencyKey(booking), checkoutIdempotencyKey(booking))
	assert.Equal(t, "checkout-b-1-4500", checkoutIdempotencyKey(booking))
}
