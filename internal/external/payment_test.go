package external

import (
	"errors"
	"net/http"
	"testing"

	apperrors "seatpao/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v72"
)

func TestNewStripeGatewayRequiresKey(t *testing.T) {
	_, err := NewStripeGateway(PaymentConfig{})
	assert.Error(t, err)

	gateway, err := NewStripeGateway(PaymentConfig{SecretKey: "sk_test_123", SuccessURL: "http://localhost/ok", CancelURL: "http://localhost/cancel"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/ok", gateway.successURL)
}

func TestSessionFromStripe(t *testing.T) {
	cs := &stripe.CheckoutSession{
		ID:            "cs_test_1",
		URL:           "https://checkout.stripe.com/pay/cs_test_1",
		AmountTotal:   150000,
		Currency:      "bdt",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_123"},
		Metadata:      map[string]string{bookingIDMetadataKey: "booking-1"},
	}

	session := sessionFromStripe(cs)
	assert.True(t, session.Paid)
	assert.Equal(t, "pi_123", session.TransactionID)
	assert.Equal(t, "booking-1", session.BookingID)
	assert.Equal(t, int64(150000), session.Amount)

	cs.PaymentStatus = stripe.CheckoutSessionPaymentStatusUnpaid
	cs.PaymentIntent = nil
	cs.Metadata = nil
	cs.ClientReferenceID = "booking-2"
	session = sessionFromStripe(cs)
	assert.False(t, session.Paid)
	assert.Empty(t, session.TransactionID)
	assert.Equal(t, "booking-2", session.BookingID)
}

func TestClassifyStripeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"network", errors.New("dial tcp: timeout"), apperrors.ErrGatewayUnavailable},
		{"server error", &stripe.Error{HTTPStatusCode: http.StatusBadGateway}, apperrors.ErrGatewayUnavailable},
		{"rate limited", &stripe.Error{HTTPStatusCode: http.StatusTooManyRequests}, apperrors.ErrGatewayUnavailable},
		{"missing", &stripe.Error{HTTPStatusCode: http.StatusNotFound, Code: stripe.ErrorCodeResourceMissing}, apperrors.ErrNotFound},
		{"bad request", &stripe.Error{HTTPStatusCode: http.StatusBadRequest}, apperrors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyStripeError(tt.err), tt.want)
		})
	}
}
