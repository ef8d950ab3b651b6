package external

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "seatpao/internal/errors"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

const bookingIDMetadataKey = "bookingId"

type PaymentConfig struct {
	SecretKey  string
	Currency   string
	SuccessURL string
	CancelURL  string
	Timeout    time.Duration
}

// SessionRequest describes the single line item a checkout session charges for
type SessionRequest struct {
	BookingID      string
	Title          string
	Amount         int64
	Currency       string
	IdempotencyKey string
}

// Session is the gateway's view of a checkout session
type Session struct {
	ID            string
	URL           string
	BookingID     string
	Amount        int64
	Currency      string
	Paid          bool
	TransactionID string
}

// StripeGateway creates and inspects Stripe Checkout sessions
type StripeGateway struct {
	api        *client.API
	successURL string
	cancelURL  string
}

func NewStripeGateway(config PaymentConfig) (*StripeGateway, error) {
	if strings.TrimSpace(config.SecretKey) == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}

	backends := &stripe.Backends{
		API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			HTTPClient: &http.Client{Timeout: config.Timeout},
		}),
	}

	return &StripeGateway{
		api:        client.New(config.SecretKey, backends),
		successURL: config.SuccessURL,
		cancelURL:  config.CancelURL,
	}, nil
}

// CreateSession opens a hosted checkout for req.Amount minor units.
// Retries with the same IdempotencyKey return the session created first.
func (g *StripeGateway) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		ClientReferenceID:  stripe.String(req.BookingID),
		SuccessURL:         stripe.String(g.successURL),
		CancelURL:          stripe.String(g.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Title),
					},
					UnitAmount: stripe.Int64(req.Amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata(bookingIDMetadataKey, req.BookingID)
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	cs, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", classifyStripeError(err))
	}

	return sessionFromStripe(cs), nil
}

// RetrieveSession fetches the session with its payment intent expanded
func (g *StripeGateway) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	cs, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session %s: %w", sessionID, classifyStripeError(err))
	}

	return sessionFromStripe(cs), nil
}

func sessionFromStripe(cs *stripe.CheckoutSession) *Session {
	session := &Session{
		ID:        cs.ID,
		URL:       cs.URL,
		BookingID: cs.Metadata[bookingIDMetadataKey],
		Amount:    cs.AmountTotal,
		Currency:  string(cs.Currency),
		Paid:      cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}
	if session.BookingID == "" {
		session.BookingID = cs.ClientReferenceID
	}
	if cs.PaymentIntent != nil {
		session.TransactionID = cs.PaymentIntent.ID
	}
	return session
}

// classifyStripeError maps gateway failures onto engine errors. Anything that is
// not a well-formed API rejection is treated as the gateway being unavailable.
func classifyStripeError(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return fmt.Errorf("%w: %v", apperrors.ErrGatewayUnavailable, err)
	}

	switch {
	case stripeErr.HTTPStatusCode >= http.StatusInternalServerError,
		stripeErr.HTTPStatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", apperrors.ErrGatewayUnavailable, stripeErr.Msg)
	case stripeErr.Code == stripe.ErrorCodeResourceMissing:
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, stripeErr.Msg)
	default:
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, stripeErr.Msg)
	}
}
