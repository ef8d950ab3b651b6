package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "seatpao/internal/errors"
	"seatpao/internal/external"
	"seatpao/internal/logger"
	"seatpao/internal/metrics"
	"seatpao/internal/models"
)

const defaultGatewayTimeout = 15 * time.Second

type PaymentService struct {
	ledger        *BookingService
	bookingRepo   BookingRepository
	ticketRepo    TicketRepository
	paymentRepo   PaymentRepository
	gateway       PaymentGateway
	publisher     Publisher
	confirmations ConfirmationCache
	currency      string
	timeout       time.Duration
	now           func() time.Time
}

func NewPaymentService(
	ledger *BookingService,
	bookingRepo BookingRepository,
	ticketRepo TicketRepository,
	paymentRepo PaymentRepository,
	gateway PaymentGateway,
	publisher Publisher,
	confirmations ConfirmationCache,
	opts Options,
) *PaymentService {
	if opts.GatewayTimeout <= 0 {
		opts.GatewayTimeout = defaultGatewayTimeout
	}
	if opts.Currency == "" {
		opts.Currency = "bdt"
	}
	return &PaymentService{
		ledger:        ledger,
		bookingRepo:   bookingRepo,
		ticketRepo:    ticketRepo,
		paymentRepo:   paymentRepo,
		gateway:       gateway,
		publisher:     publisher,
		confirmations: confirmations,
		currency:      opts.Currency,
		timeout:       opts.GatewayTimeout,
		now:           time.Now,
	}
}

// ConfirmResult reports which booking a confirmation settled.
// Duplicate is set when the transaction had already been applied.
type ConfirmResult struct {
	BookingID     string
	TransactionID string
	Duplicate     bool
}

// InitiatePayment opens a checkout session for an accepted, unpaid booking whose
// departure has not passed. The amount is the total frozen at booking time.
func (s *PaymentService) InitiatePayment(ctx context.Context, bookingID string) (*external.Session, error) {
	booking, err := s.ledger.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Paid || booking.Status != models.BookingAccepted {
		return nil, fmt.Errorf("booking %s is %s: %w", bookingID, booking.Status, apperrors.ErrInvalidTransition)
	}

	departure, err := s.departureOf(ctx, booking)
	if err != nil {
		return nil, err
	}
	if departure != nil && !s.now().Before(*departure) {
		return nil, fmt.Errorf("booking %s departed at %s: %w", bookingID, departure.Format(time.RFC3339), apperrors.ErrDeparturePassed)
	}

	gctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	session, err := s.gateway.CreateSession(gctx, external.SessionRequest{
		BookingID:      booking.ID,
		Title:          booking.TicketTitle,
		Amount:         booking.TotalPrice,
		Currency:       s.currency,
		IdempotencyKey: checkoutIdempotencyKey(booking),
	})
	metrics.TrackGatewayCall("create_session", start)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to create checkout session",
			"error", err,
			"booking_id", bookingID)
		return nil, err
	}

	publish(ctx, s.publisher, models.EventPaymentInitiated, models.PaymentInitiatedEvent{
		BookingID: booking.ID,
		SessionID: session.ID,
		Amount:    booking.TotalPrice,
		Timestamp: time.Now().UTC(),
	})

	logger.WithContext(ctx).Info("Checkout session created",
		"booking_id", booking.ID,
		"session_id", session.ID,
		"amount", models.FormatAmount(booking.TotalPrice))

	return session, nil
}

// ConfirmPayment settles the booking behind a paid checkout session. It is safe
// to call any number of times, concurrently: one call settles, the rest report
// a duplicate.
func (s *PaymentService) ConfirmPayment(ctx context.Context, sessionID string) (*ConfirmResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)
	}

	if confirmed := s.cachedConfirmation(ctx, sessionID); confirmed != nil {
		metrics.TrackConfirmation(metrics.ResultDuplicate)
		return &ConfirmResult{BookingID: confirmed.BookingID, TransactionID: confirmed.TransactionID, Duplicate: true}, nil
	}

	gctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	session, err := s.gateway.RetrieveSession(gctx, sessionID)
	metrics.TrackGatewayCall("retrieve_session", start)
	if err != nil {
		return nil, err
	}
	if !session.Paid {
		metrics.TrackConfirmation(metrics.ResultIncomplete)
		return nil, fmt.Errorf("session %s: %w", sessionID, apperrors.ErrPaymentIncomplete)
	}

	transactionID := session.TransactionID
	if transactionID == "" {
		transactionID = session.ID
	}

	existing, err := s.paymentRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up payment: %w", err)
	}
	if existing != nil {
		return s.duplicate(ctx, sessionID, existing.BookingID, transactionID), nil
	}

	booking, err := s.ledger.GetBooking(ctx, session.BookingID)
	if err != nil {
		return nil, err
	}
	if session.Amount != booking.TotalPrice {
		logger.WithContext(ctx).Warn("Gateway amount differs from booking total",
			"booking_id", booking.ID,
			"session_id", sessionID,
			"gateway_amount", session.Amount,
			"booking_total", booking.TotalPrice)
	}

	record, err := models.NewPaymentRecord(booking, transactionID, s.currency, s.now())
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.Settle(ctx, record); err != nil {
		if errors.Is(err, apperrors.ErrDuplicatePayment) {
			return s.duplicate(ctx, sessionID, booking.ID, transactionID), nil
		}
		return nil, err
	}

	metrics.TrackConfirmation(metrics.ResultSettled)
	s.rememberConfirmation(ctx, sessionID, booking.ID, transactionID)

	publish(ctx, s.publisher, models.EventPaymentCompleted, models.PaymentCompletedEvent{
		BookingID:     booking.ID,
		TransactionID: transactionID,
		Amount:        record.Amount,
		Timestamp:     record.PaidAt,
	})

	logger.WithContext(ctx).Info("Payment confirmed",
		"booking_id", booking.ID,
		"transaction_id", transactionID,
		"amount", models.FormatAmount(record.Amount))

	return &ConfirmResult{BookingID: booking.ID, TransactionID: transactionID}, nil
}

func (s *PaymentService) duplicate(ctx context.Context, sessionID, bookingID, transactionID string) *ConfirmResult {
	metrics.TrackConfirmation(metrics.ResultDuplicate)
	s.rememberConfirmation(ctx, sessionID, bookingID, transactionID)
	logger.WithContext(ctx).Info("Payment already recorded",
		"booking_id", bookingID,
		"transaction_id", transactionID)
	return &ConfirmResult{BookingID: bookingID, TransactionID: transactionID, Duplicate: true}
}

// departureOf prefers the ticket's current departure and falls back to the
// snapshot taken when the booking was made.
func (s *PaymentService) departureOf(ctx context.Context, booking *models.Booking) (*time.Time, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, booking.TicketID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket != nil && ticket.DepartureAt != nil {
		return ticket.DepartureAt, nil
	}
	return booking.DepartureAt, nil
}

// The cache only short-circuits; the payments table stays authoritative, so
// cache failures are logged and ignored.
func (s *PaymentService) cachedConfirmation(ctx context.Context, sessionID string) *models.ConfirmedSession {
	if s.confirmations == nil {
		return nil
	}
	confirmed, err := s.confirmations.Confirmed(ctx, sessionID)
	if err != nil {
		logger.WithContext(ctx).Warn("Confirmation cache lookup failed",
			"error", err,
			"session_id", sessionID)
		return nil
	}
	return confirmed
}

func (s *PaymentService) rememberConfirmation(ctx context.Context, sessionID, bookingID, transactionID string) {
	if s.confirmations == nil {
		return
	}
	err := s.confirmations.MarkConfirmed(ctx, sessionID, models.ConfirmedSession{
		BookingID:     bookingID,
		TransactionID: transactionID,
	})
	if err != nil {
		logger.WithContext(ctx).Warn("Failed to cache confirmation",
			"error", err,
			"session_id", sessionID)
	}
}

func checkoutIdempotencyKey(booking *models.Booking) string {
	return fmt.Sprintf("checkout-%s-%d", booking.ID, booking.TotalPrice)
}
