package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "seatpao/internal/errors"
	"seatpao/internal/logger"
	"seatpao/internal/metrics"
	"seatpao/internal/models"
)

// maxTransitionAttempts bounds how often a transition re-reads a booking that
// changed under it before giving up.
const maxTransitionAttempts = 3

type BookingService struct {
	bookingRepo BookingRepository
	paymentRepo PaymentRepository
	inventory   *Inventory
	publisher   Publisher
}

func NewBookingService(bookingRepo BookingRepository, paymentRepo PaymentRepository, inventory *Inventory, publisher Publisher) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		inventory:   inventory,
		publisher:   publisher,
	}
}

// TransitionResult is the outcome of a transition that may release seats.
// ReleaseErr is set when the booking moved but its seats could not be given back.
type TransitionResult struct {
	Booking    *models.Booking
	From       models.BookingStatus
	ReleaseErr error
}

// CreateBooking reserves the seats and records a pending booking that snapshots
// the ticket's price and departure.
func (s *BookingService) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, int, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, 0, fmt.Errorf("%w: user id is required", apperrors.ErrInvalidInput)
	}

	ticket, err := s.inventory.Reserve(ctx, req.TicketID, req.Quantity)
	if err != nil {
		return nil, 0, err
	}

	booking, err := models.NewBooking(ticket, req.UserID, req.Quantity)
	if err == nil {
		err = s.bookingRepo.Create(ctx, booking)
	}
	if err != nil {
		// The booking never existed, so its seats go straight back
		if releaseErr := s.inventory.Release(ctx, ticket.ID, req.Quantity); releaseErr != nil {
			logger.WithContext(ctx).Error("Failed to compensate reservation",
				"error", releaseErr,
				"ticket_id", ticket.ID,
				"quantity", req.Quantity)
		}
		return nil, 0, fmt.Errorf("failed to create booking: %w", err)
	}

	publish(ctx, s.publisher, models.EventBookingCreated, models.BookingCreatedEvent{
		BookingID:  booking.ID,
		TicketID:   booking.TicketID,
		UserID:     booking.UserID,
		Quantity:   booking.Quantity,
		TotalPrice: booking.TotalPrice,
		Timestamp:  booking.CreatedAt,
	})

	logger.WithContext(ctx).Info("Booking created",
		"booking_id", booking.ID,
		"ticket_id", booking.TicketID,
		"quantity", booking.Quantity,
		"remaining_seats", ticket.Seats)

	return booking, ticket.Seats, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, apperrors.ErrNotFound)
	}
	return booking, nil
}

// AcceptBooking is the vendor approving a pending request
func (s *BookingService) AcceptBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	result, err := s.transition(ctx, bookingID, models.BookingAccepted, guardPendingOnly, "")
	if err != nil {
		return nil, err
	}
	return result.Booking, nil
}

// RejectBooking is the vendor declining a pending request. The seats are released.
func (s *BookingService) RejectBooking(ctx context.Context, bookingID string) (*TransitionResult, error) {
	return s.transition(ctx, bookingID, models.BookingRejected, guardPendingOnly, "rejected by vendor")
}

// CancelBooking withdraws a booking that has not been paid. The seats are released.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string) (*TransitionResult, error) {
	return s.transition(ctx, bookingID, models.BookingCancelled, guardCancellable, "cancelled")
}

// ExpirePending cancels pending bookings created before cutoff and returns how many moved
func (s *BookingService) ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	stale, err := s.bookingRepo.ListPendingBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale bookings: %w", err)
	}

	expired := 0
	for _, booking := range stale {
		result, err := s.transition(ctx, booking.ID, models.BookingCancelled, guardPendingOnly, "expired")
		if err != nil {
			// Accepted or cancelled in the meantime
			logger.WithContext(ctx).Debug("Skipping booking expiration",
				"booking_id", booking.ID,
				"reason", err.Error())
			continue
		}
		expired++
		publish(ctx, s.publisher, models.EventBookingExpired, transitionEvent(result, "expired"))
	}

	return expired, nil
}

// Settle applies a payment to an accepted booking. The ledger entry and the
// paid flag are written together; seats were already taken at reservation.
func (s *BookingService) Settle(ctx context.Context, record *models.PaymentRecord) (*models.Booking, error) {
	booking, err := s.paymentRepo.Settle(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("settle booking %s: %w", record.BookingID, err)
	}

	metrics.TrackTransition(string(models.BookingAccepted), string(models.BookingPaid))
	return booking, nil
}

type transitionGuard func(from models.BookingStatus) error

// guardPendingOnly allows only pending bookings to move
func guardPendingOnly(from models.BookingStatus) error {
	switch {
	case from == models.BookingPending:
		return nil
	case from.Terminal():
		return apperrors.ErrForbidden
	default:
		return apperrors.ErrInvalidTransition
	}
}

func guardCancellable(from models.BookingStatus) error {
	switch {
	case from == models.BookingPending, from == models.BookingAccepted:
		return nil
	case from.Terminal():
		return apperrors.ErrForbidden
	default:
		return apperrors.ErrInvalidTransition
	}
}

// transition moves a booking to `to` if guard allows its current status. The
// write is conditional on the status that was read; a lost race re-reads and
// re-checks. Moving out of a seat-holding status into one that does not hold
// seats releases them exactly once, by whichever caller won the write.
func (s *BookingService) transition(ctx context.Context, bookingID string, to models.BookingStatus, guard transitionGuard, reason string) (*TransitionResult, error) {
	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		booking, err := s.GetBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}

		from := booking.Status
		if err := guard(from); err != nil {
			return nil, fmt.Errorf("booking %s is %s, cannot move to %s: %w", bookingID, from, to, err)
		}

		updated, err := s.bookingRepo.UpdateStatus(ctx, bookingID, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to update booking status: %w", err)
		}
		if updated == nil {
			continue
		}

		metrics.TrackTransition(string(from), string(to))
		result := &TransitionResult{Booking: updated, From: from}

		if from.HoldsSeats() && !to.HoldsSeats() {
			if err := s.inventory.Release(ctx, updated.TicketID, updated.Quantity); err != nil {
				result.ReleaseErr = err
				logger.WithContext(ctx).Error("Booking moved but seats were not released",
					"error", err,
					"booking_id", bookingID,
					"ticket_id", updated.TicketID,
					"quantity", updated.Quantity)
			}
		}

		if subject := transitionSubject(to, reason); subject != "" {
			publish(ctx, s.publisher, subject, transitionEvent(result, reason))
		}

		logger.WithContext(ctx).Info("Booking status changed",
			"booking_id", bookingID,
			"from", from,
			"to", to)

		return result, nil
	}

	return nil, fmt.Errorf("booking %s kept changing concurrently: %w", bookingID, apperrors.ErrInvalidTransition)
}

func transitionSubject(to models.BookingStatus, reason string) string {
	switch {
	case reason == "expired":
		// published by ExpirePending
		return ""
	case to == models.BookingAccepted:
		return models.EventBookingAccepted
	case to == models.BookingRejected:
		return models.EventBookingRejected
	case to == models.BookingCancelled:
		return models.EventBookingCancelled
	}
	return ""
}

func transitionEvent(result *TransitionResult, reason string) models.BookingTransitionEvent {
	released := 0
	if result.From.HoldsSeats() && !result.Booking.Status.HoldsSeats() && result.ReleaseErr == nil {
		released = result.Booking.Quantity
	}
	return models.BookingTransitionEvent{
		BookingID:     result.Booking.ID,
		TicketID:      result.Booking.TicketID,
		From:          result.From,
		To:            result.Booking.Status,
		SeatsReleased: released,
		Reason:        reason,
		Timestamp:     time.Now().UTC(),
	}
}
