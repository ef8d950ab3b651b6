package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "seatpao/internal/errors"
	"seatpao/internal/logger"
	"seatpao/internal/metrics"
	"seatpao/internal/models"
)

// Inventory is the only writer of a ticket's seat counter
type Inventory struct {
	ticketRepo TicketRepository
}

func NewInventory(ticketRepo TicketRepository) *Inventory {
	return &Inventory{ticketRepo: ticketRepo}
}

// Reserve takes quantity seats from the ticket. It never leaves the counter negative:
// of any set of concurrent callers, only as many succeed as there are seats.
func (inv *Inventory) Reserve(ctx context.Context, ticketID string, quantity int) (*models.Ticket, error) {
	if ticketID == "" {
		return nil, fmt.Errorf("%w: ticket id is required", apperrors.ErrInvalidInput)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrInvalidInput)
	}

	ticket, err := inv.ticketRepo.ReserveSeats(ctx, ticketID, quantity)
	switch {
	case err == nil:
		metrics.TrackReservation(metrics.ResultReserved)
	case errors.Is(err, apperrors.ErrInsufficientSeats):
		metrics.TrackReservation(metrics.ResultInsufficient)
	case errors.Is(err, apperrors.ErrTicketUnavailable), errors.Is(err, apperrors.ErrNotFound):
		metrics.TrackReservation(metrics.ResultUnavailable)
	default:
		metrics.TrackReservation(metrics.ResultError)
		logger.WithContext(ctx).Error("Failed to reserve seats",
			"error", err,
			"ticket_id", ticketID,
			"quantity", quantity)
	}
	if err != nil {
		return nil, fmt.Errorf("reserve %d seats on ticket %s: %w", quantity, ticketID, err)
	}

	return ticket, nil
}

// Release gives quantity seats back. Callers must only release seats they reserved.
func (inv *Inventory) Release(ctx context.Context, ticketID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", apperrors.ErrInvalidInput)
	}

	if err := inv.ticketRepo.ReleaseSeats(ctx, ticketID, quantity); err != nil {
		metrics.TrackReleaseFailure()
		logger.WithContext(ctx).Error("Failed to release seats",
			"error", err,
			"ticket_id", ticketID,
			"quantity", quantity)
		return fmt.Errorf("release %d seats on ticket %s: %w", quantity, ticketID, err)
	}

	return nil
}
