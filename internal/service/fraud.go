package service

import (
	"context"
	"fmt"
	"time"

	apperrors "seatpao/internal/errors"
	"seatpao/internal/logger"
	"seatpao/internal/metrics"
	"seatpao/internal/models"
)

// FraudService flags vendors and hides their listings
type FraudService struct {
	userRepo   UserRepository
	ticketRepo TicketRepository
	publisher  Publisher
}

func NewFraudService(userRepo UserRepository, ticketRepo TicketRepository, publisher Publisher) *FraudService {
	return &FraudService{
		userRepo:   userRepo,
		ticketRepo: ticketRepo,
		publisher:  publisher,
	}
}

// CascadeResult reports the effect of flagging a vendor. HideErr is set when
// the flag was stored but the listings were not hidden; the fraud flag alone
// already blocks new reservations and the consumer re-applies the hide.
type CascadeResult struct {
	VendorID      string
	HiddenTickets int64
	HideErr       error
}

// MarkFraud flags a vendor, then hides every ticket they own. The flag is
// written first so reservations stop even if the hide fails.
func (s *FraudService) MarkFraud(ctx context.Context, vendorID string) (*CascadeResult, error) {
	user, err := s.userRepo.GetByID(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", vendorID, apperrors.ErrNotFound)
	}
	if !user.IsVendor() {
		return nil, fmt.Errorf("user %s is not a vendor: %w", vendorID, apperrors.ErrInvalidTransition)
	}

	updated, err := s.userRepo.SetFraud(ctx, vendorID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to flag vendor: %w", err)
	}
	if !updated {
		return nil, fmt.Errorf("user %s: %w", vendorID, apperrors.ErrNotFound)
	}

	publish(ctx, s.publisher, models.EventVendorFraudMarked, models.VendorFraudEvent{
		VendorID:  vendorID,
		Fraud:     true,
		Timestamp: time.Now().UTC(),
	})

	result := &CascadeResult{VendorID: vendorID}
	hidden, err := s.hideTickets(ctx, vendorID)
	if err != nil {
		result.HideErr = err
		return result, nil
	}
	result.HiddenTickets = hidden

	logger.WithContext(ctx).Info("Vendor marked as fraud",
		"vendor_id", vendorID,
		"hidden_tickets", hidden)

	return result, nil
}

// UnmarkFraud clears the flag and restores the vendor role. Hidden tickets stay
// hidden until an admin unhides them one by one.
func (s *FraudService) UnmarkFraud(ctx context.Context, vendorID string) error {
	updated, err := s.userRepo.PromoteToVendor(ctx, vendorID)
	if err != nil {
		return fmt.Errorf("failed to clear fraud flag: %w", err)
	}
	if !updated {
		return fmt.Errorf("user %s: %w", vendorID, apperrors.ErrNotFound)
	}

	publish(ctx, s.publisher, models.EventVendorFraudClear, models.VendorFraudEvent{
		VendorID:  vendorID,
		Fraud:     false,
		Timestamp: time.Now().UTC(),
	})

	logger.WithContext(ctx).Info("Vendor fraud flag cleared", "vendor_id", vendorID)
	return nil
}

// ReapplyCascade hides a flagged vendor's tickets again. It is a no-op for
// vendors no longer flagged, so replays after an unmark do no harm.
func (s *FraudService) ReapplyCascade(ctx context.Context, vendorID string) (int64, error) {
	user, err := s.userRepo.GetByID(ctx, vendorID)
	if err != nil {
		return 0, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.Fraud {
		return 0, nil
	}
	return s.hideTickets(ctx, vendorID)
}

func (s *FraudService) hideTickets(ctx context.Context, vendorID string) (int64, error) {
	hidden, err := s.ticketRepo.HideByVendor(ctx, vendorID)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to hide vendor tickets",
			"error", err,
			"vendor_id", vendorID)
		return 0, fmt.Errorf("hide tickets of vendor %s: %w", vendorID, err)
	}
	metrics.TrackHiddenTickets(hidden)
	return hidden, nil
}
