package service

import (
	"context"
	"fmt"
	"strings"

	apperrors "seatpao/internal/errors"
	"seatpao/internal/logger"
	"seatpao/internal/models"
)

// TicketService runs the listing lifecycle: vendors create and edit, admins moderate
type TicketService struct {
	ticketRepo TicketRepository
	userRepo   UserRepository
}

func NewTicketService(ticketRepo TicketRepository, userRepo UserRepository) *TicketService {
	return &TicketService{
		ticketRepo: ticketRepo,
		userRepo:   userRepo,
	}
}

// CreateTicket lists a new pending ticket. A rejected ticket may be resubmitted
// this way; it gets a new id.
func (s *TicketService) CreateTicket(ctx context.Context, req models.CreateTicketRequest) (*models.Ticket, error) {
	vendor, err := s.userRepo.GetByID(ctx, req.VendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}
	if vendor == nil {
		return nil, fmt.Errorf("vendor %s: %w", req.VendorID, apperrors.ErrNotFound)
	}
	if !vendor.IsVendor() || vendor.Fraud {
		return nil, fmt.Errorf("user %s may not list tickets: %w", req.VendorID, apperrors.ErrForbidden)
	}

	ticket, err := models.NewTicket(req.VendorID, req.Title, req.Price, req.Seats)
	if err != nil {
		return nil, err
	}
	ticket.From = strings.TrimSpace(req.From)
	ticket.To = strings.TrimSpace(req.To)
	ticket.TransportType = req.TransportType
	ticket.DepartureAt = req.DepartureAt

	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	logger.WithContext(ctx).Info("Ticket created",
		"ticket_id", ticket.ID,
		"vendor_id", ticket.VendorID,
		"seats", ticket.Seats)

	return ticket, nil
}

func (s *TicketService) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("ticket %s: %w", id, apperrors.ErrNotFound)
	}
	return ticket, nil
}

// UpdateTicket edits the descriptive fields. The seat counter is owned by the
// inventory and cannot be edited here.
func (s *TicketService) UpdateTicket(ctx context.Context, id string, req models.UpdateTicketRequest) (*models.Ticket, error) {
	ticket, err := s.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status == models.TicketRejected {
		return nil, fmt.Errorf("ticket %s was rejected: %w", id, apperrors.ErrForbidden)
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, fmt.Errorf("%w: title must not be empty", apperrors.ErrInvalidInput)
		}
		ticket.Title = strings.TrimSpace(*req.Title)
	}
	if req.From != nil {
		ticket.From = strings.TrimSpace(*req.From)
	}
	if req.To != nil {
		ticket.To = strings.TrimSpace(*req.To)
	}
	if req.TransportType != nil {
		ticket.TransportType = *req.TransportType
	}
	if req.DepartureAt != nil {
		ticket.DepartureAt = req.DepartureAt
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("%w: price must not be negative", apperrors.ErrInvalidInput)
		}
		ticket.Price = *req.Price
	}

	updated, err := s.ticketRepo.Update(ctx, ticket)
	if err != nil {
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}
	if !updated {
		return nil, s.classifyMiss(ctx, id)
	}
	return ticket, nil
}

func (s *TicketService) DeleteTicket(ctx context.Context, id string) error {
	deleted, err := s.ticketRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	if !deleted {
		return s.classifyMiss(ctx, id)
	}
	return nil
}

// ApproveTicket makes a pending ticket reservable
func (s *TicketService) ApproveTicket(ctx context.Context, id string) (*models.Ticket, error) {
	return s.moderate(ctx, id, []models.TicketStatus{models.TicketPending}, models.TicketApproved)
}

// RejectTicket takes a pending or approved ticket off sale for good
func (s *TicketService) RejectTicket(ctx context.Context, id string) (*models.Ticket, error) {
	return s.moderate(ctx, id, []models.TicketStatus{models.TicketPending, models.TicketApproved}, models.TicketRejected)
}

func (s *TicketService) SetAdvertised(ctx context.Context, id string, advertised bool) (*models.Ticket, error) {
	updated, err := s.ticketRepo.SetAdvertised(ctx, id, advertised)
	if err != nil {
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}
	if !updated {
		return nil, s.classifyMiss(ctx, id)
	}
	return s.GetTicket(ctx, id)
}

// UnhideTicket reverses a hide for an approved ticket whose vendor is not flagged
func (s *TicketService) UnhideTicket(ctx context.Context, id string) (*models.Ticket, error) {
	updated, err := s.ticketRepo.Unhide(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to unhide ticket: %w", err)
	}
	if !updated {
		if _, err := s.GetTicket(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("ticket %s is not approved or its vendor is flagged: %w", id, apperrors.ErrForbidden)
	}
	return s.GetTicket(ctx, id)
}

func (s *TicketService) moderate(ctx context.Context, id string, from []models.TicketStatus, to models.TicketStatus) (*models.Ticket, error) {
	updated, err := s.ticketRepo.UpdateStatus(ctx, id, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to update ticket status: %w", err)
	}
	if !updated {
		ticket, err := s.GetTicket(ctx, id)
		if err != nil {
			return nil, err
		}
		if ticket.Status == models.TicketRejected {
			return nil, fmt.Errorf("ticket %s was rejected: %w", id, apperrors.ErrForbidden)
		}
		return nil, fmt.Errorf("ticket %s is %s, cannot move to %s: %w", id, ticket.Status, to, apperrors.ErrInvalidTransition)
	}

	logger.WithContext(ctx).Info("Ticket moderated",
		"ticket_id", id,
		"status", to)

	return s.GetTicket(ctx, id)
}

// classifyMiss explains why a write conditional on "not rejected" matched nothing
func (s *TicketService) classifyMiss(ctx context.Context, id string) error {
	if _, err := s.GetTicket(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("ticket %s was rejected: %w", id, apperrors.ErrForbidden)
}
