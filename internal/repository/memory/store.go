// Package memory is an in-process implementation of the repositories. Every
// operation runs under one lock so the conditional writes behave like their
// single-statement SQL counterparts.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "seatpao/internal/errors"
	"seatpao/internal/models"
)

type state struct {
	mu       sync.Mutex
	users    map[string]models.User
	tickets  map[string]models.Ticket
	bookings map[string]models.Booking
	payments map[string]models.PaymentRecord
}

// Store groups the repositories over shared state
type Store struct {
	Users    *UserRepository
	Tickets  *TicketRepository
	Bookings *BookingRepository
	Payments *PaymentRepository
}

func New() *Store {
	s := &state{
		users:    make(map[string]models.User),
		tickets:  make(map[string]models.Ticket),
		bookings: make(map[string]models.Booking),
		payments: make(map[string]models.PaymentRecord),
	}
	return &Store{
		Users:    &UserRepository{s: s},
		Tickets:  &TicketRepository{s: s},
		Bookings: &BookingRepository{s: s},
		Payments: &PaymentRepository{s: s},
	}
}

type UserRepository struct{ s *state }

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *UserRepository) SetFraud(ctx context.Context, id string, fraud bool) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return false, nil
	}
	user.Fraud = fraud
	user.UpdatedAt = time.Now().UTC()
	r.s.users[id] = user
	return true, nil
}

func (r *UserRepository) PromoteToVendor(ctx context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return false, nil
	}
	user.Role = models.RoleVendor
	user.Fraud = false
	user.UpdatedAt = time.Now().UTC()
	r.s.users[id] = user
	return true, nil
}

type TicketRepository struct {
	s *state

	// ReleaseErr, when set, makes ReleaseSeats fail without touching the counter
	ReleaseErr error
	// HideErr, when set, makes HideByVendor fail without hiding anything
	HideErr error
}

func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tickets[ticket.ID] = *ticket
	return nil
}

func (r *TicketRepository) GetByID(ctx context.Context, id string) (*models.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, nil
	}
	return &ticket, nil
}

func (r *TicketRepository) Update(ctx context.Context, ticket *models.Ticket) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.tickets[ticket.ID]
	if !ok || current.Status == models.TicketRejected {
		return false, nil
	}
	current.Title = ticket.Title
	current.From = ticket.From
	current.To = ticket.To
	current.TransportType = ticket.TransportType
	current.Price = ticket.Price
	current.DepartureAt = ticket.DepartureAt
	current.UpdatedAt = time.Now().UTC()
	r.s.tickets[ticket.ID] = current
	*ticket = current
	return true, nil
}

func (r *TicketRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.tickets[id]
	if !ok || current.Status == models.TicketRejected {
		return false, nil
	}
	delete(r.s.tickets, id)
	return true, nil
}

func (r *TicketRepository) UpdateStatus(ctx context.Context, id string, from []models.TicketStatus, to models.TicketStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.tickets[id]
	if !ok || !containsStatus(from, current.Status) {
		return false, nil
	}
	current.Status = to
	if to == models.TicketRejected {
		current.Hidden = true
	}
	current.UpdatedAt = time.Now().UTC()
	r.s.tickets[id] = current
	return true, nil
}

func (r *TicketRepository) SetAdvertised(ctx context.Context, id string, advertised bool) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.tickets[id]
	if !ok || current.Status == models.TicketRejected {
		return false, nil
	}
	current.Advertised = advertised
	current.UpdatedAt = time.Now().UTC()
	r.s.tickets[id] = current
	return true, nil
}

func (r *TicketRepository) Unhide(ctx context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.tickets[id]
	if !ok || current.Status != models.TicketApproved || r.s.users[current.VendorID].Fraud {
		return false, nil
	}
	current.Hidden = false
	current.UpdatedAt = time.Now().UTC()
	r.s.tickets[id] = current
	return true, nil
}

func (r *TicketRepository) HideByVendor(ctx context.Context, vendorID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.HideErr != nil {
		return 0, r.HideErr
	}
	var hidden int64
	for id, ticket := range r.s.tickets {
		if ticket.VendorID != vendorID || ticket.Hidden {
			continue
		}
		ticket.Hidden = true
		ticket.UpdatedAt = time.Now().UTC()
		r.s.tickets[id] = ticket
		hidden++
	}
	return hidden, nil
}

func (r *TicketRepository) ReserveSeats(ctx context.Context, id string, quantity int) (*models.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if r.s.users[ticket.VendorID].Fraud {
		return nil, apperrors.ErrTicketUnavailable
	}
	if err := ticket.Reservable(quantity); err != nil {
		return nil, err
	}
	ticket.Seats -= quantity
	ticket.UpdatedAt = time.Now().UTC()
	r.s.tickets[id] = ticket
	return &ticket, nil
}

func (r *TicketRepository) ReleaseSeats(ctx context.Context, id string, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.ReleaseErr != nil {
		return r.ReleaseErr
	}
	ticket, ok := r.s.tickets[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	ticket.Seats += quantity
	ticket.UpdatedAt = time.Now().UTC()
	r.s.tickets[id] = ticket
	return nil
}

type BookingRepository struct{ s *state }

func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.bookings[booking.ID] = *booking
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	booking, ok := r.s.bookings[id]
	if !ok {
		return nil, nil
	}
	return &booking, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	booking, ok := r.s.bookings[id]
	if !ok || booking.Status != from {
		return nil, nil
	}
	booking.Status = to
	booking.UpdatedAt = time.Now().UTC()
	r.s.bookings[id] = booking
	return &booking, nil
}

func (r *BookingRepository) ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var bookings []models.Booking
	for _, booking := range r.s.bookings {
		if booking.Status == models.BookingPending && booking.CreatedAt.Before(before) {
			bookings = append(bookings, booking)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.Before(bookings[j].CreatedAt)
	})
	if limit > 0 && len(bookings) > limit {
		bookings = bookings[:limit]
	}
	return bookings, nil
}

type PaymentRepository struct{ s *state }

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.PaymentRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	record, ok := r.s.payments[transactionID]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (r *PaymentRepository) Settle(ctx context.Context, record *models.PaymentRecord) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.payments[record.TransactionID]; exists {
		return nil, apperrors.ErrDuplicatePayment
	}
	booking, ok := r.s.bookings[record.BookingID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if booking.Status != models.BookingAccepted || booking.Paid {
		return nil, apperrors.ErrInvalidTransition
	}

	transactionID := record.TransactionID
	booking.Status = models.BookingPaid
	booking.Paid = true
	booking.TransactionID = &transactionID
	booking.UpdatedAt = time.Now().UTC()
	r.s.bookings[booking.ID] = booking
	r.s.payments[transactionID] = *record
	return &booking, nil
}

// PaymentCount returns the number of ledger entries
func (s *Store) PaymentCount() int {
	s.Payments.s.mu.Lock()
	defer s.Payments.s.mu.Unlock()
	return len(s.Payments.s.payments)
}

func containsStatus(statuses []models.TicketStatus, status models.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
