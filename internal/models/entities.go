package models

import (
	"fmt"
	"strings"
	"time"

	apperrors "seatpao/internal/errors"

	"github.com/google/uuid"
)

// TicketStatus is the moderation state of a ticket
type TicketStatus string

const (
	TicketPending  TicketStatus = "pending"
	TicketApproved TicketStatus = "approved"
	TicketRejected TicketStatus = "rejected"
)

// BookingStatus is the lifecycle state of a booking
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAccepted  BookingStatus = "accepted"
	BookingRejected  BookingStatus = "rejected"
	BookingPaid      BookingStatus = "paid"
	BookingCancelled BookingStatus = "cancelled"
)

// Terminal reports whether no further transition may leave this status.
func (s BookingStatus) Terminal() bool {
	return s == BookingPaid || s == BookingRejected || s == BookingCancelled
}

// HoldsSeats reports whether a booking in this status still owns its reserved seats.
func (s BookingStatus) HoldsSeats() bool {
	return s == BookingPending || s == BookingAccepted || s == BookingPaid
}

// UserRole is the role of a user account
type UserRole string

const (
	RoleUser   UserRole = "user"
	RoleVendor UserRole = "vendor"
	RoleAdmin  UserRole = "admin"
)

// User represents a user account. Only the vendor profile fields matter to the engine.
type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Role      UserRole  `json:"role" db:"role"`
	Fraud     bool      `json:"fraud" db:"fraud"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsVendor reports whether the user is a vendor
func (u *User) IsVendor() bool {
	return u != nil && u.Role == RoleVendor
}

// Ticket represents a listed transport ticket with its remaining seats
type Ticket struct {
	ID            string       `json:"id" db:"id"`
	VendorID      string       `json:"vendor_id" db:"vendor_id"`
	Title         string       `json:"title" db:"title"`
	From          string       `json:"from" db:"route_from"`
	To            string       `json:"to" db:"route_to"`
	TransportType string       `json:"transport_type" db:"transport_type"`
	DepartureAt   *time.Time   `json:"departure_at,omitempty" db:"departure_at"`
	Price         int64        `json:"price" db:"price"`
	Seats         int          `json:"seats" db:"seats"`
	Status        TicketStatus `json:"status" db:"status"`
	Hidden        bool         `json:"hidden" db:"hidden"`
	Advertised    bool         `json:"advertised" db:"advertised"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// Reservable reports whether the ticket itself allows a reservation of quantity seats.
// The owner's fraud flag is checked separately.
func (t *Ticket) Reservable(quantity int) error {
	if t.Status != TicketApproved || t.Hidden {
		return apperrors.ErrTicketUnavailable
	}
	if t.Seats < quantity {
		return apperrors.ErrInsufficientSeats
	}
	return nil
}

// NewTicket builds a pending, visible ticket owned by vendorID
func NewTicket(vendorID, title string, price int64, seats int) (*Ticket, error) {
	switch {
	case strings.TrimSpace(vendorID) == "":
		return nil, fmt.Errorf("%w: vendor id is required", apperrors.ErrInvalidInput)
	case strings.TrimSpace(title) == "":
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrInvalidInput)
	case price < 0:
		return nil, fmt.Errorf("%w: price must not be negative", apperrors.ErrInvalidInput)
	case seats < 0:
		return nil, fmt.Errorf("%w: seats must not be negative", apperrors.ErrInvalidInput)
	}

	now := time.Now().UTC()
	return &Ticket{
		ID:        uuid.New().String(),
		VendorID:  vendorID,
		Title:     title,
		Price:     price,
		Seats:     seats,
		Status:    TicketPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Booking represents a seat reservation and its payment state.
// Prices are frozen at creation.
type Booking struct {
	ID            string        `json:"id" db:"id"`
	TicketID      string        `json:"ticket_id" db:"ticket_id"`
	TicketTitle   string        `json:"ticket_title" db:"ticket_title"`
	VendorID      string        `json:"vendor_id" db:"vendor_id"`
	UserID        string        `json:"user_id" db:"user_id"`
	Quantity      int           `json:"quantity" db:"quantity"`
	UnitPrice     int64         `json:"unit_price" db:"unit_price"`
	TotalPrice    int64         `json:"total_price" db:"total_price"`
	DepartureAt   *time.Time    `json:"departure_at,omitempty" db:"departure_at"`
	Status        BookingStatus `json:"status" db:"status"`
	Paid          bool          `json:"paid" db:"paid"`
	TransactionID *string       `json:"transaction_id" db:"transaction_id"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// NewBooking builds a pending booking for seats already reserved on ticket
func NewBooking(ticket *Ticket, userID string, quantity int) (*Booking, error) {
	switch {
	case ticket == nil || ticket.ID == "":
		return nil, fmt.Errorf("%w: ticket is required", apperrors.ErrInvalidInput)
	case strings.TrimSpace(userID) == "":
		return nil, fmt.Errorf("%w: user id is required", apperrors.ErrInvalidInput)
	case quantity <= 0:
		return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrInvalidInput)
	}

	now := time.Now().UTC()
	return &Booking{
		ID:          uuid.New().String(),
		TicketID:    ticket.ID,
		TicketTitle: ticket.Title,
		VendorID:    ticket.VendorID,
		UserID:      userID,
		Quantity:    quantity,
		UnitPrice:   ticket.Price,
		TotalPrice:  ticket.Price * int64(quantity),
		DepartureAt: ticket.DepartureAt,
		Status:      BookingPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// PaymentRecord is an append-only ledger entry for a settled booking.
// TransactionID is the natural key.
type PaymentRecord struct {
	ID            string    `json:"id" db:"id"`
	BookingID     string    `json:"booking_id" db:"booking_id"`
	UserID        string    `json:"user_id" db:"user_id"`
	VendorID      string    `json:"vendor_id" db:"vendor_id"`
	Amount        int64     `json:"amount" db:"amount"`
	Currency      string    `json:"currency" db:"currency"`
	TransactionID string    `json:"transaction_id" db:"transaction_id"`
	TicketTitle   string    `json:"ticket_title" db:"ticket_title"`
	PaidAt        time.Time `json:"paid_at" db:"paid_at"`
}

// NewPaymentRecord builds the ledger entry for booking settled by transactionID
func NewPaymentRecord(booking *Booking, transactionID, currency string, paidAt time.Time) (*PaymentRecord, error) {
	if booking == nil || booking.ID == "" {
		return nil, fmt.Errorf("%w: booking is required", apperrors.ErrInvalidInput)
	}
	if strings.TrimSpace(transactionID) == "" {
		return nil, fmt.Errorf("%w: transaction id is required", apperrors.ErrInvalidInput)
	}

	return &PaymentRecord{
		ID:            uuid.New().String(),
		BookingID:     booking.ID,
		UserID:        booking.UserID,
		VendorID:      booking.VendorID,
		Amount:        booking.TotalPrice,
		Currency:      currency,
		TransactionID: transactionID,
		TicketTitle:   booking.TicketTitle,
		PaidAt:        paidAt.UTC(),
	}, nil
}
