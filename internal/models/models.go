package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount held in minor units as a fixed two-decimal string
func FormatAmount(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

// CreateTicketRequest - vendor creates a ticket listing
type CreateTicketRequest struct {
	VendorID      string     `json:"vendor_id" binding:"required,uuid"`
	Title         string     `json:"title" binding:"required"`
	From          string     `json:"from"`
	To            string     `json:"to"`
	TransportType string     `json:"transport_type"`
	DepartureAt   *time.Time `json:"departure_at"`
	Price         int64      `json:"price" binding:"min=0"`
	Seats         int        `json:"seats" binding:"min=0"`
}

// UpdateTicketRequest - editable ticket fields; nil fields are left unchanged
type UpdateTicketRequest struct {
	Title         *string    `json:"title"`
	From          *string    `json:"from"`
	To            *string    `json:"to"`
	TransportType *string    `json:"transport_type"`
	DepartureAt   *time.Time `json:"departure_at"`
	Price         *int64     `json:"price"`
}

// AdvertiseTicketRequest - admin toggles the advertised flag
type AdvertiseTicketRequest struct {
	Advertised bool `json:"advertised"`
}

// TicketResponse - ticket as returned over HTTP
type TicketResponse struct {
	ID            string       `json:"id"`
	VendorID      string       `json:"vendor_id"`
	Title         string       `json:"title"`
	From          string       `json:"from,omitempty"`
	To            string       `json:"to,omitempty"`
	TransportType string       `json:"transport_type,omitempty"`
	DepartureAt   *time.Time   `json:"departure_at,omitempty"`
	Price         string       `json:"price"`
	Seats         int          `json:"seats"`
	Status        TicketStatus `json:"status"`
	Hidden        bool         `json:"hidden"`
	Advertised    bool         `json:"advertised"`
}

// NewTicketResponse converts a ticket for the HTTP layer
func NewTicketResponse(t *Ticket) TicketResponse {
	return TicketResponse{
		ID:            t.ID,
		VendorID:      t.VendorID,
		Title:         t.Title,
		From:          t.From,
		To:            t.To,
		TransportType: t.TransportType,
		DepartureAt:   t.DepartureAt,
		Price:         FormatAmount(t.Price),
		Seats:         t.Seats,
		Status:        t.Status,
		Hidden:        t.Hidden,
		Advertised:    t.Advertised,
	}
}

// CreateBookingRequest - reserve seats on a ticket
type CreateBookingRequest struct {
	TicketID string `json:"ticket_id" binding:"required,uuid"`
	UserID   string `json:"user_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// CreateBookingResponse - result of a successful reservation
type CreateBookingResponse struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	TotalPrice     string `json:"total_price"`
	RemainingSeats int    `json:"remaining_seats"`
}

// BookingResponse - booking as returned over HTTP
type BookingResponse struct {
	ID            string        `json:"id"`
	TicketID      string        `json:"ticket_id"`
	Quantity      int           `json:"quantity"`
	UnitPrice     string        `json:"unit_price"`
	TotalPrice    string        `json:"total_price"`
	Status        BookingStatus `json:"status"`
	Paid          bool          `json:"paid"`
	TransactionID *string       `json:"transaction_id"`
}

// NewBookingResponse converts a booking for the HTTP layer
func NewBookingResponse(b *Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		TicketID:      b.TicketID,
		Quantity:      b.Quantity,
		UnitPrice:     FormatAmount(b.UnitPrice),
		TotalPrice:    FormatAmount(b.TotalPrice),
		Status:        b.Status,
		Paid:          b.Paid,
		TransactionID: b.TransactionID,
	}
}

// CancelBookingResponse - cancellation result; ReleaseError is set when seats could not be returned
type CancelBookingResponse struct {
	BookingResponse
	ReleaseError string `json:"release_error,omitempty"`
}

// InitiatePaymentRequest - start a checkout session for an accepted booking
type InitiatePaymentRequest struct {
	BookingID string `json:"booking_id" binding:"required,uuid"`
}

// InitiatePaymentResponse - checkout session handle
type InitiatePaymentResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
	Amount    string `json:"amount"`
}

// ConfirmPaymentRequest - confirm a checkout session
type ConfirmPaymentRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// ConfirmPaymentResponse - confirmation result
type ConfirmPaymentResponse struct {
	Success       bool   `json:"success"`
	BookingID     string `json:"booking_id"`
	TransactionID string `json:"transaction_id"`
	Duplicate     bool   `json:"duplicate"`
}

// FraudResponse - result of a fraud verdict
type FraudResponse struct {
	VendorID      string `json:"vendor_id"`
	Fraud         bool   `json:"fraud"`
	HiddenTickets int64  `json:"hidden_tickets"`
	CascadeError  string `json:"cascade_error,omitempty"`
}

// CreateUserRequest - POST /api/users
type CreateUserRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// ConfirmedSession is what the confirmation cache remembers about a settled checkout session
type ConfirmedSession struct {
	BookingID     string `json:"booking_id"`
	TransactionID string `json:"transaction_id"`
}
