package models

import "time"

// NATS Event Types
const (
	EventBookingCreated    = "booking.created"
	EventBookingAccepted   = "booking.accepted"
	EventBookingRejected   = "booking.rejected"
	EventBookingCancelled  = "booking.cancelled"
	EventBookingExpired    = "booking.expired"
	EventPaymentInitiated  = "payment.initiated"
	EventPaymentCompleted  = "payment.completed"
	EventVendorFraudMarked = "vendor.fraud_marked"
	EventVendorFraudClear  = "vendor.fraud_cleared"
)

// BookingCreatedEvent is published after seats are reserved and the booking stored
type BookingCreatedEvent struct {
	BookingID  string    `json:"booking_id"`
	TicketID   string    `json:"ticket_id"`
	UserID     string    `json:"user_id"`
	Quantity   int       `json:"quantity"`
	TotalPrice int64     `json:"total_price"`
	Timestamp  time.Time `json:"timestamp"`
}

// BookingTransitionEvent is published for accept, reject, cancel and expire
type BookingTransitionEvent struct {
	BookingID     string        `json:"booking_id"`
	TicketID      string        `json:"ticket_id"`
	From          BookingStatus `json:"from"`
	To            BookingStatus `json:"to"`
	SeatsReleased int           `json:"seats_released"`
	Reason        string        `json:"reason,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}

// PaymentInitiatedEvent represents a checkout session creation
type PaymentInitiatedEvent struct {
	BookingID string    `json:"booking_id"`
	SessionID string    `json:"session_id"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// PaymentCompletedEvent represents a settled booking
type PaymentCompletedEvent struct {
	BookingID     string    `json:"booking_id"`
	TransactionID string    `json:"transaction_id"`
	Amount        int64     `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`
}

// VendorFraudEvent is published when a vendor's fraud flag changes
type VendorFraudEvent struct {
	VendorID  string    `json:"vendor_id"`
	Fraud     bool      `json:"fraud"`
	Timestamp time.Time `json:"timestamp"`
}
