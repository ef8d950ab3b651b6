package service

import (
	"context"
	"time"

	"seatpao/internal/external"
	"seatpao/internal/logger"
	"seatpao/internal/models"
)

// TicketRepository persists tickets and owns the atomic seat counter.
// Methods returning bool report whether the conditional write matched a row.
type TicketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	GetByID(ctx context.Context, id string) (*models.Ticket, error)
	Update(ctx context.Context, ticket *models.Ticket) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	UpdateStatus(ctx context.Context, id string, from []models.TicketStatus, to models.TicketStatus) (bool, error)
	SetAdvertised(ctx context.Context, id string, advertised bool) (bool, error)
	Unhide(ctx context.Context, id string) (bool, error)
	HideByVendor(ctx context.Context, vendorID string) (int64, error)

	// ReserveSeats decrements seats only if enough remain, the ticket is approved and
	// visible, and its vendor is not flagged, all in one atomic step.
	ReserveSeats(ctx context.Context, id string, quantity int) (*models.Ticket, error)
	ReleaseSeats(ctx context.Context, id string, quantity int) error
}

// BookingRepository persists bookings
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// UpdateStatus moves the booking from -> to and returns nil when the current status is not from
	UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (*models.Booking, error)
	ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]models.Booking, error)
}

// PaymentRepository persists the append-only payment ledger
type PaymentRepository interface {
	GetByTransactionID(ctx context.Context, transactionID string) (*models.PaymentRecord, error)
	// Settle appends record and marks its booking paid as one unit
	Settle(ctx context.Context, record *models.PaymentRecord) (*models.Booking, error)
}

// UserRepository persists user accounts
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	SetFraud(ctx context.Context, id string, fraud bool) (bool, error)
	PromoteToVendor(ctx context.Context, id string) (bool, error)
}

// PaymentGateway creates and inspects hosted checkout sessions
type PaymentGateway interface {
	CreateSession(ctx context.Context, req external.SessionRequest) (*external.Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*external.Session, error)
}

// Publisher emits domain events
type Publisher interface {
	Publish(subject string, data interface{}) error
}

// ConfirmationCache remembers confirmed checkout sessions
type ConfirmationCache interface {
	Confirmed(ctx context.Context, sessionID string) (*models.ConfirmedSession, error)
	MarkConfirmed(ctx context.Context, sessionID string, confirmed models.ConfirmedSession) error
}

// Repositories groups the persistence collaborators
type Repositories struct {
	Tickets  TicketRepository
	Bookings BookingRepository
	Payments PaymentRepository
	Users    UserRepository
}

// Options tunes the services
type Options struct {
	Currency       string
	GatewayTimeout time.Duration
}

type Services struct {
	Inventory *Inventory
	Tickets   *TicketService
	Bookings  *BookingService
	Payments  *PaymentService
	Fraud     *FraudService
	Users     *UserService
}

func NewServices(repos Repositories, gateway PaymentGateway, publisher Publisher, confirmations ConfirmationCache, opts Options) *Services {
	inventory := NewInventory(repos.Tickets)
	bookingService := NewBookingService(repos.Bookings, repos.Payments, inventory, publisher)

	return &Services{
		Inventory: inventory,
		Tickets:   NewTicketService(repos.Tickets, repos.Users),
		Bookings:  bookingService,
		Payments:  NewPaymentService(bookingService, repos.Bookings, repos.Tickets, repos.Payments, gateway, publisher, confirmations, opts),
		Fraud:     NewFraudService(repos.Users, repos.Tickets, publisher),
		Users:     NewUserService(repos.Users),
	}
}

// publish is best-effort: the state change already happened
func publish(ctx context.Context, publisher Publisher, subject string, data interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(subject, data); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err,
			"event_type", subject)
	}
}
