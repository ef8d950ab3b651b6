package repository

import (
	"errors"

	"seatpao/internal/database"

	"github.com/lib/pq"
)

type Repositories struct {
	Tickets  *TicketRepository
	Bookings *BookingRepository
	Payments *PaymentRepository
	Users    *UserRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Tickets:  NewTicketRepository(db),
		Bookings: NewBookingRepository(db),
		Payments: NewPaymentRepository(db),
		Users:    NewUserRepository(db),
	}
}

// Postgres error codes the repositories translate
const (
	foreignKeyViolation = "23503"
	uniqueViolation     = "23505"
)

func hasCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}
