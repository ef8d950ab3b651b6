package repository

import (
	"context"
	"database/sql"
	"time"

	"seatpao/internal/database"
	"seatpao/internal/models"
)

const bookingColumns = `id, ticket_id, ticket_title, vendor_id, user_id, quantity, unit_price, total_price,
	departure_at, status, paid, transaction_id, created_at, updated_at`

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func scanBooking(row scanner) (*models.Booking, error) {
	booking := &models.Booking{}
	err := row.Scan(
		&booking.ID,
		&booking.TicketID,
		&booking.TicketTitle,
		&booking.VendorID,
		&booking.UserID,
		&booking.Quantity,
		&booking.UnitPrice,
		&booking.TotalPrice,
		&booking.DepartureAt,
		&booking.Status,
		&booking.Paid,
		&booking.TransactionID,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	return booking, err
}

func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (id, ticket_id, ticket_title, vendor_id, user_id, quantity, unit_price,
		                      total_price, departure_at, status, paid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		booking.ID,
		booking.TicketID,
		booking.TicketTitle,
		booking.VendorID,
		booking.UserID,
		booking.Quantity,
		booking.UnitPrice,
		booking.TotalPrice,
		booking.DepartureAt,
		booking.Status,
		booking.Paid,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	return err
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// UpdateStatus is a compare-and-set on the status column
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (*models.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + bookingColumns

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, id, from, to))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *BookingRepository) ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}

	return bookings, rows.Err()
}
