package repository

import (
	"context"
	"database/sql"
	"fmt"

	"seatpao/internal/database"
	apperrors "seatpao/internal/errors"
	"seatpao/internal/models"

	"github.com/lib/pq"
)

const ticketColumns = `t.id, t.vendor_id, t.title, t.route_from, t.route_to, t.transport_type,
	t.departure_at, t.price, t.seats, t.status, t.hidden, t.advertised, t.created_at, t.updated_at`

type TicketRepository struct {
	db *database.DB
}

func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func scanTicket(row scanner) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	err := row.Scan(
		&ticket.ID,
		&ticket.VendorID,
		&ticket.Title,
		&ticket.From,
		&ticket.To,
		&ticket.TransportType,
		&ticket.DepartureAt,
		&ticket.Price,
		&ticket.Seats,
		&ticket.Status,
		&ticket.Hidden,
		&ticket.Advertised,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	return ticket, err
}

func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	query := `
		INSERT INTO tickets (id, vendor_id, title, route_from, route_to, transport_type,
		                     departure_at, price, seats, status, hidden, advertised, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.ExecContext(ctx, query,
		ticket.ID,
		ticket.VendorID,
		ticket.Title,
		ticket.From,
		ticket.To,
		ticket.TransportType,
		ticket.DepartureAt,
		ticket.Price,
		ticket.Seats,
		ticket.Status,
		ticket.Hidden,
		ticket.Advertised,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	if hasCode(err, foreignKeyViolation) {
		return fmt.Errorf("vendor %s: %w", ticket.VendorID, apperrors.ErrNotFound)
	}
	return err
}

func (r *TicketRepository) GetByID(ctx context.Context, id string) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets t WHERE t.id = $1`

	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// Update writes the editable fields unless the ticket was rejected. The seat
// counter is deliberately absent from the SET list.
func (r *TicketRepository) Update(ctx context.Context, ticket *models.Ticket) (bool, error) {
	query := `
		UPDATE tickets t
		SET title = $2, route_from = $3, route_to = $4, transport_type = $5,
		    price = $6, departure_at = $7, updated_at = NOW()
		WHERE t.id = $1 AND t.status <> 'rejected'
		RETURNING ` + ticketColumns

	updated, err := scanTicket(r.db.QueryRowContext(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.From,
		ticket.To,
		ticket.TransportType,
		ticket.Price,
		ticket.DepartureAt,
	))
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	*ticket = *updated
	return true, nil
}

func (r *TicketRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1 AND status <> 'rejected'`, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	return rows > 0, err
}

// UpdateStatus moves a ticket whose status is one of from. Rejection also hides it.
func (r *TicketRepository) UpdateStatus(ctx context.Context, id string, from []models.TicketStatus, to models.TicketStatus) (bool, error) {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	query := `
		UPDATE tickets
		SET status = $2, hidden = hidden OR $3, updated_at = NOW()
		WHERE id = $1 AND status = ANY($4)`

	result, err := r.db.ExecContext(ctx, query, id, to, to == models.TicketRejected, pq.Array(statuses))
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	return rows > 0, err
}

func (r *TicketRepository) SetAdvertised(ctx context.Context, id string, advertised bool) (bool, error) {
	query := `UPDATE tickets SET advertised = $2, updated_at = NOW() WHERE id = $1 AND status <> 'rejected'`

	result, err := r.db.ExecContext(ctx, query, id, advertised)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	return rows > 0, err
}

func (r *TicketRepository) Unhide(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE tickets t
		SET hidden = FALSE, updated_at = NOW()
		FROM users u
		WHERE t.id = $1 AND u.id = t.vendor_id AND t.status = 'approved' AND NOT u.fraud`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	return rows > 0, err
}

func (r *TicketRepository) HideByVendor(ctx context.Context, vendorID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET hidden = TRUE, updated_at = NOW() WHERE vendor_id = $1 AND NOT hidden`, vendorID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ReserveSeats is a single conditional UPDATE: the row lock serializes
// concurrent callers and the seats >= $2 predicate is re-checked against the
// latest row version, so the counter cannot go negative.
func (r *TicketRepository) ReserveSeats(ctx context.Context, id string, quantity int) (*models.Ticket, error) {
	query := `
		UPDATE tickets t
		SET seats = t.seats - $2, updated_at = NOW()
		FROM users u
		WHERE t.id = $1
		  AND u.id = t.vendor_id
		  AND t.seats >= $2
		  AND t.status = 'approved'
		  AND NOT t.hidden
		  AND NOT u.fraud
		RETURNING ` + ticketColumns

	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, id, quantity))
	if err == nil {
		return ticket, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	return nil, r.classifyReserveMiss(ctx, id, quantity)
}

// classifyReserveMiss explains why the conditional decrement matched nothing
func (r *TicketRepository) classifyReserveMiss(ctx context.Context, id string, quantity int) error {
	query := `SELECT ` + ticketColumns + `, u.fraud FROM tickets t JOIN users u ON u.id = t.vendor_id WHERE t.id = $1`

	ticket := &models.Ticket{}
	var vendorFraud bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.VendorID,
		&ticket.Title,
		&ticket.From,
		&ticket.To,
		&ticket.TransportType,
		&ticket.DepartureAt,
		&ticket.Price,
		&ticket.Seats,
		&ticket.Status,
		&ticket.Hidden,
		&ticket.Advertised,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&vendorFraud,
	)
	if err == sql.ErrNoRows {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return err
	}
	if vendorFraud {
		return apperrors.ErrTicketUnavailable
	}
	if err := ticket.Reservable(quantity); err != nil {
		return err
	}
	// Seats came back between the update and this read
	return apperrors.ErrInsufficientSeats
}

func (r *TicketRepository) ReleaseSeats(ctx context.Context, id string, quantity int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET seats = seats + $2, updated_at = NOW() WHERE id = $1`, id, quantity)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
