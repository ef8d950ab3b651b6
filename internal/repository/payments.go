package repository

import (
	"context"
	"database/sql"

	"seatpao/internal/database"
	apperrors "seatpao/internal/errors"
	"seatpao/internal/models"
)

type PaymentRepository struct {
	db *database.DB
}

func NewPaymentRepository(db *database.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.PaymentRecord, error) {
	record := &models.PaymentRecord{}
	query := `
		SELECT id, booking_id, user_id, vendor_id, amount, currency, transaction_id, ticket_title, paid_at
		FROM payments
		WHERE transaction_id = $1`

	err := r.db.QueryRowContext(ctx, query, transactionID).Scan(
		&record.ID,
		&record.BookingID,
		&record.UserID,
		&record.VendorID,
		&record.Amount,
		&record.Currency,
		&record.TransactionID,
		&record.TicketTitle,
		&record.PaidAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Settle appends the ledger entry and marks the booking paid in one
// transaction. The insert goes first: a concurrent settle of the same
// transaction blocks on the unique index and then sees the conflict.
func (r *PaymentRepository) Settle(ctx context.Context, record *models.PaymentRecord) (*models.Booking, error) {
	var booking *models.Booking

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		insert := `
			INSERT INTO payments (id, booking_id, user_id, vendor_id, amount, currency, transaction_id, ticket_title, paid_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (transaction_id) DO NOTHING`

		result, err := tx.ExecContext(ctx, insert,
			record.ID,
			record.BookingID,
			record.UserID,
			record.VendorID,
			record.Amount,
			record.Currency,
			record.TransactionID,
			record.TicketTitle,
			record.PaidAt,
		)
		if hasCode(err, foreignKeyViolation) {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return err
		}
		inserted, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if inserted == 0 {
			return apperrors.ErrDuplicatePayment
		}

		update := `
			UPDATE bookings
			SET status = 'paid', paid = TRUE, transaction_id = $2, updated_at = NOW()
			WHERE id = $1 AND status = 'accepted' AND NOT paid
			RETURNING ` + bookingColumns

		booking, err = scanBooking(tx.QueryRowContext(ctx, update, record.BookingID, record.TransactionID))
		if err == sql.ErrNoRows {
			return apperrors.ErrInvalidTransition
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}
