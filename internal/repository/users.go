package repository

import (
	"context"
	"database/sql"
	"fmt"

	"seatpao/internal/database"
	apperrors "seatpao/internal/errors"
	"seatpao/internal/models"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, role, fraud, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.Role,
		user.Fraud,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if hasCode(err, uniqueViolation) {
		return fmt.Errorf("%w: email %s is already registered", apperrors.ErrInvalidInput, user.Email)
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, email, name, role, fraud, created_at, updated_at FROM users WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.Fraud,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) SetFraud(ctx context.Context, id string, fraud bool) (bool, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET fraud = $2, updated_at = NOW() WHERE id = $1`, id, fraud)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	return rows > 0, err
}

// PromoteToVendor restores the vendor role and clears any fraud flag
func (r *UserRepository) PromoteToVendor(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = 'vendor', fraud = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	return rows > 0, err
}
