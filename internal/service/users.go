package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "seatpao/internal/errors"
	"seatpao/internal/models"

	"github.com/google/uuid"
)

type UserService struct {
	userRepo UserRepository
}

func NewUserService(userRepo UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	if strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("%w: email is required", apperrors.ErrInvalidInput)
	}

	role := models.UserRole(req.Role)
	switch role {
	case "":
		role = models.RoleUser
	case models.RoleUser, models.RoleVendor:
	default:
		return nil, fmt.Errorf("%w: unsupported role %q", apperrors.ErrInvalidInput, req.Role)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        uuid.New().String(),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Name:      req.Name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", id, apperrors.ErrNotFound)
	}
	return user, nil
}
