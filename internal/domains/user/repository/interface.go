package repository

import (
	"context"

	"github.com/google/uuid"

	"editflow-backend/internal/domains/user/model"
)

// UserRepository persists staff accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, userID uuid.UUID) (*model.User, error)
	ListByRole(ctx context.Context, role string) ([]model.User, error)
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
	SetActive(ctx context.Context, userID uuid.UUID, active bool) error
}
