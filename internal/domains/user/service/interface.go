package service

import (
	"context"

	"github.com/google/uuid"

	"editflow-backend/internal/domains/user/model"
)

// UserService handles staff authentication and editor administration.
type UserService interface {
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*model.LoginResponse, error)
	CreateEditor(ctx context.Context, req model.CreateEditorRequest) (*model.UserInfo, error)
	ListEditors(ctx context.Context) ([]model.UserInfo, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*model.UserInfo, error)
	SetEditorActive(ctx context.Context, editorID uuid.UUID, active bool) error
}
