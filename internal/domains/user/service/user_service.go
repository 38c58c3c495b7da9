package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"editflow-backend/internal/domains/user/model"
	"editflow-backend/internal/domains/user/repository"
	"editflow-backend/pkg/jwt"
)

// =====================================================
// USER SERVICE IMPLEMENTATION
// =====================================================
type userService struct {
	repo       repository.UserRepository
	jwtManager *jwt.Manager
}

// NewUserService creates a new user service
func NewUserService(repo repository.UserRepository, jwtManager *jwt.Manager) UserService {
	return &userService{
		repo:       repo,
		jwtManager: jwtManager,
	}
}

// =====================================================
// LOGIN
// =====================================================

func (s *userService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	// Step 1: Validate input
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Find user. Unknown email and wrong password produce the same
	// error so the response never reveals whether an address exists.
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, model.ErrUserInactive
	}

	// Step 3: Verify password (constant-time comparison)
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	// Step 4: Issue tokens
	accessToken, err := s.jwtManager.GenerateAccessToken(u.ID.String(), u.Email, u.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(u.ID.String())
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	// Step 5: Record last login, fire-and-forget
	go func() {
		_ = s.repo.UpdateLastLogin(context.Background(), u.ID)
	}()

	return &model.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         u.ToInfo(),
	}, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair. Role
// and active flag come from the database, not from the old token, so
// deactivating an account cuts off refresh immediately.
func (s *userService) Refresh(ctx context.Context, refreshToken string) (*model.LoginResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, model.ErrUserInactive
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(u.ID.String(), u.Email, u.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	newRefresh, err := s.jwtManager.GenerateRefreshToken(u.ID.String())
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &model.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		User:         u.ToInfo(),
	}, nil
}

// =====================================================
// EDITOR ADMINISTRATION
// =====================================================

func (s *userService) CreateEditor(ctx context.Context, req model.CreateEditorRequest) (*model.UserInfo, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         model.RoleEditor,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	info := u.ToInfo()
	return &info, nil
}

func (s *userService) ListEditors(ctx context.Context) ([]model.UserInfo, error) {
	users, err := s.repo.ListByRole(ctx, model.RoleEditor)
	if err != nil {
		return nil, err
	}

	infos := make([]model.UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, users[i].ToInfo())
	}
	return infos, nil
}

func (s *userService) GetUser(ctx context.Context, userID uuid.UUID) (*model.UserInfo, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := u.ToInfo()
	return &info, nil
}

func (s *userService) SetEditorActive(ctx context.Context, editorID uuid.UUID, active bool) error {
	u, err := s.repo.FindByID(ctx, editorID)
	if err != nil {
		return err
	}
	if !u.IsEditor() {
		return model.ErrUserNotFound
	}
	return s.repo.SetActive(ctx, editorID, active)
}
