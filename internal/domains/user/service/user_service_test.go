package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"editflow-backend/internal/domains/user/model"
	"editflow-backend/pkg/jwt"
)

// =====================================================
// FAKE REPOSITORY
// =====================================================

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User

	lastLoginCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return model.ErrEmailTaken
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (r *fakeUserRepo) FindByID(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLoginCalls++
	return nil
}

func (r *fakeUserRepo) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

// =====================================================
// HELPERS
// =====================================================

func newTestService(t *testing.T) (UserService, *fakeUserRepo, *jwt.Manager) {
	t.Helper()
	repo := newFakeUserRepo()
	manager := jwt.NewManager("test-secret")
	return NewUserService(repo, manager), repo, manager
}

func seedUser(t *testing.T, repo *fakeUserRepo, email, password, role string, active bool) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	u := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Test User",
		Role:         role,
		IsActive:     active,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

// =====================================================
// LOGIN
// =====================================================

func TestLogin_Success(t *testing.T) {
	svc, repo, manager := newTestService(t)
	u := seedUser(t, repo, "ana@studio.dev", "s3cretpass", model.RoleAdmin, true)

	resp, err := svc.Login(context.Background(), model.LoginRequest{
		Email:    "ana@studio.dev",
		Password: "s3cretpass",
	})
	require.NoError(t, err)

	assert.Equal(t, u.ID, resp.User.ID)
	assert.Equal(t, model.RoleAdmin, resp.User.Role)

	claims, err := manager.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)

	_, err = manager.ValidateRefreshToken(resp.RefreshToken)
	assert.NoError(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedUser(t, repo, "ana@studio.dev", "s3cretpass", model.RoleAdmin, true)

	_, err := svc.Login(context.Background(), model.LoginRequest{
		Email:    "ana@studio.dev",
		Password: "wrongpassword",
	})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), model.LoginRequest{
		Email:    "nobody@studio.dev",
		Password: "s3cretpass",
	})
	// Same error as a wrong password, so the response never reveals
	// whether an address exists.
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestLogin_InactiveAccount(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedUser(t, repo, "ana@studio.dev", "s3cretpass", model.RoleEditor, false)

	_, err := svc.Login(context.Background(), model.LoginRequest{
		Email:    "ana@studio.dev",
		Password: "s3cretpass",
	})
	assert.ErrorIs(t, err, model.ErrUserInactive)
}

func TestLogin_ValidationRejectsShortPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), model.LoginRequest{
		Email:    "ana@studio.dev",
		Password: "short",
	})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrInvalidCredentials)
}

// =====================================================
// REFRESH
// =====================================================

func TestRefresh_Success(t *testing.T) {
	svc, repo, manager := newTestService(t)
	u := seedUser(t, repo, "ed@studio.dev", "s3cretpass", model.RoleEditor, true)

	refresh, err := manager.GenerateRefreshToken(u.ID.String())
	require.NoError(t, err)

	resp, err := svc.Refresh(context.Background(), refresh)
	require.NoError(t, err)

	claims, err := manager.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, model.RoleEditor, claims.Role)
	assert.Equal(t, u.Email, claims.Email)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, repo, manager := newTestService(t)
	u := seedUser(t, repo, "ed@studio.dev", "s3cretpass", model.RoleEditor, true)

	access, err := manager.GenerateAccessToken(u.ID.String(), u.Email, u.Role)
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), access)
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestRefresh_DeactivatedAccountCutOff(t *testing.T) {
	svc, repo, manager := newTestService(t)
	u := seedUser(t, repo, "ed@studio.dev", "s3cretpass", model.RoleEditor, true)

	refresh, err := manager.GenerateRefreshToken(u.ID.String())
	require.NoError(t, err)

	require.NoError(t, repo.SetActive(context.Background(), u.ID, false))

	_, err = svc.Refresh(context.Background(), refresh)
	assert.ErrorIs(t, err, model.ErrUserInactive)
}

func TestRefresh_GarbageToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

// =====================================================
// EDITOR ADMINISTRATION
// =====================================================

func TestCreateEditor_Success(t *testing.T) {
	svc, repo, _ := newTestService(t)

	info, err := svc.CreateEditor(context.Background(), model.CreateEditorRequest{
		Email:    "new@studio.dev",
		Password: "s3cretpass",
		FullName: "New Editor",
	})
	require.NoError(t, err)

	assert.Equal(t, model.RoleEditor, info.Role)
	assert.True(t, info.IsActive)

	stored, err := repo.FindByEmail(context.Background(), "new@studio.dev")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cretpass")))
}

func TestCreateEditor_DuplicateEmail(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedUser(t, repo, "dup@studio.dev", "s3cretpass", model.RoleEditor, true)

	_, err := svc.CreateEditor(context.Background(), model.CreateEditorRequest{
		Email:    "dup@studio.dev",
		Password: "s3cretpass",
		FullName: "Duplicate",
	})
	assert.ErrorIs(t, err, model.ErrEmailTaken)
}

func TestListEditors_ExcludesAdmins(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedUser(t, repo, "admin@studio.dev", "s3cretpass", model.RoleAdmin, true)
	seedUser(t, repo, "ed1@studio.dev", "s3cretpass", model.RoleEditor, true)
	seedUser(t, repo, "ed2@studio.dev", "s3cretpass", model.RoleEditor, false)

	editors, err := svc.ListEditors(context.Background())
	require.NoError(t, err)
	assert.Len(t, editors, 2)
	for _, e := range editors {
		assert.Equal(t, model.RoleEditor, e.Role)
	}
}

func TestSetEditorActive_RejectsAdminTarget(t *testing.T) {
	svc, repo, _ := newTestService(t)
	admin := seedUser(t, repo, "admin@studio.dev", "s3cretpass", model.RoleAdmin, true)

	err := svc.SetEditorActive(context.Background(), admin.ID, false)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestSetEditorActive_TogglesFlag(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ed := seedUser(t, repo, "ed@studio.dev", "s3cretpass", model.RoleEditor, true)

	require.NoError(t, svc.SetEditorActive(context.Background(), ed.ID, false))

	stored, err := repo.FindByID(context.Background(), ed.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}
