package model

import (
	"time"

	"github.com/google/uuid"
)

// =====================================================
// ROLE CONSTANTS
// =====================================================
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// =====================================================
// ENTITY: User
// =====================================================
// Staff accounts only. Clients are never users; they interact through a
// project's publicId without authentication.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsEditor reports whether the account can take project assignments.
func (u *User) IsEditor() bool {
	return u.Role == RoleEditor
}

// IsAdmin reports whether the account can assign and review.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
