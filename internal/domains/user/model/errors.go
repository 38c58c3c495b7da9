package model

import "errors"

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodeInvalidCredentials = "USR001"
	ErrCodeUserInactive       = "USR002"
	ErrCodeUserNotFound       = "USR003"
	ErrCodeEmailTaken         = "USR004"
	ErrCodeValidation         = "USR005"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	// ErrInvalidCredentials covers unknown emails too, so login responses
	// never reveal whether an address exists.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("account is deactivated")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
)
