package model

import "errors"

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodeProjectNotFound   = "PRJ001"
	ErrCodeInvalidTransition = "PRJ002"
	ErrCodeVersionMismatch   = "PRJ003"
	ErrCodeVersionNotFound   = "PRJ004"
	ErrCodeEditorNotFound    = "PRJ005"
	ErrCodeValidation        = "PRJ006"
	ErrCodeDependencyFailure = "PRJ007"
	ErrCodeUnauthorized      = "PRJ008"
	ErrCodeInvalidStatus     = "PRJ009"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	// ErrProjectNotFound deliberately covers ownership mismatches too, so an
	// unauthorized actor cannot distinguish "not yours" from "does not exist".
	ErrProjectNotFound   = errors.New("project not found")
	ErrInvalidTransition = errors.New("transition not allowed from current status")
	ErrVersionMismatch   = errors.New("lock version mismatch - concurrent modification detected")
	ErrVersionNotFound   = errors.New("version not found")
	ErrEditorNotFound    = errors.New("editor not found")
	ErrDependencyFailure = errors.New("external dependency failure")
	ErrInvalidStatus     = errors.New("invalid project status")
)

// =====================================================
// CUSTOM ERROR TYPE
// =====================================================
type ProjectError struct {
	Code    string
	Message string
	Err     error
}

func (e *ProjectError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ProjectError) Unwrap() error {
	return e.Err
}

// NewProjectError creates a new ProjectError
func NewProjectError(code, message string, err error) *ProjectError {
	return &ProjectError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
