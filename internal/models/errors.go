package models

import (
	"errors"
	"fmt"
)

var (
	ErrNoRecord           = errors.New("models: no matching record found")
	ErrInvalidCredentials = errors.New("models: invalid credentials")
	ErrDuplicateEmail     = errors.New("models: duplicate email")
	ErrDuplicateCode      = errors.New("models: duplicate code")
	ErrDuplicateLicense   = errors.New("models: duplicate license number")
	ErrUserNotFound       = errors.New("models: user not found")
	ErrInactiveUser       = errors.New("models: user account is disabled")
	ErrForbidden          = errors.New("models: permission denied")
	ErrInvalidTransition  = errors.New("models: invalid status transition")
	ErrStaleStatus        = errors.New("models: status changed concurrently")
	ErrProfileExists      = errors.New("models: retailer profile already exists")
	ErrProfileMissing     = errors.New("models: retailer profile not found")
	ErrInvalidToken       = errors.New("models: invalid or expired token")
)

// ValidationError is a client-facing input problem. Its message is returned
// verbatim in the response body.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalid builds a ValidationError.
func Invalid(format string, args ...any) error {
	if len(args) == 0 {
		return &ValidationError{Message: format}
	}
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing resource with a specific message, e.g.
// "SKU not found".
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) Is(target error) bool { return target == ErrNoRecord }
