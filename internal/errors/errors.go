package errors

import (
	"errors"
	"fmt"
)

// Common error types for the FinTrack client
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")

	// Token errors
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenRevoked        = errors.New("token revoked")
	ErrNoRefreshToken      = errors.New("no refresh token")
	ErrRefreshRejected     = errors.New("refresh rejected")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// Session errors
	ErrSessionExpired      = errors.New("session expired")
	ErrAlreadyBootstrapped = errors.New("session already bootstrapped")

	// OAuth errors
	ErrInvalidCallback = errors.New("invalid oauth callback")

	// Input errors
	ErrValidation = errors.New("validation failed")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is a passthrough to the standard library so callers only import one errors package
func New(text string) error {
	return errors.New(text)
}

// Join is a passthrough to errors.Join
func Join(errs ...error) error {
	return errors.Join(errs...)
}
