package errors

import (
	"errors"
	"fmt"
)

// Common error types for the member portal session core
var (
	// Login classification errors
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrMembershipInactive    = errors.New("membership inactive")
	ErrAccountDeactivated    = errors.New("account deactivated")
	ErrAccessDenied          = errors.New("access denied")
	ErrBadRequest            = errors.New("bad request")
	ErrNetworkUnavailable    = errors.New("network unavailable")
	ErrMalformedAuthResponse = errors.New("malformed auth response")
	ErrUnknown               = errors.New("unknown error")

	// Session errors
	ErrStorage          = errors.New("session storage failure")
	ErrSessionExpired   = errors.New("session expired")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbiddenRole    = errors.New("role not permitted")

	// General errors
	ErrNotFound = errors.New("not found")
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
