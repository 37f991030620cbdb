package identity

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/member-portal/apiclient"
	apperrors "github.com/jrsteele09/member-portal/internal/errors"
	"github.com/pkg/errors"
)

// LoginError is the classified failure of a credential exchange. Kind is one of the
// login sentinels in internal/errors; errors.Is matches it as well as the underlying
// cause in Err.
type LoginError struct {
	Kind   error
	Status int    // HTTP status, or the synthetic status for admin transport failures
	Detail string // backend-provided text, if any
	Err    error

	// Synthetic is set when Status was not received from the backend.
	Synthetic bool
}

func (e *LoginError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	} else if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *LoginError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Message returns the single user-visible message for the error's kind.
func (e *LoginError) Message() string {
	switch e.Kind {
	case apperrors.ErrInvalidInput:
		return withDefault(e.Detail, "Please enter a valid email address and a password of at least 6 characters.")
	case apperrors.ErrInvalidCredentials:
		return "The email or password you entered does not match our records."
	case apperrors.ErrMembershipInactive:
		return "Your membership is inactive. Please renew your membership dues or contact support to restore access."
	case apperrors.ErrAccountDeactivated:
		return "Your account has been deactivated. Please contact support."
	case apperrors.ErrAccessDenied:
		return "You do not have permission to sign in here."
	case apperrors.ErrBadRequest:
		return withDefault(e.Detail, "The request could not be processed. Please check your details and try again.")
	case apperrors.ErrNetworkUnavailable:
		return "Unable to reach the server. Check your connection and try again."
	case apperrors.ErrMalformedAuthResponse:
		return "The server returned an unexpected response. Please try again."
	}
	return withDefault(e.Detail, "Something went wrong. Please try again.")
}

// MessageFor renders any error returned by a provider as the text to show on the
// login form.
func MessageFor(err error) string {
	if err == nil {
		return ""
	}
	var le *LoginError
	if errors.As(err, &le) {
		return le.Message()
	}
	return (&LoginError{Kind: apperrors.ErrUnknown}).Message()
}

func withDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

// classify maps a failed exchange onto the login error taxonomy. When syntheticStatus
// is non-zero, failures without an HTTP response carry it as their Status.
func classify(err error, syntheticStatus int) *LoginError {
	var le *LoginError
	if errors.As(err, &le) {
		return le
	}

	var transportErr *apiclient.TransportError
	if errors.As(err, &transportErr) {
		return &LoginError{
			Kind:      apperrors.ErrNetworkUnavailable,
			Status:    syntheticStatus,
			Synthetic: syntheticStatus != 0,
			Err:       err,
		}
	}

	var httpErr *apiclient.HTTPError
	if errors.As(err, &httpErr) {
		le := &LoginError{Status: httpErr.Status, Detail: httpErr.Detail(), Err: err}
		switch httpErr.Status {
		case http.StatusUnauthorized:
			le.Kind = apperrors.ErrInvalidCredentials
		case http.StatusForbidden:
			le.Kind = forbiddenKind(httpErr.Code(), le.Detail)
		case http.StatusBadRequest:
			le.Kind = apperrors.ErrBadRequest
		default:
			le.Kind = apperrors.ErrUnknown
		}
		return le
	}

	var decodeErr *apiclient.DecodeError
	if errors.As(err, &decodeErr) || errors.Is(err, apperrors.ErrMalformedAuthResponse) {
		return &LoginError{Kind: apperrors.ErrMalformedAuthResponse, Err: err}
	}

	// Store failures and anything else unexpected.
	return &LoginError{Kind: apperrors.ErrUnknown, Err: err}
}

var (
	inactiveCodes    = map[string]bool{"membership_inactive": true, "membership_expired": true}
	deactivatedCodes = map[string]bool{"account_deactivated": true, "account_disabled": true}
)

// forbiddenKind reads the membership-inactive and account-deactivated indicators of a
// 403 response. The machine-readable code wins over the detail text.
func forbiddenKind(code, detail string) error {
	code = strings.ToLower(strings.TrimSpace(code))
	switch {
	case inactiveCodes[code]:
		return apperrors.ErrMembershipInactive
	case deactivatedCodes[code]:
		return apperrors.ErrAccountDeactivated
	}

	d := strings.ToLower(detail)
	switch {
	case strings.Contains(d, "membership") &&
		(strings.Contains(d, "inactive") || strings.Contains(d, "expired") || strings.Contains(d, "dues")):
		return apperrors.ErrMembershipInactive
	case strings.Contains(d, "deactivated") || strings.Contains(d, "disabled"):
		return apperrors.ErrAccountDeactivated
	}
	return apperrors.ErrAccessDenied
}
