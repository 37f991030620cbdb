package identity

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/jrsteele09/member-portal/internal/errors"
	"github.com/jrsteele09/member-portal/session"
	"github.com/pkg/errors"
)

// Credentials is a single login attempt. It is never persisted.
type Credentials struct {
	Email      string
	Password   string
	RememberMe bool
}

// LoginResult is returned by a successful login. Redirect is the route the caller
// should navigate to next.
type LoginResult struct {
	Session  session.Session
	Redirect string
}

// memberForm carries the member login rules checked before any network call.
type memberForm struct {
	Email    string `validate:"required,contains=@"`
	Password string `validate:"required,min=6"`
}

// adminForm only requires both fields to be present.
type adminForm struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type credentialValidator struct {
	v *validator.Validate
}

func newCredentialValidator() *credentialValidator {
	return &credentialValidator{v: validator.New()}
}

// check validates form and returns an InvalidInput LoginError describing every failed
// field.
func (cv *credentialValidator) check(form any) error {
	err := cv.v.Struct(form)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return &LoginError{Kind: apperrors.ErrInvalidInput, Err: err}
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return &LoginError{Kind: apperrors.ErrInvalidInput, Detail: strings.Join(msgs, "; "), Err: err}
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "contains":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
