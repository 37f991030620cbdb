package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/member-portal/internal/errors"
	"golang.org/x/oauth2"
)

// TokenSource exposes the current bearer token as an oauth2.TokenSource so feature
// clients can authorize requests with oauth2.NewClient without touching the store.
func (m *Manager) TokenSource() oauth2.TokenSource {
	return tokenSource{m: m}
}

type tokenSource struct {
	m *Manager
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	bearer, ok := ts.m.BearerToken()
	if !ok {
		return nil, apperrors.ErrNotAuthenticated
	}
	tok := &oauth2.Token{AccessToken: bearer, TokenType: "Bearer"}
	if exp, ok := TokenExpiry(bearer); ok {
		tok.Expiry = exp
	}
	return tok, nil
}

// BearerExpiry returns the exp claim of the current bearer token when it is a JWT.
func (m *Manager) BearerExpiry() (time.Time, bool) {
	bearer, ok := m.BearerToken()
	if !ok {
		return time.Time{}, false
	}
	return TokenExpiry(bearer)
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature. The
// backend remains the authority on validity; this is only used for display and for
// the opt-in guard expiry check.
func TokenExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
