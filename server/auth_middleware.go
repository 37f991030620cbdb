package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/member-portal/token/jwt"
	"github.com/jrsteele09/member-portal/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyClaims stores the parsed access token claims
	ContextKeyClaims ContextKey = "claims"
)

// Error codes sent alongside the detail message.
const (
	CodeTokenNotValid      = "token_not_valid"
	CodeNotAuthenticated   = "not_authenticated"
	CodePermissionDenied   = "permission_denied"
	CodeMembershipInactive = "membership_inactive"
	CodeAccountDeactivated = "account_deactivated"
)

// RequireAuth is middleware that validates a Bearer access token and checks that it
// was issued to an account of the given kind.
func (s *Server) RequireAuth(kind users.Kind) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, CodeNotAuthenticated, "Authentication credentials were not provided.")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				writeJSONError(w, http.StatusUnauthorized, CodeNotAuthenticated, "Invalid Authorization header format.")
				return
			}

			claims, err := s.inspector.Validate(parts[1])
			if err != nil {
				s.log.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected access token")
				writeJSONError(w, http.StatusUnauthorized, CodeTokenNotValid, "Given token not valid for any token type.")
				return
			}

			if claims.Kind != kind {
				writeJSONError(w, http.StatusForbidden, CodePermissionDenied, "You do not have permission to perform this action.")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

// ClaimsFromContext returns the claims RequireAuth stored on the request.
func ClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*jwt.Claims)
	return claims, ok
}
