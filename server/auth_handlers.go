package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/member-portal/internal/errors"
	"github.com/jrsteele09/member-portal/token/jwt"
	"github.com/jrsteele09/member-portal/users"
	"github.com/pkg/errors"
)

const maxRequestBytes = 1 << 16

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

type memberProfile struct {
	ID               string                 `json:"id"`
	Email            string                 `json:"email"`
	FirstName        string                 `json:"first_name,omitempty"`
	LastName         string                 `json:"last_name,omitempty"`
	MembershipStatus users.MembershipStatus `json:"membership_status,omitempty"`
	MembershipType   string                 `json:"membership_type,omitempty"`
	MemberNumber     string                 `json:"member_number,omitempty"`
}

type adminProfile struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name,omitempty"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

type memberLoginResponse struct {
	Access  string        `json:"access"`
	Refresh string        `json:"refresh"`
	User    memberProfile `json:"user"`
}

type adminLoginResponse struct {
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
	Admin   adminProfile `json:"admin"`
}

// loginRejection is a refused login: the status, code and detail sent back and the
// metrics label it is counted under.
type loginRejection struct {
	status int
	code   string
	detail string
	result string
}

var (
	rejectBadRequest = loginRejection{http.StatusBadRequest, "", "Email and password are required.", "bad_request"}
	rejectInvalid    = loginRejection{http.StatusUnauthorized, "invalid_credentials", "No active account found with the given credentials.", "invalid_credentials"}
	rejectNotAdmin   = loginRejection{http.StatusForbidden, CodePermissionDenied, "This account does not have administrator access.", "access_denied"}
	rejectDisabled   = loginRejection{http.StatusForbidden, CodeAccountDeactivated, "This account has been deactivated.", "account_deactivated"}
)

func rejectMembership(status users.MembershipStatus) loginRejection {
	return loginRejection{
		status: http.StatusForbidden,
		code:   "membership_" + string(status),
		detail: "Your membership is " + string(status) + ". Please renew your dues to restore access.",
		result: CodeMembershipInactive,
	}
}

// MemberLoginHandler exchanges member credentials for tokens and the member profile
func (s *Server) MemberLoginHandler() http.HandlerFunc {
	return s.loginHandler(users.KindMember, func(u *users.User, access, refresh string) any {
		return memberLoginResponse{
			Access:  access,
			Refresh: refresh,
			User: memberProfile{
				ID:               u.ID,
				Email:            u.Email,
				FirstName:        u.FirstName,
				LastName:         u.LastName,
				MembershipStatus: u.MembershipStatus,
				MembershipType:   u.MembershipType,
				MemberNumber:     u.MemberNumber,
			},
		}
	})
}

// AdminLoginHandler exchanges administrator credentials for tokens and the admin profile
func (s *Server) AdminLoginHandler() http.HandlerFunc {
	return s.loginHandler(users.KindAdmin, func(u *users.User, access, refresh string) any {
		return adminLoginResponse{
			Access:  access,
			Refresh: refresh,
			Admin: adminProfile{
				ID:          u.ID,
				Email:       u.Email,
				Name:        u.FullName(),
				Role:        u.AdminRole,
				Permissions: u.Permissions,
			},
		}
	})
}

func (s *Server) loginHandler(kind users.Kind, respond func(u *users.User, access, refresh string) any) http.HandlerFunc {
	portal := string(kind)
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeBody(r, &req); err != nil {
			s.rejectLogin(w, portal, loginRejection{http.StatusBadRequest, "", "Invalid request body.", "bad_request"})
			return
		}
		if strings.TrimSpace(req.Email) == "" || req.Password == "" {
			s.rejectLogin(w, portal, rejectBadRequest)
			return
		}

		user, err := s.repos.Users.GetByEmail(req.Email)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				s.log.Error().Err(err).Msg("user lookup failed")
				writeJSONError(w, http.StatusInternalServerError, "", "Internal server error.")
				return
			}
			s.rejectLogin(w, portal, rejectInvalid)
			return
		}
		if !user.CheckPassword(req.Password) {
			s.rejectLogin(w, portal, rejectInvalid)
			return
		}

		if rejection, ok := s.checkAccount(user, kind); !ok {
			s.rejectLogin(w, portal, rejection)
			return
		}

		access, err := s.tokens.CreateAccessToken(user)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to create access token")
			writeJSONError(w, http.StatusInternalServerError, "", "Internal server error.")
			return
		}
		refresh, err := s.refresh.Create(user.ID)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to create refresh token")
			writeJSONError(w, http.StatusInternalServerError, "", "Internal server error.")
			return
		}
		if err := s.repos.Users.SetLastLogin(user.Email, jwt.NowTimeFunc()); err != nil {
			s.log.Warn().Err(err).Str("email", user.Email).Msg("failed to record last login")
		}

		s.metrics.logins.WithLabelValues(portal, "success").Inc()
		s.log.Info().Str("portal", portal).Str("user_id", user.ID).Msg("login")
		writeJSON(w, http.StatusOK, respond(user, access, refresh))
	}
}

// checkAccount applies the per-portal rules once the password has matched.
func (s *Server) checkAccount(user *users.User, kind users.Kind) (loginRejection, bool) {
	switch {
	case user.Deactivated:
		return rejectDisabled, false
	case kind == users.KindAdmin && !user.IsAdmin():
		return rejectNotAdmin, false
	case kind == users.KindMember && user.IsAdmin():
		// Admin accounts have no member profile.
		return rejectInvalid, false
	case kind == users.KindMember && !user.HasActiveMembership():
		return rejectMembership(user.MembershipStatus), false
	}
	return loginRejection{}, true
}

func (s *Server) rejectLogin(w http.ResponseWriter, portal string, rej loginRejection) {
	s.metrics.logins.WithLabelValues(portal, rej.result).Inc()
	s.log.Debug().Str("portal", portal).Str("result", rej.result).Msg("login rejected")
	writeJSONError(w, rej.status, rej.code, rej.detail)
}

// LogoutHandler revokes the caller's access token and, when given, its refresh token.
// It must run behind RequireAuth.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, CodeNotAuthenticated, "Authentication credentials were not provided.")
			return
		}

		var req logoutRequest
		if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
			writeJSONError(w, http.StatusBadRequest, "", "Invalid request body.")
			return
		}

		// A rejected refresh token leaves the access token usable.
		if req.Refresh != "" {
			if err := s.refresh.Revoke(req.Refresh, claims.Subject); err != nil {
				s.log.Debug().Err(err).Str("user_id", claims.Subject).Msg("refresh token not revoked")
				writeJSONError(w, http.StatusBadRequest, CodeTokenNotValid, "Token is invalid or expired.")
				return
			}
		}

		if claims.ExpiresAt != nil {
			s.revoked.Revoke(claims.ID, claims.ExpiresAt.Time)
		}

		s.metrics.logouts.WithLabelValues(string(claims.Kind)).Inc()
		s.log.Info().Str("portal", string(claims.Kind)).Str("user_id", claims.Subject).Msg("logout")
		w.WriteHeader(http.StatusNoContent)
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	return dec.Decode(v)
}
