package guard

import (
	"context"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/jrsteele09/member-portal/internal/errors"
	"github.com/jrsteele09/member-portal/session"
	"github.com/rs/zerolog"
)

// Decision is the outcome of a guard check. When Allow is false, Redirect names the
// login surface to send the user to and Reason says why.
type Decision struct {
	Allow    bool
	Redirect string
	Reason   error
}

func allow() Decision {
	return Decision{Allow: true}
}

func deny(redirect string, reason error) Decision {
	return Decision{Redirect: redirect, Reason: reason}
}

// RequireMember allows only member sessions.
func RequireMember(s session.Session) Decision {
	return requireRole(s, session.RoleMember, RouteMemberLogin)
}

// RequireAdmin allows only admin sessions.
func RequireAdmin(s session.Session) Decision {
	return requireRole(s, session.RoleAdmin, RouteAdminLogin)
}

func requireRole(s session.Session, want session.Role, loginRoute string) Decision {
	switch {
	case s.IsAnonymous():
		return deny(loginRoute, apperrors.ErrNotAuthenticated)
	case s.Role != want:
		return deny(loginRoute, apperrors.ErrForbiddenRole)
	}
	return allow()
}

// SessionSource provides the current session. *session.Manager satisfies it.
type SessionSource interface {
	Current() session.Session
}

// Guard evaluates the role guards against a live session source at navigation time.
// It trusts the locally cached role; a revoked or expired bearer token is only
// noticed by the next backend call unless WithTokenExpiry is set.
type Guard struct {
	source SessionSource
	now    func() time.Time // nil unless the expiry check is enabled
	log    zerolog.Logger
}

// Option defines a function type to modify the Guard.
type Option func(*Guard)

// WithTokenExpiry also rejects sessions whose bearer token is a JWT with an exp claim
// at or before now(). Opaque tokens are never rejected by this check.
func WithTokenExpiry(now func() time.Time) Option {
	return func(g *Guard) {
		if now == nil {
			now = time.Now
		}
		g.now = now
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(g *Guard) {
		g.log = l
	}
}

// New creates a Guard reading from source.
func New(source SessionSource, options ...Option) *Guard {
	g := &Guard{
		source: source,
		log:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Member checks the current session for member access.
func (g *Guard) Member() Decision {
	return g.check(RequireMember)
}

// Admin checks the current session for admin access.
func (g *Guard) Admin() Decision {
	return g.check(RequireAdmin)
}

func (g *Guard) check(rule func(session.Session) Decision) Decision {
	s := g.source.Current()
	d := rule(s)
	if !d.Allow || g.now == nil {
		return d
	}
	if exp, ok := session.TokenExpiry(s.BearerToken); ok && !g.now().Before(exp) {
		g.log.Debug().Str("role", s.Role.String()).Time("exp", exp).Msg("bearer token expired")
		return deny(loginRouteFor(s.Role), apperrors.ErrSessionExpired)
	}
	return d
}

func loginRouteFor(r session.Role) string {
	if r == session.RoleAdmin {
		return RouteAdminLogin
	}
	return RouteMemberLogin
}

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the session that passed the guard
const ContextKeySession ContextKey = "session"

// FromContext returns the session injected by the guard middleware.
func FromContext(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(ContextKeySession).(session.Session)
	return s, ok
}

// MemberOnly is middleware for member portal routes.
func (g *Guard) MemberOnly() func(http.HandlerFunc) http.HandlerFunc {
	return g.middleware(g.Member)
}

// AdminOnly is middleware for admin dashboard routes.
func (g *Guard) AdminOnly() func(http.HandlerFunc) http.HandlerFunc {
	return g.middleware(g.Admin)
}

func (g *Guard) middleware(decide func() Decision) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			d := decide()
			if !d.Allow {
				target := d.Redirect
				if apperrors.Is(d.Reason, apperrors.ErrSessionExpired) {
					target += "?error=" + url.QueryEscape("Session expired")
				}
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, g.source.Current())
			next(w, r.WithContext(ctx))
		}
	}
}
