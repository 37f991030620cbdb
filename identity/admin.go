package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/member-portal/apiclient"
	"github.com/jrsteele09/member-portal/guard"
	"github.com/jrsteele09/member-portal/session"
)

// AdminProvider exchanges administrator credentials for an admin session.
type AdminProvider struct {
	provider
	sessions AdminSessions
}

// NewAdminProvider creates the admin login flow.
func NewAdminProvider(api *apiclient.Client, sessions AdminSessions, options ...Option) *AdminProvider {
	return &AdminProvider{
		provider: newProvider(api, options...),
		sessions: sessions,
	}
}

// Login exchanges creds at the admin login endpoint. A 2xx response is only accepted
// when it carries both the access token and the admin profile. Failures without an
// HTTP response report a synthetic 401 status so callers can handle both admin error
// origins the same way.
func (p *AdminProvider) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := p.validate.check(adminForm{Email: creds.Email, Password: creds.Password}); err != nil {
		return LoginResult{}, err
	}

	return p.once(ctx, session.RoleAdmin, creds, func(ctx context.Context) (LoginResult, error) {
		return p.exchange(ctx, creds)
	})
}

func (p *AdminProvider) exchange(ctx context.Context, creds Credentials) (LoginResult, error) {
	var resp session.AdminAuthResponse
	err := p.api.Post(ctx, AdminLoginPath, loginRequest{Email: creds.Email, Password: creds.Password}, &resp)
	if err != nil {
		le := classify(err, http.StatusUnauthorized)
		p.log.Info().Err(err).Str("email", creds.Email).Str("kind", le.Kind.Error()).Msg("admin login failed")
		return LoginResult{}, le
	}

	// EstablishAdminSession rejects a response without access or admin.
	result, err := p.sessions.EstablishAdminSession(ctx, resp, creds.RememberMe)
	if err != nil {
		p.log.Warn().Err(err).Str("email", creds.Email).Msg("failed to establish admin session")
		return LoginResult{}, classify(err, 0)
	}

	return LoginResult{
		Session:  result.Session,
		Redirect: guard.RouteAdminDashboard,
	}, nil
}
