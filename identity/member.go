package identity

import (
	"context"
	"strings"

	"github.com/jrsteele09/member-portal/apiclient"
	"github.com/jrsteele09/member-portal/guard"
	apperrors "github.com/jrsteele09/member-portal/internal/errors"
	"github.com/jrsteele09/member-portal/session"
	"github.com/pkg/errors"
)

// MemberProvider exchanges member credentials for a member session.
type MemberProvider struct {
	provider
	sessions MemberSessions
}

// NewMemberProvider creates the member login flow.
func NewMemberProvider(api *apiclient.Client, sessions MemberSessions, options ...Option) *MemberProvider {
	return &MemberProvider{
		provider: newProvider(api, options...),
		sessions: sessions,
	}
}

type memberAuthResponse struct {
	Access  string                  `json:"access"`
	Refresh string                  `json:"refresh"`
	User    *session.MemberIdentity `json:"user"`
}

// Login validates creds locally, exchanges them at the member login endpoint and
// establishes a member session. Every failure is a *LoginError; on failure the current
// session is left as it was.
func (p *MemberProvider) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := p.validate.check(memberForm{Email: creds.Email, Password: creds.Password}); err != nil {
		return LoginResult{}, err
	}

	return p.once(ctx, session.RoleMember, creds, func(ctx context.Context) (LoginResult, error) {
		return p.exchange(ctx, creds)
	})
}

func (p *MemberProvider) exchange(ctx context.Context, creds Credentials) (LoginResult, error) {
	var resp memberAuthResponse
	err := p.api.Post(ctx, MemberLoginPath, loginRequest{Email: creds.Email, Password: creds.Password}, &resp)
	if err != nil {
		le := classify(err, 0)
		p.log.Info().Err(err).Str("email", creds.Email).Str("kind", le.Kind.Error()).Msg("member login failed")
		return LoginResult{}, le
	}

	if resp.Access == "" || resp.User == nil {
		p.log.Warn().Str("email", creds.Email).Msg("member login response is missing access or user")
		return LoginResult{}, classify(errors.Wrap(apperrors.ErrMalformedAuthResponse, "[MemberProvider.Login]"), 0)
	}

	if err := p.sessions.EstablishMemberSession(ctx, resp.Access, resp.Refresh, resp.User, creds.RememberMe); err != nil {
		p.log.Err(err).Str("email", creds.Email).Msg("failed to establish member session")
		return LoginResult{}, classify(err, 0)
	}

	return LoginResult{
		Session:  p.sessions.Current(),
		Redirect: guard.RouteMemberPortal,
	}, nil
}
