package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/jrsteele09/member-portal/apiclient"
	"github.com/jrsteele09/member-portal/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Backend endpoints for the credential exchanges and remote sign-out.
const (
	MemberLoginPath  = "/users/login/"
	MemberLogoutPath = "/users/logout/"
	AdminLoginPath   = "/admin/login/"
	AdminLogoutPath  = "/admin/logout/"
)

// MemberSessions is the part of the session manager the member flow needs.
type MemberSessions interface {
	EstablishMemberSession(ctx context.Context, bearerToken, refreshToken string, member *session.MemberIdentity, rememberMe bool) error
	Current() session.Session
}

// AdminSessions is the part of the session manager the admin flow needs.
type AdminSessions interface {
	EstablishAdminSession(ctx context.Context, resp session.AdminAuthResponse, rememberMe bool) (session.AdminSessionResult, error)
}

// provider holds what both credential-exchange flows share.
type provider struct {
	api      *apiclient.Client
	validate *credentialValidator
	inflight singleflight.Group
	log      zerolog.Logger

	mu      sync.Mutex
	flights map[string]*flight
	gen     uint64
}

// flight is one shared login request. Its context is cancelled only once every caller
// waiting on it has gone away.
type flight struct {
	key     string
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// Option defines a function type to modify a provider.
type Option func(*provider)

func WithLogger(l zerolog.Logger) Option {
	return func(p *provider) {
		p.log = l
	}
}

func newProvider(api *apiclient.Client, options ...Option) provider {
	p := provider{
		api:      api,
		validate: newCredentialValidator(),
		flights:  make(map[string]*flight),
		log:      zerolog.Nop(),
	}
	for _, opt := range options {
		opt(&p)
	}
	return p
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// once runs exchange at most once at a time for identical credentials of the same role.
// A double-submitted form shares the first attempt's result instead of racing it. Each
// caller stops waiting when its own ctx ends; the request itself is cancelled only when
// no caller is left waiting for it.
func (p *provider) once(ctx context.Context, role session.Role, creds Credentials, exchange func(ctx context.Context) (LoginResult, error)) (LoginResult, error) {
	f := p.join(ctx, attemptKey(role, creds))
	defer p.leave(f)

	ch := p.inflight.DoChan(f.key, func() (any, error) {
		return exchange(f.ctx)
	})

	select {
	case r := <-ch:
		if r.Shared {
			p.log.Debug().Str("role", role.String()).Msg("login attempt joined an in-flight request")
		}
		res, _ := r.Val.(LoginResult)
		return res, r.Err
	case <-ctx.Done():
		return LoginResult{}, abandoned(role, ctx.Err())
	}
}

// abandoned classifies a caller giving up on a login the way a failed request would be.
func abandoned(role session.Role, cause error) *LoginError {
	path, status := MemberLoginPath, 0
	if role == session.RoleAdmin {
		path, status = AdminLoginPath, http.StatusUnauthorized
	}
	return classify(&apiclient.TransportError{
		Method: http.MethodPost,
		Path:   path,
		Err:    errors.Wrap(cause, "login abandoned"),
	}, status)
}

func (p *provider) join(ctx context.Context, key string) *flight {
	p.mu.Lock()
	defer p.mu.Unlock()

	f := p.flights[key]
	if f == nil || f.ctx.Err() != nil {
		p.gen++
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{key: key + "#" + strconv.FormatUint(p.gen, 10), ctx: fctx, cancel: cancel}
		p.flights[key] = f
	}
	f.waiters++
	return f
}

func (p *provider) leave(f *flight) {
	p.mu.Lock()
	defer p.mu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	for k, v := range p.flights {
		if v == f {
			delete(p.flights, k)
		}
	}
}

func attemptKey(role session.Role, creds Credentials) string {
	sum := sha256.Sum256([]byte(creds.Password))
	return role.String() + "|" + strings.ToLower(strings.TrimSpace(creds.Email)) + "|" + hex.EncodeToString(sum[:])
}
