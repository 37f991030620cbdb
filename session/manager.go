package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	apperrors "github.com/jrsteele09/member-portal/internal/errors"
	"github.com/jrsteele09/member-portal/store"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// SignOutNotifier tells the backend that a session is ending. Failures never block
// local sign-out.
type SignOutNotifier interface {
	SignOut(ctx context.Context, sess Session) error
}

// SignOutFunc adapts a function to SignOutNotifier.
type SignOutFunc func(ctx context.Context, sess Session) error

func (f SignOutFunc) SignOut(ctx context.Context, sess Session) error { return f(ctx, sess) }

// AdminAuthResponse is the payload of a successful admin credential exchange.
// Access and Admin are both mandatory.
type AdminAuthResponse struct {
	Access  string         `json:"access"`
	Refresh string         `json:"refresh,omitempty"`
	Admin   *AdminIdentity `json:"admin"`
}

// AdminSessionResult is returned by a successful EstablishAdminSession.
type AdminSessionResult struct {
	Session Session
}

// Manager is the only component that reads or writes session state. Construct one per
// process with New and pass it to everything that needs the session.
type Manager struct {
	store     store.Store
	current   Session
	notifiers map[Role]SignOutNotifier
	log       zerolog.Logger
	mu        sync.Mutex
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(l zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = l
	}
}

// WithSignOutNotifier registers the remote sign-out call made when a session of role ends.
func WithSignOutNotifier(role Role, n SignOutNotifier) ManagerOption {
	return func(m *Manager) {
		m.notifiers[role] = n
	}
}

// New creates a Manager and initializes it from the store.
func New(ctx context.Context, st store.Store, options ...ManagerOption) (*Manager, error) {
	if st == nil {
		return nil, errors.New("[session.New] store is required")
	}

	m := &Manager{
		store:     st,
		current:   Anonymous(),
		notifiers: make(map[Role]SignOutNotifier),
		log:       zerolog.Nop(),
	}
	for _, opt := range options {
		opt(m)
	}

	if _, err := m.Initialize(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// Initialize rebuilds the in-memory session from the store. Unparseable identity
// payloads are treated as absent and yield an anonymous session.
func (m *Manager) Initialize(ctx context.Context) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.load(ctx)
	if err != nil {
		return Anonymous(), err
	}
	m.current = sess
	return sess.clone(), nil
}

// Current returns a copy of the in-memory session.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.clone()
}

// Role returns the role of the current session.
func (m *Manager) Role() Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Role
}

// BearerToken returns the active bearer token. Feature modules use this (or
// TokenSource) instead of reading store keys.
func (m *Manager) BearerToken() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current.IsAnonymous() {
		return "", false
	}
	return m.current.BearerToken, true
}

// EstablishMemberSession persists a member session and makes it current. Any admin
// keys are cleared in the same step.
func (m *Manager) EstablishMemberSession(ctx context.Context, bearerToken, refreshToken string, member *MemberIdentity, rememberMe bool) error {
	if bearerToken == "" || member == nil || member.empty() {
		return errors.Wrap(apperrors.ErrMalformedAuthResponse, "[Manager.EstablishMemberSession] missing token or member")
	}

	userJSON, err := json.Marshal(member)
	if err != nil {
		return errors.Wrap(err, "[Manager.EstablishMemberSession] marshal member")
	}

	next := Session{
		Role:         RoleMember,
		BearerToken:  bearerToken,
		RefreshToken: refreshToken,
		Identity:     cloneIdentity(member),
		RememberMe:   rememberMe,
	}

	plan := commitPlan{
		clear: adminKeys,
		writes: []keyValue{
			{KeyMemberToken, bearerToken},
			{KeyMemberRefresh, refreshToken},
			{KeyMemberUser, string(userJSON)},
			{KeyRememberMe, boolFlag(rememberMe)},
			{KeyIsAuthenticated, flagTrue},
		},
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.commit(ctx, plan); err != nil {
		return errors.Wrap(err, "[Manager.EstablishMemberSession]")
	}
	m.current = next
	m.log.Info().Str("role", RoleMember.String()).Str("email", member.Email).Msg("member session established")
	return nil
}

// EstablishAdminSession validates the admin exchange response and, when both the
// access token and the admin identity are present, persists it as the current
// session. Member keys are cleared in the same step. On any error the previous
// session is left untouched.
func (m *Manager) EstablishAdminSession(ctx context.Context, resp AdminAuthResponse, rememberMe bool) (AdminSessionResult, error) {
	if resp.Access == "" || resp.Admin == nil || resp.Admin.empty() {
		return AdminSessionResult{}, errors.Wrap(apperrors.ErrMalformedAuthResponse, "[Manager.EstablishAdminSession] missing access or admin")
	}

	adminJSON, err := json.Marshal(resp.Admin)
	if err != nil {
		return AdminSessionResult{}, errors.Wrap(err, "[Manager.EstablishAdminSession] marshal admin")
	}

	next := Session{
		Role:         RoleAdmin,
		BearerToken:  resp.Access,
		RefreshToken: resp.Refresh,
		Identity:     cloneIdentity(resp.Admin),
		RememberMe:   rememberMe,
	}

	plan := commitPlan{
		clear: memberKeys,
		writes: []keyValue{
			{KeyAdminToken, resp.Access},
			{KeyAdminRefresh, resp.Refresh},
			{KeyAdminData, string(adminJSON)},
			{KeyRememberMe, boolFlag(rememberMe)},
			{KeyIsAdmin, flagTrue},
			{KeyIsAuthenticated, flagTrue},
		},
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.commit(ctx, plan); err != nil {
		return AdminSessionResult{}, errors.Wrap(err, "[Manager.EstablishAdminSession]")
	}
	m.current = next
	m.log.Info().Str("role", RoleAdmin.String()).Str("email", resp.Admin.Email).Msg("admin session established")
	return AdminSessionResult{Session: next.clone()}, nil
}

// Logout ends the current session and returns the role that was active so the caller
// can route to the matching login surface. The remote sign-out call is best-effort and
// runs without holding the manager lock; local state is always reset unless a new
// session was established while it was in flight. Calling Logout while anonymous is a
// no-op that returns RoleAnonymous.
func (m *Manager) Logout(ctx context.Context) (Role, error) {
	m.mu.Lock()
	prior := m.current.clone()
	n := m.notifiers[prior.Role]
	m.mu.Unlock()

	if !prior.IsAnonymous() && n != nil {
		if err := n.SignOut(ctx, prior); err != nil {
			m.log.Warn().Err(err).Str("role", prior.Role.String()).Msg("remote sign-out failed, clearing local session anyway")
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.Role != prior.Role || m.current.BearerToken != prior.BearerToken {
		m.log.Info().Str("role", m.current.Role.String()).Msg("session replaced during sign-out, keeping it")
		return prior.Role, nil
	}

	err := m.reset(ctx)
	if !prior.IsAnonymous() {
		m.log.Info().Str("role", prior.Role.String()).Msg("signed out")
	}
	return prior.Role, err
}

// Expire drops the session locally when a feature module reports that bearerToken was
// rejected. No remote sign-out is attempted. It returns false when bearerToken is no
// longer the current token (a newer session was established in the meantime).
func (m *Manager) Expire(ctx context.Context, bearerToken string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.IsAnonymous() || m.current.BearerToken != bearerToken {
		return false, nil
	}
	role := m.current.Role
	err := m.reset(ctx)
	m.log.Warn().Str("role", role.String()).Msg("bearer token rejected, session expired")
	return true, err
}

// reset clears every persisted key and the in-memory session. Memory is reset even when
// the store fails, so a user can always sign out locally.
func (m *Manager) reset(ctx context.Context) error {
	m.current = Anonymous()
	if err := m.store.Clear(context.WithoutCancel(ctx), AllKeys()...); err != nil {
		m.log.Err(err).Msg("failed to clear persisted session")
		return storageErr("[Manager.reset] store.Clear", err)
	}
	return nil
}

func (m *Manager) load(ctx context.Context) (Session, error) {
	values := make(map[string]string)
	for _, k := range AllKeys() {
		v, ok, err := m.store.Get(ctx, k)
		if err != nil {
			return Anonymous(), storageErr("[Manager.load] store.Get "+k, err)
		}
		if ok {
			values[k] = v
		}
	}

	if values[KeyIsAuthenticated] != flagTrue {
		return Anonymous(), nil
	}
	rememberMe := values[KeyRememberMe] == flagTrue

	if values[KeyIsAdmin] == flagTrue {
		admin := &AdminIdentity{}
		if err := json.Unmarshal([]byte(values[KeyAdminData]), admin); err != nil {
			m.log.Warn().Err(err).Msg("persisted admin identity is unreadable, starting anonymous")
			return Anonymous(), nil
		}
		if admin.empty() {
			m.log.Warn().Msg("persisted admin identity is empty, starting anonymous")
			return Anonymous(), nil
		}
		if values[KeyAdminToken] == "" {
			m.log.Warn().Msg("persisted admin session has no token, starting anonymous")
			return Anonymous(), nil
		}
		return Session{
			Role:         RoleAdmin,
			BearerToken:  values[KeyAdminToken],
			RefreshToken: values[KeyAdminRefresh],
			Identity:     admin,
			RememberMe:   rememberMe,
		}, nil
	}

	member := &MemberIdentity{}
	if err := json.Unmarshal([]byte(values[KeyMemberUser]), member); err != nil {
		m.log.Warn().Err(err).Msg("persisted member identity is unreadable, starting anonymous")
		return Anonymous(), nil
	}
	if member.empty() {
		m.log.Warn().Msg("persisted member identity is empty, starting anonymous")
		return Anonymous(), nil
	}
	if values[KeyMemberToken] == "" {
		m.log.Warn().Msg("persisted member session has no token, starting anonymous")
		return Anonymous(), nil
	}
	return Session{
		Role:         RoleMember,
		BearerToken:  values[KeyMemberToken],
		RefreshToken: values[KeyMemberRefresh],
		Identity:     member,
		RememberMe:   rememberMe,
	}, nil
}

type keyValue struct {
	key   string
	value string
}

// commitPlan clears the other role's keys, then writes the new values in order.
// Empty values are removed rather than stored.
type commitPlan struct {
	clear  []string
	writes []keyValue
}

// commit applies plan to the store. If any step fails, every touched key is restored
// to its previous value before the error is returned.
func (m *Manager) commit(ctx context.Context, plan commitPlan) error {
	touched := append([]string(nil), plan.clear...)
	for _, w := range plan.writes {
		touched = append(touched, w.key)
	}

	previous := make(map[string]*string, len(touched))
	for _, k := range touched {
		v, ok, err := m.store.Get(ctx, k)
		if err != nil {
			return storageErr("store.Get "+k, err)
		}
		if ok {
			previous[k] = &v
		} else {
			previous[k] = nil
		}
	}

	fail := func(op string, err error) error {
		m.rollback(ctx, previous)
		return storageErr(op, err)
	}

	if len(plan.clear) > 0 {
		if err := m.store.Clear(ctx, plan.clear...); err != nil {
			return fail("store.Clear", err)
		}
	}
	for _, w := range plan.writes {
		if w.value == "" {
			if err := m.store.Remove(ctx, w.key); err != nil {
				return fail("store.Remove "+w.key, err)
			}
			continue
		}
		if err := m.store.Set(ctx, w.key, w.value); err != nil {
			return fail("store.Set "+w.key, err)
		}
	}
	return nil
}

func (m *Manager) rollback(ctx context.Context, previous map[string]*string) {
	ctx = context.WithoutCancel(ctx)
	for k, v := range previous {
		var err error
		if v == nil {
			err = m.store.Remove(ctx, k)
		} else {
			err = m.store.Set(ctx, k, *v)
		}
		if err != nil {
			m.log.Err(err).Str("key", k).Msg("failed to restore persisted session key")
		}
	}
}

func storageErr(op string, err error) error {
	return errors.Wrap(fmt.Errorf("%w: %w", apperrors.ErrStorage, err), op)
}
