package signout

import (
	"context"

	"github.com/jrsteele09/member-portal/guard"
	"github.com/jrsteele09/member-portal/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Confirmer asks the user to confirm the sign-out.
type Confirmer interface {
	Confirm(ctx context.Context, current session.Session) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, current session.Session) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, current session.Session) (bool, error) {
	return f(ctx, current)
}

// AlwaysConfirm skips the prompt, e.g. for a --yes flag.
var AlwaysConfirm = ConfirmFunc(func(context.Context, session.Session) (bool, error) { return true, nil })

// Sessions is the part of the session manager sign-out needs.
type Sessions interface {
	Current() session.Session
	Logout(ctx context.Context) (session.Role, error)
}

// Outcome reports what the flow did. Redirect is empty when Cancelled.
type Outcome struct {
	Cancelled bool
	PriorRole session.Role
	Redirect  string
}

// Flow gates Logout behind a confirmation step.
type Flow struct {
	confirmer Confirmer
	sessions  Sessions
	log       zerolog.Logger
}

// NewFlow creates a sign-out flow.
func NewFlow(confirmer Confirmer, sessions Sessions, log zerolog.Logger) *Flow {
	if confirmer == nil {
		confirmer = AlwaysConfirm
	}
	return &Flow{confirmer: confirmer, sessions: sessions, log: log}
}

// Run asks for confirmation and, if given, signs out and returns the login surface
// for the role that was active. Declining changes nothing.
func (f *Flow) Run(ctx context.Context) (Outcome, error) {
	ok, err := f.confirmer.Confirm(ctx, f.sessions.Current())
	if err != nil {
		return Outcome{}, errors.Wrap(err, "[Flow.Run] confirm")
	}
	if !ok {
		f.log.Debug().Msg("sign-out cancelled")
		return Outcome{Cancelled: true}, nil
	}

	prior, err := f.sessions.Logout(ctx)
	out := Outcome{PriorRole: prior, Redirect: RouteAfter(prior)}
	if err != nil {
		// Local state is already anonymous; the caller may still navigate.
		return out, errors.Wrap(err, "[Flow.Run] logout")
	}
	return out, nil
}

// RouteAfter returns the login surface to show after signing out of prior.
func RouteAfter(prior session.Role) string {
	if prior == session.RoleAdmin {
		return guard.RouteAdminLogin
	}
	return guard.RouteMemberLogin
}
