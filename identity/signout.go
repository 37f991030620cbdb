package identity

import (
	"context"

	"github.com/jrsteele09/member-portal/apiclient"
	"github.com/jrsteele09/member-portal/session"
	"github.com/pkg/errors"
)

type logoutRequest struct {
	Refresh string `json:"refresh,omitempty"`
}

// RemoteSignOut tells the backend a session is ending so it can revoke the refresh
// token. It implements session.SignOutNotifier.
type RemoteSignOut struct {
	api  *apiclient.Client
	path string
}

var _ session.SignOutNotifier = (*RemoteSignOut)(nil)

// MemberSignOut notifies the member logout endpoint.
func MemberSignOut(api *apiclient.Client) *RemoteSignOut {
	return &RemoteSignOut{api: api, path: MemberLogoutPath}
}

// AdminSignOut notifies the admin logout endpoint.
func AdminSignOut(api *apiclient.Client) *RemoteSignOut {
	return &RemoteSignOut{api: api, path: AdminLogoutPath}
}

// SignOut posts the session's refresh token with the session's bearer token.
func (r *RemoteSignOut) SignOut(ctx context.Context, sess session.Session) error {
	body := logoutRequest{Refresh: sess.RefreshToken}
	err := r.api.Post(ctx, r.path, body, nil, apiclient.WithBearer(sess.BearerToken))
	return errors.Wrap(err, "[RemoteSignOut.SignOut]")
}
