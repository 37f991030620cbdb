package portalapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/member-portal/apiclient"
	apperrors "github.com/jrsteele09/member-portal/internal/errors"
	"github.com/jrsteele09/member-portal/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Feature endpoints.
const (
	ForumCategoriesPath = "/forums/categories/"
	NewsPath            = "/news/"
)

// Sessions is what feature modules may use of the session manager: a token source to
// authorize calls and a way to report a rejected bearer token.
type Sessions interface {
	Role() session.Role
	TokenSource() oauth2.TokenSource
	Expire(ctx context.Context, bearerToken string) (bool, error)
}

// ForumCategory is one forum category with its thread count.
type ForumCategory struct {
	ID          session.ID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ThreadCount int        `json:"thread_count"`
}

// NewsRelease is a news or press release entry managed by admins.
type NewsRelease struct {
	ID          session.ID `json:"id"`
	Title       string     `json:"title"`
	Status      string     `json:"status,omitempty"` // e.g. "draft", "published"
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Client calls role-scoped backend features with the current bearer token.
type Client struct {
	api      *apiclient.Client
	sessions Sessions
	log      zerolog.Logger
}

// New creates a feature client for the API at baseURL. Requests are authorized by an
// oauth2.Transport over the manager's token source, so a new login or a logout is
// picked up on the next call.
func New(baseURL string, sessions Sessions, log zerolog.Logger, options ...apiclient.Option) *Client {
	hc := &http.Client{
		Transport: &oauth2.Transport{Source: sessions.TokenSource()},
	}
	options = append(options, apiclient.WithHTTPClient(hc), apiclient.WithLogger(log))
	return &Client{
		api:      apiclient.New(baseURL, options...),
		sessions: sessions,
		log:      log,
	}
}

// ForumCategories lists the member forum categories.
func (c *Client) ForumCategories(ctx context.Context) ([]ForumCategory, error) {
	var out []ForumCategory
	if err := c.get(ctx, session.RoleMember, ForumCategoriesPath, &out); err != nil {
		return nil, errors.Wrap(err, "[Client.ForumCategories]")
	}
	return out, nil
}

// NewsReleases lists news releases for the admin dashboard.
func (c *Client) NewsReleases(ctx context.Context) ([]NewsRelease, error) {
	var out []NewsRelease
	if err := c.get(ctx, session.RoleAdmin, NewsPath, &out); err != nil {
		return nil, errors.Wrap(err, "[Client.NewsReleases]")
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, role session.Role, path string, out any) error {
	switch current := c.sessions.Role(); {
	case current == session.RoleAnonymous:
		return apperrors.ErrNotAuthenticated
	case current != role:
		return apperrors.ErrForbiddenRole
	}

	err := c.api.Get(ctx, path, out)
	if err == nil {
		return nil
	}
	if errors.Is(err, apperrors.ErrNotAuthenticated) {
		return apperrors.ErrNotAuthenticated
	}

	var httpErr *apiclient.HTTPError
	if errors.As(err, &httpErr) && httpErr.Status == http.StatusUnauthorized {
		bearer := strings.TrimPrefix(httpErr.Authorization, "Bearer ")
		expired, expErr := c.sessions.Expire(ctx, bearer)
		if expErr != nil {
			c.log.Err(expErr).Msg("failed to clear expired session")
		}
		if expired {
			c.log.Info().Str("path", path).Msg("session expired, signed out locally")
		}
		return errors.Wrap(apperrors.ErrSessionExpired, httpErr.Error())
	}
	return err
}
