package guard_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/member-portal/guard"
	apperrors "github.com/jrsteele09/member-portal/internal/errors"
	"github.com/jrsteele09/member-portal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	s session.Session
}

func (src staticSource) Current() session.Session { return src.s }

func (src *staticSource) set(s session.Session) { src.s = s }

func memberSession(bearer string) session.Session {
	return session.Session{
		Role:        session.RoleMember,
		BearerToken: bearer,
		Identity:    &session.MemberIdentity{ID: "1", Email: "doc@acna.org"},
	}
}

func adminSession(bearer string) session.Session {
	return session.Session{
		Role:        session.RoleAdmin,
		BearerToken: bearer,
		Identity:    &session.AdminIdentity{ID: "2", Email: "admin@acna.org"},
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func TestRoleGuards(t *testing.T) {
	tests := []struct {
		name         string
		sess         session.Session
		check        func(session.Session) guard.Decision
		wantAllow    bool
		wantRedirect string
		wantReason   error
	}{
		{"member on member route", memberSession("t"), guard.RequireMember, true, "", nil},
		{"admin on admin route", adminSession("t"), guard.RequireAdmin, true, "", nil},
		{"anonymous on member route", session.Anonymous(), guard.RequireMember, false, guard.RouteMemberLogin, apperrors.ErrNotAuthenticated},
		{"anonymous on admin route", session.Anonymous(), guard.RequireAdmin, false, guard.RouteAdminLogin, apperrors.ErrNotAuthenticated},
		{"admin on member route", adminSession("t"), guard.RequireMember, false, guard.RouteMemberLogin, apperrors.ErrForbiddenRole},
		{"member on admin route", memberSession("t"), guard.RequireAdmin, false, guard.RouteAdminLogin, apperrors.ErrForbiddenRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.check(tt.sess)
			assert.Equal(t, tt.wantAllow, d.Allow)
			assert.Equal(t, tt.wantRedirect, d.Redirect)
			if tt.wantReason != nil {
				assert.ErrorIs(t, d.Reason, tt.wantReason)
			} else {
				assert.NoError(t, d.Reason)
			}
		})
	}
}

func TestGuard_TrustsRoleWithoutExpiryCheck(t *testing.T) {
	expired := signedToken(t, time.Now().Add(-time.Hour))
	g := guard.New(staticSource{memberSession(expired)})

	assert.True(t, g.Member().Allow)
}

func TestGuard_WithTokenExpiry(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	expired := guard.New(staticSource{adminSession(signedToken(t, now.Add(-time.Minute)))}, guard.WithTokenExpiry(clock))
	d := expired.Admin()
	assert.False(t, d.Allow)
	assert.Equal(t, guard.RouteAdminLogin, d.Redirect)
	assert.ErrorIs(t, d.Reason, apperrors.ErrSessionExpired)

	valid := guard.New(staticSource{adminSession(signedToken(t, now.Add(time.Minute)))}, guard.WithTokenExpiry(clock))
	assert.True(t, valid.Admin().Allow)

	opaque := guard.New(staticSource{memberSession("opaque")}, guard.WithTokenExpiry(clock))
	assert.True(t, opaque.Member().Allow)
}

func TestGuard_ReadsLiveSession(t *testing.T) {
	src := &staticSource{s: session.Anonymous()}
	g := guard.New(src)
	assert.False(t, g.Member().Allow)

	src.set(memberSession("t"))
	assert.True(t, g.Member().Allow)
}

func TestMiddleware(t *testing.T) {
	src := &staticSource{s: session.Anonymous()}
	g := guard.New(src, guard.WithTokenExpiry(time.Now))

	var seen session.Session
	handler := g.AdminOnly()(func(w http.ResponseWriter, r *http.Request) {
		s, ok := guard.FromContext(r.Context())
		require.True(t, ok)
		seen = s
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, guard.RouteAdminDashboard, nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, guard.RouteAdminLogin, rec.Header().Get("Location"))

	src.set(adminSession(signedToken(t, time.Now().Add(-time.Hour))))
	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, guard.RouteAdminDashboard, nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, guard.RouteAdminLogin+"?error=Session+expired", rec.Header().Get("Location"))

	src.set(adminSession("opaque"))
	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, guard.RouteAdminDashboard, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.RoleAdmin, seen.Role)
}
