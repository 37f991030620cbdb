package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jrsteele09/member-portal/internal/config"
	"github.com/jrsteele09/member-portal/server"
	refreshrepofake "github.com/jrsteele09/member-portal/token/refresh/repofake"
	fakeuserrepo "github.com/jrsteele09/member-portal/users/repofake"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	memberEmail = "member@acna.org"
	adminEmail  = "admin@acna.org"
	memberPass  = "member123"
	adminPass   = "admin123"
)

func newServer(t *testing.T, env map[string]string) (*server.Server, *httptest.Server) {
	t.Helper()
	if env == nil {
		env = map[string]string{}
	}
	cfg, err := config.NewFromLookuper(context.Background(), envconfig.MapLookuper(env))
	require.NoError(t, err)

	srv, err := server.New(context.Background(), cfg, server.Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
	}, zerolog.Nop())
	require.NoError(t, err)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return srv, ts
}

func do(t *testing.T, method, url string, body any, bearer string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

type loginResponse struct {
	Access  string         `json:"access"`
	Refresh string         `json:"refresh"`
	User    map[string]any `json:"user"`
	Admin   map[string]any `json:"admin"`
}

type errResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

func login(t *testing.T, ts *httptest.Server, path, email, password string) loginResponse {
	t.Helper()
	resp, data := do(t, http.MethodPost, ts.URL+path, map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var out loginResponse
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestMemberLogin(t *testing.T) {
	_, ts := newServer(t, nil)

	out := login(t, ts, server.RouteMemberLogin, "Member@ACNA.org", memberPass)
	assert.NotEmpty(t, out.Access)
	assert.Len(t, out.Refresh, 64)
	assert.Equal(t, memberEmail, out.User["email"])
	assert.Equal(t, "active", out.User["membership_status"])
	assert.Equal(t, "Jordan", out.User["first_name"])
	assert.Nil(t, out.Admin)
}

func TestAdminLogin(t *testing.T) {
	_, ts := newServer(t, nil)

	out := login(t, ts, server.RouteAdminLogin, adminEmail, adminPass)
	assert.NotEmpty(t, out.Access)
	assert.Equal(t, adminEmail, out.Admin["email"])
	assert.Equal(t, "super_admin", out.Admin["role"])
	assert.Equal(t, "Site Administrator", out.Admin["name"])
	assert.Nil(t, out.User)
}

func TestLoginRejections(t *testing.T) {
	_, ts := newServer(t, nil)

	tests := []struct {
		name       string
		path       string
		body       any
		wantStatus int
		wantCode   string
		wantDetail string
	}{
		{"wrong password", server.RouteMemberLogin, map[string]string{"email": memberEmail, "password": "nope-nope"}, http.StatusUnauthorized, "invalid_credentials", "No active account"},
		{"unknown email", server.RouteMemberLogin, map[string]string{"email": "who@acna.org", "password": memberPass}, http.StatusUnauthorized, "invalid_credentials", ""},
		{"admin on member portal", server.RouteMemberLogin, map[string]string{"email": adminEmail, "password": adminPass}, http.StatusUnauthorized, "invalid_credentials", ""},
		{"inactive membership", server.RouteMemberLogin, map[string]string{"email": server.InactiveMemberEmail, "password": memberPass}, http.StatusForbidden, "membership_inactive", "membership is inactive"},
		{"deactivated", server.RouteMemberLogin, map[string]string{"email": server.DeactivatedEmail, "password": memberPass}, http.StatusForbidden, "account_deactivated", "deactivated"},
		{"member on admin portal", server.RouteAdminLogin, map[string]string{"email": memberEmail, "password": memberPass}, http.StatusForbidden, "permission_denied", "administrator access"},
		{"admin wrong password", server.RouteAdminLogin, map[string]string{"email": adminEmail, "password": "wrong"}, http.StatusUnauthorized, "invalid_credentials", ""},
		{"missing password", server.RouteMemberLogin, map[string]string{"email": memberEmail}, http.StatusBadRequest, "", "required"},
		{"not json", server.RouteAdminLogin, "just a string", http.StatusBadRequest, "", "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := do(t, http.MethodPost, ts.URL+tt.path, tt.body, "")
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			var e errResponse
			require.NoError(t, json.Unmarshal(data, &e))
			assert.Equal(t, tt.wantCode, e.Code)
			assert.NotEmpty(t, e.Detail)
			assert.Contains(t, e.Detail, tt.wantDetail)
		})
	}
}

func TestFeatureEndpointsCheckRole(t *testing.T) {
	_, ts := newServer(t, nil)
	member := login(t, ts, server.RouteMemberLogin, memberEmail, memberPass)
	admin := login(t, ts, server.RouteAdminLogin, adminEmail, adminPass)

	t.Run("forums as member", func(t *testing.T) {
		resp, data := do(t, http.MethodGet, ts.URL+server.RouteForumCategories, nil, member.Access)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var cats []server.ForumCategory
		require.NoError(t, json.Unmarshal(data, &cats))
		assert.Len(t, cats, 3)
	})

	t.Run("forums as admin", func(t *testing.T) {
		resp, _ := do(t, http.MethodGet, ts.URL+server.RouteForumCategories, nil, admin.Access)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("news as admin", func(t *testing.T) {
		resp, data := do(t, http.MethodGet, ts.URL+server.RouteNews, nil, admin.Access)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var news []server.NewsRelease
		require.NoError(t, json.Unmarshal(data, &news))
		require.Len(t, news, 3)
		assert.Nil(t, news[0].PublishedAt)
		assert.Equal(t, "New board members announced", news[1].Title)
	})

	t.Run("news as member", func(t *testing.T) {
		resp, _ := do(t, http.MethodGet, ts.URL+server.RouteNews, nil, member.Access)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("no token", func(t *testing.T) {
		resp, data := do(t, http.MethodGet, ts.URL+server.RouteNews, nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, string(data), server.CodeNotAuthenticated)
	})

	t.Run("bad token", func(t *testing.T) {
		resp, data := do(t, http.MethodGet, ts.URL+server.RouteForumCategories, nil, "garbage")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, string(data), server.CodeTokenNotValid)
	})

	t.Run("subpaths are not routed", func(t *testing.T) {
		resp, _ := do(t, http.MethodGet, ts.URL+server.RouteNews+"extra", nil, admin.Access)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestLogoutRevokesTokens(t *testing.T) {
	_, ts := newServer(t, nil)
	member := login(t, ts, server.RouteMemberLogin, memberEmail, memberPass)

	resp, _ := do(t, http.MethodPost, ts.URL+server.RouteMemberLogout, map[string]string{"refresh": member.Refresh}, member.Access)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// The access token is dead after logout.
	resp, _ = do(t, http.MethodGet, ts.URL+server.RouteForumCategories, nil, member.Access)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogout(t *testing.T) {
	_, ts := newServer(t, nil)

	t.Run("unknown refresh token", func(t *testing.T) {
		member := login(t, ts, server.RouteMemberLogin, memberEmail, memberPass)
		resp, data := do(t, http.MethodPost, ts.URL+server.RouteMemberLogout, map[string]string{"refresh": "nope"}, member.Access)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(data), server.CodeTokenNotValid)

		// The rejected logout leaves the access token usable, so it can be retried.
		resp, _ = do(t, http.MethodGet, ts.URL+server.RouteForumCategories, nil, member.Access)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp, _ = do(t, http.MethodPost, ts.URL+server.RouteMemberLogout, map[string]string{"refresh": member.Refresh}, member.Access)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("without a body", func(t *testing.T) {
		admin := login(t, ts, server.RouteAdminLogin, adminEmail, adminPass)
		resp, _ := do(t, http.MethodPost, ts.URL+server.RouteAdminLogout, nil, admin.Access)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("wrong portal", func(t *testing.T) {
		member := login(t, ts, server.RouteMemberLogin, memberEmail, memberPass)
		resp, _ := do(t, http.MethodPost, ts.URL+server.RouteAdminLogout, map[string]string{"refresh": member.Refresh}, member.Access)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("requires a token", func(t *testing.T) {
		resp, _ := do(t, http.MethodPost, ts.URL+server.RouteMemberLogout, map[string]string{"refresh": "x"}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestCors(t *testing.T) {
	_, ts := newServer(t, map[string]string{"DEVBACKEND_ALLOWED_ORIGINS": "http://localhost:3000"})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+server.RouteMemberLogin, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")

	req, err = http.NewRequest(http.MethodOptions, ts.URL+server.RouteMemberLogin, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHealthAndMetrics(t *testing.T) {
	_, ts := newServer(t, nil)
	login(t, ts, server.RouteMemberLogin, memberEmail, memberPass)
	do(t, http.MethodPost, ts.URL+server.RouteMemberLogin, map[string]string{"email": memberEmail, "password": "wrong-pass"}, "")

	resp, data := do(t, http.MethodGet, ts.URL+server.RouteHealth, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))

	resp, data = do(t, http.MethodGet, ts.URL+server.RouteMetrics, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := string(data)
	assert.Contains(t, body, `devbackend_logins_total{portal="member",result="success"} 1`)
	assert.Contains(t, body, `devbackend_logins_total{portal="member",result="invalid_credentials"} 1`)
	assert.Contains(t, body, "devbackend_http_requests_total")
}

func TestRecoverMiddleware(t *testing.T) {
	srv, _ := newServer(t, nil)

	h := server.ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}, srv.RecoverMiddleware)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error.")
}

func TestLogRoutes(t *testing.T) {
	srv, _ := newServer(t, map[string]string{"ENV": "DEV"})
	var buf bytes.Buffer
	srv.LogRoutes(&buf)
	assert.Contains(t, buf.String(), server.RouteMemberLogin)
	assert.Equal(t, len(srv.Routes()), strings.Count(buf.String(), "\n"))

	prod, _ := newServer(t, map[string]string{"ENV": "PROD"})
	buf.Reset()
	prod.LogRoutes(&buf)
	assert.Empty(t, buf.String())
}

func TestSeedIsIdempotent(t *testing.T) {
	srv, _ := newServer(t, nil)
	require.NoError(t, srv.InitialiseSystem(context.Background()))
}
