package server

import (
	"net/http"

	"github.com/jrsteele09/member-portal/users"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// exact pins a pattern ending in a slash to that path only.
func exact(method, path string) string {
	return method + " " + path + "{$}"
}

func (s *Server) initRoutes() {
	// Auth
	s.RegisterRouteHandler(exact(http.MethodPost, RouteMemberLogin), ChainMiddleware(s.MemberLoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler(exact(http.MethodPost, RouteAdminLogin), ChainMiddleware(s.AdminLoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler(exact(http.MethodPost, RouteMemberLogout), ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(s.RequireAuth(users.KindMember))...))
	s.RegisterRouteHandler(exact(http.MethodPost, RouteAdminLogout), ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(s.RequireAuth(users.KindAdmin))...))

	// Features
	s.RegisterRouteHandler(exact(http.MethodGet, RouteForumCategories), ChainMiddleware(s.ForumCategoriesHandler(), s.APIMiddleware(s.RequireAuth(users.KindMember))...))
	s.RegisterRouteHandler(exact(http.MethodGet, RouteNews), ChainMiddleware(s.NewsHandler(), s.APIMiddleware(s.RequireAuth(users.KindAdmin))...))

	// CORS preflight
	for _, path := range []string{RouteMemberLogin, RouteMemberLogout, RouteAdminLogin, RouteAdminLogout, RouteForumCategories, RouteNews} {
		s.RegisterRouteHandler(exact(http.MethodOptions, path), ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}, s.APIMiddleware()...))
	}

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
}
