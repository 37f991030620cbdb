// Package server is a development backend that speaks the portal's wire contract:
// member and admin login and logout plus the two role-scoped feature endpoints.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/member-portal/internal/config"
	"github.com/jrsteele09/member-portal/token/jwt"
	"github.com/jrsteele09/member-portal/token/refresh"
	"github.com/jrsteele09/member-portal/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Repos are the stores the server reads accounts and refresh tokens from.
type Repos struct {
	Users         users.UserRepo
	RefreshTokens refresh.Repo
}

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	log       zerolog.Logger
	repos     Repos
	tokens    *jwt.Creator
	inspector *jwt.Inspector
	revoked   *jwt.RevocationList
	refresh   *refresh.Manager
	metrics   *metrics
	content   content
}

// New builds the server, seeds the configured accounts and registers the routes.
func New(ctx context.Context, cfg config.Config, repos Repos, log zerolog.Logger) (*Server, error) {
	revoked := jwt.NewRevocationList()
	s := &Server{
		env:       cfg.GetEnv(),
		mux:       http.NewServeMux(),
		config:    cfg,
		log:       log.With().Str("component", "devbackend").Logger(),
		repos:     repos,
		tokens:    jwt.NewCreator(cfg),
		inspector: jwt.NewInspector(cfg, revoked),
		revoked:   revoked,
		refresh:   refresh.NewManager(repos.RefreshTokens, cfg),
		metrics:   newMetrics(),
		content:   defaultContent(),
	}

	if err := s.InitialiseSystem(ctx); err != nil {
		return nil, errors.Wrap(err, "[Server New] Failed to initialise the system")
	}

	s.initRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes returns the registered route patterns in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

// LogRoutes prints the route table in development.
func (s *Server) LogRoutes(w io.Writer) {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(w, parts[0], parts[1])
		} else {
			logRoute(w, "", parts[0])
		}
	}
}

func logRoute(w io.Writer, method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	displayMethod := Gray + paddedMethod + ResetColor
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	}
	fmt.Fprintf(w, "[%-19s] %s\n", displayMethod, path)
}
