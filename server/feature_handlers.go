package server

import (
	"net/http"
)

// ForumCategoriesHandler lists the member forum categories
func (s *Server) ForumCategoriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.content.forums)
	}
}

// NewsHandler lists news releases for admins, newest first
func (s *Server) NewsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, newsNewestFirst(s.content.news))
	}
}

// HealthHandler reports liveness
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
