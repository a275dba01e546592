package server

import (
	"net/http"

	"github.com/remoteboard/remoteboard/internal/server/middleware"
)

// handleListApplications returns the authenticated user's submitted
// applications, newest first. This backs the applied-jobs view that the
// client uses to disable already-applied listings.
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	apps, err := s.db.ListApplicationsByUser(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"applications": apps,
		"count":        len(apps),
	})
}
