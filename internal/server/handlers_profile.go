package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/remoteboard/remoteboard/internal/db"
	"github.com/remoteboard/remoteboard/internal/server/middleware"
	"github.com/remoteboard/remoteboard/internal/types"
)

// ---------------------------------------------------------------------
// Profile attribute handlers
// ---------------------------------------------------------------------

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	attrs, err := s.db.ProfileAttributes(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"attributes": attrs,
		"count":      len(attrs),
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	inputs := make([]db.AttributeInput, 0, len(req.Attributes))
	for _, a := range req.Attributes {
		inputs = append(inputs, db.AttributeInput{Name: a.Name, Value: a.Value})
	}

	if err := s.db.UpsertProfileAttributes(r.Context(), userID, inputs); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "updated"})
}

// ---------------------------------------------------------------------
// CV handlers
// ---------------------------------------------------------------------

func (s *Server) handleGetCV(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cv, err := s.db.GetCV(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if cv == nil {
		s.errorResponse(w, http.StatusNotFound, "No CV stored")
		return
	}

	s.jsonResponse(w, http.StatusOK, cv)
}

// handleUploadCV stores CV text, then runs profile extraction best-effort:
// an extraction failure never fails the upload itself.
func (s *Server) handleUploadCV(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.UploadCVRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	if err := s.db.UpsertCV(r.Context(), userID, req.Body); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	extracted := 0
	if s.extractor != nil {
		attrs, err := s.extractor.Extract(r.Context(), req.Body)
		switch {
		case err != nil:
			log.Printf("[server] profile extraction failed for user %s: %v", userID, err)
		case len(attrs) > 0:
			inputs := make([]db.AttributeInput, 0, len(attrs))
			for _, a := range attrs {
				inputs = append(inputs, db.AttributeInput{Name: a.Name, Value: a.Value})
			}
			if err := s.db.UpsertProfileAttributes(r.Context(), userID, inputs); err != nil {
				log.Printf("[server] failed to store extracted attributes for user %s: %v", userID, err)
			} else if err := s.db.MarkCVExtracted(r.Context(), userID); err != nil {
				log.Printf("[server] failed to mark CV extracted for user %s: %v", userID, err)
			} else {
				extracted = len(inputs)
			}
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":               "stored",
		"extracted_attributes": extracted,
	})
}
