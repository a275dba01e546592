package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/remoteboard/remoteboard/internal/db"
	"github.com/remoteboard/remoteboard/internal/types"
)

// ---------------------------------------------------------------------
// Job listing handlers
// ---------------------------------------------------------------------

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := db.JobFilters{
		Query:    q.Get("q"),
		Location: q.Get("location"),
		Tag:      q.Get("tag"),
	}
	if v := q.Get("company"); v != "" && filters.Query == "" {
		filters.Query = v
	}
	if v := q.Get("remote"); v != "" {
		remote, err := strconv.ParseBool(v)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid remote filter")
			return
		}
		filters.Remote = &remote
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		filters.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid offset")
			return
		}
		filters.Offset = offset
	}

	jobs, err := s.db.ListJobs(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	jobID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	job, err := s.db.GetJob(r.Context(), jobID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req types.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	id, err := s.db.CreateJob(r.Context(), &db.Job{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		Remote:      req.Remote,
		URL:         req.URL,
		Tags:        req.Tags,
		SalaryMin:   req.SalaryMin,
		SalaryMax:   req.SalaryMax,
		Description: req.Description,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (s *Server) handleSalaryGuide(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role == "" {
		s.errorResponse(w, http.StatusBadRequest, "role query parameter is required")
		return
	}

	band, err := s.db.SalaryGuide(r.Context(), role)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if band == nil {
		s.errorResponse(w, http.StatusNotFound, "No listings found for role")
		return
	}

	s.jsonResponse(w, http.StatusOK, band)
}
