package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/remoteboard/remoteboard/internal/autoapply"
	"github.com/remoteboard/remoteboard/internal/server/middleware"
	"github.com/remoteboard/remoteboard/internal/types"
)

// ---------------------------------------------------------------------
// Auto-apply handlers. Response bodies are the wire contract the client
// orchestrator depends on; field names here are load-bearing.
// ---------------------------------------------------------------------

type analyzeFormResponse struct {
	AutoApplySupported bool `json:"auto_apply_supported"`
}

type completenessResponse struct {
	OverallPercentage int  `json:"overall_percentage"`
	ReadyForAutoApply bool `json:"ready_for_auto_apply"`
}

type fieldPreviewResponse struct {
	FieldLabel     string  `json:"field_label"`
	GeneratedValue *string `json:"generated_value"`
}

type previewResponsesResponse struct {
	TotalFields             int                    `json:"total_fields"`
	FieldsWithResponses     int                    `json:"fields_with_responses"`
	UserProfileCompleteness completenessResponse   `json:"user_profile_completeness"`
	FieldPreviews           []fieldPreviewResponse `json:"field_previews"`
}

type autoApplyResponse struct {
	Success       bool   `json:"success"`
	ApplicationID string `json:"application_id,omitempty"`
	Message       string `json:"message,omitempty"`
}

func (s *Server) handleAnalyzeForm(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.AnalyzeFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	result, err := s.engine.Analyze(r.Context(), userID, req.JobURL)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, analyzeFormResponse{
		AutoApplySupported: result.Supported,
	})
}

func (s *Server) handlePreviewResponses(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	payload, err := s.engine.Preview(r.Context(), userID, req.JobURL)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, toPreviewResponse(payload))
}

func (s *Server) handleAutoApply(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.AutoApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	jobID, err := uuid.Parse(req.JobID)
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
		s.errorResponse(w, HTTPStatus(&ErrJobNotFound{JobID: jobID}), "Job not found")
		return
	}

	result, err := s.engine.Submit(r.Context(), userID, jobID, req.JobURL)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	// Soft rejections ride a 200; Success=false tells the client what happened.
	s.jsonResponse(w, http.StatusOK, autoApplyResponse{
		Success:       result.Success,
		ApplicationID: result.ApplicationID,
		Message:       result.Message,
	})
}

func toPreviewResponse(payload *autoapply.PreviewPayload) previewResponsesResponse {
	previews := make([]fieldPreviewResponse, 0, len(payload.FieldPreviews))
	for _, fp := range payload.FieldPreviews {
		label := fp.Field.Label
		if label == "" {
			label = fp.Field.Name
		}
		previews = append(previews, fieldPreviewResponse{
			FieldLabel:     label,
			GeneratedValue: fp.GeneratedValue,
		})
	}

	return previewResponsesResponse{
		TotalFields:         payload.TotalFields,
		FieldsWithResponses: payload.FieldsWithResponses,
		UserProfileCompleteness: completenessResponse{
			OverallPercentage: payload.Completeness.OverallPercentage,
			ReadyForAutoApply: payload.Completeness.ReadyForAutoApply,
		},
		FieldPreviews: previews,
	}
}
