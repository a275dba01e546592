package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remoteboard/remoteboard/internal/autoapply"
	"github.com/remoteboard/remoteboard/internal/db"
)

const testJobURL = "https://boards.example.com/acme/backend-engineer/apply"

func postJSON(t *testing.T, handler http.Handler, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHandleAnalyzeForm_RequiresAuth(t *testing.T) {
	engine := &fakeEngine{analyzeResult: &autoapply.AnalysisResult{Supported: true}}
	_, handler := setupTestServer(t, newFakeStore(), engine, nil)

	w := postJSON(t, handler, "/auto-apply/analyze-form", "", map[string]string{"job_url": testJobURL})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, engine.analyzeCalls, "engine must not run without a valid token")
}

func TestHandleAnalyzeForm_Supported(t *testing.T) {
	store := newFakeStore()
	engine := &fakeEngine{analyzeResult: &autoapply.AnalysisResult{Supported: true}}
	s, handler := setupTestServer(t, store, engine, nil)
	userID := createTestUser(t, s, store, "jane@example.com")

	w := postJSON(t, handler, "/auto-apply/analyze-form", authToken(t, s, userID),
		map[string]string{"job_url": testJobURL})

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	supported, ok := resp["auto_apply_supported"]
	require.True(t, ok, "response must use the auto_apply_supported wire key")
	assert.True(t, supported)
	assert.Equal(t, 1, engine.analyzeCalls)
}

func TestHandleAnalyzeForm_Unsupported(t *testing.T) {
	store := newFakeStore()
	engine := &fakeEngine{analyzeResult: &autoapply.AnalysisResult{Supported: false}}
	s, handler := setupTestServer(t, store, engine, nil)
	userID := createTestUser(t, s, store, "jane@example.com")

	w := postJSON(t, handler, "/auto-apply/analyze-form", authToken(t, s, userID),
		map[string]string{"job_url": testJobURL})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"auto_apply_supported":false`)
}

func TestHandleAnalyzeForm_UpstreamFailure(t *testing.T) {
	store := newFakeStore()
	engine := &fakeEngine{
		analyzeErr: &autoapply.AnalysisError{URL: testJobURL, Message: "could not determine form schema"},
	}
	s, handler := setupTestServer(t, store, engine, nil)
	userID := createTestUser(t, s, store, "jane@example.com")

	w := postJSON(t, handler, "/auto-apply/analyze-form", authToken(t, s, userID),
		map[string]string{"job_url": testJobURL})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "could not determine form schema")
}

func TestHandleAnalyzeForm_InvalidBody(t *testing.T) {
	store := newFakeStore()
	engine := &fakeEngine{}
	s, handler := setupTestServer(t, store, engine, nil)
	userID := createTestUser(t, s, store, "jane@example.com")

	tests := []struct {
		name string
		body map[string]string
	}{
		{name: "missing job_url", body: map[string]string{}},
		{name: "invalid job_url", body: map[string]string{"job_url": "not a url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, handler, "/auto-apply/analyze-form", authToken(t, s, userID), tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Zero(t, engine.analyzeCalls)
}

func TestHandlePreviewResponses_WireShape(t *testing.T) {
	value := "Jane Doe"
	store := newFakeStore()
	engine := &fakeEngine{
		previewPayload: &autoapply.PreviewPayload{
			TotalFields:         5,
			FieldsWithResponses: 4,
			Completeness: autoapply.ProfileCompleteness{
				OverallPercentage: 85,
				ReadyForAutoApply: true,
			},
			FieldPreviews: []autoapply.FieldResponse{
				{
					Field:          autoapply.FormField{Name: "full_name", Label: "Full Name", Required: true, Kind: autoapply.FieldText},
					GeneratedValue: &value,
					Confidence:     1.0,
					Source:         autoapply.SourceProfile,
				},
				{
					Field:  autoapply.FormField{Name: "portfolio", Label: "", Kind: autoapply.FieldText},
					Source: autoapply.SourceUnresolved,
				},
			},
		},
	}
	s, handler := setupTestServer(t, store, engine, nil)
	userID := createTestUser(t, s, store, "jane@example.com")

	w := postJSON(t, handler, "/auto-apply/preview-responses", authToken(t, s, userID),
		map[string]string{"job_url": testJobURL})

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		TotalFields             int `json:"total_fields"`
		FieldsWithResponses     int `json:"fields_with_responses"`
		UserProfileCompleteness struct {
			OverallPercentage int  `json:"overall_percentage"`
			ReadyForAutoApply bool `json:"ready_for_auto_apply"`
		} `json:"user_profile_completeness"`
		FieldPreviews []struct {
			FieldLabel     string  `json:"field_label"`
			GeneratedValue *string `json:"generated_value"`
		} `json:"field_previews"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 5, resp.TotalFields)
	assert.Equal(t, 4, resp.FieldsWithResponses)
	assert.Equal(t, 85, resp.UserProfileCompleteness.OverallPercentage)
	assert.True(t, resp.UserProfileCompleteness.ReadyForAutoApply)
	require.Len(t, resp.FieldPreviews, 2)
	assert.Equal(t, "Full Name", resp.FieldPreviews[0].FieldLabel)
	require.NotNil(t, resp.FieldPreviews[0].GeneratedValue)
	assert.Equal(t, "Jane Doe", *resp.FieldPreviews[0].GeneratedValue)
	// Label falls back to the field name, value stays null when unresolved
	assert.Equal(t, "portfolio", resp.FieldPreviews[1].FieldLabel)
	assert.Nil(t, resp.FieldPreviews[1].GeneratedValue)
}

func TestHandlePreviewResponses_UpstreamFailure(t *testing.T) {
	store := newFakeStore()
	engine := &fakeEngine{
		previewErr: &autoapply.PreviewError{URL: testJobURL, Message: "could not assemble preview"},
	}
	s, handler := setupTestServer(t, store, engine, nil)
	userID := createTestUser(t, s, store, "jane@example.com")

	w := postJSON(t, handler, "/auto-apply/preview-responses", authToken(t, s, userID),
		map[string]string{"job_url": testJobURL})

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func createTestJob(t *testing.T, store *fakeStore) uuid.UUID {
	t.Helper()
	id, err := store.CreateJob(context.Background(), &db.Job{
		Title:   "Backend Engineer",
		Company: "Acme",
		Remote:  true,
		URL:     testJobURL,
	})
	require.NoError(t, err)
	return id
}

func TestHandleAutoApply_Success(t *testing.T) {
	store := newFakeStore()
	engine := &fakeEngine{
		submitResult: &autoapply.ApplicationResult{Success: true, ApplicationID: "app-123"},
	}
	s, handler := setupTestServer(t, store, engine, nil)
	userID := createTestUser(t, s, store, "jane@example.com")
	jobID := createTestJob(t, store)

	w := postJSON(t, handler, "/auto-apply/auto-apply", authToken(t, s, userID),
		map[string]string{"job_url": testJobURL, "job_id": jobID.String()})

	require.Equal(t, http.StatusOK, w.Code)
	var resp autoApplyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "app-123", resp.ApplicationID)
	assert.Equal(t, 1, engine.submitCalls)
}

func TestHandleAutoApply_SoftFailure(t *testing.T) {
	store := newFakeStore()
	engine := &fakeEngine{
		submitResult: &autoapply.ApplicationResult{Success: false, Message: "Application failed"},
	}
	s, handler := setupTestServer(t, store, engine, nil)
	userID := createTestUser(t, s, store, "jane@example.com")
	jobID := createTestJob(t, store)

	w := postJSON(t, handler, "/auto-apply/auto-apply", authToken(t, s, userID),
		map[string]string{"job_url": testJobURL, "job_id": jobID.String()})

	// Soft failure is still a 200; the body carries the outcome
	require.Equal(t, http.StatusOK, w.Code)
	var resp autoApplyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Empty(t, resp.ApplicationID)
	assert.Equal(t, "Application failed", resp.Message)
}

func TestHandleAutoApply_NetworkFailure(t *testing.T) {
	store := newFakeStore()
	engine := &fakeEngine{
		submitErr: &autoapply.SubmitError{
			Kind:    autoapply.SubmitErrorNetwork,
			URL:     testJobURL,
			Message: "no response from application form",
			Cause:   errors.New("context deadline exceeded"),
		},
	}
	s, handler := setupTestServer(t, store, engine, nil)
	userID := createTestUser(t, s, store, "jane@example.com")
	jobID := createTestJob(t, store)

	w := postJSON(t, handler, "/auto-apply/auto-apply", authToken(t, s, userID),
		map[string]string{"job_url": testJobURL, "job_id": jobID.String()})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "no response from application form")
}

func TestHandleAutoApply_UnknownJob(t *testing.T) {
	store := newFakeStore()
	engine := &fakeEngine{
		submitResult: &autoapply.ApplicationResult{Success: true, ApplicationID: "app-123"},
	}
	s, handler := setupTestServer(t, store, engine, nil)
	userID := createTestUser(t, s, store, "jane@example.com")

	w := postJSON(t, handler, "/auto-apply/auto-apply", authToken(t, s, userID),
		map[string]string{"job_url": testJobURL, "job_id": uuid.NewString()})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, engine.submitCalls, "unknown job must not reach the driver")
}

func TestHandleAutoApply_InvalidJobID(t *testing.T) {
	store := newFakeStore()
	engine := &fakeEngine{}
	s, handler := setupTestServer(t, store, engine, nil)
	userID := createTestUser(t, s, store, "jane@example.com")

	w := postJSON(t, handler, "/auto-apply/auto-apply", authToken(t, s, userID),
		map[string]string{"job_url": testJobURL, "job_id": "job-42"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, engine.submitCalls)
}

func TestHandleAutoApply_ExpiredToken(t *testing.T) {
	store := newFakeStore()
	engine := &fakeEngine{}
	_, handler := setupTestServer(t, store, engine, nil)

	w := postJSON(t, handler, "/auto-apply/auto-apply", fmt.Sprintf("%s.%s.%s", "bad", "expired", "token"),
		map[string]string{"job_url": testJobURL, "job_id": uuid.NewString()})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, engine.submitCalls)
}
