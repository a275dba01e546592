// Package orchestrator implements the client side of the auto-apply
// workflow: a typed HTTP client for the three engine endpoints and the
// state machine that sequences them with explicit user confirmation.
package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TokenSource supplies the bearer token for authenticated calls. An empty
// token means the user is not logged in.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource, mostly for tests and CLIs.
type StaticToken string

// Token returns the static token value.
func (t StaticToken) Token() string { return string(t) }

// AnalysisResponse is the analyze-form wire response.
type AnalysisResponse struct {
	AutoApplySupported bool `json:"auto_apply_supported"`
}

// CompletenessView is the profile completeness block of a preview.
type CompletenessView struct {
	OverallPercentage int  `json:"overall_percentage"`
	ReadyForAutoApply bool `json:"ready_for_auto_apply"`
}

// FieldPreview is one proposed field value shown for confirmation.
type FieldPreview struct {
	FieldLabel     string  `json:"field_label"`
	GeneratedValue *string `json:"generated_value"`
}

// PreviewResponse is the preview-responses wire response.
type PreviewResponse struct {
	TotalFields             int              `json:"total_fields"`
	FieldsWithResponses     int              `json:"fields_with_responses"`
	UserProfileCompleteness CompletenessView `json:"user_profile_completeness"`
	FieldPreviews           []FieldPreview   `json:"field_previews"`
}

// ApplyResponse is the auto-apply wire response. Success=false with a 2xx
// status is a soft rejection; the message says why.
type ApplyResponse struct {
	Success       bool   `json:"success"`
	ApplicationID string `json:"application_id,omitempty"`
	Message       string `json:"message,omitempty"`
}

// Client calls the auto-apply endpoints with bearer authentication.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
}

// NewClient creates an auto-apply API client. baseURL points at the server
// root, without a trailing slash.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		http:    &http.Client{Timeout: 120 * time.Second},
	}
}

type analyzeFormRequest struct {
	JobURL string `json:"job_url"`
}

type autoApplyRequest struct {
	JobURL string `json:"job_url"`
	JobID  string `json:"job_id"`
}

// AnalyzeForm asks whether the posting's form supports auto-apply.
func (c *Client) AnalyzeForm(ctx context.Context, jobURL string) (*AnalysisResponse, error) {
	var resp AnalysisResponse
	if err := c.post(ctx, "/auto-apply/analyze-form", analyzeFormRequest{JobURL: jobURL}, &resp, KindAnalysisFailed); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PreviewResponses fetches the generated field responses for confirmation.
func (c *Client) PreviewResponses(ctx context.Context, jobURL string) (*PreviewResponse, error) {
	var resp PreviewResponse
	if err := c.post(ctx, "/auto-apply/preview-responses", analyzeFormRequest{JobURL: jobURL}, &resp, KindPreviewFailed); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AutoApply triggers the actual submission for a confirmed preview.
func (c *Client) AutoApply(ctx context.Context, jobURL, jobID string) (*ApplyResponse, error) {
	var resp ApplyResponse
	if err := c.post(ctx, "/auto-apply/auto-apply", autoApplyRequest{JobURL: jobURL, JobID: jobID}, &resp, KindApplyFailed); err != nil {
		return nil, err
	}
	return &resp, nil
}

// post sends one JSON request. A transport-level failure becomes a
// KindNetwork error with the raw cause preserved; a non-2xx response becomes
// failKind with the server's message.
func (c *Client) post(ctx context.Context, path string, body, out any, failKind ErrorKind) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &Error{Kind: failKind, Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &Error{Kind: failKind, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.tokens.Token())

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: err.Error(), Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Kind: failKind, Message: serverMessage(data, resp.StatusCode)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: failKind, Message: "malformed response from server", Cause: err}
	}
	return nil
}

// serverMessage pulls the error string out of an {"error": "..."} body,
// falling back to the HTTP status.
func serverMessage(body []byte, status int) string {
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return fmt.Sprintf("server returned status %d", status)
}
