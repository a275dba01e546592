package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateJobRequest_Validation(t *testing.T) {
	min := 90000
	max := 130000

	tests := []struct {
		name    string
		request CreateJobRequest
		wantErr bool
	}{
		{
			name: "valid request",
			request: CreateJobRequest{
				Title:     "Backend Engineer",
				Company:   "Acme",
				Remote:    true,
				URL:       "https://boards.example.com/acme/backend-engineer/apply",
				Tags:      []string{"go", "postgres"},
				SalaryMin: &min,
				SalaryMax: &max,
			},
			wantErr: false,
		},
		{
			name: "missing title",
			request: CreateJobRequest{
				Company: "Acme",
				URL:     "https://boards.example.com/acme/apply",
			},
			wantErr: true,
		},
		{
			name: "missing company",
			request: CreateJobRequest{
				Title: "Backend Engineer",
				URL:   "https://boards.example.com/acme/apply",
			},
			wantErr: true,
		},
		{
			name: "invalid URL",
			request: CreateJobRequest{
				Title:   "Backend Engineer",
				Company: "Acme",
				URL:     "not-a-url",
			},
			wantErr: true,
		},
		{
			name: "negative salary",
			request: CreateJobRequest{
				Title:     "Backend Engineer",
				Company:   "Acme",
				URL:       "https://boards.example.com/acme/apply",
				SalaryMin: func() *int { v := -1; return &v }(),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateProfileRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request UpdateProfileRequest
		wantErr bool
	}{
		{
			name: "valid request",
			request: UpdateProfileRequest{
				Attributes: []ProfileAttributeInput{
					{Name: "name", Value: "John Doe"},
					{Name: "email", Value: "john@example.com"},
				},
			},
			wantErr: false,
		},
		{
			name:    "empty attribute list",
			request: UpdateProfileRequest{Attributes: []ProfileAttributeInput{}},
			wantErr: true,
		},
		{
			name: "attribute without name",
			request: UpdateProfileRequest{
				Attributes: []ProfileAttributeInput{{Value: "something"}},
			},
			wantErr: true,
		},
		{
			name: "attribute without value",
			request: UpdateProfileRequest{
				Attributes: []ProfileAttributeInput{{Name: "location"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUploadCVRequest_Validation(t *testing.T) {
	valid := UploadCVRequest{Body: "Jane Doe. Senior engineer, 8 years of Go."}
	assert.NoError(t, valid.Validate())

	empty := UploadCVRequest{}
	assert.Error(t, empty.Validate())
}

func TestAutoApplyRequests_Validation(t *testing.T) {
	jobURL := "https://boards.example.com/acme/backend-engineer/apply"
	jobID := "0c6f8a8e-9c2c-44a5-9a63-1f54a16718da"

	t.Run("analyze valid", func(t *testing.T) {
		req := AnalyzeFormRequest{JobURL: jobURL}
		assert.NoError(t, req.Validate())
	})

	t.Run("analyze missing url", func(t *testing.T) {
		req := AnalyzeFormRequest{}
		assert.Error(t, req.Validate())
	})

	t.Run("preview invalid url", func(t *testing.T) {
		req := PreviewRequest{JobURL: "::::"}
		assert.Error(t, req.Validate())
	})

	t.Run("auto-apply valid", func(t *testing.T) {
		req := AutoApplyRequest{JobURL: jobURL, JobID: jobID}
		assert.NoError(t, req.Validate())
	})

	t.Run("auto-apply missing job id", func(t *testing.T) {
		req := AutoApplyRequest{JobURL: jobURL}
		assert.Error(t, req.Validate())
	})

	t.Run("auto-apply non-uuid job id", func(t *testing.T) {
		req := AutoApplyRequest{JobURL: jobURL, JobID: "job-42"}
		assert.Error(t, req.Validate())
	})
}

func TestAutoApplyRequest_JSONFieldNames(t *testing.T) {
	// The client contract uses snake_case body keys; a renamed tag here
	// would silently break the orchestrator.
	data, err := json.Marshal(AutoApplyRequest{
		JobURL: "https://boards.example.com/acme/apply",
		JobID:  "0c6f8a8e-9c2c-44a5-9a63-1f54a16718da",
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"job_url"`)
	assert.Contains(t, string(data), `"job_id"`)
}
