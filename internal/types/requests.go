package types

// CreateJobRequest represents the request to post a new job listing.
type CreateJobRequest struct {
	Title       string   `json:"title" validate:"required,min=1"`
	Company     string   `json:"company" validate:"required,min=1"`
	Location    string   `json:"location,omitempty"`
	Remote      bool     `json:"remote"`
	URL         string   `json:"url" validate:"required,url"`
	Tags        []string `json:"tags,omitempty"`
	SalaryMin   *int     `json:"salary_min,omitempty" validate:"omitempty,min=0"`
	SalaryMax   *int     `json:"salary_max,omitempty" validate:"omitempty,min=0"`
	Description string   `json:"description,omitempty"`
}

// ProfileAttributeInput is one profile attribute in an update request.
type ProfileAttributeInput struct {
	Name  string `json:"name" validate:"required,min=1"`
	Value string `json:"value" validate:"required,min=1"`
}

// UpdateProfileRequest upserts a batch of profile attributes.
type UpdateProfileRequest struct {
	Attributes []ProfileAttributeInput `json:"attributes" validate:"required,min=1,dive"`
}

// UploadCVRequest stores extracted CV text for the authenticated user.
type UploadCVRequest struct {
	Body string `json:"body" validate:"required,min=1"`
}

// AnalyzeFormRequest asks whether a posting's application form supports
// auto-apply.
type AnalyzeFormRequest struct {
	JobURL string `json:"job_url" validate:"required,url"`
}

// PreviewRequest asks for the generated field responses for a posting.
type PreviewRequest struct {
	JobURL string `json:"job_url" validate:"required,url"`
}

// AutoApplyRequest triggers the actual fill-and-submit for a posting.
type AutoApplyRequest struct {
	JobURL string `json:"job_url" validate:"required,url"`
	JobID  string `json:"job_id" validate:"required,uuid"`
}

// Validate checks the request against its validation tags.
func (r *CreateJobRequest) Validate() error { return validate.Struct(r) }

// Validate checks the request against its validation tags.
func (r *UpdateProfileRequest) Validate() error { return validate.Struct(r) }

// Validate checks the request against its validation tags.
func (r *UploadCVRequest) Validate() error { return validate.Struct(r) }

// Validate checks the request against its validation tags.
func (r *AnalyzeFormRequest) Validate() error { return validate.Struct(r) }

// Validate checks the request against its validation tags.
func (r *PreviewRequest) Validate() error { return validate.Struct(r) }

// Validate checks the request against its validation tags.
func (r *AutoApplyRequest) Validate() error { return validate.Struct(r) }
