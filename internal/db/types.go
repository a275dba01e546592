package db

import (
	"time"

	"github.com/google/uuid"
)

// User represents a marketplace account
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize to JSON
	PasswordSet  bool      `json:"password_set" db:"password_set"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProfileAttribute is one canonical profile key/value for a user.
// updated_at is bumped only when the value actually changes; the auto-apply
// mapper uses it to break ties between equally good matches.
type ProfileAttribute struct {
	UserID    uuid.UUID `json:"-"`
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Job represents a listing on the board
type Job struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location,omitempty"`
	Remote      bool      `json:"remote"`
	URL         string    `json:"url"` // application form URL
	Tags        []string  `json:"tags,omitempty"`
	SalaryMin   *int      `json:"salary_min,omitempty"`
	SalaryMax   *int      `json:"salary_max,omitempty"`
	Description string    `json:"description,omitempty"`
	PostedAt    time.Time `json:"posted_at"`
}

// Application is a successfully submitted application. Only successful
// submissions are recorded; a failed attempt leaves no row behind.
type Application struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	JobID           uuid.UUID `json:"job_id"`
	JobURL          string    `json:"job_url"`
	ExternalRef     string    `json:"external_ref,omitempty"`
	SubmittedFields int       `json:"submitted_fields"`
	AppliedAt       time.Time `json:"applied_at"`
}

// CVDocument holds a user's extracted CV text (never the original file).
type CVDocument struct {
	UserID      uuid.UUID  `json:"-"`
	Body        string     `json:"body"`
	ExtractedAt *time.Time `json:"extracted_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SalaryBand is an aggregate over listings for one role title.
type SalaryBand struct {
	Role      string `json:"role"`
	Listings  int    `json:"listings"`
	AvgMin    int    `json:"avg_min"`
	AvgMax    int    `json:"avg_max"`
	RemotePct int    `json:"remote_pct"`
}
