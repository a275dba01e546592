package autoapply

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/remoteboard/remoteboard/internal/db"
)

// SchemaSource produces the application form schema for a job URL.
type SchemaSource interface {
	FormSchema(ctx context.Context, jobURL string) (*FormSchema, error)
}

// SubmitDriver fills and submits an application form with generated values,
// keyed by field name.
type SubmitDriver interface {
	Submit(ctx context.Context, jobURL string, values map[string]string) (*SubmitOutcome, error)
}

// SubmitOutcome is the driver's report of one submission attempt. A nil
// error with Confirmed=false is a soft rejection by the upstream form.
type SubmitOutcome struct {
	Confirmed   bool
	ExternalRef string // upstream confirmation reference, if one was shown
	Reason      string // upstream rejection reason when not confirmed
}

// Store is the subset of the database the engine needs.
type Store interface {
	ProfileAttributes(ctx context.Context, userID uuid.UUID) ([]db.ProfileAttribute, error)
	ApplicationByUserAndJob(ctx context.Context, userID, jobID uuid.UUID) (*db.Application, error)
	CreateApplication(ctx context.Context, app *db.Application) (*db.Application, error)
}

// Service wires the pure mapping core to the form automation collaborator
// and the application store.
type Service struct {
	schemas SchemaSource
	driver  SubmitDriver
	store   Store
}

// NewService creates the auto-apply engine service.
func NewService(schemas SchemaSource, driver SubmitDriver, store Store) *Service {
	return &Service{
		schemas: schemas,
		driver:  driver,
		store:   store,
	}
}

// Analyze determines whether auto-apply can drive the given posting's form
// for this user. Nothing is persisted; analysis is purely diagnostic.
// Supported requires at least one resolvable field AND a drivable mechanism.
func (s *Service) Analyze(ctx context.Context, userID uuid.UUID, jobURL string) (*AnalysisResult, error) {
	schema, profile, err := s.load(ctx, userID, jobURL)
	if err != nil {
		return nil, &AnalysisError{URL: jobURL, Message: "could not determine form schema", Cause: err}
	}

	responses := MapFields(schema.Fields, profile)
	resolved := CountResolved(responses)
	supported := schema.Mechanism.Drivable() && resolved > 0

	log.Printf("[autoapply] analyze url=%s fields=%d resolved=%d mechanism=%s captcha=%t supported=%t",
		jobURL, len(schema.Fields), resolved, schema.Mechanism.Kind, schema.Mechanism.Captcha, supported)

	return &AnalysisResult{Supported: supported}, nil
}

// Preview assembles the confirmation payload. Callers must have seen
// Supported=true for the same URL first; Preview does not re-check. With
// unchanged profile and form, repeated calls return identical payloads.
func (s *Service) Preview(ctx context.Context, userID uuid.UUID, jobURL string) (*PreviewPayload, error) {
	schema, profile, err := s.load(ctx, userID, jobURL)
	if err != nil {
		return nil, &PreviewError{URL: jobURL, Message: "could not assemble preview", Cause: err}
	}

	payload := BuildPreview(MapFields(schema.Fields, profile))

	log.Printf("[autoapply] preview url=%s total=%d resolved=%d ready=%t",
		jobURL, payload.TotalFields, payload.FieldsWithResponses, payload.Completeness.ReadyForAutoApply)

	return payload, nil
}

// Submit drives the fill-and-submit for a confirmed application. Idempotent
// per (user, job): an existing application short-circuits and returns its
// stored ID without driving a second upstream submission. Soft rejections
// come back with Success=false and a nil error; only hard failures error.
// A failed attempt writes nothing, so no dangling application ID can exist.
func (s *Service) Submit(ctx context.Context, userID, jobID uuid.UUID, jobURL string) (*ApplicationResult, error) {
	existing, err := s.store.ApplicationByUserAndJob(ctx, userID, jobID)
	if err != nil {
		return nil, &SubmitError{Kind: SubmitErrorInternal, URL: jobURL, Message: "failed to check existing application", Cause: err}
	}
	if existing != nil {
		log.Printf("[autoapply] submit user=%s job=%s already applied, returning application %s", userID, jobID, existing.ID)
		return &ApplicationResult{Success: true, ApplicationID: existing.ID.String(), Message: "already applied"}, nil
	}

	schema, profile, err := s.load(ctx, userID, jobURL)
	if err != nil {
		return nil, &SubmitError{Kind: SubmitErrorNetwork, URL: jobURL, Message: "could not load form for submission", Cause: err}
	}

	responses := MapFields(schema.Fields, profile)
	if missing := missingRequired(responses); len(missing) > 0 {
		// Upstream would reject this anyway; fail soft before any browser work.
		return &ApplicationResult{
			Success: false,
			Message: "required fields are missing values: " + strings.Join(missing, ", "),
		}, nil
	}

	outcome, err := s.driver.Submit(ctx, jobURL, responseValues(responses))
	if err != nil {
		log.Printf("[autoapply] submit user=%s job=%s network failure: %v", userID, jobID, err)
		return nil, &SubmitError{Kind: SubmitErrorNetwork, URL: jobURL, Message: "no response from application form", Cause: err}
	}
	if !outcome.Confirmed {
		reason := outcome.Reason
		if reason == "" {
			reason = "the application form rejected the submission"
		}
		log.Printf("[autoapply] submit user=%s job=%s soft failure: %s", userID, jobID, reason)
		return &ApplicationResult{Success: false, Message: reason}, nil
	}

	saved, err := s.store.CreateApplication(ctx, &db.Application{
		UserID:          userID,
		JobID:           jobID,
		JobURL:          jobURL,
		ExternalRef:     outcome.ExternalRef,
		SubmittedFields: CountResolved(responses),
	})
	if err != nil {
		return nil, &SubmitError{Kind: SubmitErrorInternal, URL: jobURL, Message: "submission confirmed but could not be recorded", Cause: err}
	}

	log.Printf("[autoapply] submit user=%s job=%s applied, application=%s fields=%d",
		userID, jobID, saved.ID, saved.SubmittedFields)

	return &ApplicationResult{Success: true, ApplicationID: saved.ID.String()}, nil
}

// load fetches the form schema and the user's profile concurrently.
func (s *Service) load(ctx context.Context, userID uuid.UUID, jobURL string) (*FormSchema, *Profile, error) {
	var (
		schema  *FormSchema
		profile *Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		schema, err = s.schemas.FormSchema(gctx, jobURL)
		return err
	})
	g.Go(func() error {
		attrs, err := s.store.ProfileAttributes(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		profile = buildProfile(attrs)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return schema, profile, nil
}

func buildProfile(attrs []db.ProfileAttribute) *Profile {
	p := &Profile{Attributes: make([]Attribute, 0, len(attrs))}
	for _, a := range attrs {
		p.Attributes = append(p.Attributes, Attribute{
			Name:      a.Name,
			Value:     a.Value,
			UpdatedAt: a.UpdatedAt,
		})
	}
	return p
}

// missingRequired lists required fields the mapper could not resolve, by
// label where one exists.
func missingRequired(responses []FieldResponse) []string {
	var missing []string
	for _, r := range responses {
		if r.Field.Required && !r.Resolved() {
			label := r.Field.Label
			if label == "" {
				label = r.Field.Name
			}
			missing = append(missing, label)
		}
	}
	return missing
}

// responseValues flattens resolved responses into the driver's input.
func responseValues(responses []FieldResponse) map[string]string {
	values := make(map[string]string, len(responses))
	for _, r := range responses {
		if r.Resolved() && r.GeneratedValue != nil {
			values[r.Field.Name] = *r.GeneratedValue
		}
	}
	return values
}
