package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/remoteboard/remoteboard/internal/autoapply"
	"github.com/remoteboard/remoteboard/internal/config"
	"github.com/remoteboard/remoteboard/internal/db"
	"github.com/remoteboard/remoteboard/internal/profileextract"
)

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*db.User
	emails map[string]uuid.UUID
	jobs   map[uuid.UUID]*db.Job
	attrs  map[uuid.UUID]map[string]db.ProfileAttribute
	cvs    map[uuid.UUID]*db.CVDocument
	apps   map[uuid.UUID][]db.Application
	salary *db.SalaryBand

	// forcedErr makes every call fail, for error-path tests.
	forcedErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  make(map[uuid.UUID]*db.User),
		emails: make(map[string]uuid.UUID),
		jobs:   make(map[uuid.UUID]*db.Job),
		attrs:  make(map[uuid.UUID]map[string]db.ProfileAttribute),
		cvs:    make(map[uuid.UUID]*db.CVDocument),
		apps:   make(map[uuid.UUID][]db.Application),
	}
}

func (f *fakeStore) CreateUser(_ context.Context, name, email, phone string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return uuid.Nil, f.forcedErr
	}
	id := uuid.New()
	now := time.Now()
	f.users[id] = &db.User{ID: id, Name: name, Email: email, Phone: phone, CreatedAt: now, UpdatedAt: now}
	f.emails[email] = id
	return id, nil
}

func (f *fakeStore) GetUser(_ context.Context, userID uuid.UUID) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	return f.users[userID], nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	id, ok := f.emails[email]
	if !ok {
		return nil, nil
	}
	return f.users[id], nil
}

func (f *fakeStore) CheckEmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return false, f.forcedErr
	}
	_, ok := f.emails[email]
	return ok, nil
}

func (f *fakeStore) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return f.forcedErr
	}
	user, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %s", userID)
	}
	user.PasswordHash = passwordHash
	user.PasswordSet = true
	return nil
}

func (f *fakeStore) CreateJob(_ context.Context, job *db.Job) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return uuid.Nil, f.forcedErr
	}
	id := uuid.New()
	stored := *job
	stored.ID = id
	stored.PostedAt = time.Now()
	f.jobs[id] = &stored
	return id, nil
}

func (f *fakeStore) GetJob(_ context.Context, id uuid.UUID) (*db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	return f.jobs[id], nil
}

func (f *fakeStore) ListJobs(_ context.Context, _ db.JobFilters) ([]db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	jobs := make([]db.Job, 0, len(f.jobs))
	for _, j := range f.jobs {
		jobs = append(jobs, *j)
	}
	return jobs, nil
}

func (f *fakeStore) SalaryGuide(_ context.Context, _ string) (*db.SalaryBand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	return f.salary, nil
}

func (f *fakeStore) ProfileAttributes(_ context.Context, userID uuid.UUID) ([]db.ProfileAttribute, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	var attrs []db.ProfileAttribute
	for _, a := range f.attrs[userID] {
		attrs = append(attrs, a)
	}
	return attrs, nil
}

func (f *fakeStore) UpsertProfileAttributes(_ context.Context, userID uuid.UUID, inputs []db.AttributeInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return f.forcedErr
	}
	if f.attrs[userID] == nil {
		f.attrs[userID] = make(map[string]db.ProfileAttribute)
	}
	for _, in := range inputs {
		f.attrs[userID][in.Name] = db.ProfileAttribute{
			UserID:    userID,
			Name:      in.Name,
			Value:     in.Value,
			UpdatedAt: time.Now(),
		}
	}
	return nil
}

func (f *fakeStore) UpsertCV(_ context.Context, userID uuid.UUID, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return f.forcedErr
	}
	f.cvs[userID] = &db.CVDocument{UserID: userID, Body: body, UpdatedAt: time.Now()}
	return nil
}

func (f *fakeStore) GetCV(_ context.Context, userID uuid.UUID) (*db.CVDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	return f.cvs[userID], nil
}

func (f *fakeStore) MarkCVExtracted(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return f.forcedErr
	}
	cv, ok := f.cvs[userID]
	if !ok {
		return fmt.Errorf("no CV stored for user %s", userID)
	}
	now := time.Now()
	cv.ExtractedAt = &now
	return nil
}

func (f *fakeStore) ListApplicationsByUser(_ context.Context, userID uuid.UUID) ([]db.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	return f.apps[userID], nil
}

// fakeEngine is a canned-response Engine for handler tests.
type fakeEngine struct {
	analyzeResult  *autoapply.AnalysisResult
	analyzeErr     error
	previewPayload *autoapply.PreviewPayload
	previewErr     error
	submitResult   *autoapply.ApplicationResult
	submitErr      error

	analyzeCalls int
	previewCalls int
	submitCalls  int
}

func (f *fakeEngine) Analyze(_ context.Context, _ uuid.UUID, _ string) (*autoapply.AnalysisResult, error) {
	f.analyzeCalls++
	return f.analyzeResult, f.analyzeErr
}

func (f *fakeEngine) Preview(_ context.Context, _ uuid.UUID, _ string) (*autoapply.PreviewPayload, error) {
	f.previewCalls++
	return f.previewPayload, f.previewErr
}

func (f *fakeEngine) Submit(_ context.Context, _, _ uuid.UUID, _ string) (*autoapply.ApplicationResult, error) {
	f.submitCalls++
	return f.submitResult, f.submitErr
}

// fakeExtractor is a canned-response profile extraction collaborator.
type fakeExtractor struct {
	attrs []profileextract.Attribute
	err   error
	calls int
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) ([]profileextract.Attribute, error) {
	f.calls++
	return f.attrs, f.err
}

func testPasswordConfig() *config.PasswordConfig {
	return &config.PasswordConfig{
		BcryptCost: 10, // lower cost for faster tests
		Pepper:     "",
	}
}

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:          "test-secret-key-for-jwt-signing-minimum-32-bytes",
		Issuer:          "remoteboard-test",
		ExpirationHours: 24,
	}
}

// setupTestServer builds a Server around fakes and returns it with its router.
func setupTestServer(_ *testing.T, store Store, engine Engine, extractor profileextract.Extractor) (*Server, http.Handler) {
	s := newServer(store, engine, extractor, testPasswordConfig(), testJWTConfig())
	return s, s.routes()
}

// authToken issues a bearer token for an existing test user.
func authToken(t *testing.T, s *Server, userID uuid.UUID) string {
	t.Helper()
	token, err := s.jwtService.GenerateToken(userID)
	require.NoError(t, err)
	return token
}

// createTestUser registers a user directly through the service layer.
func createTestUser(t *testing.T, s *Server, store *fakeStore, email string) uuid.UUID {
	t.Helper()
	hash, err := s.userService.passwordConfig.HashPassword("password123")
	require.NoError(t, err)
	id, err := store.CreateUser(context.Background(), "Test User", email, "")
	require.NoError(t, err)
	require.NoError(t, store.UpdatePassword(context.Background(), id, hash))
	return id
}
