package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/remoteboard/remoteboard/internal/autoapply"
	"github.com/remoteboard/remoteboard/internal/config"
	"github.com/remoteboard/remoteboard/internal/db"
	"github.com/remoteboard/remoteboard/internal/formauto"
	"github.com/remoteboard/remoteboard/internal/profileextract"
	"github.com/remoteboard/remoteboard/internal/server/middleware"
	"github.com/remoteboard/remoteboard/internal/server/ratelimit"
)

// Store is the database surface the HTTP handlers depend on. *db.DB
// satisfies it; tests substitute a fake.
type Store interface {
	UserStore

	CreateJob(ctx context.Context, job *db.Job) (uuid.UUID, error)
	GetJob(ctx context.Context, id uuid.UUID) (*db.Job, error)
	ListJobs(ctx context.Context, filters db.JobFilters) ([]db.Job, error)
	SalaryGuide(ctx context.Context, role string) (*db.SalaryBand, error)

	ProfileAttributes(ctx context.Context, userID uuid.UUID) ([]db.ProfileAttribute, error)
	UpsertProfileAttributes(ctx context.Context, userID uuid.UUID, attrs []db.AttributeInput) error

	UpsertCV(ctx context.Context, userID uuid.UUID, body string) error
	GetCV(ctx context.Context, userID uuid.UUID) (*db.CVDocument, error)
	MarkCVExtracted(ctx context.Context, userID uuid.UUID) error

	ListApplicationsByUser(ctx context.Context, userID uuid.UUID) ([]db.Application, error)
}

// Engine is the auto-apply engine surface the HTTP handlers depend on.
type Engine interface {
	Analyze(ctx context.Context, userID uuid.UUID, jobURL string) (*autoapply.AnalysisResult, error)
	Preview(ctx context.Context, userID uuid.UUID, jobURL string) (*autoapply.PreviewPayload, error)
	Submit(ctx context.Context, userID, jobID uuid.UUID, jobURL string) (*autoapply.ApplicationResult, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          Store
	dbConn      *db.DB
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	engine      Engine
	extractor   profileextract.Extractor // nil when no extraction service is configured
}

// Config holds server configuration
type Config struct {
	Port        int
	DatabaseURL string
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	automationConfig, err := config.NewAutomationConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create automation config: %w", err)
	}

	engine := autoapply.NewService(
		formauto.NewAnalyzer(automationConfig),
		formauto.NewDriver(automationConfig),
		database,
	)

	// The extraction collaborator is optional; without it CV uploads are
	// stored as plain text and profile attributes stay manual.
	var extractor profileextract.Extractor
	extractorConfig, err := config.NewExtractorConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor config: %w", err)
	}
	if extractorConfig.Enabled() {
		client, err := profileextract.NewClient(extractorConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create extraction client: %w", err)
		}
		extractor = client
	} else {
		log.Printf("[server] profile extraction disabled (PROFILE_EXTRACTOR_URL not set)")
	}

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	s := newServer(database, engine, extractor, passwordConfig, jwtConfig)
	s.dbConn = database
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for headless-browser submissions
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// newServer wires handlers and services without touching the network.
// Tests call it directly with fake collaborators.
func newServer(store Store, engine Engine, extractor profileextract.Extractor, passwordConfig *config.PasswordConfig, jwtConfig *config.JWTConfig) *Server {
	s := &Server{
		db:        store,
		engine:    engine,
		extractor: extractor,
	}
	s.userService = NewUserService(store, passwordConfig)
	s.jwtService = NewJWTService(jwtConfig)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)
	return s
}

// routes builds the request router. Endpoints under /auto-apply and /users/me
// require a bearer token; job browsing is public.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	authed := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())

	mux.HandleFunc("GET /health", s.handleHealth)

	// Authentication
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)

	// Account
	mux.Handle("GET /users/me", authed(http.HandlerFunc(s.handleGetMe)))
	mux.Handle("PUT /users/me/password", authed(http.HandlerFunc(s.handleUpdatePassword)))

	// Profile attributes and CV text
	mux.Handle("GET /users/me/profile", authed(http.HandlerFunc(s.handleGetProfile)))
	mux.Handle("PUT /users/me/profile", authed(http.HandlerFunc(s.handleUpdateProfile)))
	mux.Handle("GET /users/me/cv", authed(http.HandlerFunc(s.handleGetCV)))
	mux.Handle("PUT /users/me/cv", authed(http.HandlerFunc(s.handleUploadCV)))

	// Job listings
	mux.HandleFunc("GET /jobs", s.handleListJobs)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	mux.Handle("POST /jobs", authed(http.HandlerFunc(s.handleCreateJob)))
	mux.HandleFunc("GET /salary-guide", s.handleSalaryGuide)

	// Auto-apply engine
	mux.Handle("POST /auto-apply/analyze-form", authed(http.HandlerFunc(s.handleAnalyzeForm)))
	mux.Handle("POST /auto-apply/preview-responses", authed(http.HandlerFunc(s.handlePreviewResponses)))
	mux.Handle("POST /auto-apply/auto-apply", authed(http.HandlerFunc(s.handleAutoApply)))

	// Applied-jobs view
	mux.Handle("GET /users/me/applications", authed(http.HandlerFunc(s.handleListApplications)))

	return mux
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	if s.dbConn != nil {
		s.dbConn.Close()
	}
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		if !allowed {
			s.setRateLimitHeaders(w, info)
			s.rateLimitResponse(w, info)
			return
		}

		s.setRateLimitHeaders(w, info)
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// For MVP, this uses the IP address from RemoteAddr.
// In the future, this could use X-Forwarded-For header (only from trusted proxies).
func (s *Server) extractClientID(r *http.Request) string {
	// Get IP from RemoteAddr (format: "IP:port")
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If parsing fails, use the whole RemoteAddr
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
