// Package http serves the portal's JSON API: login, registration, the
// assistant, student and faculty dashboards and the admin console.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nextedu/portal/config"
	"github.com/nextedu/portal/internal/application/command"
	"github.com/nextedu/portal/internal/application/query"
	"github.com/nextedu/portal/internal/infrastructure/scheduler"
	"github.com/nextedu/portal/internal/interface/http/health"
	"github.com/nextedu/portal/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string

	// AdminAPIKey protects /api/v1/admin. Empty closes the admin API.
	AdminAPIKey string

	// RequestTimeout bounds handler contexts.
	RequestTimeout time.Duration
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		AllowedOrigins: []string{"*"},
		RequestTimeout: 25 * time.Second,
	}
}

// Address returns the server address string.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Metrics receives request observations and serves /metrics.
type Metrics interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
	Handler() http.Handler
}

// SnapshotFlusher persists the directory on demand.
type SnapshotFlusher interface {
	Flush(ctx context.Context) (bool, error)
	IsDirty() bool
}

// JobRunner exposes the background scheduler to the admin API.
type JobRunner interface {
	ListJobs() []scheduler.JobInfo
	History(limit int) []scheduler.JobResult
	RunNow(ctx context.Context, name string) (scheduler.JobResult, error)
}

// Dependencies contains everything the handlers call.
type Dependencies struct {
	// Commands
	Login              *command.LoginHandler
	SubmitRegistration *command.SubmitRegistrationHandler
	DecideRegistration *command.DecideRegistrationHandler
	People             *command.PeopleHandler
	Faculty            *command.FacultyHandler
	Assistant          *command.AskAssistantHandler

	// Queries
	StudentDashboard *query.StudentDashboardHandler
	SemesterRecord   *query.SemesterRecordHandler
	Fees             *query.FeesHandler
	TeacherDashboard *query.TeacherDashboardHandler
	Admin            *query.AdminHandler

	// Operations
	Snapshots     SnapshotFlusher
	Jobs          JobRunner
	HealthChecker health.Checker
	Features      *config.FeatureFlags
	RateLimiter   RateLimiter
	Metrics       Metrics

	Logger *logger.Logger
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server is the portal HTTP server.
type Server struct {
	config     Config
	deps       Dependencies
	router     chi.Router
	httpServer *http.Server
	logger     *logger.Logger
	validator  *requestValidator

	mu        sync.RWMutex
	running   bool
	startedAt time.Time
}

// NewServer creates a new HTTP server with the given configuration and dependencies.
func NewServer(cfg Config, deps Dependencies) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultConfig().RequestTimeout
	}
	s := &Server{
		config:    cfg,
		deps:      deps,
		logger:    deps.Logger,
		validator: newRequestValidator(),
	}
	if s.logger == nil {
		s.logger = logger.Default()
	}
	s.logger = s.logger.With(logger.Component("http"))

	s.router = s.routes()
	s.httpServer = &http.Server{
		Addr:              cfg.Address(),
		Handler:           s.router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    1 << 20,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.recovery)
	r.Use(s.requestID)
	r.Use(s.accessLog)
	r.Use(s.cors)

	// ─────────────────────────────────────────────────────────────────────────
	// Probes
	// ─────────────────────────────────────────────────────────────────────────
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/live", s.handleLive)
	if s.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.timeout)

		// ─────────────────────────────────────────────────────────────────────
		// Public
		// ─────────────────────────────────────────────────────────────────────
		r.With(s.rateLimit("login")).Post("/auth/login", s.handleLogin)
		r.With(s.feature(config.FeatureRegistration, ""), s.rateLimit("register")).
			Post("/registrations", s.handleSubmitRegistration)
		r.With(s.feature(config.FeatureChatbot, ""), s.rateLimit("assistant")).
			Post("/assistant", s.handleAskAssistant)

		// ─────────────────────────────────────────────────────────────────────
		// Student
		// ─────────────────────────────────────────────────────────────────────
		r.Route("/students/{id}", func(r chi.Router) {
			r.Get("/dashboard", s.handleStudentDashboard)
			r.Get("/semesters/{semester}", s.handleSemesterRecord)
			r.Get("/fees", s.handleFees)
			r.Post("/notifications/{notificationID}/read", s.handleMarkNotificationRead)
		})

		// ─────────────────────────────────────────────────────────────────────
		// Faculty
		// ─────────────────────────────────────────────────────────────────────
		r.Route("/teachers/{id}", func(r chi.Router) {
			r.Get("/dashboard", s.handleTeacherDashboard)
			r.Group(func(r chi.Router) {
				r.Use(s.feature(config.FeatureAnnouncements, "teacher"))
				r.Post("/announcements", s.handlePostAnnouncement)
				r.Post("/students/{studentID}/notes", s.handleSendNote)
				r.Post("/students/{studentID}/tags", s.handleTagStudent)
			})
			r.Post("/assignments", s.handleCreateAssignment)
			r.Delete("/assignments/{itemID}", s.handleRemoveAssignment)
			r.Post("/materials", s.handleUploadMaterial)
			r.Delete("/materials/{itemID}", s.handleRemoveMaterial)
		})

		// ─────────────────────────────────────────────────────────────────────
		// Admin
		// ─────────────────────────────────────────────────────────────────────
		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAPIKey)
			r.Get("/overview", s.handleAdminOverview)

			r.Get("/students", s.handleListStudents)
			r.Post("/students", s.handleAddStudent)
			r.Patch("/students/{id}", s.handleUpdateStudent)
			r.Delete("/students/{id}", s.handleRemoveStudent)

			r.Get("/teachers", s.handleListTeachers)
			r.Post("/teachers", s.handleAddTeacher)
			r.Patch("/teachers/{id}", s.handleUpdateTeacher)
			r.Delete("/teachers/{id}", s.handleRemoveTeacher)

			r.Post("/registrations/{username}/approve", s.handleApproveRegistration)
			r.Post("/registrations/{username}/reject", s.handleRejectRegistration)

			r.Post("/announcements", s.handleAdminAnnouncement)

			r.Post("/snapshot/flush", s.handleFlushSnapshot)
			r.Get("/jobs", s.handleListJobs)
			r.Post("/jobs/{name}/run", s.handleRunJob)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, r, http.StatusNotFound, "not_found", "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	})
	return r
}

// timeout bounds the request context.
func (s *Server) timeout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("starting HTTP server", logger.String("address", s.config.Address()))

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Uptime returns the server uptime.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return time.Since(s.startedAt)
}

// ══════════════════════════════════════════════════════════════════════════════
// PROBES
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker == nil {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "healthy", "uptime": s.Uptime().String()})
		return
	}
	status := s.deps.HealthChecker.Check(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, r, code, status)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		if status := s.deps.HealthChecker.Check(r.Context()); !status.Ready {
			writeJSONError(w, r, http.StatusServiceUnavailable, "not_ready", status.Message)
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}
