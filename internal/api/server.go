package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/manrura/internal/assessment"
	"github.com/terra-clan/manrura/internal/assistant"
	"github.com/terra-clan/manrura/internal/config"
	"github.com/terra-clan/manrura/internal/health"
	"github.com/terra-clan/manrura/internal/metrics"
	"github.com/terra-clan/manrura/internal/models"
	"github.com/terra-clan/manrura/internal/policy"
	"github.com/terra-clan/manrura/internal/session"
)

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	manager        assessment.Manager
	sessions       *session.Tracker
	assistant      *assistant.Service
	health         *health.Registry
	metrics        *metrics.Metrics
	userMiddleware *UserMiddleware
}

// Deps are the collaborators of the server
type Deps struct {
	Manager   assessment.Manager
	Sessions  *session.Tracker
	Assistant *assistant.Service
	Health    *health.Registry
	Metrics   *metrics.Metrics
}

// NewServer creates a new API server
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	if deps.Sessions == nil {
		deps.Sessions = session.NewTracker()
	}
	if deps.Health == nil {
		deps.Health = health.NewRegistry()
	}

	s := &Server{
		config:         cfg,
		manager:        deps.Manager,
		sessions:       deps.Sessions,
		assistant:      deps.Assistant,
		health:         deps.Health,
		metrics:        deps.Metrics,
		userMiddleware: NewUserMiddleware(deps.Manager),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(s.metrics.Middleware)
	r.Use(middleware.Recoverer)

	origins := s.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", UserIDHeader},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/login-users", s.handleLoginUsers)
			r.Post("/login", s.handleLogin)
		})

		// The chat socket outlives the request timeout
		r.With(s.userMiddleware.Authenticate).Get("/chat/ws", s.handleChatWS)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Use(s.userMiddleware.Authenticate)

			r.Get("/me", s.handleMe)

			r.Route("/catalog", func(r chi.Router) {
				r.Get("/", s.handleListStandards)
				r.Get("/{standardId}", s.handleGetStandard)
			})

			r.Route("/navigation", func(r chi.Router) {
				r.Post("/standard", s.handleSelectStandard)
				r.Post("/ward", s.handleSelectWard)
				r.With(RequireRole(models.RoleAdmin)).Post("/dashboard", s.handleReturnToDashboard)
			})

			r.Route("/assessments", func(r chi.Router) {
				r.Get("/", s.handleGetAssessments)
				r.Put("/{pointId}/{role}", s.handleApplyScore)
			})

			r.Route("/wards", func(r chi.Router) {
				r.Get("/", s.handleListWards)
				r.With(RequireRole(models.RoleAdmin)).Post("/", s.handleCreateWard)
				r.Get("/{wardId}/summary", s.handleWardSummary)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(RequireRole(models.RoleAdmin))
				r.Get("/", s.handleListUsers)
				r.Post("/", s.handleCreateUser)
			})

			r.Route("/periods", func(r chi.Router) {
				r.Get("/", s.handleListPeriods)
				r.With(RequireRole(models.RoleAdmin)).Post("/", s.handleCreatePeriod)
			})

			r.With(RequireRole(models.RoleAdmin)).Get("/dashboard", s.handleDashboard)
			r.Post("/chat", s.handleChat)
		})
	})

	s.router = r
}

// navigation returns the acting user's navigation state
func (s *Server) navigation(r *http.Request, user *models.User) policy.Navigation {
	return s.sessions.Get(*user, s.manager.Wards(r.Context()), s.manager.Catalog().DefaultStandardID())
}

// updateNavigation applies fn to the acting user's navigation state
func (s *Server) updateNavigation(r *http.Request, user *models.User, fn func(nav *policy.Navigation) bool) (policy.Navigation, bool) {
	return s.sessions.Update(*user, s.manager.Wards(r.Context()), s.manager.Catalog().DefaultStandardID(), fn)
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
