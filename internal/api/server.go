// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihandler "github.com/tradercopilot/swingdash/internal/api/handler/api"
	"github.com/tradercopilot/swingdash/internal/api/handler/web"
	"github.com/tradercopilot/swingdash/internal/api/middleware"
	"github.com/tradercopilot/swingdash/internal/app"
	"github.com/tradercopilot/swingdash/internal/metrics"
)

// Server represents the HTTP server of the dashboard
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	app        *app.App
	publicURL  string
}

// NewServer creates a new HTTP server
func NewServer(a *app.App) (*Server, error) {
	cfg := a.Config()
	mux := http.NewServeMux()
	logger := a.Logger()

	s := &Server{
		logger:    logger,
		mux:       mux,
		app:       a,
		publicURL: cfg.Server.PublicURL,
	}

	// Set up routes
	if err := s.setupRoutes(cfg.Server.TemplatesDir); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	handler := middleware.Chain(mux,
		metrics.LoggingMiddleware(logger.Named("http")),
		metrics.HTTPMiddleware(a.Metrics()),
		middleware.RequireSession(middleware.ProtectedPrefix),
	)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Backend.ProTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the root handler with every middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(templatesDir string) error {
	cfg := s.app.Config()

	webHandler, err := web.NewHandler(s.app, templatesDir)
	if err != nil {
		return fmt.Errorf("creating web handler: %w", err)
	}

	protect := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h,
			middleware.Profile(s.app, s.logger.Named("profile")),
			middleware.TrialGuard,
		)
	}
	optional := func(h http.HandlerFunc) http.Handler {
		return middleware.OptionalProfile(s.app)(h)
	}
	limited := func(h http.HandlerFunc) http.Handler { return h }
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		limited = func(h http.HandlerFunc) http.Handler { return limiter.Limit(h) }
	}

	// Public pages
	s.mux.HandleFunc("GET /{$}", webHandler.Home)
	s.mux.HandleFunc("GET /auth/login", webHandler.LoginPage)
	s.mux.Handle("POST /auth/login", limited(webHandler.Login))
	s.mux.HandleFunc("GET /auth/signup", webHandler.SignupPage)
	s.mux.Handle("POST /auth/signup", limited(webHandler.Signup))
	s.mux.HandleFunc("POST /auth/logout", webHandler.Logout)
	s.mux.Handle("GET /pricing", optional(webHandler.Pricing))
	s.mux.Handle("GET /trial-expired", optional(webHandler.TrialExpired))
	s.mux.Handle("POST /billing/checkout", optional(webHandler.Checkout))
	s.mux.Handle("POST /billing/portal", optional(webHandler.Portal))

	// Dashboard
	s.mux.Handle("GET /dashboard", protect(webHandler.Dashboard))
	s.mux.Handle("GET /dashboard/signals", protect(webHandler.Signals))
	s.mux.Handle("POST /dashboard/signals/{id}/save", protect(webHandler.ToggleSave))
	s.mux.Handle("POST /dashboard/signals/{id}/delete", protect(webHandler.DeleteSignal))
	s.mux.Handle("GET /dashboard/strategies", protect(webHandler.Strategies))
	s.mux.Handle("POST /dashboard/strategies/{id}/toggle", protect(webHandler.ToggleStrategy))
	s.mux.Handle("POST /dashboard/strategies/{id}/update", protect(webHandler.UpdateStrategy))
	s.mux.Handle("GET /dashboard/analysis", protect(webHandler.Analysis))
	s.mux.Handle("POST /dashboard/analysis/lite", protect(webHandler.Lite))
	s.mux.Handle("POST /dashboard/analysis/pro", protect(webHandler.Pro))
	s.mux.Handle("GET /dashboard/analysis/jobs/{id}", protect(webHandler.Job))
	s.mux.Handle("GET /dashboard/analysis/jobs/{id}/report", protect(webHandler.Download))
	s.mux.Handle("GET /dashboard/advisor", protect(webHandler.Advisor))
	s.mux.Handle("POST /dashboard/advisor", protect(webHandler.Chat))
	s.mux.Handle("GET /dashboard/advisor/locked", protect(webHandler.AdvisorLocked))
	s.mux.Handle("GET /dashboard/settings", protect(webHandler.Settings))
	s.mux.Handle("POST /dashboard/settings/timezone", protect(webHandler.UpdateTimezone))
	s.mux.Handle("POST /dashboard/settings/password", protect(webHandler.UpdatePassword))
	s.mux.Handle("POST /dashboard/settings/telegram/disconnect", protect(webHandler.DisconnectTelegram))
	s.mux.Handle("POST /dashboard/settings/telegram/test", protect(webHandler.TestAlert))
	s.mux.Handle("POST /dashboard/settings/telegram/signals", protect(webHandler.SendLatest))
	s.mux.Handle("POST /dashboard/settings/export", protect(webHandler.Export))
	s.mux.Handle("GET /dashboard/settings/exports/{name}", protect(webHandler.DownloadExport))
	s.mux.Handle("GET /dashboard/admin", protect(webHandler.Admin))
	s.mux.Handle("POST /dashboard/admin/users/{id}/plan", protect(webHandler.UpdatePlan))

	// JSON API
	health := apihandler.NewHealthHandler(s.app)
	access := apihandler.NewAccessHandler(s.app)
	jobs := apihandler.NewJobsHandler(s.app)
	s.mux.HandleFunc("GET /api/health", health.Get)
	s.mux.Handle("GET /api/v1/access", optional(access.Get))
	s.mux.Handle("GET /api/v1/scan/jobs", optional(jobs.List))
	s.mux.Handle("GET /api/v1/scan/jobs/{id}", optional(jobs.GetByID))

	if cfg.Metrics.Enabled {
		s.mux.Handle("GET "+cfg.Metrics.Path, middleware.APIKeyAuth(cfg.Metrics.APIKey)(
			promhttp.HandlerFor(s.app.Metrics(), promhttp.HandlerOpts{})))
	}

	return nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server",
		zap.String("addr", s.httpServer.Addr),
		zap.String("public_url", s.publicURL))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
