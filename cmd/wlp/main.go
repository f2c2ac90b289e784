// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command wlp runs the WorkLodge web front end: a thin server that holds
// the browser session, talks to the lodging backend API on the user's
// behalf, and renders the role-gated HTML pages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/worklodge/wlp-go/internal/api"
	"github.com/worklodge/wlp-go/internal/cache"
	"github.com/worklodge/wlp-go/internal/config"
	"github.com/worklodge/wlp-go/internal/handler"
	"github.com/worklodge/wlp-go/internal/logging"
	"github.com/worklodge/wlp-go/internal/middleware"
	"github.com/worklodge/wlp-go/internal/render"
	"github.com/worklodge/wlp-go/internal/scheduler"
	"github.com/worklodge/wlp-go/internal/session"
	"github.com/worklodge/wlp-go/internal/store"
	"github.com/worklodge/wlp-go/web"
)

// Build-time variables injected via -ldflags.
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "WorkLodge — worker lodging front end\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  WLP_API_BASE_URL       Lodging backend API base URL (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  WLP_SESSION_SECRET     Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  WLP_API_SESSION_COOKIE Upstream session cookie name (default: wlp_session)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  WLP_DB_PATH            SQLite database path (default: ./data/wlp.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  WLP_SERVER_PORT        Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  WLP_ENV                Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  WLP_REDIS_URL          Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  WLP_EVENT_RETENTION_DAYS  Days to keep event-log rows (default: 90)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("wlp %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	eventLogHandler := logging.NewEventLogHandler(textHandler, db)
	logger = slog.New(eventLogHandler)
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	// Initialize session manager
	sessionManager := session.NewManager(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Initialize summary cache backend
	cacheConfig := cache.Config{
		Type:            "memory",
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	}
	if cfg.UseRedisCache() {
		cacheConfig.Type = "redis"
	}
	cacheBackend, err := cache.NewCache(cacheConfig)
	if err != nil {
		slog.Warn("redis cache unavailable, falling back to memory", "error", err)
		cacheConfig.Type = "memory"
		if cacheBackend, err = cache.NewCache(cacheConfig); err != nil {
			return fmt.Errorf("initializing cache: %w", err)
		}
	}
	defer func() {
		if err := cacheBackend.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	summaries := cache.NewSummaryCache(cacheBackend, time.Duration(cfg.CacheTTL)*time.Second)
	slog.Info("summary cache initialized", "backend", cacheConfig.Type)

	// Initialize template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	contentFS, err := fs.Sub(web.Content, "content")
	if err != nil {
		return fmt.Errorf("getting content fs: %w", err)
	}

	// Lodging API client
	client := api.New(cfg.APIBaseURL, cfg.APISessionCookie)
	slog.Info("lodging API client initialized", "base_url", cfg.APIBaseURL)

	// Initialize and start scheduler
	sched := scheduler.New(db, logger, time.Duration(cfg.EventRetentionDays)*24*time.Hour)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Initialize login protection
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	slog.Info("login protection initialized",
		"max_failed_attempts", 5,
		"lockout_duration", "15m",
	)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(db, client, renderer, sessionManager, loginProtection)
	homeHandler := handler.NewHomeHandler(renderer, contentFS)
	dashboardHandler := handler.NewDashboardHandler(renderer)
	employerHandler := handler.NewEmployerHandler(db, renderer, summaries)
	frontdeskHandler := handler.NewFrontdeskHandler(db, renderer, summaries)
	adminHandler := handler.NewAdminHandler(db, renderer, summaries)
	healthHandler := handler.NewHealthHandler(db)

	// Create router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)

	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	r.Use(middleware.SecurityHeaders(securityConfig))
	r.Use(middleware.RequestPath)

	// Health check and static assets sit outside the session machinery.
	r.Get(handler.RouteHealthz, healthHandler.Health)

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	csrfConfig := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())
	csrfMiddleware := middleware.CSRF(csrfConfig)

	// Everything below shares the browser session, the per-request session
	// store, and the navigation gate. Logout bypasses the gate so it works
	// from any state.
	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(csrfMiddleware)
		r.Use(middleware.WithSessionStore(sessionManager, client))
		r.Use(middleware.Gate(handler.RouteLogout))

		r.Get(handler.RouteRoot, homeHandler.Home)

		// Auth routes (public-only)
		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.Post(handler.RouteLogin, authHandler.Login)
		r.Get(handler.RouteSignup, authHandler.SignupForm)
		r.Post(handler.RouteSignup, authHandler.Signup)
		r.Get(handler.RouteForgotPassword, authHandler.ForgotPasswordForm)
		r.Post(handler.RouteForgotPassword, authHandler.ForgotPassword)
		r.Get(handler.RouteUpdatePassword, authHandler.UpdatePasswordForm)
		r.Post(handler.RouteUpdatePassword, authHandler.UpdatePassword)
		r.Get(handler.RouteLogout, authHandler.Logout)
		r.Post(handler.RouteLogout, authHandler.Logout)

		// Signed-in routes (any role)
		r.Get(handler.RouteDashboard, dashboardHandler.Dashboard)
		r.Get(handler.RouteAccount, dashboardHandler.Account)

		// Employer section
		r.Route("/employer", func(r chi.Router) {
			r.Get(handler.RouteRoot, employerHandler.Overview)
			r.Get(handler.RouteRequests, employerHandler.Requests)
			r.Post(handler.RouteRequests, employerHandler.CreateRequest)
			r.Get(handler.RouteRequests+handler.RouteSuffixNew, employerHandler.NewRequestForm)
			r.Get(handler.RouteRequests+handler.RouteParamID, employerHandler.RequestDetails)
			r.Get(handler.RouteWorkers, employerHandler.Workers)
			r.Post(handler.RouteWorkers, employerHandler.AddWorker)
			r.Post(handler.RouteWorkers+handler.RouteSuffixImport, employerHandler.ImportWorkers)
			r.Get(handler.RouteWorkers+handler.RouteSuffixExport, employerHandler.ExportWorkers)
		})

		// Front desk section
		r.Route("/frontdesk", func(r chi.Router) {
			r.Get(handler.RouteRoot, frontdeskHandler.Overview)
			r.Get(handler.RouteRequests, frontdeskHandler.Requests)
			r.Post(handler.RouteRequests+handler.RouteParamID+handler.RouteSuffixDecision, frontdeskHandler.Decide)
		})

		// Admin section
		r.Route("/admin", func(r chi.Router) {
			r.Get(handler.RouteRoot, adminHandler.Overview)
			r.Get(handler.RouteUsers, adminHandler.Users)
			r.Post(handler.RouteUsers+handler.RouteParamID+handler.RouteSuffixRole, adminHandler.UpdateRole)
		})
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
