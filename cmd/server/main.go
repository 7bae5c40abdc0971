// AI onboarding front-end server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/ai-onboarding/internal/api"
	"github.com/ashureev/ai-onboarding/internal/backend"
	"github.com/ashureev/ai-onboarding/internal/catalog"
	"github.com/ashureev/ai-onboarding/internal/config"
	"github.com/ashureev/ai-onboarding/internal/cookie"
	"github.com/ashureev/ai-onboarding/internal/identity"
	"github.com/ashureev/ai-onboarding/internal/middleware"
	"github.com/ashureev/ai-onboarding/internal/pages"
	"github.com/ashureev/ai-onboarding/internal/sso"
	"github.com/ashureev/ai-onboarding/internal/store"
	"github.com/ashureev/ai-onboarding/internal/telemetry"
	"github.com/ashureev/ai-onboarding/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "api_url", cfg.APIURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		slog.Warn("Tracing disabled", "error", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Error("Failed to flush traces", "error", err)
		}
	}()

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(ctx); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	renderer, err := web.NewRenderer()
	if err != nil {
		slog.Error("Failed to parse page templates", "error", err)
		os.Exit(1)
	}

	// Initialize services.
	client := backend.NewClient(cfg.APIURL, cfg.RequestTimeout)
	templates := catalog.New(client, repo)
	google := sso.NewGoogle(cfg.Google.ClientID, cfg.AppURL, cfg.Google.ConfigID)
	if cfg.Google.ClientID == "" {
		slog.Warn("GOOGLE_CLIENT_ID not set, Google sign-in will fail at the provider")
	}

	// Initialize handlers.
	pageHandler := pages.NewHandler(client, templates, repo, google, renderer, pages.Options{
		AppURL:             cfg.AppURL,
		SessionRedirectURL: cfg.SessionRedirectURL,
		Cookie: cookie.Options{
			TTL:    cfg.CookieTTL(),
			Secure: !cfg.IsDevelopment(),
		},
		PrimeAICookie: cfg.PrimeAICookie,
	})
	apiHandler := api.NewHandler(repo, templates)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))

	// Public routes.
	apiHandler.RegisterHealth(r)
	r.Handle("/static/*", http.StripPrefix("/static/", web.StaticHandler()))

	r.Group(func(r chi.Router) {
		r.Use(middleware.CORS(cfg.AllowedOrigins))
		apiHandler.RegisterRoutes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(cfg.IsDevelopment()))
		r.Use(middleware.SameOrigin(cfg.AllowedOrigins))
		pageHandler.RegisterRoutes(r)
	})

	// Create server.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(r, "onboarding"),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start prune worker.
	catalog.StartPruneWorker(ctx, repo, catalog.PruneConfig{
		Interval:       cfg.Catalog.PruneInterval,
		EventRetention: cfg.Catalog.EventRetention,
		CacheMaxAge:    cfg.Catalog.CacheMaxAge,
	})

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
