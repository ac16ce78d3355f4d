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

	"github.com/SscSPs/exchange_desk/internal/adapters/exchangeapi"
	portsrepo "github.com/SscSPs/exchange_desk/internal/core/ports/repositories"
	"github.com/SscSPs/exchange_desk/internal/core/services"
	"github.com/SscSPs/exchange_desk/internal/handlers"
	"github.com/SscSPs/exchange_desk/internal/middleware"
	"github.com/SscSPs/exchange_desk/internal/platform/config"
	"github.com/SscSPs/exchange_desk/internal/repositories/database/pgsql"
	"github.com/SscSPs/exchange_desk/internal/repositories/memory"
	"github.com/SscSPs/exchange_desk/internal/utils"
	"github.com/SscSPs/exchange_desk/internal/utils/querycache"
	"github.com/SscSPs/exchange_desk/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
)

// @title Exchange Desk API
// @version 1.0
// @description Currency exchange backend-for-frontend: rates, quotes, wallets, orders and the server-side exchange form.

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token
// @description Session cookie set by /auth/login. "Authorization: Bearer <token>" is accepted too.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.SessionJWTSecret == "" {
		// sessions will not survive a restart, which is fine outside production
		cfg.SessionJWTSecret, err = utils.GenerateSecureRandomString(32)
		if err != nil {
			logger.Error("Failed to generate session secret", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Warn("SESSION_JWT_SECRET not set, using a random secret for this process")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	submissions, closeJournal := setupSubmissionJournal(ctx, cfg, logger)
	defer closeJournal()

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	clock := clockwork.NewRealClock()
	cache := querycache.New(querycache.Config{
		MaxEntries: cfg.CacheMaxEntries,
		GCTime:     cfg.CacheGCTime,
		Clock:      clock,
		Logger:     logger,
	})

	repos := portsrepo.RepositoryProvider{
		ExchangeAPI:    exchangeapi.NewClient(cfg.ExchangeAPIBaseURL, cfg.ExchangeAPITimeout),
		SubmissionRepo: submissions,
	}
	container := services.NewServiceContainer(cfg, repos, services.ContainerDeps{
		Cache:     cache,
		Clock:     clock,
		Analytics: posthogClient,
	})

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, analytics)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), middleware.PosthogMiddleware(posthogClient))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := handlers.RegisterRoutes(r, cfg, container, clock); err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("exchange_api", cfg.ExchangeAPIBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
}

// setupSubmissionJournal returns the PostgreSQL journal when PGSQL_URL is set,
// running migrations first, and the in-memory journal otherwise.
func setupSubmissionJournal(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.SubmissionRepositoryFacade, func()) {
	if cfg.DatabaseURL == "" {
		logger.Info("Using in-memory submission journal")
		return memory.NewSubmissionStore(), func() {}
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.RunMigrations(cfg.DatabaseURL, "file://migrations", logger); err != nil {
		logger.Error("Failed to migrate database", slog.String("error", err.Error()))
		dbPool.Close()
		os.Exit(1)
	}
	return pgsql.NewSubmissionRepository(dbPool), func() { database.ClosePgxPool(dbPool, logger) }
}
