package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/genapps/genforge/internal"
	"github.com/genapps/genforge/internal/ai"
	"github.com/genapps/genforge/internal/ai/longcat"
	"github.com/genapps/genforge/internal/ai/mock"
	"github.com/genapps/genforge/internal/auth"
	"github.com/genapps/genforge/internal/billing"
	"github.com/genapps/genforge/internal/handler"
	"github.com/genapps/genforge/internal/metrics"
	"github.com/genapps/genforge/internal/middleware"
	"github.com/genapps/genforge/internal/publish"
	"github.com/genapps/genforge/internal/repository"
	"github.com/genapps/genforge/internal/service"
	"github.com/genapps/genforge/internal/storage"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize token verifier
	var verifier auth.TokenVerifier
	switch cfg.AuthProvider {
	case "jwks":
		verifier, err = auth.NewVerifier(cfg.AuthIssuer, cfg.AuthAudience, cfg.AuthJWKSURL)
		if err != nil {
			return fmt.Errorf("verifier initialization failed: %w", err)
		}
	case "mock":
		if cfg.Env != "development" {
			return fmt.Errorf("AUTH_PROVIDER 'mock' is only allowed in development")
		}
		logger.Warn("Using static token verifier; tokens are not verified")
		verifier = auth.NewStaticVerifier()
	}

	// Initialize generation provider
	var provider ai.Provider
	switch cfg.AIProvider {
	case "longcat":
		provider, err = longcat.New(longcat.Config{
			BaseURL:        cfg.LongCatBaseURL,
			APIKeys:        cfg.LongCatAPIKeys,
			AttemptTimeout: cfg.LongCatTimeout,
		}, logger)
		if err != nil {
			return fmt.Errorf("generation provider initialization failed: %w", err)
		}
	case "mock":
		logger.Warn("Using mock generation provider")
		provider = mock.New(logger)
	}

	// Initialize storage (optional; "none" disables snapshot archiving)
	var store storage.Storage
	switch cfg.StorageProvider {
	case storage.ProviderLocal:
		store, err = storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		}, logger)
		if err != nil {
			return fmt.Errorf("storage initialization failed: %w", err)
		}
	case storage.ProviderR2:
		store, err = storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		}, logger)
		if err != nil {
			return fmt.Errorf("storage initialization failed: %w", err)
		}
	}

	// Initialize repository and services
	accounts := repository.NewAccountStore(db)
	credits := service.NewCreditService(accounts, logger)
	generations := service.NewGenerationService(accounts, credits, provider, store, logger)
	billingService := billing.NewService(accounts, logger)
	publisher := publish.NewPublisher(logger)

	if cfg.LemonSqueezyWebhookSecret == "" {
		logger.Warn("LEMONSQUEEZY_WEBHOOK_SECRET not set; webhook deliveries will fail")
	}

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(verifier, logger)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)

	// Initialize handlers
	generateHandler := handler.NewGenerateHandler(generations, logger)
	webhookHandler := handler.NewWebhookHandler(billingService, cfg.LemonSqueezyWebhookSecret, logger)
	publishHandler := handler.NewPublishHandler(publisher, logger)
	snapshotHandler := handler.NewSnapshotHandler(generations, logger)
	healthHandler := handler.NewHealthHandler(db, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check and metrics
	mux.HandleFunc("GET /health", healthHandler.HandleHealth)
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	// Webhook (vendor-signed, no bearer auth)
	mux.HandleFunc("POST /api/webhooks/lemonsqueezy", webhookHandler.HandleLemonSqueezy)

	// Authenticated API routes
	requireUser := middleware.Stack(authMw.RequireUser)
	mux.Handle("POST /api/generate", requireUser(http.HandlerFunc(generateHandler.HandleGenerate)))
	mux.Handle("POST /api/publish", requireUser(http.HandlerFunc(publishHandler.HandlePublish)))
	mux.Handle("GET /api/snapshots", requireUser(http.HandlerFunc(snapshotHandler.HandleList)))
	mux.Handle("GET /api/snapshots/{id}", requireUser(http.HandlerFunc(snapshotHandler.HandleGet)))

	// Wrap everything with request logging and metrics
	root := middleware.Stack(loggingMw.Handler, metrics.Middleware)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,

		// Generation requests can legitimately take over a minute while
		// key failover runs; keep write timeout above the worst case.
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      5 * time.Minute,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
