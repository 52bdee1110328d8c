package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pinee-app/pinee-api/internal/config"
	"github.com/pinee-app/pinee-api/internal/domain"
	"github.com/pinee-app/pinee-api/internal/handler"
	"github.com/pinee-app/pinee-api/internal/infra/cache"
	"github.com/pinee-app/pinee-api/internal/infra/firebase"
	"github.com/pinee-app/pinee-api/internal/infra/observability"
	"github.com/pinee-app/pinee-api/internal/infra/resilience"
	"github.com/pinee-app/pinee-api/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("firebase_database_url", cfg.FirebaseDatabaseURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	if cfg.FirebaseDatabaseURL == "" {
		logger.Fatal("FIREBASE_DATABASE_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(context.Background(), "pinee-api", cfg.OTLPEndpoint, logger)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Caches ---
	recordsCache := cache.New[[]domain.TransactionRecord](cfg.CacheTTL)
	tokenCache := cache.New[string](cfg.AuthTokenTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("firebase")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	store := firebase.NewClient(
		httpClient,
		cfg.FirebaseDatabaseURL,
		cfg.FirebaseAuthSecret,
		cb,
		bulkhead,
		resilienceCfg,
		logger,
	)
	authProvider := firebase.NewAuthProvider(
		httpClient,
		cfg.FirebaseAPIKey,
		cfg.FirebaseIdentityURL,
		cfg.FirebaseTokenURL,
		tokenCache,
		logger,
	)

	// --- Services ---
	dashSvc := service.NewDashboardService(store, recordsCache, metrics, logger)
	txSvc := service.NewTransactionsService(store, dashSvc, logger)
	catSvc := service.NewCategoriesService(store, logger)
	goalSvc := service.NewGoalsService(store, logger)
	authSvc := service.NewAuthService(authProvider, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Dashboard:    dashSvc,
		Transactions: txSvc,
		Categories:   catSvc,
		Goals:        goalSvc,
		Auth:         authSvc,
		Metrics:      metrics,
		Logger:       logger,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
