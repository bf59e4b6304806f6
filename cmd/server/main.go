package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/psgpraveen/PolicyPilot/internal/api"
	"github.com/psgpraveen/PolicyPilot/internal/auth"
	"github.com/psgpraveen/PolicyPilot/internal/config"
	"github.com/psgpraveen/PolicyPilot/internal/services"
	"github.com/psgpraveen/PolicyPilot/internal/store/gormstore"
	"github.com/psgpraveen/PolicyPilot/pkg/logger"
	"github.com/psgpraveen/PolicyPilot/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	cfg.LogConfig(zapLogger)

	dataStore, err := gormstore.Open(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}

	tokens, err := auth.NewManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	if err != nil {
		zapLogger.Fatal("Failed to initialize token manager", zap.Error(err))
	}

	metricsCollector := metrics.NewMetricsCollector()

	authService := services.NewAuthService(dataStore, tokens, zapLogger, metricsCollector, cfg.Security.PasswordMinLength)
	clientService := services.NewClientService(dataStore, zapLogger, metricsCollector)
	categoryService := services.NewCategoryService(dataStore, zapLogger, metricsCollector)
	policyService := services.NewPolicyService(dataStore, zapLogger, metricsCollector)

	router := api.NewRouter(zapLogger, metricsCollector, tokens, authService, clientService, categoryService, policyService, cfg.CORS.AllowedOrigin)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()
	zapLogger.Info("Server started", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zapLogger.Error("Server shutdown failed", zap.Error(err))
	}

	if err := dataStore.Close(); err != nil {
		zapLogger.Error("Closing database failed", zap.Error(err))
	}
	zapLogger.Info("Server gracefully stopped")
}
