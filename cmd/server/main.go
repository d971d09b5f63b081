package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Bruhadev45/AI-Multi-Agent-Supply-Chain-Optimizer/internal/api"
	"github.com/Bruhadev45/AI-Multi-Agent-Supply-Chain-Optimizer/internal/cache"
	"github.com/Bruhadev45/AI-Multi-Agent-Supply-Chain-Optimizer/internal/config"
	"github.com/Bruhadev45/AI-Multi-Agent-Supply-Chain-Optimizer/internal/database"
	"github.com/Bruhadev45/AI-Multi-Agent-Supply-Chain-Optimizer/internal/forecast"
	"github.com/Bruhadev45/AI-Multi-Agent-Supply-Chain-Optimizer/internal/logging"
	"github.com/Bruhadev45/AI-Multi-Agent-Supply-Chain-Optimizer/internal/services"
	"github.com/Bruhadev45/AI-Multi-Agent-Supply-Chain-Optimizer/internal/telemetry"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.Environment)

	// Initialize tracing
	ctx := context.Background()
	tracing, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		logger.WithError(err).Warn("Failed to initialize telemetry, continuing without tracing")
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Warn("Failed to shut down telemetry")
			}
		}()
	}

	// Initialize Redis. The confidence cache degrades to a no-op when Redis
	// is disabled or unreachable.
	var redisClient *database.RedisClient
	if cfg.Redis.Enabled {
		redisClient, err = database.NewRedisConnection(cfg.Redis, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to connect to Redis, confidence caching disabled")
			redisClient = nil
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.WithError(err).Warn("Failed to close Redis connection")
				}
			}()
		}
	}

	// Initialize forecast engine
	engine := forecast.NewEngine(forecast.Config{
		ARIMAOrder: forecast.ARIMAOrder{
			P: cfg.Forecast.ARIMAP,
			D: cfg.Forecast.ARIMAD,
			Q: cfg.Forecast.ARIMAQ,
		},
		HistoryLimit:     cfg.Forecast.HistoryLimit,
		BaselineForecast: cfg.Forecast.BaselineForecast,
	}, logger)

	// Initialize cost analyzer
	analyzer := services.NewCostAnalyzer(cfg.Costs.VendorFile, logger)

	cacheClient := cache.NewConfidenceCache(nil, 0, logger)
	if redisClient != nil {
		cacheClient = cache.NewConfidenceCache(redisClient.Client,
			time.Duration(cfg.Forecast.CacheTTLSeconds)*time.Second, logger)
	}

	// Setup Gin router
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	api.SetupRoutes(router, api.Dependencies{
		Engine:          engine,
		CostAnalyzer:    analyzer,
		ConfidenceCache: cacheClient,
		Redis:           redisClient,
		Logger:          logger,
		ServiceName:     cfg.Telemetry.ServiceName,
		Version:         version,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
