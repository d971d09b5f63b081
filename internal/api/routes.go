package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Bruhadev45/AI-Multi-Agent-Supply-Chain-Optimizer/internal/api/handlers"
	"github.com/Bruhadev45/AI-Multi-Agent-Supply-Chain-Optimizer/internal/cache"
	"github.com/Bruhadev45/AI-Multi-Agent-Supply-Chain-Optimizer/internal/database"
	"github.com/Bruhadev45/AI-Multi-Agent-Supply-Chain-Optimizer/internal/forecast"
	"github.com/Bruhadev45/AI-Multi-Agent-Supply-Chain-Optimizer/internal/middleware"
	"github.com/Bruhadev45/AI-Multi-Agent-Supply-Chain-Optimizer/internal/services"
)

// Dependencies carries everything the route handlers need.
type Dependencies struct {
	Engine          *forecast.Engine
	CostAnalyzer    *services.CostAnalyzer
	ConfidenceCache *cache.ConfidenceCache
	Redis           *database.RedisClient
	Logger          *logrus.Logger
	ServiceName     string
	Version         string
}

// SetupRoutes wires all endpoints onto the router.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	router.Use(middleware.RequestID())
	router.Use(otelgin.Middleware(deps.ServiceName))

	healthHandler := handlers.NewHealthHandler(deps.Redis, deps.Version)
	router.GET("/health", healthHandler.Health)
	router.GET("/live", healthHandler.Live)
	router.GET("/ready", healthHandler.Ready)

	forecastHandler := handlers.NewForecastHandler(deps.Engine, deps.ConfidenceCache, deps.Logger)
	costsHandler := handlers.NewCostsHandler(deps.CostAnalyzer, deps.Logger)

	v1 := router.Group("/api/v1")
	{
		fc := v1.Group("/forecast")
		{
			fc.POST("/demand", forecastHandler.ForecastDemand)
			fc.POST("/confidence", forecastHandler.ForecastConfidence)
			fc.GET("/performance", forecastHandler.GetPerformance)
			fc.POST("/performance/reset", forecastHandler.ResetPerformance)
		}

		costs := v1.Group("/costs")
		{
			costs.POST("/compare", costsHandler.CompareVendors)
			costs.GET("/sustainability", costsHandler.GetSustainability)
		}
	}
}
