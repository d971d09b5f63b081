package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Bruhadev45/AI-Multi-Agent-Supply-Chain-Optimizer/internal/cache"
	"github.com/Bruhadev45/AI-Multi-Agent-Supply-Chain-Optimizer/internal/forecast"
)

type ForecastHandler struct {
	engine          *forecast.Engine
	confidenceCache *cache.ConfidenceCache
	logger          *logrus.Logger
}

type DemandForecastRequest struct {
	OrderHistory    []forecast.Record `json:"order_history"`
	Values          []float64         `json:"values"`
	Periods         int               `json:"periods"`
	ConfidenceLevel float64           `json:"confidence_level"`
}

type DemandForecastResponse struct {
	Forecast    float64                     `json:"forecast"`
	Method      forecast.Method             `json:"method,omitempty"`
	Confidence  float64                     `json:"confidence"`
	Fallback    bool                        `json:"fallback"`
	DataQuality *forecast.DataQualityReport `json:"data_quality,omitempty"`
	Timestamp   time.Time                   `json:"timestamp"`
}

type ConfidenceRequest struct {
	OrderHistory []forecast.Record `json:"order_history"`
	Values       []float64         `json:"values"`
}

type ConfidenceResponse struct {
	Report *forecast.ConfidenceReport `json:"report"`
	Cached bool                       `json:"cached"`
}

func NewForecastHandler(engine *forecast.Engine, confidenceCache *cache.ConfidenceCache, logger *logrus.Logger) *ForecastHandler {
	return &ForecastHandler{
		engine:          engine,
		confidenceCache: confidenceCache,
		logger:          logger,
	}
}

// requestRecords resolves the order history from either request shape. Explicit
// records win over the plain values convenience field.
func requestRecords(orderHistory []forecast.Record, values []float64) []forecast.Record {
	if len(orderHistory) > 0 {
		return orderHistory
	}
	return forecast.RecordsFromValues(values)
}

// ForecastDemand runs the method cascade over the submitted order history.
func (h *ForecastHandler) ForecastDemand(c *gin.Context) {
	var req DemandForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if req.Periods < 1 {
		req.Periods = 1
	}
	if req.ConfidenceLevel <= 0 || req.ConfidenceLevel >= 1 {
		req.ConfidenceLevel = 0.95
	}

	result, quality := h.engine.ForecastDetailed(requestRecords(req.OrderHistory, req.Values), req.Periods, req.ConfidenceLevel)

	c.JSON(http.StatusOK, DemandForecastResponse{
		Forecast:    result.Value,
		Method:      result.Method,
		Confidence:  result.Confidence,
		Fallback:    !result.Success,
		DataQuality: quality,
		Timestamp:   time.Now().UTC(),
	})
}

// ForecastConfidence scores how trustworthy a forecast over the submitted
// series would be. Reports are served from the cache when available.
func (h *ForecastHandler) ForecastConfidence(c *gin.Context) {
	var req ConfidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	records := requestRecords(req.OrderHistory, req.Values)
	key := cache.Key(records)
	if report := h.confidenceCache.Get(c.Request.Context(), key); report != nil {
		c.JSON(http.StatusOK, ConfidenceResponse{Report: report, Cached: true})
		return
	}

	report := h.engine.ForecastConfidence(records)
	h.confidenceCache.Set(c.Request.Context(), key, report)

	c.JSON(http.StatusOK, ConfidenceResponse{Report: report, Cached: false})
}

// GetPerformance returns the engine's method performance snapshot.
func (h *ForecastHandler) GetPerformance(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.PerformanceReport())
}

// ResetPerformance clears the performance counters and forecast history.
func (h *ForecastHandler) ResetPerformance(c *gin.Context) {
	h.engine.ResetPerformance()
	h.logger.Info("forecast performance tracking reset")
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
