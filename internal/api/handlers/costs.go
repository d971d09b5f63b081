package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Bruhadev45/AI-Multi-Agent-Supply-Chain-Optimizer/internal/services"
)

type CostsHandler struct {
	analyzer *services.CostAnalyzer
	logger   *logrus.Logger
}

type CompareVendorsRequest struct {
	DistanceKm float64 `json:"distance_km" binding:"required"`
	WeightKg   float64 `json:"weight_kg"`
	Priority   string  `json:"priority"`
}

func NewCostsHandler(analyzer *services.CostAnalyzer, logger *logrus.Logger) *CostsHandler {
	return &CostsHandler{analyzer: analyzer, logger: logger}
}

// CompareVendors ranks the vendor fleet for the requested shipment.
func (h *CostsHandler) CompareVendors(c *gin.Context) {
	var req CompareVendorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if req.Priority == "" {
		req.Priority = "balanced"
	}

	c.JSON(http.StatusOK, h.analyzer.CompareVendors(req.DistanceKm, req.WeightKg, req.Priority))
}

// GetSustainability reports the fleet's emission profile for a route. The
// distance comes from the distance_km query parameter.
func (h *CostsHandler) GetSustainability(c *gin.Context) {
	distance, err := strconv.ParseFloat(c.DefaultQuery("distance_km", "1000"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "distance_km must be a number"})
		return
	}

	c.JSON(http.StatusOK, h.analyzer.GetSustainabilityReport(distance))
}
