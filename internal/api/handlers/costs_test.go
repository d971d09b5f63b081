package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bruhadev45/AI-Multi-Agent-Supply-Chain-Optimizer/internal/services"
)

func newCostsRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	handler := NewCostsHandler(services.NewCostAnalyzer("", logger), logger)

	router := gin.New()
	router.POST("/costs/compare", handler.CompareVendors)
	router.GET("/costs/sustainability", handler.GetSustainability)
	return router
}

func TestCompareVendorsEndpoint(t *testing.T) {
	router := newCostsRouter(t)

	w := postJSON(t, router, "/costs/compare", gin.H{
		"distance_km": 1000,
		"weight_kg":   1000,
		"priority":    "eco",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var result services.VendorComparison
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "RailLink Express", result.BestVendor)
	assert.NotEmpty(t, result.Vendors)
}

func TestCompareVendorsMissingDistance(t *testing.T) {
	router := newCostsRouter(t)

	w := postJSON(t, router, "/costs/compare", gin.H{"weight_kg": 500})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompareVendorsBadBody(t *testing.T) {
	router := newCostsRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/costs/compare", bytes.NewReader([]byte("nope")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSustainabilityEndpoint(t *testing.T) {
	router := newCostsRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/costs/sustainability?distance_km=500", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var report services.SustainabilityReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, float64(500), report.RouteDistanceKm)
	assert.Equal(t, "RailLink Express", report.BestEcoVendor)
}

func TestSustainabilityBadDistance(t *testing.T) {
	router := newCostsRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/costs/sustainability?distance_km=abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
