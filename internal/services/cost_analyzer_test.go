package services

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(t *testing.T) *CostAnalyzer {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewCostAnalyzer("", logger)
}

func TestNewCostAnalyzerSampleFleet(t *testing.T) {
	ca := newTestAnalyzer(t)
	assert.Len(t, ca.Vendors(), 8)
}

func TestNewCostAnalyzerMissingFileFallsBack(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	ca := NewCostAnalyzer("/nonexistent/vendors.csv", logger)
	assert.Len(t, ca.Vendors(), 8)
}

func TestNewCostAnalyzerLoadsCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vendors.csv")
	csv := "vendor,cost_per_km,emission_per_km,reliability_score,max_capacity_kg\n" +
		"Acme Freight,2.0,0.5,8.0,2000\n" +
		"Borealis,3.0,0.2,9.0,3000\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	ca := NewCostAnalyzer(path, logger)

	vendors := ca.Vendors()
	require.Len(t, vendors, 2)
	assert.Equal(t, "Acme Freight", vendors[0].Name)
	assert.True(t, vendors[0].CostPerKm.Equal(decimal.NewFromFloat(2.0)))
	// Optional columns get defaults.
	assert.Equal(t, "Standard", vendors[0].DeliverySpeed)
	assert.True(t, vendors[0].ServiceQuality.Equal(decimal.NewFromFloat(8.0)))
}

func TestCompareVendorsCostPriority(t *testing.T) {
	ca := newTestAnalyzer(t)
	result := ca.CompareVendors(1000, 1000, "cost")

	require.NotEmpty(t, result.Vendors)
	assert.Equal(t, result.Vendors[0].Vendor.Name, result.BestVendor)
	assert.True(t, result.BestPrice.Equal(result.Vendors[0].TotalCost))

	// Ranks are assigned in descending composite score order.
	for i, a := range result.Vendors {
		assert.Equal(t, i+1, a.Rank)
		if i > 0 {
			assert.True(t, result.Vendors[i-1].CompositeScore.GreaterThanOrEqual(a.CompositeScore))
		}
	}
}

func TestCompareVendorsEcoPriorityPrefersCleanVendors(t *testing.T) {
	ca := newTestAnalyzer(t)
	result := ca.CompareVendors(1000, 1000, "eco")

	// RailLink Express has the lowest emission per km and high reliability.
	assert.Equal(t, "RailLink Express", result.BestVendor)
}

func TestCompareVendorsWeightFiltering(t *testing.T) {
	ca := newTestAnalyzer(t)
	result := ca.CompareVendors(500, 9000, "balanced")

	// Only RailLink Express (10000 kg) can carry 9000 kg.
	require.Len(t, result.Vendors, 1)
	assert.Equal(t, "RailLink Express", result.BestVendor)
	assert.False(t, result.Vendors[0].OverweightSurcharge)
}

func TestCompareVendorsOverweightSurcharge(t *testing.T) {
	ca := newTestAnalyzer(t)
	result := ca.CompareVendors(1000, 50000, "cost")

	// No vendor fits 50t, so all are kept with a 25% surcharge.
	require.Len(t, result.Vendors, 8)
	for _, a := range result.Vendors {
		assert.True(t, a.OverweightSurcharge)
		assert.False(t, a.WeightFeasible)
		expected := a.Vendor.CostPerKm.Mul(decimal.NewFromInt(1000)).Mul(decimal.NewFromFloat(1.25))
		assert.True(t, a.TotalCost.Equal(expected), "vendor %s cost %s", a.Vendor.Name, a.TotalCost)
	}
}

func TestCompareVendorsInvalidInputsUseDefaults(t *testing.T) {
	ca := newTestAnalyzer(t)
	result := ca.CompareVendors(-5, 0, "unknown-priority")

	require.NotEmpty(t, result.Vendors)
	// Default distance is 1000 km.
	expected := result.Vendors[0].Vendor.CostPerKm.Mul(decimal.NewFromInt(1000))
	assert.True(t, result.Vendors[0].TotalCost.Equal(expected))
}

func TestScoreEfficienciesRange(t *testing.T) {
	ca := newTestAnalyzer(t)
	result := ca.CompareVendors(1000, 1000, "balanced")

	ten := decimal.NewFromInt(10)
	sawMaxCost, sawMaxEco := false, false
	for _, a := range result.Vendors {
		assert.True(t, a.CostEfficiency.GreaterThanOrEqual(decimal.Zero))
		assert.True(t, a.CostEfficiency.LessThanOrEqual(ten))
		assert.True(t, a.EcoEfficiency.GreaterThanOrEqual(decimal.Zero))
		assert.True(t, a.EcoEfficiency.LessThanOrEqual(ten))
		sawMaxCost = sawMaxCost || a.CostEfficiency.Equal(ten)
		sawMaxEco = sawMaxEco || a.EcoEfficiency.Equal(ten)
	}
	// The cheapest and cleanest vendors anchor the top of each scale.
	assert.True(t, sawMaxCost)
	assert.True(t, sawMaxEco)
}

func TestSustainabilityReport(t *testing.T) {
	ca := newTestAnalyzer(t)
	report := ca.GetSustainabilityReport(1000)

	assert.Equal(t, float64(1000), report.RouteDistanceKm)
	assert.Equal(t, "RailLink Express", report.BestEcoVendor)
	assert.Equal(t, "SpeedyDelivery", report.WorstEcoVendor)

	// Per-km thresholds: <0.4 low, <0.7 medium, rest high.
	assert.Equal(t, 3, report.LowCarbonOptions)
	assert.Equal(t, 2, report.MediumCarbonOptions)
	assert.Equal(t, 3, report.HighCarbonOptions)

	// Savings = worst emission - best emission = (0.9 - 0.15) * 1000.
	assert.True(t, report.CarbonSavingsPotential.Equal(decimal.NewFromInt(750)))
	assert.NotEmpty(t, report.EcoRecommendations)
}

func TestSustainabilityReportInvalidDistance(t *testing.T) {
	ca := newTestAnalyzer(t)
	report := ca.GetSustainabilityReport(0)
	assert.Equal(t, float64(1000), report.RouteDistanceKm)
}
