package forecast

import (
	"fmt"
	"math"
)

// Confidence levels reported by ForecastConfidence.
const (
	ConfidenceHigh    = "High"
	ConfidenceMedium  = "Medium"
	ConfidenceLow     = "Low"
	ConfidenceVeryLow = "Very Low"
)

// ComponentScores breaks the combined confidence score into its parts.
type ComponentScores struct {
	DataQuantity     float64 `json:"data_quantity"`
	DataQuality      float64 `json:"data_quality"`
	ModelPerformance float64 `json:"model_performance"`
}

// ConfidenceReport describes how much a forecast over the given series can
// be trusted, independent of any actual forecast run.
type ConfidenceReport struct {
	ConfidenceLevel        string          `json:"confidence_level"`
	ConfidenceScore        float64         `json:"confidence_score"`
	DataQuality            string          `json:"data_quality"`
	DataPoints             int             `json:"data_points"`
	CoefficientOfVariation float64         `json:"coefficient_of_variation"`
	ModelPerformance       float64         `json:"model_performance"`
	Issues                 []string        `json:"issues"`
	Recommendations        []string        `json:"recommendations"`
	ComponentScores        ComponentScores `json:"component_scores"`
}

// MethodPerformance summarizes one method's cascade track record.
type MethodPerformance struct {
	SuccessRate         float64 `json:"success_rate"`
	TotalAttempts       int     `json:"total_attempts"`
	SuccessfulForecasts int     `json:"successful_forecasts"`
}

// PerformanceReport is a snapshot of the engine's tracking state.
type PerformanceReport struct {
	TotalForecasts     int                          `json:"total_forecasts"`
	MethodsPerformance map[Method]MethodPerformance `json:"methods_performance"`
	RecentForecasts    []HistoryEntry               `json:"recent_forecasts"`
	OverallSuccessRate float64                      `json:"overall_success_rate"`
	LastForecast       *float64                     `json:"last_forecast"`
}

// ForecastConfidence re-validates the series and scores forecast confidence
// from data quantity, data quality, and the engine's historical method
// performance. Querying never mutates engine state, so repeated calls on the
// same series yield identical scores.
func (e *Engine) ForecastConfidence(records []Record) *ConfidenceReport {
	cleaned, quality := ValidateOrders(records)
	if !quality.IsValid {
		return &ConfidenceReport{
			ConfidenceLevel: ConfidenceVeryLow,
			ConfidenceScore: 0.1,
			DataQuality:     "Poor",
			DataPoints:      quality.DataPoints,
			Issues:          quality.Issues,
			Recommendations: []string{"Improve data quality", "Collect more data points"},
		}
	}

	n := len(cleaned)
	var quantityScore float64
	switch {
	case n >= 30:
		quantityScore = 1.0
	case n >= 14:
		quantityScore = 0.8
	case n >= 7:
		quantityScore = 0.6
	default:
		quantityScore = 0.3
	}

	cv := math.Inf(1)
	if m := mean(cleaned); m > 0 {
		cv = stdDev(cleaned) / m
	}
	var qualityScore float64
	switch {
	case cv < 0.2:
		qualityScore = 1.0
	case cv < 0.5:
		qualityScore = 0.8
	case cv < 1.0:
		qualityScore = 0.6
	default:
		qualityScore = 0.3
	}

	performanceScore := e.overallSuccessRate(0.7)

	overall := 0.3*quantityScore + 0.4*qualityScore + 0.3*performanceScore
	var level string
	switch {
	case overall >= 0.8:
		level = ConfidenceHigh
	case overall >= 0.6:
		level = ConfidenceMedium
	case overall >= 0.4:
		level = ConfidenceLow
	default:
		level = ConfidenceVeryLow
	}

	var recommendations []string
	if n < 30 {
		recommendations = append(recommendations, fmt.Sprintf("Collect more data points (current: %d, recommended: 30+)", n))
	}
	if cv > 0.5 {
		recommendations = append(recommendations, "High variability detected - investigate data patterns")
	}
	if performanceScore < 0.7 {
		recommendations = append(recommendations, "Consider alternative forecasting methods")
	}

	qualityLabel := "Poor"
	switch {
	case qualityScore >= 0.7:
		qualityLabel = "Good"
	case qualityScore >= 0.5:
		qualityLabel = "Fair"
	}

	return &ConfidenceReport{
		ConfidenceLevel:        level,
		ConfidenceScore:        round3(overall),
		DataQuality:            qualityLabel,
		DataPoints:             n,
		CoefficientOfVariation: round3(cv),
		ModelPerformance:       round3(performanceScore),
		Issues:                 quality.Issues,
		Recommendations:        recommendations,
		ComponentScores: ComponentScores{
			DataQuantity:     round3(quantityScore),
			DataQuality:      round3(qualityScore),
			ModelPerformance: round3(performanceScore),
		},
	}
}

// PerformanceReport snapshots attempts, successes, and recent history. It is
// a copy-on-read view and never fails.
func (e *Engine) PerformanceReport() *PerformanceReport {
	e.mu.RLock()
	defer e.mu.RUnlock()

	report := &PerformanceReport{
		TotalForecasts:     len(e.history),
		MethodsPerformance: make(map[Method]MethodPerformance),
		RecentForecasts:    []HistoryEntry{},
		LastForecast:       e.lastForecast,
	}

	var totalAttempts, totalSuccesses int
	for method, counter := range e.counters {
		totalAttempts += counter.Attempts
		totalSuccesses += counter.Successes
		if counter.Attempts > 0 {
			report.MethodsPerformance[method] = MethodPerformance{
				SuccessRate:         round3(float64(counter.Successes) / float64(counter.Attempts)),
				TotalAttempts:       counter.Attempts,
				SuccessfulForecasts: counter.Successes,
			}
		}
	}
	if totalAttempts > 0 {
		report.OverallSuccessRate = round3(float64(totalSuccesses) / float64(totalAttempts))
	}

	recent := e.history
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	report.RecentForecasts = append(report.RecentForecasts, recent...)

	return report
}

// overallSuccessRate computes successes/attempts across every method ever
// run, or the given default when nothing has been attempted yet.
func (e *Engine) overallSuccessRate(defaultScore float64) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var attempts, successes int
	for _, counter := range e.counters {
		attempts += counter.Attempts
		successes += counter.Successes
	}
	if attempts == 0 {
		return defaultScore
	}
	return float64(successes) / float64(attempts)
}
