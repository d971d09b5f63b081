package forecast

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewEngine(Config{}, logger)
}

func TestNewEngineDefaults(t *testing.T) {
	engine := newTestEngine()

	assert.Equal(t, DefaultARIMAOrder, engine.cfg.ARIMAOrder)
	assert.Equal(t, 100, engine.cfg.HistoryLimit)
	assert.Equal(t, 100.0, engine.cfg.BaselineForecast)
	assert.Len(t, engine.counters, 5)
}

func TestForecastEmptySeriesReturnsBaseline(t *testing.T) {
	engine := newTestEngine()

	value := engine.Forecast(nil, 1, 0.95)

	assert.Equal(t, 100.0, value)
}

func TestForecastEmptySeriesUsesLastForecastAfterSuccess(t *testing.T) {
	engine := newTestEngine()

	first := engine.ForecastValues(constantSeries(30, 250), 1, 0.95)
	fallback := engine.Forecast(nil, 1, 0.95)

	assert.Equal(t, first, fallback)
	assert.NotEqual(t, 100.0, fallback)
}

func TestForecastInvalidInputSkipsCascade(t *testing.T) {
	engine := newTestEngine()

	value := engine.ForecastValues([]float64{10, 20, 30}, 1, 0.95)

	assert.Equal(t, 100.0, value)
	report := engine.PerformanceReport()
	assert.Empty(t, report.MethodsPerformance)
	assert.Equal(t, 0, report.TotalForecasts)
}

func TestForecastConstantSeries(t *testing.T) {
	engine := newTestEngine()

	value := engine.ForecastValues(constantSeries(30, 100), 1, 0.95)

	assert.InDelta(t, 100.0, value, 1.0)
}

func TestForecastIsTotalAndNonNegative(t *testing.T) {
	inputs := [][]float64{
		nil,
		{},
		{5},
		{0, 0, 0, 0, 0, 0},
		{10, 20, 15, -5, 0, 30, 25, 18, 22, 19, 21},
		constantSeries(50, 1),
		trendingSeries(60),
	}

	for _, values := range inputs {
		engine := newTestEngine()
		value := engine.ForecastValues(values, 1, 0.95)
		assert.True(t, isFinite(value), "input %v produced non-finite forecast", values)
		assert.GreaterOrEqual(t, value, 0.0, "input %v produced negative forecast", values)
	}
}

func TestForecastDirtySeriesFromRecords(t *testing.T) {
	engine := newTestEngine()
	values := []float64{10, 20, 15, -5, 0, 30, 25, 18, 22, 19, 21}

	value := engine.Forecast(RecordsFromValues(values), 1, 0.95)

	assert.True(t, isFinite(value))
	assert.GreaterOrEqual(t, value, 0.0)
	report := engine.PerformanceReport()
	assert.Equal(t, 1, report.TotalForecasts)
}

func TestCascadeOrderIsRespected(t *testing.T) {
	engine := newTestEngine()

	// Constant series: ARIMA degenerates on every order, exponential
	// smoothing succeeds, nothing below it is attempted.
	engine.ForecastValues(constantSeries(30, 100), 1, 0.95)

	report := engine.PerformanceReport()
	arima := report.MethodsPerformance[MethodARIMA]
	assert.Equal(t, 1, arima.TotalAttempts)
	assert.Equal(t, 0, arima.SuccessfulForecasts)

	smoothing := report.MethodsPerformance[MethodExponentialSmoothing]
	assert.Equal(t, 1, smoothing.TotalAttempts)
	assert.Equal(t, 1, smoothing.SuccessfulForecasts)

	_, attempted := report.MethodsPerformance[MethodSeasonalDecompose]
	assert.False(t, attempted)
}

func TestHistoryBound(t *testing.T) {
	engine := newTestEngine()
	series := trendingSeries(12)

	var last float64
	for i := 0; i < 150; i++ {
		last = engine.ForecastValues(series, 1, 0.95)
	}

	engine.mu.RLock()
	defer engine.mu.RUnlock()
	require.Len(t, engine.history, 100)
	assert.Equal(t, last, engine.history[99].Value)
	for i := 1; i < len(engine.history); i++ {
		assert.False(t, engine.history[i].Timestamp.Before(engine.history[i-1].Timestamp))
	}
}

func TestForecastRoundsToTwoDecimals(t *testing.T) {
	engine := newTestEngine()

	value := engine.ForecastValues(trendingSeries(40), 1, 0.95)

	assert.InDelta(t, value, round2(value), 1e-12)
}

func TestResetPerformance(t *testing.T) {
	engine := newTestEngine()
	engine.ForecastValues(trendingSeries(30), 1, 0.95)
	require.NotZero(t, engine.PerformanceReport().TotalForecasts)

	engine.ResetPerformance()

	report := engine.PerformanceReport()
	assert.Equal(t, 0, report.TotalForecasts)
	assert.Empty(t, report.MethodsPerformance)
	assert.Empty(t, report.RecentForecasts)
	assert.Zero(t, report.OverallSuccessRate)
}

func TestFallbackUsesRecentHistoryAverage(t *testing.T) {
	engine := newTestEngine()
	engine.history = []HistoryEntry{
		{Value: 10}, {Value: 20}, {Value: 30}, {Value: 40}, {Value: 50}, {Value: 60},
	}

	value := engine.fallback()

	// Mean of the last five entries.
	assert.InDelta(t, 40.0, value, 1e-9)
}

func TestConcurrentForecastAndReports(t *testing.T) {
	engine := newTestEngine()
	series := trendingSeries(15)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			engine.ForecastValues(series, 1, 0.95)
		}
		close(done)
	}()
	for i := 0; i < 20; i++ {
		engine.PerformanceReport()
		engine.ForecastConfidence(RecordsFromValues(series))
	}
	<-done

	report := engine.PerformanceReport()
	assert.Equal(t, 20, report.TotalForecasts)
}
