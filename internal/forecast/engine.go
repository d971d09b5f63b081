package forecast

import (
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Config tunes an Engine. Zero values fall back to the defaults the engine
// has always shipped with.
type Config struct {
	// ARIMAOrder is the primary (p,d,q) order tried before the fixed
	// alternative sequence.
	ARIMAOrder ARIMAOrder `mapstructure:"arima_order"`
	// HistoryLimit bounds the rolling forecast history.
	HistoryLimit int `mapstructure:"history_limit"`
	// BaselineForecast is returned when no history exists at all.
	BaselineForecast float64 `mapstructure:"baseline_forecast"`
}

func (c *Config) applyDefaults() {
	if c.ARIMAOrder == (ARIMAOrder{}) {
		c.ARIMAOrder = DefaultARIMAOrder
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 100
	}
	if c.BaselineForecast <= 0 {
		c.BaselineForecast = 100.0
	}
}

// PerformanceCounter tracks cascade attempts and successes for one method.
type PerformanceCounter struct {
	Attempts  int `json:"total_attempts"`
	Successes int `json:"successful_forecasts"`
}

// HistoryEntry is one stored forecast result.
type HistoryEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	Value      float64   `json:"forecast"`
	Method     Method    `json:"method"`
	Confidence float64   `json:"confidence"`
}

// Result is the outcome of one cascade run.
type Result struct {
	Value      float64 `json:"value"`
	Method     Method  `json:"method"`
	Confidence float64 `json:"confidence"`
	Success    bool    `json:"success"`
}

// Engine is the hierarchical demand forecasting engine. It owns the
// per-method performance counters, the bounded forecast history, and the
// last known good forecast; a single lock guards all of that state, so one
// engine instance can sit behind a concurrent request server.
type Engine struct {
	cfg    Config
	logger *logrus.Logger

	mu           sync.RWMutex
	counters     map[Method]*PerformanceCounter
	history      []HistoryEntry
	lastForecast *float64
}

// NewEngine creates an engine with the given configuration.
func NewEngine(cfg Config, logger *logrus.Logger) *Engine {
	cfg.applyDefaults()
	if logger == nil {
		logger = logrus.New()
	}

	e := &Engine{
		cfg:      cfg,
		logger:   logger,
		counters: make(map[Method]*PerformanceCounter, len(Methods())),
	}
	for _, method := range Methods() {
		e.counters[method] = &PerformanceCounter{}
	}

	logger.WithField("arima_order", cfg.ARIMAOrder.String()).Info("demand forecast engine initialized")
	return e
}

// strategies returns the cascade in priority order. ARIMA is bound to the
// engine's configured primary order; everything else is fixed.
func (e *Engine) strategies() []struct {
	method Method
	fn     strategyFunc
} {
	return []struct {
		method Method
		fn     strategyFunc
	}{
		{MethodARIMA, arimaStrategy(e.cfg.ARIMAOrder)},
		{MethodExponentialSmoothing, exponentialSmoothing},
		{MethodSeasonalDecompose, seasonalDecompose},
		{MethodMovingAverage, movingAverage},
		{MethodTrendForecast, linearTrend},
	}
}

// Forecast produces a demand forecast from raw order history. It is a total
// function: invalid input and full cascade exhaustion both resolve through
// the fallback path, so the caller always receives a finite, non-negative
// value rounded to two decimals.
func (e *Engine) Forecast(records []Record, periods int, confidenceLevel float64) float64 {
	result, _ := e.ForecastDetailed(records, periods, confidenceLevel)
	return result.Value
}

// ForecastDetailed runs the same cascade as Forecast but also reports which
// method produced the value, its confidence, and the input quality report.
// Fallback results carry Success=false with an empty method.
func (e *Engine) ForecastDetailed(records []Record, periods int, confidenceLevel float64) (Result, *DataQualityReport) {
	start := time.Now()
	if periods < 1 {
		periods = 1
	}

	cleaned, quality := ValidateOrders(records)
	if !quality.IsValid {
		e.logger.WithField("issues", quality.Issues).Warn("order history failed validation, using fallback forecast")
		return Result{Value: e.fallback()}, quality
	}

	e.mu.Lock()
	result := e.runCascadeLocked(cleaned, periods, confidenceLevel)
	if !result.Success {
		e.mu.Unlock()
		e.logger.Warn("all forecasting methods failed, using fallback")
		return Result{Value: e.fallback()}, quality
	}

	result.Value = round2(math.Max(0, result.Value))
	e.recordLocked(result.Value, result.Method, result.Confidence)
	e.mu.Unlock()

	e.logger.WithFields(logrus.Fields{
		"forecast": result.Value,
		"method":   result.Method,
		"elapsed":  time.Since(start),
	}).Info("forecast completed")
	return result, quality
}

// ForecastValues is a convenience wrapper for callers holding a plain series.
func (e *Engine) ForecastValues(values []float64, periods int, confidenceLevel float64) float64 {
	return e.Forecast(RecordsFromValues(values), periods, confidenceLevel)
}

// runCascadeLocked tries each strategy in priority order and accepts the
// first finite forecast. Every attempt, successful or not, is counted.
// Callers must hold the write lock.
func (e *Engine) runCascadeLocked(series []float64, periods int, confidenceLevel float64) Result {
	for _, s := range e.strategies() {
		counter := e.counters[s.method]
		counter.Attempts++

		attempt, err := s.fn(series, periods, confidenceLevel)
		if err != nil {
			e.logger.WithFields(logrus.Fields{
				"method": s.method,
				"error":  err,
			}).Debug("forecast method failed")
			continue
		}
		if !isFinite(attempt.Forecast) {
			e.logger.WithField("method", s.method).Debug("forecast method returned non-finite value")
			continue
		}

		counter.Successes++
		e.logger.WithFields(logrus.Fields{
			"method":   s.method,
			"forecast": attempt.Forecast,
		}).Info("forecast method succeeded")
		return Result{
			Value:      attempt.Forecast,
			Method:     s.method,
			Confidence: attempt.Confidence,
			Success:    true,
		}
	}
	return Result{Success: false}
}

// recordLocked appends to the bounded history and updates the last known
// good forecast. Callers must hold the write lock.
func (e *Engine) recordLocked(value float64, method Method, confidence float64) {
	e.history = append(e.history, HistoryEntry{
		Timestamp:  time.Now(),
		Value:      value,
		Method:     method,
		Confidence: confidence,
	})
	if len(e.history) > e.cfg.HistoryLimit {
		e.history = append([]HistoryEntry(nil), e.history[len(e.history)-e.cfg.HistoryLimit:]...)
	}
	v := value
	e.lastForecast = &v
}

// fallback resolves a forecast when validation or the whole cascade failed:
// last good forecast, then the mean of the most recent history, then the
// configured baseline. It always returns a finite, non-negative number.
func (e *Engine) fallback() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.lastForecast != nil {
		e.logger.WithField("forecast", *e.lastForecast).Info("using last successful forecast")
		return *e.lastForecast
	}

	if len(e.history) > 0 {
		recent := e.history
		if len(recent) > 5 {
			recent = recent[len(recent)-5:]
		}
		var sum float64
		for _, entry := range recent {
			sum += entry.Value
		}
		avg := sum / float64(len(recent))
		e.logger.WithField("forecast", avg).Info("using average of recent forecasts")
		return avg
	}

	e.logger.WithField("forecast", e.cfg.BaselineForecast).Info("using baseline fallback forecast")
	return e.cfg.BaselineForecast
}

// ResetPerformance clears all method counters and the forecast history.
func (e *Engine) ResetPerformance() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, counter := range e.counters {
		counter.Attempts = 0
		counter.Successes = 0
	}
	e.history = nil
	e.logger.Info("performance tracking reset")
}
