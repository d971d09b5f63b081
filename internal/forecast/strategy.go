package forecast

import "errors"

// Method identifies one of the forecasting strategies in the cascade.
type Method string

const (
	MethodARIMA                Method = "arima"
	MethodExponentialSmoothing Method = "exponential_smoothing"
	MethodSeasonalDecompose    Method = "seasonal_decompose"
	MethodMovingAverage        Method = "moving_average"
	MethodTrendForecast        Method = "trend_forecast"
)

// Methods returns all cascade methods in their fixed priority order,
// most sophisticated first.
func Methods() []Method {
	return []Method{
		MethodARIMA,
		MethodExponentialSmoothing,
		MethodSeasonalDecompose,
		MethodMovingAverage,
		MethodTrendForecast,
	}
}

// Attempt is the output of a single strategy invocation. It is transient:
// the cascade discards it unless it becomes the accepted result.
type Attempt struct {
	Forecast    float64
	Confidence  float64
	Diagnostics map[string]any
}

// strategyFunc is the contract every strategy satisfies: given a cleaned
// series it either produces an attempt with a finite forecast or reports
// why it cannot. Strategies are stateless and never panic.
type strategyFunc func(series []float64, periods int, confidenceLevel float64) (*Attempt, error)

var (
	// errInsufficientData signals that the series is too short for a strategy.
	errInsufficientData = errors.New("insufficient data")
	// errDegenerateSeries signals a series without usable variation.
	errDegenerateSeries = errors.New("degenerate series")
	// errNonFiniteForecast signals that a model produced NaN or Inf.
	errNonFiniteForecast = errors.New("non-finite forecast")
)
