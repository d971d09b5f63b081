package forecast

import (
	"fmt"
	"math"
)

// movingAverage is the cascade's fourth strategy: a dual-window moving
// average with a linear trend adjustment. The window widens with the amount
// of history available.
func movingAverage(series []float64, periods int, _ float64) (*Attempt, error) {
	n := len(series)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty series", errInsufficientData)
	}
	if periods < 1 {
		periods = 1
	}

	var windowSize int
	switch {
	case n >= 21:
		windowSize = 7
	case n >= 10:
		windowSize = 5
		if n/2 < windowSize {
			windowSize = n / 2
		}
	default:
		windowSize = 3
		if n < windowSize {
			windowSize = n
		}
	}

	maShort := mean(tail(series, windowSize))
	longWindow := windowSize * 2
	if longWindow > n {
		longWindow = n
	}
	maLong := mean(tail(series, longWindow))

	var trendAdjustment float64
	if n >= 5 {
		recentTrend := (mean(tail(series, 3)) - mean(series[:3])) / float64(n)
		trendAdjustment = recentTrend * float64(periods)
	}

	var value float64
	if n >= 10 {
		value = 0.7*maShort + 0.3*maLong + trendAdjustment
	} else {
		value = maShort + trendAdjustment
	}
	if !isFinite(value) {
		return nil, fmt.Errorf("%w: moving average", errNonFiniteForecast)
	}

	volatility := 1.0
	if m := mean(series); m > 0 {
		volatility = stdDev(series) / m
	}
	confidence := math.Max(0.3, 1-math.Min(volatility, 1))

	return &Attempt{
		Forecast:   value,
		Confidence: confidence,
		Diagnostics: map[string]any{
			"window_size":      windowSize,
			"trend_adjustment": trendAdjustment,
			"ma_short":         maShort,
			"ma_long":          maLong,
		},
	}, nil
}

func tail(series []float64, k int) []float64 {
	if k >= len(series) {
		return series
	}
	return series[len(series)-k:]
}
