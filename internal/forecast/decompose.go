package forecast

import (
	"fmt"
	"math"
)

const decomposeMinPoints = 14

// seasonalDecompose is the cascade's third strategy. It splits the series
// into trend, seasonal, and residual components, extrapolates the trend with
// a fitted line, and re-applies the seasonal offset for the target period.
func seasonalDecompose(series []float64, periods int, _ float64) (*Attempt, error) {
	n := len(series)
	if n < decomposeMinPoints {
		return nil, fmt.Errorf("%w: need %d points for seasonal decomposition, have %d", errInsufficientData, decomposeMinPoints, n)
	}
	seriesMean := mean(series)
	if seriesMean <= 0 {
		return nil, fmt.Errorf("%w: non-positive series mean", errDegenerateSeries)
	}
	if periods < 1 {
		periods = 1
	}

	period := 7
	if n/2 < period {
		period = n / 2
	}

	trend := centeredTrend(series, period)
	seasonal := seasonalPattern(series, trend, period)

	// Forecast the trend with a straight line through the component values.
	var futureTrend, slope float64
	switch {
	case len(trend) >= 3:
		var intercept float64
		slope, intercept = fitLine(trend)
		futureTrend = slope*float64(len(trend)+periods-1) + intercept
	case len(trend) > 0:
		futureTrend = trend[len(trend)-1]
	default:
		futureTrend = seriesMean
	}

	seasonalComponent := seasonal[(n+periods-1)%period]
	value := futureTrend + seasonalComponent
	if !isFinite(value) {
		return nil, fmt.Errorf("%w: seasonal decomposition", errNonFiniteForecast)
	}

	residuals := make([]float64, n)
	for i := 0; i < n; i++ {
		residuals[i] = series[i] - trend[i] - seasonal[i%period]
	}
	confidence := math.Max(0.4, 1-stdDev(residuals)/seriesMean)

	return &Attempt{
		Forecast:   value,
		Confidence: confidence,
		Diagnostics: map[string]any{
			"seasonal_period": period,
			"trend_slope":     slope,
		},
	}, nil
}

// centeredTrend extracts the trend component with a centered moving average
// over one seasonal period, then fills the edges by linearly extrapolating
// from the nearest period of valid trend values.
func centeredTrend(series []float64, period int) []float64 {
	n := len(series)
	trend := make([]float64, n)

	window := period
	if window%2 == 0 {
		window++
	}
	half := window / 2

	lo, hi := half, n-1-half
	for i := lo; i <= hi; i++ {
		var sum float64
		for j := i - half; j <= i+half; j++ {
			sum += series[j]
		}
		trend[i] = sum / float64(window)
	}
	if lo > hi {
		// Degenerate window: fall back to the raw series as trend.
		copy(trend, series)
		return trend
	}

	// Head extrapolation from the first valid stretch.
	headLen := period
	if hi-lo+1 < headLen {
		headLen = hi - lo + 1
	}
	slope, intercept := fitLine(trend[lo : lo+headLen])
	for i := 0; i < lo; i++ {
		trend[i] = slope*float64(i-lo) + intercept
	}

	// Tail extrapolation from the last valid stretch.
	slope, intercept = fitLine(trend[hi+1-headLen : hi+1])
	for i := hi + 1; i < n; i++ {
		trend[i] = slope*float64(i-(hi+1-headLen)) + intercept
	}
	return trend
}

// seasonalPattern averages the detrended series by seasonal position and
// centers the pattern so it sums to zero over one period.
func seasonalPattern(series, trend []float64, period int) []float64 {
	sums := make([]float64, period)
	counts := make([]int, period)
	for i := range series {
		pos := i % period
		sums[pos] += series[i] - trend[i]
		counts[pos]++
	}

	pattern := make([]float64, period)
	for pos := range pattern {
		if counts[pos] > 0 {
			pattern[pos] = sums[pos] / float64(counts[pos])
		}
	}
	centerSeasonals(pattern)
	return pattern
}
