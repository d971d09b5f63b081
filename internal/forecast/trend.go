package forecast

import (
	"fmt"
	"math"
)

// linearTrend is the cascade's last resort. It always produces a value: the
// series mean for very short inputs, otherwise a straight-line projection
// with the in-sample R² as its confidence.
func linearTrend(series []float64, periods int, _ float64) (*Attempt, error) {
	n := len(series)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty series", errInsufficientData)
	}
	if periods < 1 {
		periods = 1
	}

	if n < 3 {
		return &Attempt{
			Forecast:   mean(series),
			Confidence: 0.3,
			Diagnostics: map[string]any{
				"trend_slope": 0.0,
				"r_squared":   0.0,
			},
		}, nil
	}

	slope, intercept := fitLine(series)
	value := slope*float64(n+periods-1) + intercept
	if !isFinite(value) {
		return nil, fmt.Errorf("%w: linear trend", errNonFiniteForecast)
	}

	r2 := rSquared(series, slope, intercept)
	confidence := math.Max(0.2, math.Min(0.8, r2))

	return &Attempt{
		Forecast:   value,
		Confidence: confidence,
		Diagnostics: map[string]any{
			"trend_slope": slope,
			"r_squared":   r2,
		},
	}, nil
}
