package forecast

import (
	"fmt"
	"math"
)

// ARIMAOrder holds the (p,d,q) parameters of an ARIMA model.
type ARIMAOrder struct {
	P int `json:"p" mapstructure:"p"`
	D int `json:"d" mapstructure:"d"`
	Q int `json:"q" mapstructure:"q"`
}

func (o ARIMAOrder) String() string {
	return fmt.Sprintf("(%d,%d,%d)", o.P, o.D, o.Q)
}

// DefaultARIMAOrder is the primary order tried before the alternatives.
var DefaultARIMAOrder = ARIMAOrder{P: 2, D: 1, Q: 2}

// alternativeOrders are retried in this exact sequence when the primary
// order fails to fit or forecast.
var alternativeOrders = []ARIMAOrder{
	{P: 1, D: 1, Q: 1},
	{P: 1, D: 0, Q: 1},
	{P: 2, D: 0, Q: 1},
	{P: 1, D: 1, Q: 0},
}

const arimaMinPoints = 10

// arimaStrategy builds the cascade's ARIMA step. The primary order comes
// from engine configuration; the alternative sequence is fixed.
func arimaStrategy(primary ARIMAOrder) strategyFunc {
	return func(series []float64, periods int, _ float64) (*Attempt, error) {
		if len(series) < arimaMinPoints {
			return nil, fmt.Errorf("%w: need %d points for ARIMA, have %d", errInsufficientData, arimaMinPoints, len(series))
		}

		orders := append([]ARIMAOrder{primary}, alternativeOrders...)
		var lastErr error
		for _, order := range orders {
			model, err := fitARIMA(series, order)
			if err != nil {
				lastErr = err
				continue
			}
			value, err := model.forecast(periods)
			if err != nil {
				lastErr = err
				continue
			}
			return &Attempt{
				Forecast:   value,
				Confidence: arimaConfidence(model, series),
				Diagnostics: map[string]any{
					"aic":   model.aic,
					"order": order,
				},
			}, nil
		}
		return nil, fmt.Errorf("all ARIMA orders failed: %w", lastErr)
	}
}

// arimaModel is a fitted ARIMA model over the differenced, centered series.
type arimaModel struct {
	order     ARIMAOrder
	mu        float64   // mean of the differenced series
	ar        []float64 // AR coefficients, lag 1..p
	ma        []float64 // MA coefficients, lag 1..q
	centered  []float64 // differenced series minus mu
	residuals []float64 // one-step in-sample residuals
	aic       float64
	levels    []float64 // last value of each differencing stage, for integration
}

// fitARIMA differences the series d times, estimates AR coefficients via
// Yule-Walker and MA coefficients from the autocorrelation of the AR
// residuals, then scores the fit with AIC.
func fitARIMA(series []float64, order ARIMAOrder) (*arimaModel, error) {
	stages := make([][]float64, order.D+1)
	stages[0] = series
	for k := 1; k <= order.D; k++ {
		stages[k] = difference(stages[k-1])
	}
	w := stages[order.D]

	m := len(w)
	if m < order.P+order.Q+3 {
		return nil, fmt.Errorf("%w: %d differenced points for order %s", errInsufficientData, m, order)
	}

	mu := mean(w)
	centered := make([]float64, m)
	var variance float64
	for i, v := range w {
		centered[i] = v - mu
		variance += centered[i] * centered[i]
	}
	variance /= float64(m)
	if variance == 0 {
		return nil, fmt.Errorf("%w: differenced series is constant", errDegenerateSeries)
	}

	ar, err := yuleWalker(centered, variance, order.P)
	if err != nil {
		return nil, err
	}

	// AR-only residuals seed the MA estimation.
	arResiduals := oneStepResiduals(centered, ar, nil)
	ma := estimateMA(arResiduals, order.Q)

	residuals := oneStepResiduals(centered, ar, ma)

	warmup := order.P
	if warmup >= m {
		warmup = m - 1
	}
	var sse float64
	for _, r := range residuals[warmup:] {
		sse += r * r
	}
	effective := float64(len(residuals) - warmup)
	sigma2 := sse / effective
	if !isFinite(sigma2) {
		return nil, fmt.Errorf("%w: residual variance is not finite", errNonFiniteForecast)
	}
	if sigma2 <= 0 {
		return nil, fmt.Errorf("%w: model fits the series exactly", errDegenerateSeries)
	}

	model := &arimaModel{
		order:     order,
		mu:        mu,
		ar:        ar,
		ma:        ma,
		centered:  centered,
		residuals: residuals,
		aic:       float64(m)*math.Log(sigma2) + 2*float64(order.P+order.Q+1),
		levels:    make([]float64, order.D),
	}
	for k := 0; k < order.D; k++ {
		model.levels[k] = stages[k][len(stages[k])-1]
	}
	return model, nil
}

// forecast iterates periods steps ahead in the differenced domain (future
// shocks at zero), integrating each step back to the level of the original
// series. The returned value is the last step of the horizon.
func (am *arimaModel) forecast(periods int) (float64, error) {
	if periods < 1 {
		periods = 1
	}

	extended := append([]float64(nil), am.centered...)
	resid := append([]float64(nil), am.residuals...)
	levels := append([]float64(nil), am.levels...)

	var value float64
	for h := 0; h < periods; h++ {
		pred := 0.0
		for i, coef := range am.ar {
			idx := len(extended) - 1 - i
			if idx >= 0 {
				pred += coef * extended[idx]
			}
		}
		for j, coef := range am.ma {
			idx := len(resid) - 1 - j
			if idx >= 0 {
				pred += coef * resid[idx]
			}
		}
		extended = append(extended, pred)
		resid = append(resid, 0)

		// Undo differencing, innermost stage first.
		x := pred + am.mu
		for k := am.order.D - 1; k >= 0; k-- {
			x += levels[k]
			levels[k] = x
		}
		value = x
	}

	if !isFinite(value) {
		return 0, fmt.Errorf("%w: ARIMA%s", errNonFiniteForecast, am.order)
	}
	return value, nil
}

// arimaConfidence combines a normalized AIC term with a residual-dispersion
// term, clamped to [0.1, 0.95].
func arimaConfidence(model *arimaModel, series []float64) float64 {
	aicScore := math.Max(0, 1-model.aic/(float64(len(series))*10))

	residStd := stdDev(model.residuals)
	seriesStd := stdDev(series)
	residScore := 0.5
	if seriesStd > 0 {
		residScore = math.Max(0, 1-residStd/seriesStd)
	}

	confidence := 0.3*aicScore + 0.7*residScore
	return math.Max(0.1, math.Min(0.95, confidence))
}

func difference(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}
	out := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		out[i-1] = series[i] - series[i-1]
	}
	return out
}

// yuleWalker solves the Yule-Walker equations for p in {0,1,2} and rescales
// the coefficients when the solution drifts outside the stationary region.
func yuleWalker(centered []float64, variance float64, p int) ([]float64, error) {
	if p == 0 {
		return nil, nil
	}

	acf := make([]float64, p)
	n := len(centered)
	for k := 1; k <= p; k++ {
		var cov float64
		for i := 0; i < n-k; i++ {
			cov += centered[i] * centered[i+k]
		}
		acf[k-1] = cov / float64(n) / variance
	}

	ar := make([]float64, p)
	switch p {
	case 1:
		ar[0] = acf[0]
	case 2:
		denom := 1 - acf[0]*acf[0]
		if denom == 0 {
			return nil, fmt.Errorf("%w: autocorrelation at lag 1 is unity", errDegenerateSeries)
		}
		ar[0] = acf[0] * (1 - acf[1]) / denom
		ar[1] = (acf[1] - acf[0]*acf[0]) / denom
	default:
		return nil, fmt.Errorf("unsupported AR order %d", p)
	}

	var magnitude float64
	for _, coef := range ar {
		if !isFinite(coef) {
			return nil, fmt.Errorf("%w: AR estimation produced non-finite coefficients", errNonFiniteForecast)
		}
		magnitude += math.Abs(coef)
	}
	if magnitude >= 0.99 {
		scale := 0.95 / magnitude
		for i := range ar {
			ar[i] *= scale
		}
	}
	return ar, nil
}

// estimateMA derives MA coefficients from the lagged autocorrelation of the
// AR residuals, damped for stability.
func estimateMA(residuals []float64, q int) []float64 {
	if q == 0 {
		return nil
	}
	ma := make([]float64, q)

	n := len(residuals)
	if n < q+2 {
		return ma
	}
	m := mean(residuals)
	var variance float64
	for _, r := range residuals {
		variance += (r - m) * (r - m)
	}
	variance /= float64(n)
	if variance == 0 {
		return ma
	}

	for k := 1; k <= q; k++ {
		var cov float64
		for i := 0; i < n-k; i++ {
			cov += (residuals[i] - m) * (residuals[i+k] - m)
		}
		cov /= float64(n)
		ma[k-1] = cov / variance * 0.6
	}
	return ma
}

// oneStepResiduals computes in-sample one-step-ahead residuals for the given
// AR and MA coefficients over the centered series.
func oneStepResiduals(centered []float64, ar, ma []float64) []float64 {
	residuals := make([]float64, len(centered))
	for t := range centered {
		pred := 0.0
		for i, coef := range ar {
			if t-1-i >= 0 {
				pred += coef * centered[t-1-i]
			}
		}
		for j, coef := range ma {
			if t-1-j >= 0 {
				pred += coef * residuals[t-1-j]
			}
		}
		residuals[t] = centered[t] - pred
	}
	return residuals
}
