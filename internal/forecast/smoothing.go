package forecast

import (
	"fmt"
	"math"
)

// smoothingConfig is one exponential smoothing variant. The cascade tries an
// explicit ordered list of these rather than mutating option maps, so the
// fallback sequence stays auditable.
type smoothingConfig struct {
	name     string
	trend    bool
	seasonal bool
	period   int
}

// smoothingConfigs returns the variants in the order they are attempted:
// additive trend plus additive seasonality (only when the series is long
// enough to support a seasonal estimate), additive trend alone, then plain
// single exponential smoothing.
func smoothingConfigs(n int) []smoothingConfig {
	var configs []smoothingConfig
	if n >= 24 {
		period := 12
		if n/3 < period {
			period = n / 3
		}
		configs = append(configs, smoothingConfig{name: "add_trend_add_seasonal", trend: true, seasonal: true, period: period})
	}
	configs = append(configs,
		smoothingConfig{name: "add_trend", trend: true},
		smoothingConfig{name: "simple"},
	)
	return configs
}

// exponentialSmoothing is the cascade's second strategy. The first variant
// that fits cleanly wins; confidence comes from the dispersion of its
// one-step residuals relative to the series mean.
func exponentialSmoothing(series []float64, periods int, _ float64) (*Attempt, error) {
	n := len(series)
	if n < 2 {
		return nil, fmt.Errorf("%w: need 2 points for exponential smoothing, have %d", errInsufficientData, n)
	}
	seriesMean := mean(series)
	if seriesMean <= 0 {
		return nil, fmt.Errorf("%w: non-positive series mean", errDegenerateSeries)
	}

	var lastErr error
	for _, cfg := range smoothingConfigs(n) {
		model, err := fitSmoothing(series, cfg)
		if err != nil {
			lastErr = err
			continue
		}
		value := model.forecast(periods)
		if !isFinite(value) {
			lastErr = fmt.Errorf("%w: smoothing config %s", errNonFiniteForecast, cfg.name)
			continue
		}

		residStd := stdDev(model.residuals)
		confidence := math.Max(0.3, 1-residStd/seriesMean)
		return &Attempt{
			Forecast:   value,
			Confidence: confidence,
			Diagnostics: map[string]any{
				"config": cfg.name,
				"alpha":  model.alpha,
				"beta":   model.beta,
				"gamma":  model.gamma,
			},
		}, nil
	}
	return nil, fmt.Errorf("all smoothing configurations failed: %w", lastErr)
}

// smoothingModel holds the fitted state of an additive exponential smoothing
// model, possibly without trend or seasonal components.
type smoothingModel struct {
	cfg       smoothingConfig
	alpha     float64
	beta      float64
	gamma     float64
	level     float64
	trend     float64
	seasonals []float64
	residuals []float64
	n         int
}

// fitSmoothing initializes components from the head of the series and picks
// smoothing parameters by grid search over one-step squared error.
func fitSmoothing(series []float64, cfg smoothingConfig) (*smoothingModel, error) {
	n := len(series)
	if cfg.seasonal {
		if cfg.period < 2 {
			return nil, fmt.Errorf("%w: seasonal period %d", errInsufficientData, cfg.period)
		}
		if n < 2*cfg.period {
			return nil, fmt.Errorf("%w: need %d points for seasonal period %d, have %d",
				errInsufficientData, 2*cfg.period, cfg.period, n)
		}
	}

	best := &smoothingModel{cfg: cfg, n: n}
	bestSSE := math.Inf(1)
	found := false

	for _, alpha := range gridRange(0.1, 0.9, 0.1) {
		betas := []float64{0}
		if cfg.trend {
			betas = gridRange(0.05, 0.45, 0.1)
		}
		for _, beta := range betas {
			gammas := []float64{0}
			if cfg.seasonal {
				gammas = gridRange(0.05, 0.45, 0.1)
			}
			for _, gamma := range gammas {
				candidate := &smoothingModel{cfg: cfg, alpha: alpha, beta: beta, gamma: gamma, n: n}
				sse := candidate.run(series)
				if isFinite(sse) && sse < bestSSE {
					bestSSE = sse
					best = candidate
					found = true
				}
			}
		}
	}

	if !found {
		return nil, fmt.Errorf("%w: smoothing fit diverged for config %s", errNonFiniteForecast, cfg.name)
	}
	return best, nil
}

// run executes the smoothing recursions over the series, recording one-step
// residuals and leaving the final component state ready for forecasting.
// It returns the sum of squared one-step errors.
func (sm *smoothingModel) run(series []float64) float64 {
	n := len(series)
	cfg := sm.cfg

	sm.level = series[0]
	sm.trend = 0
	if cfg.trend && n > 1 {
		sm.trend = series[1] - series[0]
	}
	if cfg.seasonal {
		m := cfg.period
		var head float64
		for i := 0; i < m; i++ {
			head += series[i]
		}
		sm.level = head / float64(m)
		if n >= 2*m {
			var trendSum float64
			for i := 0; i < m; i++ {
				trendSum += (series[m+i] - series[i]) / float64(m)
			}
			sm.trend = trendSum / float64(m)
		}
		sm.seasonals = make([]float64, m)
		for i := 0; i < m; i++ {
			sm.seasonals[i] = series[i] - sm.level
		}
		centerSeasonals(sm.seasonals)
	}

	sm.residuals = make([]float64, 0, n)
	var sse float64
	for t := 0; t < n; t++ {
		fitted := sm.level
		if sm.cfg.trend {
			fitted += sm.trend
		}
		if sm.cfg.seasonal {
			fitted += sm.seasonals[t%sm.cfg.period]
		}

		err := series[t] - fitted
		sm.residuals = append(sm.residuals, err)
		sse += err * err

		prevLevel := sm.level
		observed := series[t]
		if sm.cfg.seasonal {
			idx := t % sm.cfg.period
			sm.level = sm.alpha*(observed-sm.seasonals[idx]) + (1-sm.alpha)*(prevLevel+sm.trend)
			sm.seasonals[idx] = sm.gamma*(observed-sm.level) + (1-sm.gamma)*sm.seasonals[idx]
		} else {
			sm.level = sm.alpha*observed + (1-sm.alpha)*(prevLevel+sm.trend)
		}
		if sm.cfg.trend {
			sm.trend = sm.beta*(sm.level-prevLevel) + (1-sm.beta)*sm.trend
		}
	}
	return sse
}

// forecast projects h periods out from the final component state and returns
// the value at the last step of the horizon.
func (sm *smoothingModel) forecast(periods int) float64 {
	if periods < 1 {
		periods = 1
	}
	value := sm.level
	if sm.cfg.trend {
		value += float64(periods) * sm.trend
	}
	if sm.cfg.seasonal {
		value += sm.seasonals[(sm.n+periods-1)%sm.cfg.period]
	}
	return value
}

func centerSeasonals(seasonals []float64) {
	if len(seasonals) == 0 {
		return
	}
	avg := mean(seasonals)
	for i := range seasonals {
		seasonals[i] -= avg
	}
}

func gridRange(from, to, step float64) []float64 {
	var out []float64
	for v := from; v <= to+1e-9; v += step {
		out = append(out, v)
	}
	return out
}
