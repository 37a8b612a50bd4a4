// internal/arima/forecast.go
package arima

import "fmt"

// Forecast produces point forecasts for the given number of steps, continuing
// from the model's training end point. Values are raw model output on the
// original scale; negative extrapolations are returned as-is.
func (m *Model) Forecast(steps int) ([]float64, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("forecast steps must be positive, got %d", steps)
	}

	p, q := len(m.AR), len(m.MA)

	// Values on the differenced scale, indexed 1..steps for forecasts and
	// 0 and below for the training tail.
	fw := make([]float64, steps)
	wAt := func(idx int) float64 {
		if idx >= 1 {
			return fw[idx-1]
		}
		j := len(m.DiffTail) + idx - 1
		if j < 0 {
			return 0
		}
		return m.DiffTail[j]
	}
	// Future innovations have expectation zero; past ones come from the
	// residual tail.
	eAt := func(idx int) float64 {
		if idx >= 1 {
			return 0
		}
		j := len(m.ResidTail) + idx - 1
		if j < 0 {
			return 0
		}
		return m.ResidTail[j]
	}

	for h := 1; h <= steps; h++ {
		v := m.Intercept
		for i := 1; i <= p; i++ {
			v += m.AR[i-1] * wAt(h-i)
		}
		for j := 1; j <= q; j++ {
			v += m.MA[j-1] * eAt(h-j)
		}
		fw[h-1] = v
	}

	// Undo the differencing, innermost level first, by cumulative summation
	// seeded with the training tail at each level.
	result := fw
	for level := m.Order.D - 1; level >= 0; level-- {
		run := m.IntegrationTail[level]
		out := make([]float64, steps)
		for h := 0; h < steps; h++ {
			run += result[h]
			out[h] = run
		}
		result = out
	}

	return result, nil
}
