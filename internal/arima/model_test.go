package arima

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantSeries(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func TestFit_MeanModel(t *testing.T) {
	values := []float64{28, 30, 32, 30, 28, 30, 32, 30}

	model, err := Fit(values, Order{})
	require.NoError(t, err)

	assert.InDelta(t, 30, model.Intercept, 1e-9)
	assert.Empty(t, model.AR)
	assert.Empty(t, model.MA)
	assert.Equal(t, len(values), model.TrainN)
}

func TestFit_ConstantSeriesForecastsConstant(t *testing.T) {
	model, err := Fit(constantSeries(30, 60), Order{})
	require.NoError(t, err)

	forecast, err := model.Forecast(7)
	require.NoError(t, err)
	require.Len(t, forecast, 7)
	for _, v := range forecast {
		assert.InDelta(t, 30, v, 1e-9)
	}
}

func TestFit_AR1RecoversCoefficient(t *testing.T) {
	// x_t = 5 + 0.6 x_{t-1}, noiseless, starting far from the fixed point so
	// the lagged column still varies across the sample.
	values := make([]float64, 30)
	values[0] = 20
	for i := 1; i < len(values); i++ {
		values[i] = 5 + 0.6*values[i-1]
	}

	model, err := Fit(values, Order{P: 1})
	require.NoError(t, err)
	require.Len(t, model.AR, 1)

	assert.InDelta(t, 0.6, model.AR[0], 1e-6)
	assert.InDelta(t, 5, model.Intercept, 1e-4)

	forecast, err := model.Forecast(1)
	require.NoError(t, err)
	assert.InDelta(t, 5+0.6*values[len(values)-1], forecast[0], 1e-6)
}

func TestFit_LinearTrendWithDifferencing(t *testing.T) {
	// x_t = 100 + 3t. One round of differencing makes it constant, so the
	// forecast continues the trend exactly.
	values := make([]float64, 50)
	for i := range values {
		values[i] = 100 + 3*float64(i)
	}

	model, err := Fit(values, Order{D: 1})
	require.NoError(t, err)

	forecast, err := model.Forecast(3)
	require.NoError(t, err)
	last := values[len(values)-1]
	assert.InDelta(t, last+3, forecast[0], 1e-9)
	assert.InDelta(t, last+6, forecast[1], 1e-9)
	assert.InDelta(t, last+9, forecast[2], 1e-9)
}

func TestFit_MixedModel(t *testing.T) {
	// A noisy but well-behaved series; the point is that estimation converges
	// and produces finite state of the right shapes.
	values := make([]float64, 120)
	values[0] = 30
	for i := 1; i < len(values); i++ {
		values[i] = 10 + 0.5*values[i-1] + 4*math.Sin(float64(i))
	}

	model, err := Fit(values, Order{P: 2, D: 0, Q: 1})
	require.NoError(t, err)

	assert.Len(t, model.AR, 2)
	assert.Len(t, model.MA, 1)
	assert.Len(t, model.DiffTail, 2)
	assert.Len(t, model.ResidTail, 1)
	assert.Empty(t, model.IntegrationTail)

	forecast, err := model.Forecast(7)
	require.NoError(t, err)
	for _, v := range forecast {
		assert.False(t, math.IsNaN(v))
		assert.False(t, math.IsInf(v, 0))
	}
}

func TestFit_TooFewObservations(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		order  Order
	}{
		{"AR on short series", constantSeries(30, 5), Order{P: 3}},
		{"ARMA on short series", constantSeries(30, 6), Order{P: 1, Q: 1}},
		{"differencing exhausts series", []float64{30, 31}, Order{D: 2}},
		{"empty series", nil, Order{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(tt.values, tt.order)
			assert.ErrorIs(t, err, ErrFit)
		})
	}
}

func TestFit_NegativeOrder(t *testing.T) {
	_, err := Fit(constantSeries(30, 50), Order{P: -1})
	assert.ErrorIs(t, err, ErrFit)
}

func TestForecast_InvalidSteps(t *testing.T) {
	model, err := Fit(constantSeries(30, 50), Order{})
	require.NoError(t, err)

	_, err = model.Forecast(0)
	assert.Error(t, err)
	_, err = model.Forecast(-3)
	assert.Error(t, err)
}

func TestOrderString(t *testing.T) {
	assert.Equal(t, "(2,1,1)", Order{P: 2, D: 1, Q: 1}.String())
}

func TestDifference(t *testing.T) {
	values := []float64{1, 3, 6, 10}

	assert.Equal(t, values, difference(values, 0))
	assert.Equal(t, []float64{2, 3, 4}, difference(values, 1))
	assert.Equal(t, []float64{1, 1}, difference(values, 2))
}
