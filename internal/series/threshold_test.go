package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stockcast/internal/domain"
)

func seriesWithSales(sales ...float64) domain.DailySeries {
	s := make(domain.DailySeries, len(sales))
	date := day("2024-01-01")
	for i, v := range sales {
		s[i] = domain.DailyRecord{Date: date.AddDate(0, 0, i), Sales: v}
	}
	return s
}

func TestReorderThreshold(t *testing.T) {
	tests := []struct {
		name       string
		sales      []float64
		multiplier float64
		want       float64
	}{
		{"constant series", []float64{30, 30, 30}, 1.5, 45},
		{"mixed series", []float64{10, 20, 30, 40}, 1.5, 37.5},
		{"unit multiplier", []float64{10, 20, 30, 40}, 1.0, 25},
		{"single day", []float64{42}, 2.0, 84},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReorderThreshold(seriesWithSales(tt.sales...), tt.multiplier)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestReorderThreshold_ScalesLinearly(t *testing.T) {
	s := seriesWithSales(12, 18, 24, 30)

	base, err := ReorderThreshold(s, 1.0)
	require.NoError(t, err)
	doubled, err := ReorderThreshold(s, 2.0)
	require.NoError(t, err)

	assert.InDelta(t, 2*base, doubled, 1e-9)
}

func TestReorderThreshold_InvalidMultiplier(t *testing.T) {
	s := seriesWithSales(30)

	_, err := ReorderThreshold(s, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	_, err = ReorderThreshold(s, -1.5)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestReorderThreshold_EmptySeries(t *testing.T) {
	_, err := ReorderThreshold(nil, 1.5)
	assert.ErrorIs(t, err, domain.ErrEmptySeries)
}
