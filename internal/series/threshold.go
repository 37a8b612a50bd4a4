// internal/series/threshold.go
package series

import (
	"fmt"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// DefaultThresholdMultiplier matches the historical default of 1.5x average
// daily demand.
const DefaultThresholdMultiplier = 1.5

// ReorderThreshold derives the reorder threshold as multiplier times the mean
// daily sales of the series.
func ReorderThreshold(s domain.DailySeries, multiplier float64) (float64, error) {
	if multiplier <= 0 {
		return 0, fmt.Errorf("%w: multiplier must be > 0, got %v", domain.ErrInvalidParameter, multiplier)
	}
	if s.Len() == 0 {
		return 0, fmt.Errorf("%w: cannot derive reorder threshold", domain.ErrEmptySeries)
	}

	var sum float64
	for _, r := range s {
		sum += r.Sales
	}
	mean := sum / float64(s.Len())

	return multiplier * mean, nil
}
