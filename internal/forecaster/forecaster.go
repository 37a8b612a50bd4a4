// internal/forecaster/forecaster.go
package forecaster

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/andresuchdata/stockcast/internal/arima"
	"github.com/andresuchdata/stockcast/internal/domain"
)

// Load reads a persisted model artifact for forecasting.
func Load(path string) (*arima.Model, error) {
	model, err := arima.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrModelLoad, err)
	}
	return model, nil
}

// Forecast produces exactly steps point forecasts continuing the model's
// internal state, dated contiguously from the day after lastKnownDate.
// Negative extrapolations are surfaced as-is; the model output is not clamped.
func Forecast(model *arima.Model, lastKnownDate time.Time, steps int) (domain.ForecastResult, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidSteps, steps)
	}

	values, err := model.Forecast(steps)
	if err != nil {
		return nil, fmt.Errorf("forecast failed: %w", err)
	}

	start := time.Date(
		lastKnownDate.Year(), lastKnownDate.Month(), lastKnownDate.Day(),
		0, 0, 0, 0, time.UTC,
	)

	result := make(domain.ForecastResult, steps)
	for i, v := range values {
		result[i] = domain.ForecastPoint{
			Date:            start.AddDate(0, 0, i+1),
			ForecastedSales: v,
		}
	}

	return result, nil
}

// WriteCSV persists a forecast to the configured output table.
func WriteCSV(result domain.ForecastResult, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create forecast output %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"date", "forecasted_sales"}); err != nil {
		return err
	}
	for _, point := range result {
		record := []string{
			point.Date.Format(domain.DateLayout),
			strconv.FormatFloat(point.ForecastedSales, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return w.Error()
}
