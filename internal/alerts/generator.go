// internal/alerts/generator.go
package alerts

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// Generate simulates day-by-day stock depletion against a forecast and emits
// one alert for every day the projected stock sits below the threshold after
// that day's depletion. Simulated stock is a physical quantity and is clamped
// at zero even though forecast values are not.
//
// Days with a NaN forecast are skipped; stock carries over unchanged. An empty
// result means no day crossed the threshold, which is success.
func Generate(forecast domain.ForecastResult, threshold, initialStock float64, firstAlertOnly bool) []domain.AlertRecord {
	alerts := make([]domain.AlertRecord, 0)

	currentStock := initialStock
	for _, day := range forecast {
		if math.IsNaN(day.ForecastedSales) {
			continue
		}

		currentStock = math.Max(0, currentStock-day.ForecastedSales)
		if currentStock < threshold {
			alerts = append(alerts, domain.AlertRecord{
				Date:            day.Date,
				Stock:           currentStock,
				ForecastedSales: day.ForecastedSales,
				Message: fmt.Sprintf(
					"Low stock alert on %s: Stock (%.2f) below threshold (%.2f). Reorder recommended.",
					day.Date.Format(domain.DateLayout), currentStock, threshold,
				),
			})
			if firstAlertOnly {
				break
			}
		}
	}

	return alerts
}

// WriteCSV persists alert records to the configured output table.
func WriteCSV(alerts []domain.AlertRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create alert output %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"date", "stock", "forecasted_sales", "message"}); err != nil {
		return err
	}
	for _, a := range alerts {
		record := []string{
			a.Date.Format(domain.DateLayout),
			strconv.FormatFloat(a.Stock, 'f', 2, 64),
			strconv.FormatFloat(a.ForecastedSales, 'f', -1, 64),
			a.Message,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return w.Error()
}
