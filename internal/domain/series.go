// internal/domain/series.go
package domain

import "time"

// DateLayout is the canonical date format used in every table and artifact.
const DateLayout = "2006-01-02"

// DailyRecord is a single day of observed sales and stock.
type DailyRecord struct {
	Date  time.Time `json:"date"`
	Sales float64   `json:"sales"`
	Stock float64   `json:"stock"`
}

// DailySeries is an ordered, gap-free daily series sorted ascending by date.
// The loader guarantees unique, contiguous dates; consumers treat it as
// read-only.
type DailySeries []DailyRecord

// Len returns the number of days in the series.
func (s DailySeries) Len() int { return len(s) }

// First returns the earliest record. Caller must ensure the series is non-empty.
func (s DailySeries) First() DailyRecord { return s[0] }

// Last returns the most recent record. Caller must ensure the series is non-empty.
func (s DailySeries) Last() DailyRecord { return s[len(s)-1] }

// Sales extracts the sales column as a flat slice.
func (s DailySeries) Sales() []float64 {
	values := make([]float64, len(s))
	for i, r := range s {
		values[i] = r.Sales
	}
	return values
}

// ForecastPoint is one forecasted day. Values are raw model output and may be
// negative; the alert simulation is where stock gets clamped, not here.
type ForecastPoint struct {
	Date            time.Time `json:"date"`
	ForecastedSales float64   `json:"forecasted_sales"`
}

// ForecastResult covers exactly the requested number of consecutive days
// starting the day after the last known date.
type ForecastResult []ForecastPoint

// AlertRecord is emitted for each simulated day on which projected stock sits
// below the reorder threshold after depletion.
type AlertRecord struct {
	Date            time.Time `json:"date"`
	Stock           float64   `json:"stock"`
	ForecastedSales float64   `json:"forecasted_sales"`
	Message         string    `json:"message"`
}
