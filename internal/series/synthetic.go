// internal/series/synthetic.go
package series

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// Generate produces a synthetic daily sales series for demos and seeding: a
// Poisson base around lambda 30 with weekly seasonality and Gaussian noise,
// clipped to [10, 100]. Stock starts at twice daily sales. Deterministic for a
// given seed.
func Generate(start, end time.Time, seed int64) (domain.DailySeries, error) {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date before start date", domain.ErrInvalidParameter)
	}

	rng := rand.New(rand.NewSource(seed))

	var records []domain.DailyRecord
	i := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		base := float64(poisson(rng, 30))
		seasonality := 10 * math.Sin(2*math.Pi*float64(i)/7)
		noise := rng.NormFloat64() * 5

		sales := math.Round(base + seasonality + noise)
		if sales < 10 {
			sales = 10
		}
		if sales > 100 {
			sales = 100
		}

		records = append(records, domain.DailyRecord{
			Date:  day,
			Sales: sales,
			Stock: sales * 2,
		})
		i++
	}

	return domain.DailySeries(records), nil
}

// WriteCSV writes a series to disk in the canonical date,sales,stock layout.
func WriteCSV(s domain.DailySeries, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"date", "sales", "stock"}); err != nil {
		return err
	}
	for _, r := range s {
		record := []string{
			r.Date.Format(domain.DateLayout),
			strconv.FormatFloat(r.Sales, 'f', -1, 64),
			strconv.FormatFloat(r.Stock, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return w.Error()
}

// poisson draws from a Poisson distribution using Knuth's method. Fine for
// small lambda; this only feeds the synthetic generator.
func poisson(rng *rand.Rand, lambda float64) int {
	limit := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}
