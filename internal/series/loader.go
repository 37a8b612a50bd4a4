// internal/series/loader.go
package series

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// dateLayouts are the accepted input date formats, tried in order.
var dateLayouts = []string{
	domain.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// LoadCSV reads a sales/stock table from a CSV file and produces a clean,
// gap-free DailySeries. The file must contain date and sales columns; stock is
// optional and defaults to zero.
func LoadCSV(path string) (domain.DailySeries, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colMap := make(map[string]int, len(header))
	for i, col := range header {
		colMap[normalizeColumnName(col)] = i
	}

	idxDate, okDate := colMap["date"]
	idxSales, okSales := colMap["sales"]
	if !okDate || !okSales {
		return nil, fmt.Errorf("%w: need date and sales columns, got %v", domain.ErrSchema, header)
	}
	idxStock, hasStock := colMap["stock"]

	var records []domain.DailyRecord
	line := 1
	for {
		record, err := reader.Read()
		if err != nil {
			if err.Error() == "EOF" {
				break
			}
			return nil, fmt.Errorf("error reading record: %w", err)
		}
		line++

		date, err := parseDate(record[idxDate])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		sales, err := strconv.ParseFloat(strings.TrimSpace(record[idxSales]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid sales value %q: %w", line, record[idxSales], err)
		}

		var stock float64
		if hasStock && idxStock < len(record) && strings.TrimSpace(record[idxStock]) != "" {
			stock, err = strconv.ParseFloat(strings.TrimSpace(record[idxStock]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid stock value %q: %w", line, record[idxStock], err)
			}
		}

		records = append(records, domain.DailyRecord{Date: date, Sales: sales, Stock: stock})
	}

	return FromRecords(records)
}

// FromRecords normalizes raw daily records into a DailySeries: sorted
// ascending, unique dates, calendar gaps forward-filled for every column.
// Leading gaps are never invented; the series starts at the earliest observed
// record. The input slice is not mutated.
func FromRecords(records []domain.DailyRecord) (domain.DailySeries, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no rows in source", domain.ErrInsufficientData)
	}

	sorted := make([]domain.DailyRecord, len(records))
	copy(sorted, records)
	for i := range sorted {
		sorted[i].Date = truncateToDay(sorted[i].Date)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Date.Equal(sorted[i-1].Date) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateDate, sorted[i].Date.Format(domain.DateLayout))
		}
	}

	// Forward-fill missing calendar days between the first and last observed
	// dates. The filled day carries the prior day's sales and stock.
	out := make(domain.DailySeries, 0, len(sorted))
	next := 0
	for day := sorted[0].Date; !day.After(sorted[len(sorted)-1].Date); day = day.AddDate(0, 0, 1) {
		if next < len(sorted) && sorted[next].Date.Equal(day) {
			out = append(out, sorted[next])
			next++
			continue
		}
		prev := out[len(out)-1]
		prev.Date = day
		out = append(out, prev)
	}

	return out, nil
}

func parseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return truncateToDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", domain.ErrDateParse, raw)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}
