package series

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stockcast/internal/domain"
)

func day(value string) time.Time {
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		panic(err)
	}
	return t
}

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCSV_CleanFile(t *testing.T) {
	path := writeTempCSV(t, `date,sales,stock
2024-01-01,30,60
2024-01-02,32,64
2024-01-03,28,56
`)

	s, err := LoadCSV(path)
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())

	assert.Equal(t, day("2024-01-01"), s.First().Date)
	assert.Equal(t, day("2024-01-03"), s.Last().Date)
	assert.Equal(t, 32.0, s[1].Sales)
	assert.Equal(t, 64.0, s[1].Stock)
}

func TestLoadCSV_HeaderVariants(t *testing.T) {
	// Column matching ignores case, spaces, underscores and similar separators.
	path := writeTempCSV(t, `Date, Total_Sales.Ignored
`)
	_, err := LoadCSV(path)
	assert.ErrorIs(t, err, domain.ErrSchema)

	path = writeTempCSV(t, `DATE,Sales,STOCK
2024-01-01,30,60
`)
	s, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestLoadCSV_MissingStockColumn(t *testing.T) {
	path := writeTempCSV(t, `date,sales
2024-01-01,30
2024-01-02,31
`)

	s, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s[0].Stock)
	assert.Equal(t, 0.0, s[1].Stock)
}

func TestLoadCSV_BadDate(t *testing.T) {
	path := writeTempCSV(t, `date,sales,stock
01/02/2024,30,60
`)

	_, err := LoadCSV(path)
	assert.ErrorIs(t, err, domain.ErrDateParse)
}

func TestLoadCSV_DatetimeInput(t *testing.T) {
	// Timestamps are truncated to their calendar day.
	path := writeTempCSV(t, `date,sales,stock
2024-01-01 13:45:00,30,60
`)

	s, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, day("2024-01-01"), s.First().Date)
}

func TestFromRecords_SortsInput(t *testing.T) {
	records := []domain.DailyRecord{
		{Date: day("2024-01-03"), Sales: 28, Stock: 56},
		{Date: day("2024-01-01"), Sales: 30, Stock: 60},
		{Date: day("2024-01-02"), Sales: 32, Stock: 64},
	}

	s, err := FromRecords(records)
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())
	for i := 1; i < s.Len(); i++ {
		assert.True(t, s[i].Date.After(s[i-1].Date))
	}
}

func TestFromRecords_ForwardFillsGaps(t *testing.T) {
	records := []domain.DailyRecord{
		{Date: day("2024-01-01"), Sales: 30, Stock: 60},
		{Date: day("2024-01-04"), Sales: 40, Stock: 80},
	}

	s, err := FromRecords(records)
	require.NoError(t, err)
	require.Equal(t, 4, s.Len())

	// The filled days carry the last observed values for every column.
	assert.Equal(t, day("2024-01-02"), s[1].Date)
	assert.Equal(t, 30.0, s[1].Sales)
	assert.Equal(t, 60.0, s[1].Stock)
	assert.Equal(t, day("2024-01-03"), s[2].Date)
	assert.Equal(t, 30.0, s[2].Sales)
	assert.Equal(t, 40.0, s[3].Sales)
}

func TestFromRecords_LengthMatchesCalendarSpan(t *testing.T) {
	records := []domain.DailyRecord{
		{Date: day("2024-03-01"), Sales: 10},
		{Date: day("2024-03-20"), Sales: 20},
		{Date: day("2024-03-31"), Sales: 30},
	}

	s, err := FromRecords(records)
	require.NoError(t, err)
	assert.Equal(t, 31, s.Len())
}

func TestFromRecords_Idempotent(t *testing.T) {
	records := []domain.DailyRecord{
		{Date: day("2024-01-01"), Sales: 30, Stock: 60},
		{Date: day("2024-01-05"), Sales: 40, Stock: 80},
	}

	once, err := FromRecords(records)
	require.NoError(t, err)
	twice, err := FromRecords(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestFromRecords_DuplicateDate(t *testing.T) {
	records := []domain.DailyRecord{
		{Date: day("2024-01-01"), Sales: 30},
		{Date: day("2024-01-01"), Sales: 31},
	}

	_, err := FromRecords(records)
	assert.ErrorIs(t, err, domain.ErrDuplicateDate)
}

func TestFromRecords_Empty(t *testing.T) {
	_, err := FromRecords(nil)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}
