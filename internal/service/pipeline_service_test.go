package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/series"
	"github.com/andresuchdata/stockcast/internal/store"
)

func pipelineConfig(historyCSV, modelPath, forecastCSV, alertCSV string) config.PipelineConfig {
	return config.PipelineConfig{
		HistoryCSV:          historyCSV,
		ModelPath:           modelPath,
		ForecastCSV:         forecastCSV,
		AlertCSV:            alertCSV,
		Holdout:             30,
		EvalHorizon:         7,
		ForecastSteps:       7,
		ThresholdMultiplier: 1.5,
		GridMaxP:            2,
		GridMaxD:            1,
		GridMaxQ:            1,
	}
}

func testConfig(t *testing.T) configWithDir {
	t.Helper()
	dir := t.TempDir()
	return configWithDir{dir: dir}
}

type configWithDir struct {
	dir string
}

func (c configWithDir) pipeline() (string, string, string, string) {
	return filepath.Join(c.dir, "history.csv"),
		filepath.Join(c.dir, "sales_forecast.json"),
		filepath.Join(c.dir, "forecast.csv"),
		filepath.Join(c.dir, "alerts.csv")
}

func newCSVBackedService(t *testing.T) (*PipelineService, configWithDir) {
	t.Helper()
	c := testConfig(t)
	historyCSV, modelPath, forecastCSV, alertCSV := c.pipeline()

	hist, err := series.Generate(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		42,
	)
	require.NoError(t, err)
	require.NoError(t, series.WriteCSV(hist, historyCSV))

	svc := NewPipelineService(pipelineConfig(historyCSV, modelPath, forecastCSV, alertCSV), nil, nil, nil)
	return svc, c
}

func TestPipelineService_TrainForecastAlerts(t *testing.T) {
	svc, c := newCSVBackedService(t)
	ctx := context.Background()
	_, modelPath, forecastCSV, alertCSV := c.pipeline()

	result, err := svc.Train(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, result.Model)

	_, err = os.Stat(modelPath)
	require.NoError(t, err)

	forecast, err := svc.Forecast(ctx, 7)
	require.NoError(t, err)
	require.Len(t, forecast, 7)

	// Forecast dates continue from the last historical day.
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), forecast[0].Date)

	_, err = os.Stat(forecastCSV)
	require.NoError(t, err)

	initial := 5.0
	records, err := svc.Alerts(ctx, AlertParams{InitialStock: &initial})
	require.NoError(t, err)

	// Five units against a demand of at least ten per day depletes on day
	// one; every simulated day alerts.
	require.Len(t, records, 7)
	_, err = os.Stat(alertCSV)
	require.NoError(t, err)
}

func TestPipelineService_ForecastWithoutModel(t *testing.T) {
	svc, _ := newCSVBackedService(t)

	_, err := svc.Forecast(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrModelLoad)
}

func TestPipelineService_StorePreferredOverCSV(t *testing.T) {
	c := testConfig(t)
	historyCSV, modelPath, forecastCSV, alertCSV := c.pipeline()

	dataStore := store.NewMemoryStore()
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		require.NoError(t, dataStore.Put(ctx, domain.DailyRecord{
			Date:  start.AddDate(0, 0, i),
			Sales: 30,
			Stock: 60,
		}))
	}

	// No CSV exists at the configured path; the store is the source.
	svc := NewPipelineService(pipelineConfig(historyCSV, modelPath, forecastCSV, alertCSV), dataStore, nil, nil)

	hist, err := svc.LoadSeries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, hist.Len())
}

func TestPipelineService_StoreDataPointRequiresBackend(t *testing.T) {
	svc, _ := newCSVBackedService(t)

	err := svc.StoreDataPoint(context.Background(), domain.DailyRecord{
		Date:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Sales: 30,
	})
	assert.Error(t, err)
}
