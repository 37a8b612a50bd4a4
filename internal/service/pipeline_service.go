// internal/service/pipeline_service.go
package service

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/stockcast/internal/alerts"
	"github.com/andresuchdata/stockcast/internal/arima"
	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecaster"
	"github.com/andresuchdata/stockcast/internal/repository"
	"github.com/andresuchdata/stockcast/internal/series"
	"github.com/andresuchdata/stockcast/internal/store"
	"github.com/andresuchdata/stockcast/internal/storage"
	"github.com/andresuchdata/stockcast/internal/trainer"
)

// PipelineService wires the four pipeline stages together for the CLI and the
// HTTP surface. History comes from the first configured source: the data
// point store, the Postgres history table, or the history CSV.
type PipelineService struct {
	cfg     config.PipelineConfig
	store   store.DataPointStore
	history repository.SalesHistoryRepository
	mirror  storage.ObjectStorage
}

func NewPipelineService(
	cfg config.PipelineConfig,
	dataStore store.DataPointStore,
	history repository.SalesHistoryRepository,
	mirror storage.ObjectStorage,
) *PipelineService {
	return &PipelineService{
		cfg:     cfg,
		store:   dataStore,
		history: history,
		mirror:  mirror,
	}
}

// LoadSeries reconstructs the clean daily series from the configured source.
func (s *PipelineService) LoadSeries(ctx context.Context) (domain.DailySeries, error) {
	switch {
	case s.store != nil:
		records, err := s.store.ScanAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan data point store: %w", err)
		}
		return series.FromRecords(records)
	case s.history != nil:
		records, err := s.history.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read sales history: %w", err)
		}
		return series.FromRecords(records)
	default:
		return series.LoadCSV(s.cfg.HistoryCSV)
	}
}

// Train runs model selection on the historical series and persists the
// winning artifact. A nil fixed order selects grid search.
func (s *PipelineService) Train(ctx context.Context, fixed *arima.Order) (*trainer.Result, error) {
	hist, err := s.LoadSeries(ctx)
	if err != nil {
		return nil, err
	}

	result, err := trainer.Train(ctx, hist, trainer.Options{
		Holdout:     s.cfg.Holdout,
		EvalHorizon: s.cfg.EvalHorizon,
		Fixed:       fixed,
		GridMaxP:    s.cfg.GridMaxP,
		GridMaxD:    s.cfg.GridMaxD,
		GridMaxQ:    s.cfg.GridMaxQ,
		ModelPath:   s.cfg.ModelPath,
	})
	if err != nil {
		return nil, err
	}

	s.mirrorFile(ctx, s.cfg.ModelPath)
	return result, nil
}

// Forecast loads the persisted model and produces a forecast continuing from
// the last known date of the historical series.
func (s *PipelineService) Forecast(ctx context.Context, steps int) (domain.ForecastResult, error) {
	if steps <= 0 {
		steps = s.cfg.ForecastSteps
	}

	hist, err := s.LoadSeries(ctx)
	if err != nil {
		return nil, err
	}

	model, err := forecaster.Load(s.cfg.ModelPath)
	if err != nil {
		return nil, err
	}

	result, err := forecaster.Forecast(model, hist.Last().Date, steps)
	if err != nil {
		return nil, err
	}

	if s.cfg.ForecastCSV != "" {
		if err := forecaster.WriteCSV(result, s.cfg.ForecastCSV); err != nil {
			return nil, err
		}
		s.mirrorFile(ctx, s.cfg.ForecastCSV)
	}

	return result, nil
}

// AlertParams tunes a single alert generation run. InitialStock nil means
// "start from the last observed stock level".
type AlertParams struct {
	InitialStock   *float64
	Multiplier     float64
	FirstAlertOnly bool
}

// Alerts runs the full forecast-and-alert loop: threshold from history,
// forecast from the persisted model, then the depletion simulation.
func (s *PipelineService) Alerts(ctx context.Context, params AlertParams) ([]domain.AlertRecord, error) {
	hist, err := s.LoadSeries(ctx)
	if err != nil {
		return nil, err
	}

	multiplier := params.Multiplier
	if multiplier == 0 {
		multiplier = s.cfg.ThresholdMultiplier
	}
	threshold, err := series.ReorderThreshold(hist, multiplier)
	if err != nil {
		return nil, err
	}

	initialStock := hist.Last().Stock
	if params.InitialStock != nil {
		initialStock = *params.InitialStock
	}

	forecast, err := s.Forecast(ctx, s.cfg.ForecastSteps)
	if err != nil {
		return nil, err
	}

	records := alerts.Generate(forecast, threshold, initialStock, params.FirstAlertOnly)

	if len(records) == 0 {
		log.Info().Float64("threshold", threshold).Msg("no inventory alerts triggered")
	} else if s.cfg.AlertCSV != "" {
		if err := alerts.WriteCSV(records, s.cfg.AlertCSV); err != nil {
			return nil, err
		}
		s.mirrorFile(ctx, s.cfg.AlertCSV)
	}

	return records, nil
}

// StoreDataPoint persists one observed day to every configured sink. Callers
// that want an updated forecast afterwards run Forecast separately so a
// forecast failure cannot mask a successful write.
func (s *PipelineService) StoreDataPoint(ctx context.Context, record domain.DailyRecord) error {
	if s.store == nil && s.history == nil {
		return fmt.Errorf("no data point store configured")
	}

	if s.store != nil {
		if err := s.store.Put(ctx, record); err != nil {
			return fmt.Errorf("failed to store data point: %w", err)
		}
	}
	if s.history != nil {
		if err := s.history.UpsertDay(ctx, record); err != nil {
			return fmt.Errorf("failed to persist data point: %w", err)
		}
	}

	log.Info().
		Str("date", record.Date.Format(domain.DateLayout)).
		Float64("sales", record.Sales).
		Float64("stock", record.Stock).
		Msg("data point stored")

	return nil
}

func (s *PipelineService) mirrorFile(ctx context.Context, path string) {
	if s.mirror == nil || path == "" {
		return
	}
	key := filepath.ToSlash(path)
	if err := s.mirror.UploadFile(ctx, key, path); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("object storage mirror failed")
	}
}
