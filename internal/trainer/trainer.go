// internal/trainer/trainer.go
package trainer

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/stockcast/internal/arima"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/pkg/logger"
)

const (
	// DefaultHoldout is the number of trailing days withheld for evaluation.
	DefaultHoldout = 30
	// DefaultEvalHorizon is how many holdout days each grid candidate is
	// scored against.
	DefaultEvalHorizon = 7
)

// Options selects the training policy. When Fixed is set, a single model of
// that order is fitted; otherwise every (p,d,q) combination up to the grid
// bounds is tried and the lowest held-out MAE wins.
type Options struct {
	Holdout     int
	EvalHorizon int

	Fixed *arima.Order

	GridMaxP int
	GridMaxD int
	GridMaxQ int

	// Parallelism bounds concurrent candidate fits during grid search.
	// Defaults to GOMAXPROCS. Selection is deterministic regardless.
	Parallelism int

	// ModelPath, when non-empty, is where the winning model artifact is
	// persisted (atomically, replacing any prior artifact).
	ModelPath string
}

func (o Options) withDefaults() Options {
	if o.Holdout <= 0 {
		o.Holdout = DefaultHoldout
	}
	if o.EvalHorizon <= 0 {
		o.EvalHorizon = DefaultEvalHorizon
	}
	if o.GridMaxP <= 0 {
		o.GridMaxP = 5
	}
	if o.GridMaxD <= 0 {
		o.GridMaxD = 2
	}
	if o.GridMaxQ <= 0 {
		o.GridMaxQ = 2
	}
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.GOMAXPROCS(0)
	}
	return o
}

// Result is the outcome of a training run.
type Result struct {
	Model     *arima.Model
	Order     arima.Order
	MAE       float64
	Evaluated int
	Skipped   int
}

type candidate struct {
	order arima.Order
	model *arima.Model
	mae   float64
}

// Train fits and selects a forecasting model on the historical series, then
// persists it when a model path is configured. The series is split into a
// training prefix and a trailing holdout of Options.Holdout days.
func Train(ctx context.Context, s domain.DailySeries, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	n := s.Len()
	if n < opts.Holdout+1 {
		return nil, fmt.Errorf("%w: need at least %d days, have %d", domain.ErrInsufficientData, opts.Holdout+1, n)
	}

	sales := s.Sales()
	trainVals := sales[:n-opts.Holdout]
	holdout := sales[n-opts.Holdout:]

	horizon := opts.EvalHorizon
	if horizon > len(holdout) {
		horizon = len(holdout)
	}

	var result *Result
	var err error
	if opts.Fixed != nil {
		result, err = trainFixed(trainVals, holdout, horizon, *opts.Fixed)
	} else {
		result, err = trainGrid(ctx, trainVals, holdout, horizon, opts)
	}
	if err != nil {
		return nil, err
	}

	result.Model.TrainEndDate = s[len(trainVals)-1].Date
	result.Model.SelectionMAE = result.MAE

	if opts.ModelPath != "" {
		if err := result.Model.Save(opts.ModelPath); err != nil {
			return nil, fmt.Errorf("failed to persist model: %w", err)
		}
		logger.Log.Info().
			Str("order", result.Order.String()).
			Float64("mae", result.MAE).
			Str("path", opts.ModelPath).
			Msg("model artifact persisted")
	}

	return result, nil
}

func trainFixed(trainVals, holdout []float64, horizon int, order arima.Order) (*Result, error) {
	model, err := arima.Fit(trainVals, order)
	if err != nil {
		return nil, fmt.Errorf("fixed order %s: %w", order, err)
	}

	mae, err := holdoutMAE(model, holdout, horizon)
	if err != nil {
		return nil, fmt.Errorf("fixed order %s evaluation: %w", order, err)
	}

	return &Result{Model: model, Order: order, MAE: mae, Evaluated: 1}, nil
}

// trainGrid fits every order in the configured ranges. Candidates are fitted
// concurrently but each goroutine writes only its own slot, so the first
// minimum in (p, d, q) enumeration order always wins ties.
func trainGrid(ctx context.Context, trainVals, holdout []float64, horizon int, opts Options) (*Result, error) {
	var orders []arima.Order
	for p := 0; p <= opts.GridMaxP; p++ {
		for d := 0; d <= opts.GridMaxD; d++ {
			for q := 0; q <= opts.GridMaxQ; q++ {
				orders = append(orders, arima.Order{P: p, D: d, Q: q})
			}
		}
	}

	candidates := make([]*candidate, len(orders))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)
	for idx, order := range orders {
		idx, order := idx, order
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			model, err := arima.Fit(trainVals, order)
			if err != nil {
				logger.Log.Debug().Str("order", order.String()).Err(err).Msg("grid candidate skipped")
				return nil
			}
			mae, err := holdoutMAE(model, holdout, horizon)
			if err != nil {
				logger.Log.Debug().Str("order", order.String()).Err(err).Msg("grid candidate evaluation skipped")
				return nil
			}

			candidates[idx] = &candidate{order: order, model: model, mae: mae}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var best *candidate
	evaluated, skipped := 0, 0
	for _, c := range candidates {
		if c == nil {
			skipped++
			continue
		}
		evaluated++
		if best == nil || c.mae < best.mae {
			best = c
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w: tried %d orders", domain.ErrNoConvergingModel, len(orders))
	}

	logger.Log.Info().
		Str("order", best.order.String()).
		Float64("mae", best.mae).
		Int("evaluated", evaluated).
		Int("skipped", skipped).
		Msg("grid search selected model")

	return &Result{
		Model:     best.model,
		Order:     best.order,
		MAE:       best.mae,
		Evaluated: evaluated,
		Skipped:   skipped,
	}, nil
}

// holdoutMAE forecasts the evaluation horizon past the training prefix and
// scores it against the true holdout values.
func holdoutMAE(model *arima.Model, holdout []float64, horizon int) (float64, error) {
	forecast, err := model.Forecast(horizon)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < horizon; i++ {
		sum += math.Abs(holdout[i] - forecast[i])
	}
	mae := sum / float64(horizon)

	if math.IsNaN(mae) || math.IsInf(mae, 0) {
		return 0, fmt.Errorf("non-finite holdout error")
	}
	return mae, nil
}
