package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/stockcast/internal/arima"
	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/series"
	"github.com/andresuchdata/stockcast/internal/service"
	"github.com/andresuchdata/stockcast/pkg/logger"
)

func newPipelineService(c *cli.Context) *service.PipelineService {
	cfg := config.Load()
	pipelineCfg := cfg.Pipeline

	if c.IsSet("history") {
		pipelineCfg.HistoryCSV = c.String("history")
	}
	if c.IsSet("model") {
		pipelineCfg.ModelPath = c.String("model")
	}
	if c.IsSet("steps") {
		pipelineCfg.ForecastSteps = c.Int("steps")
	}

	// The CLI always reads history from CSV; the store and database backends
	// are server concerns.
	return service.NewPipelineService(pipelineCfg, nil, nil, nil)
}

func historyFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "history",
		Usage:   "Path to the cleaned daily sales CSV",
		EnvVars: []string{"PIPELINE_HISTORY_CSV"},
	}
}

func modelFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "model",
		Usage:   "Path to the persisted model artifact",
		EnvVars: []string{"PIPELINE_MODEL_PATH"},
	}
}

func runGenerate(c *cli.Context) error {
	start, err := time.ParseInLocation(domain.DateLayout, c.String("start"), time.UTC)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.ParseInLocation(domain.DateLayout, c.String("end"), time.UTC)
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}

	generated, err := series.Generate(start, end, c.Int64("seed"))
	if err != nil {
		return err
	}

	out := c.String("out")
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := series.WriteCSV(generated, out); err != nil {
		return err
	}

	logger.Log.Info().Int("days", generated.Len()).Str("path", out).Msg("synthetic history written")
	return nil
}

func runTrain(c *cli.Context) error {
	svc := newPipelineService(c)

	var fixed *arima.Order
	if c.IsSet("p") || c.IsSet("d") || c.IsSet("q") {
		if !c.IsSet("p") || !c.IsSet("d") || !c.IsSet("q") {
			return fmt.Errorf("fixed order requires all of --p, --d and --q")
		}
		fixed = &arima.Order{P: c.Int("p"), D: c.Int("d"), Q: c.Int("q")}
	}

	result, err := svc.Train(c.Context, fixed)
	if err != nil {
		return err
	}

	logger.Log.Info().
		Str("order", result.Order.String()).
		Float64("mae", result.MAE).
		Int("evaluated", result.Evaluated).
		Int("skipped", result.Skipped).
		Msg("training complete")
	return nil
}

func runForecast(c *cli.Context) error {
	svc := newPipelineService(c)

	result, err := svc.Forecast(c.Context, c.Int("steps"))
	if err != nil {
		return err
	}

	for _, point := range result {
		fmt.Printf("%s\t%.4f\n", point.Date.Format(domain.DateLayout), point.ForecastedSales)
	}
	return nil
}

func runAlerts(c *cli.Context) error {
	svc := newPipelineService(c)

	params := service.AlertParams{
		Multiplier:     c.Float64("multiplier"),
		FirstAlertOnly: c.Bool("first-only"),
	}
	if c.IsSet("initial-stock") {
		stock := c.Float64("initial-stock")
		params.InitialStock = &stock
	}

	records, err := svc.Alerts(c.Context, params)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No alerts triggered.")
		return nil
	}
	for _, record := range records {
		fmt.Println(record.Message)
	}
	return nil
}

func runPipeline(c *cli.Context) error {
	if err := runTrain(c); err != nil {
		return err
	}
	return runAlerts(c)
}

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "stockcast",
		Usage: "Train sales forecasting models and generate inventory alerts",
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Generate a synthetic daily sales history CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start", Usage: "Start date (YYYY-MM-DD)", Value: "2023-01-01"},
					&cli.StringFlag{Name: "end", Usage: "End date inclusive (YYYY-MM-DD)", Value: "2024-12-31"},
					&cli.Int64Flag{Name: "seed", Usage: "Random seed", Value: 42},
					&cli.StringFlag{Name: "out", Usage: "Output CSV path", Value: "data/processed/cleaned_sales_data.csv"},
				},
				Action: runGenerate,
			},
			{
				Name:  "train",
				Usage: "Fit a forecasting model on the sales history",
				Flags: []cli.Flag{
					historyFlag(),
					modelFlag(),
					&cli.IntFlag{Name: "p", Usage: "Fixed autoregressive order"},
					&cli.IntFlag{Name: "d", Usage: "Fixed differencing order"},
					&cli.IntFlag{Name: "q", Usage: "Fixed moving average order"},
				},
				Action: runTrain,
			},
			{
				Name:  "forecast",
				Usage: "Forecast future daily sales from the persisted model",
				Flags: []cli.Flag{
					historyFlag(),
					modelFlag(),
					&cli.IntFlag{Name: "steps", Usage: "Number of days to forecast"},
				},
				Action: runForecast,
			},
			{
				Name:  "alerts",
				Usage: "Simulate stock depletion and report low stock alerts",
				Flags: []cli.Flag{
					historyFlag(),
					modelFlag(),
					&cli.IntFlag{Name: "steps", Usage: "Number of days to forecast"},
					&cli.Float64Flag{Name: "initial-stock", Usage: "Starting stock level (defaults to last observed stock)"},
					&cli.Float64Flag{Name: "multiplier", Usage: "Reorder threshold multiplier", Value: series.DefaultThresholdMultiplier},
					&cli.BoolFlag{Name: "first-only", Usage: "Stop at the first alert"},
				},
				Action: runAlerts,
			},
			{
				Name:  "pipeline",
				Usage: "Run training, forecasting and alert generation end to end",
				Flags: []cli.Flag{
					historyFlag(),
					modelFlag(),
					&cli.IntFlag{Name: "steps", Usage: "Number of days to forecast"},
					&cli.Float64Flag{Name: "initial-stock", Usage: "Starting stock level (defaults to last observed stock)"},
					&cli.Float64Flag{Name: "multiplier", Usage: "Reorder threshold multiplier", Value: series.DefaultThresholdMultiplier},
					&cli.BoolFlag{Name: "first-only", Usage: "Stop at the first alert"},
				},
				Action: runPipeline,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("command failed")
	}
}
