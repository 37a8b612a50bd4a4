package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/repository/postgres"
	"github.com/andresuchdata/stockcast/internal/series"
	"github.com/andresuchdata/stockcast/pkg/logger"
)

func runSeed(c *cli.Context) error {
	cfg := config.Load()

	historyPath := cfg.Pipeline.HistoryCSV
	if c.IsSet("history") {
		historyPath = c.String("history")
	}

	hist, err := series.LoadCSV(historyPath)
	if err != nil {
		return fmt.Errorf("failed to load history CSV: %w", err)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repo := postgres.NewSalesHistoryRepository(db)
	if err := repo.BulkUpsert(context.Background(), hist); err != nil {
		return fmt.Errorf("failed to seed sales history: %w", err)
	}

	logger.Log.Info().
		Int("days", hist.Len()).
		Str("source", historyPath).
		Msg("sales history seeded")
	return nil
}

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "seed",
		Usage: "Load a cleaned daily sales CSV into the sales_history table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "history",
				Usage:   "Path to the cleaned daily sales CSV",
				EnvVars: []string{"PIPELINE_HISTORY_CSV"},
			},
		},
		Action: runSeed,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("seed failed")
	}
}
