// Command summarize filters the yearly CSV to one province, writes the subset
// and prints per-station statistics alongside temperature and precipitation
// charts.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/aemet-climate-etl/internal/adapter/chart"
	"github.com/couchcryptid/aemet-climate-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/aemet-climate-etl/internal/config"
	"github.com/couchcryptid/aemet-climate-etl/internal/observability"
	"github.com/couchcryptid/aemet-climate-etl/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store := csvfile.NewStore(logger)
	s := pipeline.NewSummarizer(store, store, chart.NewRenderer(logger), logger, metrics, os.Stdout)

	slug := cfg.ProvinceSlug()
	paths := pipeline.SummarizePaths{
		Input:     cfg.YearlyCSV,
		Filtered:  cfg.OutputPath("datos_" + slug + ".csv"),
		TempChart: cfg.OutputPath("temperaturas_" + slug + ".png"),
		PrecChart: cfg.OutputPath("precipitaciones_" + slug + ".png"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err = s.Run(ctx, cfg.Province, paths)
	if werr := observability.WriteTextfile(cfg.MetricsTextfile); werr != nil {
		logger.Warn("metrics textfile write failed", "error", werr, "path", cfg.MetricsTextfile)
	}
	if errors.Is(err, fs.ErrNotExist) {
		logger.Error("input file not found", "path", cfg.YearlyCSV, "error", err)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("summarize failed", "error", err)
		os.Exit(1)
	}
}
