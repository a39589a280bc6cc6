// Command fetch downloads a calendar year of daily climatological records for
// every AEMET station and writes them to the yearly CSV.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/aemet-climate-etl/internal/adapter/aemet"
	"github.com/couchcryptid/aemet-climate-etl/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/aemet-climate-etl/internal/adapter/http"
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
	if err := cfg.RequireAPIKey(); err != nil {
		logger.Error("missing credentials", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	client := aemet.NewClient(cfg.AEMETBaseURL, cfg.APIKey, cfg.HTTPTimeout, logger)
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("aemet client close error", "error", err)
		}
	}()

	fetcher := pipeline.NewFetcher(client, csvfile.NewStore(logger), logger, metrics, cfg.YearlyCSV, cfg.WindowDays)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		srv := httpadapter.NewServer(cfg.MetricsAddr, httpadapter.ProgressFunc(func() any {
			return fetcher.Progress()
		}), logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	res, err := fetcher.Run(ctx, cfg.Year)
	if werr := observability.WriteTextfile(cfg.MetricsTextfile); werr != nil {
		logger.Warn("metrics textfile write failed", "error", werr, "path", cfg.MetricsTextfile)
	}
	if err != nil {
		logger.Error("fetch failed", "error", err)
		return err
	}

	logger.Info("done",
		"year", cfg.Year,
		"records", res.Records,
		"failed_windows", res.Failed,
		"written", res.Written,
		"interrupted", res.Cancelled,
	)
	return nil
}
