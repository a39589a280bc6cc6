// Command score ranks a province's stations by siting risk, writes the
// ranking and heatmap and optionally publishes the ranking to Kafka.
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
	kafkaadapter "github.com/couchcryptid/aemet-climate-etl/internal/adapter/kafka"
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
	if err := run(cfg, logger); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	// Publication is feature-flagged via KAFKA_BROKERS.
	var publisher pipeline.ScorePublisher
	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		publisher = writer
		logger.Info("kafka publication enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publication disabled")
	}

	store := csvfile.NewStore(logger)
	s := pipeline.NewScorer(store, store, chart.NewRenderer(logger), publisher, logger, metrics, os.Stdout)

	paths := pipeline.ScorePaths{
		Input:   cfg.YearlyCSV,
		Ranking: cfg.OutputPath("analisis_parque_tecnologico.csv"),
		Heatmap: cfg.GraphPath("analisis_riesgo_estaciones.png"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err := s.Run(ctx, cfg.Province, paths)
	if werr := observability.WriteTextfile(cfg.MetricsTextfile); werr != nil {
		logger.Warn("metrics textfile write failed", "error", werr, "path", cfg.MetricsTextfile)
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Error("input file not found", "path", cfg.YearlyCSV, "error", err)
	case err != nil:
		logger.Error("score failed", "error", err)
	}
	return err
}
