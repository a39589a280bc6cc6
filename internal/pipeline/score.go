package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/couchcryptid/aemet-climate-etl/internal/domain"
	"github.com/couchcryptid/aemet-climate-etl/internal/observability"
)

// RankingWriter persists the ranked scores.
type RankingWriter interface {
	WriteRanking(path string, scores []domain.RiskScore) error
}

// HeatmapRenderer draws the sub-score heatmap.
type HeatmapRenderer interface {
	RenderHeatmap(path, title string, scores []domain.RiskScore) error
}

// ScorePublisher ships the ranking to downstream consumers.
type ScorePublisher interface {
	PublishScores(ctx context.Context, scores []domain.RiskScore, scoredAt time.Time) error
}

// ScorePaths are the input and output files of one score run.
type ScorePaths struct {
	Input   string
	Ranking string
	Heatmap string
}

// Scorer ranks a province's stations by siting risk.
type Scorer struct {
	reader    ObservationReader
	ranking   RankingWriter
	heatmap   HeatmapRenderer
	publisher ScorePublisher
	weights   domain.RiskWeights
	logger    *slog.Logger
	metrics   *observability.Metrics
	out       io.Writer
}

// NewScorer creates a Scorer. publisher may be nil to skip publication.
func NewScorer(r ObservationReader, rw RankingWriter, h HeatmapRenderer, p ScorePublisher, logger *slog.Logger, metrics *observability.Metrics, out io.Writer) *Scorer {
	return &Scorer{
		reader:    r,
		ranking:   rw,
		heatmap:   h,
		publisher: p,
		weights:   domain.DefaultRiskWeights,
		logger:    logger,
		metrics:   metrics,
		out:       out,
	}
}

// Run executes load, filter, aggregate, score, plot, write and publish for
// province and returns the ranking, highest risk first.
func (s *Scorer) Run(ctx context.Context, province string, paths ScorePaths) ([]domain.RiskScore, error) {
	start := clock.Now()
	defer func() {
		s.metrics.RunDuration.WithLabelValues("score").Set(clock.Since(start).Seconds())
	}()

	obs, err := s.reader.ReadObservations(paths.Input)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}
	filtered := domain.FilterProvince(obs, province)
	s.metrics.RowsLoaded.Add(float64(len(obs)))
	s.metrics.RowsRetained.Add(float64(len(filtered)))
	s.logger.Info("province filtered", "province", province, "loaded", len(obs), "retained", len(filtered))

	stations, err := domain.SiteMetrics(filtered)
	if err != nil {
		return nil, fmt.Errorf("aggregate metrics: %w", err)
	}
	scores, err := domain.ScoreStations(stations, s.weights)
	if err != nil {
		return nil, fmt.Errorf("score stations: %w", err)
	}
	s.metrics.StationsScored.Set(float64(len(scores)))

	if len(scores) == 0 {
		s.logger.Warn("no stations to score, heatmap skipped", "province", province)
	} else if err := s.heatmap.RenderHeatmap(paths.Heatmap, "Análisis de Riesgo por Estación", domain.SortByStation(scores)); err != nil {
		return nil, fmt.Errorf("render heatmap: %w", err)
	}

	if err := s.ranking.WriteRanking(paths.Ranking, scores); err != nil {
		return nil, fmt.Errorf("write ranking: %w", err)
	}
	if err := printRanking(s.out, scores); err != nil {
		return nil, fmt.Errorf("print ranking: %w", err)
	}

	if s.publisher != nil && len(scores) > 0 {
		if err := s.publisher.PublishScores(ctx, scores, clock.Now()); err != nil {
			return scores, fmt.Errorf("publish scores: %w", err)
		}
		s.metrics.ScoresPublished.Add(float64(len(scores)))
	}

	printOutputs(s.out, "Análisis completado. Se han generado:", [][2]string{
		{paths.Ranking, "Resultados detallados"},
		{paths.Heatmap, "Visualización del análisis de riesgo"},
	})

	s.logger.Info("scoring finished", "stations", len(scores), "ranking", paths.Ranking)
	return scores, nil
}
