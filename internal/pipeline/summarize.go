package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/couchcryptid/aemet-climate-etl/internal/domain"
	"github.com/couchcryptid/aemet-climate-etl/internal/observability"
)

// ObservationReader loads cleaned observations from a yearly CSV.
type ObservationReader interface {
	ReadObservations(path string) ([]domain.Observation, error)
}

// ObservationWriter persists the province subset.
type ObservationWriter interface {
	WriteObservations(path string, obs []domain.Observation) error
}

// LineChartRenderer plots per-station time series.
type LineChartRenderer interface {
	RenderLineChart(path, title, yLabel string, series []domain.StationSeries) error
}

// SummarizePaths are the input and output files of one summarize run.
type SummarizePaths struct {
	Input     string
	Filtered  string
	TempChart string
	PrecChart string
}

// SummaryResult describes one summarize run.
type SummaryResult struct {
	Loaded   int
	Retained int
	Stations []domain.StationSummary
}

// Summarizer filters the yearly CSV to one province, writes the subset and
// reports per-station statistics and charts.
type Summarizer struct {
	reader  ObservationReader
	writer  ObservationWriter
	charts  LineChartRenderer
	logger  *slog.Logger
	metrics *observability.Metrics
	out     io.Writer
}

// NewSummarizer creates a Summarizer printing its report to out.
func NewSummarizer(r ObservationReader, w ObservationWriter, c LineChartRenderer, logger *slog.Logger, metrics *observability.Metrics, out io.Writer) *Summarizer {
	return &Summarizer{
		reader:  r,
		writer:  w,
		charts:  c,
		logger:  logger,
		metrics: metrics,
		out:     out,
	}
}

// Run executes load, filter, write, summarize and plot for province.
func (s *Summarizer) Run(ctx context.Context, province string, paths SummarizePaths) (SummaryResult, error) {
	start := clock.Now()
	defer func() {
		s.metrics.RunDuration.WithLabelValues("summarize").Set(clock.Since(start).Seconds())
	}()

	obs, err := s.reader.ReadObservations(paths.Input)
	if err != nil {
		return SummaryResult{}, fmt.Errorf("load observations: %w", err)
	}
	filtered := domain.FilterProvince(obs, province)
	s.metrics.RowsLoaded.Add(float64(len(obs)))
	s.metrics.RowsRetained.Add(float64(len(filtered)))
	s.logger.Info("province filtered", "province", province, "loaded", len(obs), "retained", len(filtered))

	if err := s.writer.WriteObservations(paths.Filtered, filtered); err != nil {
		return SummaryResult{}, fmt.Errorf("write province csv: %w", err)
	}

	stations, err := domain.SummarizeStations(filtered)
	if err != nil {
		return SummaryResult{}, fmt.Errorf("summarize stations: %w", err)
	}
	if err := printSummary(s.out, province, stations); err != nil {
		return SummaryResult{}, fmt.Errorf("print summary: %w", err)
	}
	printBasicStats(s.out, filtered)

	if err := ctx.Err(); err != nil {
		return SummaryResult{}, err
	}

	name := displayProvince(province)
	if err := s.plot(paths.TempChart, "Temperatura Media por Estación en "+name, "Temperatura Media (°C)",
		domain.SeriesByStation(filtered, domain.ColTMed)); err != nil {
		return SummaryResult{}, err
	}
	if err := s.plot(paths.PrecChart, "Precipitaciones por Estación en "+name, "Precipitación (mm)",
		domain.SeriesByStation(filtered, domain.ColPrec)); err != nil {
		return SummaryResult{}, err
	}

	printOutputs(s.out, "Procesamiento completado. Se han generado:", [][2]string{
		{filepath.Base(paths.Filtered), "Archivo con los datos filtrados"},
		{filepath.Base(paths.TempChart), "Gráfica de temperaturas"},
		{filepath.Base(paths.PrecChart), "Gráfica de precipitaciones"},
	})

	return SummaryResult{Loaded: len(obs), Retained: len(filtered), Stations: stations}, nil
}

// plot renders one chart. Having nothing to plot is not a failure.
func (s *Summarizer) plot(path, title, yLabel string, series []domain.StationSeries) error {
	if len(series) == 0 {
		s.logger.Warn("no values to plot, chart skipped", "path", path)
		return nil
	}
	if err := s.charts.RenderLineChart(path, title, yLabel, series); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
