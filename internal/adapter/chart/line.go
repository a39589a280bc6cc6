// Package chart renders the PNG figures produced by the summarize and score
// commands.
package chart

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/couchcryptid/aemet-climate-etl/internal/domain"
)

// ErrNoSeries is returned when a line chart has nothing to plot.
var ErrNoSeries = errors.New("no series to plot")

const (
	lineWidth  = 1200
	lineHeight = 600
)

// Renderer writes charts to PNG files, creating parent directories.
type Renderer struct {
	logger *slog.Logger
}

// NewRenderer creates a chart renderer.
func NewRenderer(logger *slog.Logger) *Renderer {
	return &Renderer{logger: logger}
}

// RenderLineChart plots one time series per station against date.
func (r *Renderer) RenderLineChart(path, title, yLabel string, series []domain.StationSeries) error {
	if len(series) == 0 {
		return fmt.Errorf("render %s: %w", path, ErrNoSeries)
	}

	graph := gochart.Chart{
		Title:  title,
		Width:  lineWidth,
		Height: lineHeight,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 50, Left: 220, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:           "Fecha",
			ValueFormatter: gochart.TimeValueFormatterWithFormat("2006-01-02"),
		},
		YAxis: gochart.YAxis{
			Name: yLabel,
		},
	}

	for _, s := range series {
		graph.Series = append(graph.Series, gochart.TimeSeries{
			Name:    s.Station,
			XValues: s.Dates,
			YValues: s.Values,
		})
	}
	graph.XAxis.Range = paddedTimeRange(series)
	graph.YAxis.Range = paddedValueRange(series)
	graph.Elements = []gochart.Renderable{gochart.LegendLeft(&graph)}

	if err := renderTo(path, func(f *os.File) error { return graph.Render(gochart.PNG, f) }); err != nil {
		return err
	}
	r.logger.Info("chart written", "path", path, "series", len(series))
	return nil
}

// paddedTimeRange widens a single-instant X axis by a day on each side; the
// chart library rejects zero-width ranges. nil keeps automatic ranging.
func paddedTimeRange(series []domain.StationSeries) gochart.Range {
	var lo, hi time.Time
	for _, s := range series {
		for _, d := range s.Dates {
			if lo.IsZero() || d.Before(lo) {
				lo = d
			}
			if d.After(hi) {
				hi = d
			}
		}
	}
	if !lo.Equal(hi) {
		return nil
	}
	day := float64(24 * time.Hour)
	at := float64(lo.UnixNano())
	return &gochart.ContinuousRange{Min: at - day, Max: at + day}
}

// paddedValueRange widens a flat Y axis by one unit on each side.
func paddedValueRange(series []domain.StationSeries) gochart.Range {
	first := true
	var lo, hi float64
	for _, s := range series {
		for _, v := range s.Values {
			if first || v < lo {
				lo = v
			}
			if first || v > hi {
				hi = v
			}
			first = false
		}
	}
	if lo != hi {
		return nil
	}
	return &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}

func renderTo(path string, render func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create chart directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}
