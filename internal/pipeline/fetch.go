package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/aemet-climate-etl/internal/domain"
	"github.com/couchcryptid/aemet-climate-etl/internal/observability"
)

// WindowExtractor downloads every station's records for one date window.
type WindowExtractor interface {
	ExtractWindow(ctx context.Context, w domain.Window) ([]domain.RawRecord, error)
}

// RawLoader persists the accumulated raw records.
type RawLoader interface {
	WriteRaw(path string, records []domain.RawRecord) error
}

// FetchResult describes one fetch run.
type FetchResult struct {
	Windows   int
	Failed    int
	Records   int
	Written   bool
	Cancelled bool
}

// FetchProgress is a point-in-time view of a running fetch.
type FetchProgress struct {
	Year     int  `json:"year"`
	Windows  int  `json:"windows_total"`
	Done     int  `json:"windows_done"`
	Failed   int  `json:"windows_failed"`
	Records  int  `json:"records"`
	Running  bool `json:"running"`
	Finished bool `json:"finished"`
}

// Fetcher walks a calendar year window by window and writes everything it
// collected to a single CSV.
type Fetcher struct {
	extractor  WindowExtractor
	loader     RawLoader
	logger     *slog.Logger
	metrics    *observability.Metrics
	output     string
	windowDays int

	mu       sync.Mutex
	progress FetchProgress
}

// NewFetcher creates a Fetcher writing to output.
func NewFetcher(e WindowExtractor, l RawLoader, logger *slog.Logger, metrics *observability.Metrics, output string, windowDays int) *Fetcher {
	return &Fetcher{
		extractor:  e,
		loader:     l,
		logger:     logger,
		metrics:    metrics,
		output:     output,
		windowDays: windowDays,
	}
}

// Run fetches every window of year in order. A failing window is logged and
// contributes nothing. Cancelling ctx stops the loop early; records gathered
// so far are still written.
func (f *Fetcher) Run(ctx context.Context, year int) (FetchResult, error) {
	start := clock.Now()
	defer func() {
		f.metrics.RunDuration.WithLabelValues("fetch").Set(clock.Since(start).Seconds())
	}()

	windows := domain.PartitionYear(year, f.windowDays)
	if len(windows) == 0 {
		return FetchResult{}, fmt.Errorf("partition year %d: invalid window width %d", year, f.windowDays)
	}

	f.setProgress(func(p *FetchProgress) {
		*p = FetchProgress{Year: year, Windows: len(windows), Running: true}
	})
	defer f.setProgress(func(p *FetchProgress) {
		p.Running = false
		p.Finished = true
	})

	f.logger.Info("fetch started", "year", year, "windows", len(windows), "window_days", f.windowDays)

	var (
		result  FetchResult
		records []domain.RawRecord
	)
	for i, w := range windows {
		if ctx.Err() != nil {
			result.Cancelled = true
			f.logger.Warn("fetch interrupted", "reason", ctx.Err(), "remaining_windows", len(windows)-i)
			break
		}

		from, to := domain.FormatTimestamp(w.Start), domain.FormatTimestamp(w.End)
		f.logger.Info("fetching window", "window", i+1, "from", from, "to", to)

		began := clock.Now()
		batch, err := f.extractor.ExtractWindow(ctx, w)
		f.metrics.WindowDuration.Observe(clock.Since(began).Seconds())
		result.Windows++

		if err != nil {
			if ctx.Err() != nil {
				result.Cancelled = true
				f.setProgress(func(p *FetchProgress) { p.Done++ })
				f.logger.Warn("fetch interrupted", "reason", ctx.Err(), "remaining_windows", len(windows)-i)
				break
			}
			result.Failed++
			f.setProgress(func(p *FetchProgress) {
				p.Done++
				p.Failed++
			})
			f.metrics.WindowsFetched.WithLabelValues("error").Inc()
			f.logger.Warn("window fetch failed", "error", err, "from", from, "to", to)
			continue
		}

		if len(batch) == 0 {
			f.metrics.WindowsFetched.WithLabelValues("empty").Inc()
		} else {
			f.metrics.WindowsFetched.WithLabelValues("ok").Inc()
		}
		f.metrics.RecordsFetched.Add(float64(len(batch)))
		records = append(records, batch...)
		f.setProgress(func(p *FetchProgress) {
			p.Done++
			p.Records += len(batch)
		})
	}
	result.Records = len(records)

	if len(records) == 0 {
		f.logger.Warn("no data collected, nothing written", "year", year, "failed_windows", result.Failed)
		return result, nil
	}

	if err := f.loader.WriteRaw(f.output, records); err != nil {
		return result, fmt.Errorf("load records: %w", err)
	}
	result.Written = true

	f.logger.Info("fetch finished",
		"records", result.Records,
		"windows", result.Windows,
		"failed_windows", result.Failed,
		"path", f.output,
	)
	return result, nil
}

// Progress returns a snapshot of the current or last run. It is safe to call
// while Run is executing.
func (f *Fetcher) Progress() FetchProgress {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.progress
}

func (f *Fetcher) setProgress(update func(*FetchProgress)) {
	f.mu.Lock()
	update(&f.progress)
	f.mu.Unlock()
}
