package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// ErrDegenerateRange is returned when a metric has no spread across the
// scored stations, so min-max normalization would divide by zero.
var ErrDegenerateRange = errors.New("degenerate metric range")

// RiskWeights are the composite weights of the three sub-scores.
type RiskWeights struct {
	Temp float64
	Prec float64
	Alt  float64
}

// DefaultRiskWeights weights temperature 0.4, precipitation and altitude 0.3.
var DefaultRiskWeights = RiskWeights{Temp: 0.4, Prec: 0.3, Alt: 0.3}

// RiskScore is a station's metrics with normalized sub-scores in [0,1] and
// the composite risk rounded to 3 decimals. Sub-scores are absent when the
// underlying metric is; Total is absent when any sub-score is.
type RiskScore struct {
	StationMetrics
	TempScore *float64 `json:"temp_score"`
	PrecScore *float64 `json:"prec_score"`
	AltScore  *float64 `json:"alt_score"`
	Total     *float64 `json:"riesgo_total"`
}

// ScoreStations normalizes mean temperature, total precipitation and
// altitude across stations and ranks them by composite risk, highest first.
// Stations without a composite go last; ties keep input order.
func ScoreStations(stations []StationMetrics, w RiskWeights) ([]RiskScore, error) {
	if len(stations) == 0 {
		return nil, nil
	}

	temp, err := normalize("temp_media", stations, func(s StationMetrics) *float64 { return s.TempMean }, false)
	if err != nil {
		return nil, err
	}
	prec, err := normalize("precipitacion_total", stations, func(s StationMetrics) *float64 { return s.PrecTotal }, true)
	if err != nil {
		return nil, err
	}
	alt, err := normalize("altitud", stations, func(s StationMetrics) *float64 { return s.Altitude }, true)
	if err != nil {
		return nil, err
	}

	scores := make([]RiskScore, len(stations))
	for i, s := range stations {
		scores[i] = RiskScore{
			StationMetrics: s,
			TempScore:      temp[i],
			PrecScore:      prec[i],
			AltScore:       alt[i],
		}
		if temp[i] != nil && prec[i] != nil && alt[i] != nil {
			total := roundTo(*temp[i]*w.Temp+*prec[i]*w.Prec+*alt[i]*w.Alt, 3)
			scores[i].Total = &total
		}
	}

	slices.SortStableFunc(scores, compareRisk)
	return scores, nil
}

// compareRisk orders by descending Total with absent totals last.
func compareRisk(a, b RiskScore) int {
	switch {
	case a.Total == nil && b.Total == nil:
		return 0
	case a.Total == nil:
		return 1
	case b.Total == nil:
		return -1
	case *a.Total > *b.Total:
		return -1
	case *a.Total < *b.Total:
		return 1
	default:
		return 0
	}
}

func normalize(metric string, stations []StationMetrics, get func(StationMetrics) *float64, invert bool) ([]*float64, error) {
	lo, hi := math.Inf(1), math.Inf(-1)
	present := 0
	for _, s := range stations {
		if v := get(s); v != nil {
			lo = math.Min(lo, *v)
			hi = math.Max(hi, *v)
			present++
		}
	}
	if present == 0 {
		return nil, fmt.Errorf("normalize %s: %w: no values", metric, ErrDegenerateRange)
	}
	if hi == lo {
		return nil, fmt.Errorf("normalize %s: %w: min equals max (%g)", metric, ErrDegenerateRange, lo)
	}

	out := make([]*float64, len(stations))
	for i, s := range stations {
		v := get(s)
		if v == nil {
			continue
		}
		score := (*v - lo) / (hi - lo)
		if invert {
			score = 1 - score
		}
		out[i] = &score
	}
	return out, nil
}

// SortByStation returns a copy of scores ordered by station name.
func SortByStation(scores []RiskScore) []RiskScore {
	out := slices.Clone(scores)
	slices.SortStableFunc(out, func(a, b RiskScore) int {
		return strings.Compare(a.Station, b.Station)
	})
	return out
}
