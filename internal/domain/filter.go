package domain

import (
	"strings"
	"time"
)

// FilterProvince keeps observations whose province contains substr
// (case-sensitive). Observations without a province are dropped.
func FilterProvince(obs []Observation, substr string) []Observation {
	out := make([]Observation, 0, len(obs))
	for _, o := range obs {
		if o.Province == "" {
			continue
		}
		if strings.Contains(o.Province, substr) {
			out = append(out, o)
		}
	}
	return out
}

// StationSeries is one station's values of a column over time.
type StationSeries struct {
	Station string
	Dates   []time.Time
	Values  []float64
}

// SeriesByStation collects column by date for every station, in order of
// first appearance. Points with an absent value or unknown date are skipped,
// and stations left without points are omitted.
func SeriesByStation(obs []Observation, column string) []StationSeries {
	index := make(map[string]int)
	var out []StationSeries
	for _, o := range obs {
		if o.Name == "" {
			continue
		}
		i, ok := index[o.Name]
		if !ok {
			i = len(out)
			index[o.Name] = i
			out = append(out, StationSeries{Station: o.Name})
		}

		v, _ := o.Value(column)
		if v == nil || o.Date.IsZero() {
			continue
		}
		out[i].Dates = append(out[i].Dates, o.Date)
		out[i].Values = append(out[i].Values, *v)
	}

	kept := out[:0]
	for _, s := range out {
		if len(s.Values) > 0 {
			kept = append(kept, s)
		}
	}
	return kept
}

// StationNames returns the distinct station names in order of first
// appearance.
func StationNames(obs []Observation) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, o := range obs {
		if o.Name == "" {
			continue
		}
		if _, ok := seen[o.Name]; ok {
			continue
		}
		seen[o.Name] = struct{}{}
		names = append(names, o.Name)
	}
	return names
}

// DateRange returns the earliest and latest known dates. ok is false when no
// observation has a date.
func DateRange(obs []Observation) (from, to time.Time, ok bool) {
	for _, o := range obs {
		if o.Date.IsZero() {
			continue
		}
		if !ok || o.Date.Before(from) {
			from = o.Date
		}
		if !ok || o.Date.After(to) {
			to = o.Date
		}
		ok = true
	}
	return from, to, ok
}
