package domain

import (
	"fmt"
	"math"
	"slices"
)

// Reduction names a per-group reduction.
type Reduction string

const (
	ReduceMean  Reduction = "mean"
	ReduceMin   Reduction = "min"
	ReduceMax   Reduction = "max"
	ReduceSum   Reduction = "sum"
	ReduceFirst Reduction = "first"
)

// AggregateColumn is one output column: Reduce applied to Source.
type AggregateColumn struct {
	Name   string
	Source string
	Reduce Reduction
}

// SummaryColumns is the per-station province summary.
var SummaryColumns = []AggregateColumn{
	{Name: "tmed_mean", Source: ColTMed, Reduce: ReduceMean},
	{Name: "tmed_min", Source: ColTMed, Reduce: ReduceMin},
	{Name: "tmed_max", Source: ColTMed, Reduce: ReduceMax},
	{Name: "prec_sum", Source: ColPrec, Reduce: ReduceSum},
	{Name: "racha_max", Source: ColRacha, Reduce: ReduceMax},
}

// MetricColumns feeds the siting-risk score.
var MetricColumns = []AggregateColumn{
	{Name: "temp_media", Source: ColTMed, Reduce: ReduceMean},
	{Name: "temp_maxima", Source: ColTMed, Reduce: ReduceMax},
	{Name: "precipitacion_total", Source: ColPrec, Reduce: ReduceSum},
	{Name: "altitud", Source: ColAltitud, Reduce: ReduceFirst},
}

// StationAggregate holds one station's reduced values, aligned with the
// table's Columns.
type StationAggregate struct {
	Station string
	Values  []*float64
}

// AggregateTable is the result of Aggregate, one row per station sorted by
// name.
type AggregateTable struct {
	Columns []AggregateColumn
	Rows    []StationAggregate
}

// Aggregate groups observations by station name and reduces each configured
// column. Observations without a name are ignored.
func Aggregate(obs []Observation, columns []AggregateColumn) (AggregateTable, error) {
	for _, c := range columns {
		if _, ok := (Observation{}).Value(c.Source); !ok {
			return AggregateTable{}, fmt.Errorf("aggregate %s: unknown source column %q", c.Name, c.Source)
		}
		switch c.Reduce {
		case ReduceMean, ReduceMin, ReduceMax, ReduceSum, ReduceFirst:
		default:
			return AggregateTable{}, fmt.Errorf("aggregate %s: unknown reduction %q", c.Name, c.Reduce)
		}
	}

	groups := make(map[string][]Observation)
	for _, o := range obs {
		if o.Name == "" {
			continue
		}
		groups[o.Name] = append(groups[o.Name], o)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	slices.Sort(names)

	table := AggregateTable{Columns: columns, Rows: make([]StationAggregate, 0, len(names))}
	for _, name := range names {
		group := groups[name]
		row := StationAggregate{Station: name, Values: make([]*float64, len(columns))}
		for i, c := range columns {
			values := make([]*float64, len(group))
			for j, o := range group {
				values[j], _ = o.Value(c.Source)
			}
			row.Values[i] = reduce(values, c.Reduce)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// reduce skips absent values. Sum of nothing is 0; every other reduction of
// nothing is absent.
func reduce(values []*float64, r Reduction) *float64 {
	var (
		n        int
		sum      float64
		lo, hi   float64
		first    float64
		hasFirst bool
	)
	for _, v := range values {
		if v == nil {
			continue
		}
		if !hasFirst {
			first, lo, hi, hasFirst = *v, *v, *v, true
		}
		n++
		sum += *v
		lo = math.Min(lo, *v)
		hi = math.Max(hi, *v)
	}

	if r == ReduceSum {
		return &sum
	}
	if n == 0 {
		return nil
	}

	var out float64
	switch r {
	case ReduceMean:
		out = sum / float64(n)
	case ReduceMin:
		out = lo
	case ReduceMax:
		out = hi
	case ReduceFirst:
		out = first
	}
	return &out
}

// Index returns the position of the named column, or -1.
func (t AggregateTable) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Round returns a copy of t with every present value rounded to places
// decimals.
func (t AggregateTable) Round(places int) AggregateTable {
	out := AggregateTable{Columns: t.Columns, Rows: make([]StationAggregate, len(t.Rows))}
	for i, row := range t.Rows {
		values := make([]*float64, len(row.Values))
		for j, v := range row.Values {
			if v != nil {
				r := roundTo(*v, places)
				values[j] = &r
			}
		}
		out.Rows[i] = StationAggregate{Station: row.Station, Values: values}
	}
	return out
}

// roundTo rounds half to even, like numpy.
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(v*p) / p
}

// StationSummary is the province summary row for one station.
type StationSummary struct {
	Station   string
	TempMean  *float64
	TempMin   *float64
	TempMax   *float64
	PrecTotal *float64
	GustMax   *float64
}

// SummarizeStations reduces observations with SummaryColumns, rounded to 2
// decimals.
func SummarizeStations(obs []Observation) ([]StationSummary, error) {
	table, err := Aggregate(obs, SummaryColumns)
	if err != nil {
		return nil, err
	}
	table = table.Round(2)

	out := make([]StationSummary, len(table.Rows))
	for i, row := range table.Rows {
		out[i] = StationSummary{
			Station:   row.Station,
			TempMean:  row.Values[0],
			TempMin:   row.Values[1],
			TempMax:   row.Values[2],
			PrecTotal: row.Values[3],
			GustMax:   row.Values[4],
		}
	}
	return out, nil
}

// StationMetrics is the per-station input to the risk score.
type StationMetrics struct {
	Station   string   `json:"nombre"`
	TempMean  *float64 `json:"temp_media"`
	TempMax   *float64 `json:"temp_maxima"`
	PrecTotal *float64 `json:"precipitacion_total"`
	Altitude  *float64 `json:"altitud"`
}

// SiteMetrics reduces observations with MetricColumns, rounded to 2
// decimals.
func SiteMetrics(obs []Observation) ([]StationMetrics, error) {
	table, err := Aggregate(obs, MetricColumns)
	if err != nil {
		return nil, err
	}
	table = table.Round(2)

	out := make([]StationMetrics, len(table.Rows))
	for i, row := range table.Rows {
		out[i] = StationMetrics{
			Station:   row.Station,
			TempMean:  row.Values[0],
			TempMax:   row.Values[1],
			PrecTotal: row.Values[2],
			Altitude:  row.Values[3],
		}
	}
	return out, nil
}
