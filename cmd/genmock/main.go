// Command genmock generates a synthetic yearly climatological CSV shaped like
// the AEMET daily dump, so the summarize and score commands can run without
// an API key. Output is deterministic for a given seed.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out csv/datos_climatologicos_anuales.csv \
//	  -year 2024 -stations 6 -seed 42
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/aemet-climate-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/aemet-climate-etl/internal/domain"
)

type station struct {
	id       string
	name     string
	province string
	altitude int
	// baseTemp is the annual mean temperature at sea level for the site.
	baseTemp float64
	// wetness scales daily rain probability and amount.
	wetness float64
}

var catalog = []station{
	{"6155A", "MALAGA AEROPUERTO", "MALAGA", 7, 19.0, 0.9},
	{"6032B", "RONDA", "MALAGA", 739, 17.5, 1.2},
	{"6172X", "MALAGA, PUERTO", "MALAGA", 5, 19.2, 0.8},
	{"6058I", "ANTEQUERA", "MALAGA", 410, 17.8, 1.0},
	{"6076X", "ALORA", "MALAGA", 165, 18.6, 1.1},
	{"6106X", "ESTEPONA", "MALAGA", 43, 18.9, 1.4},
	{"5973", "CADIZ", "CADIZ", 2, 18.8, 0.9},
	{"5960", "JEREZ DE LA FRONTERA AEROPUERTO", "CADIZ", 27, 18.4, 1.0},
	{"6001", "TARIFA", "CADIZ", 32, 18.2, 1.1},
	{"5995B", "GRAZALEMA", "CADIZ", 823, 15.9, 2.6},
}

// header mirrors the key order of the AEMET daily values payload.
var header = []string{
	"fecha", "indicativo", "nombre", "provincia", "altitud",
	"tmed", "prec", "tmin", "horatmin", "tmax", "horatmax",
	"dir", "velmedia", "racha", "horaracha", "presMax", "presMin",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "csv/datos_climatologicos_anuales.csv", "output path for the yearly CSV")
	year := flag.Int("year", 2024, "calendar year to generate")
	perProvince := flag.Int("stations", 3, "stations per province (max 6 for MALAGA, 4 for CADIZ)")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	if *perProvince < 1 {
		flag.Usage()
		return fmt.Errorf("-stations must be at least 1")
	}

	records := generate(*year, pickStations(*perProvince), *seed)

	store := csvfile.NewStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := store.WriteRaw(*out, records); err != nil {
		return fmt.Errorf("writing yearly CSV: %w", err)
	}
	log.Printf("wrote %d records: %s", len(records), *out)

	printStats(records)
	return nil
}

// pickStations takes the first n stations of each province in catalog order.
func pickStations(n int) []station {
	taken := map[string]int{}
	var picked []station
	for _, s := range catalog {
		if taken[s.province] < n {
			picked = append(picked, s)
			taken[s.province]++
		}
	}
	return picked
}

func generate(year int, stations []station, seed uint64) []domain.RawRecord {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	first := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	var records []domain.RawRecord
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		for _, s := range stations {
			records = append(records, dailyRecord(rng, s, day))
		}
	}
	return records
}

func dailyRecord(rng *rand.Rand, s station, day time.Time) domain.RawRecord {
	// Seasonal cycle peaking early August, lapse rate 6.5 °C/km.
	phase := 2 * math.Pi * float64(day.YearDay()-215) / 365
	tmed := s.baseTemp - 6.5*float64(s.altitude)/1000 + 6*math.Cos(phase) + rng.NormFloat64()*1.5
	spread := 4 + rng.Float64()*6
	tmin, tmax := tmed-spread/2, tmed+spread/2

	values := map[string]string{
		"fecha":      day.Format("2006-01-02"),
		"indicativo": s.id,
		"nombre":     s.name,
		"provincia":  s.province,
		"altitud":    strconv.Itoa(s.altitude),
		"tmed":       decimal(tmed, 1),
		"prec":       precipitation(rng, s, phase),
		"tmin":       decimal(tmin, 1),
		"horatmin":   fmt.Sprintf("%02d:%02d", 4+rng.IntN(4), rng.IntN(60)),
		"tmax":       decimal(tmax, 1),
		"horatmax":   fmt.Sprintf("%02d:%02d", 13+rng.IntN(4), rng.IntN(60)),
		"dir":        fmt.Sprintf("%02d", 1+rng.IntN(36)),
		"velmedia":   decimal(1+rng.Float64()*5, 1),
		"racha":      decimal(5+rng.Float64()*12, 1),
		"horaracha":  fmt.Sprintf("%02d:%02d", rng.IntN(24), rng.IntN(60)),
		"presMax":    decimal(1012+rng.Float64()*12-float64(s.altitude)/9, 1),
		"presMin":    decimal(1006+rng.Float64()*10-float64(s.altitude)/9, 1),
	}

	// Sprinkle the sentinel tokens the cleaner has to cope with.
	switch r := rng.Float64(); {
	case r < 0.02:
		values["racha"] = domain.TokenMultiple
		values["horaracha"] = domain.TokenMultiple
	case r < 0.04:
		values["tmed"] = ""
	case r < 0.05:
		values["velmedia"] = ""
		values["racha"] = ""
	}

	rec := domain.RawRecord{Fields: make([]domain.Field, 0, len(header))}
	for _, k := range header {
		rec.Fields = append(rec.Fields, domain.Field{Key: k, Value: values[k]})
	}
	return rec
}

// precipitation is wetter in winter. Trace amounts are reported as "Ip".
func precipitation(rng *rand.Rand, s station, phase float64) string {
	chance := (0.12 - 0.1*math.Cos(phase)) * s.wetness
	if rng.Float64() >= chance {
		return "0,0"
	}
	if rng.Float64() < 0.25 {
		return domain.TokenNegligible
	}
	return decimal(rng.ExpFloat64()*6*s.wetness, 1)
}

// decimal formats v with a comma decimal separator.
func decimal(v float64, places int) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', places, 64), ".", ",", 1)
}

func printStats(records []domain.RawRecord) {
	perProvince := map[string]int{}
	tokens := map[string]int{}
	for _, r := range records {
		p, _ := r.Get("provincia")
		perProvince[p]++
		for _, f := range r.Fields {
			switch f.Value {
			case domain.TokenMultiple, domain.TokenNegligible:
				tokens[f.Value]++
			case "":
				tokens["(empty)"]++
			}
		}
	}

	fmt.Println("\n=== Mock Data Statistics ===")
	fmt.Printf("Records: %d\n", len(records))
	fmt.Println("\nBy province:")
	for _, k := range sortedKeys(perProvince) {
		fmt.Printf("  %-10s %d\n", k, perProvince[k])
	}
	fmt.Println("\nSentinel cells:")
	for _, k := range sortedKeys(tokens) {
		fmt.Printf("  %-10s %d\n", k, tokens[k])
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
