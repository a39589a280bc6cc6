// Command validate performs integrity checks on a yearly climatological CSV
// before it is summarized or scored: required columns, numeric cells under
// the sentinel policy, date sanity and per-station identity.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv csv/datos_climatologicos_anuales.csv \
//	  -year 2024
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/aemet-climate-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/aemet-climate-etl/internal/domain"
)

// maxReported caps the per-phase error listing.
const maxReported = 20

var requiredColumns = []string{
	domain.ColStationID, domain.ColName, domain.ColProvince, domain.ColDate,
	domain.ColTMed, domain.ColPrec, domain.ColAltitud,
}

var numericColumns = domain.ObservationColumns[4:]

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "csv/datos_climatologicos_anuales.csv", "yearly CSV to validate")
	year := flag.Int("year", 0, "expected calendar year of every fecha (0 disables the check)")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(os.Stdout, *csvPath, *year); code != 0 {
		os.Exit(code)
	}
}

func run(w io.Writer, path string, year int) int {
	fmt.Fprintln(w, "=== Yearly CSV Integrity Validation ===")
	fmt.Fprintln(w)

	store := csvfile.NewStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
	header, records, err := store.ReadRawTable(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load yearly CSV: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSchema(header, len(records)),
		validateNumericCells(records),
		validateDates(records, year),
		validateStationIdentity(records),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	stations, provinces := distinct(records, domain.ColStationID), distinct(records, domain.ColProvince)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Rows: %d, stations: %d, provinces: %d\n", len(records), stations, provinces)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxReported {
				fmt.Fprintf(w, "  ... %d more\n", len(p.errors)-maxReported)
				break
			}
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// ── Phases ──

func validateSchema(columns []string, rows int) *phase {
	p := &phase{name: "Schema (required columns)"}
	if len(columns) == 0 {
		p.errorf("file is empty (no header)")
		return p
	}
	if rows == 0 {
		p.errorf("no data rows")
	}
	for _, c := range requiredColumns {
		if !slices.Contains(columns, c) {
			p.errorf("missing column %q", c)
		}
	}
	return p
}

// validateNumericCells flags cells the cleaner would silently drop because
// they are neither a sentinel nor a number.
func validateNumericCells(records []domain.RawRecord) *phase {
	p := &phase{name: "Numeric cells (sentinel policy)"}
	for i, r := range records {
		for _, col := range numericColumns {
			v, ok := r.Get(col)
			if !ok || isSentinel(v) {
				continue
			}
			if _, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(v), ",", ".", 1), 64); err != nil {
				p.errorf("row %d: %s=%q is not numeric", i+2, col, v)
			}
		}
	}
	return p
}

func isSentinel(v string) bool {
	switch strings.TrimSpace(v) {
	case "", "NA", "NaN", "<nil>", domain.TokenMultiple, domain.TokenNegligible:
		return true
	}
	return false
}

func validateDates(records []domain.RawRecord, year int) *phase {
	p := &phase{name: "Dates (parseable, in year, unique)"}
	seen := map[string]int{}
	for i, r := range records {
		raw, _ := r.Get(domain.ColDate)
		d, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
		if err != nil {
			p.errorf("row %d: fecha %q is not YYYY-MM-DD", i+2, raw)
			continue
		}
		if year > 0 && d.Year() != year {
			p.errorf("row %d: fecha %s outside %d", i+2, raw, year)
		}

		id, _ := r.Get(domain.ColStationID)
		key := id + "|" + raw
		if prev, dup := seen[key]; dup {
			p.errorf("row %d: station %s already has %s (row %d)", i+2, id, raw, prev)
			continue
		}
		seen[key] = i + 2
	}
	return p
}

// validateStationIdentity checks that a station id keeps one name, one
// province and one altitude across the year.
func validateStationIdentity(records []domain.RawRecord) *phase {
	p := &phase{name: "Station identity (name, province, altitude)"}
	type identity struct{ name, province, altitude string }

	first := map[string]identity{}
	reported := map[string]bool{}
	for i, r := range records {
		id, _ := r.Get(domain.ColStationID)
		name, _ := r.Get(domain.ColName)
		province, _ := r.Get(domain.ColProvince)
		altitude, _ := r.Get(domain.ColAltitud)
		cur := identity{name, province, altitude}

		prev, ok := first[id]
		if !ok {
			first[id] = cur
			continue
		}
		if prev != cur && !reported[id] {
			p.errorf("row %d: station %s changed from %+v to %+v", i+2, id, prev, cur)
			reported[id] = true
		}
	}
	return p
}

func distinct(records []domain.RawRecord, col string) int {
	set := map[string]struct{}{}
	for _, r := range records {
		if v, ok := r.Get(col); ok && !isSentinel(v) {
			set[v] = struct{}{}
		}
	}
	return len(set)
}
