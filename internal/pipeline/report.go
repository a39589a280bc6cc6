package pipeline

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/couchcryptid/aemet-climate-etl/internal/domain"
)

// displayProvince turns "MALAGA" into "Malaga" for chart titles.
func displayProvince(p string) string {
	return cases.Title(language.Spanish).String(strings.TrimSpace(p))
}

func reportFloat(v *float64) string {
	if v == nil {
		return "NaN"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func printSummary(w io.Writer, province string, stations []domain.StationSummary) error {
	fmt.Fprintf(w, "\nResumen de estaciones meteorológicas de %s:\n", displayProvince(province))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "nombre\ttmed_mean\ttmed_min\ttmed_max\tprec_sum\tracha_max\t")
	for _, s := range stations {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			s.Station,
			reportFloat(s.TempMean),
			reportFloat(s.TempMin),
			reportFloat(s.TempMax),
			reportFloat(s.PrecTotal),
			reportFloat(s.GustMax),
		)
	}
	return tw.Flush()
}

func printBasicStats(w io.Writer, obs []domain.Observation) {
	names := domain.StationNames(obs)

	fmt.Fprintln(w, "\nEstadísticas básicas:")
	fmt.Fprintf(w, "\nNúmero de estaciones: %d\n", len(names))
	fmt.Fprintln(w, "\nEstaciones encontradas:")
	for _, n := range names {
		fmt.Fprintf(w, "- %s\n", n)
	}

	fmt.Fprintln(w, "\nRango de fechas:")
	if from, to, ok := domain.DateRange(obs); ok {
		fmt.Fprintf(w, "Desde: %s\n", from.Format("2006-01-02"))
		fmt.Fprintf(w, "Hasta: %s\n", to.Format("2006-01-02"))
	} else {
		fmt.Fprintln(w, "Desde: NaN")
		fmt.Fprintln(w, "Hasta: NaN")
	}
}

func printRanking(w io.Writer, scores []domain.RiskScore) error {
	fmt.Fprintln(w, "\nRanking de estaciones por riesgo de problemas de temperatura:")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "\tnombre\ttemp_media\tprecipitacion_total\taltitud\triesgo_total\t")
	for i, s := range scores {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
			i+1,
			s.Station,
			reportFloat(s.TempMean),
			reportFloat(s.PrecTotal),
			reportFloat(s.Altitude),
			reportFloat(s.Total),
		)
	}
	return tw.Flush()
}

func printOutputs(w io.Writer, header string, outputs [][2]string) {
	fmt.Fprintf(w, "\n%s\n", header)
	for _, o := range outputs {
		fmt.Fprintf(w, "- %s: %s\n", o[0], o[1])
	}
}
