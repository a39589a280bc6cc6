package domain

import (
	"strings"
	"time"
)

// Column names of the yearly CSV, as emitted by AEMET.
const (
	ColStationID = "indicativo"
	ColName      = "nombre"
	ColProvince  = "provincia"
	ColDate      = "fecha"
	ColTMed      = "tmed"
	ColPrec      = "prec"
	ColTMin      = "tmin"
	ColTMax      = "tmax"
	ColVelMedia  = "velmedia"
	ColRacha     = "racha"
	ColPresMax   = "presMax"
	ColPresMin   = "presMin"
	ColAltitud   = "altitud"
)

// ObservationColumns is the fixed column set read from and written to the
// province CSV.
var ObservationColumns = []string{
	ColStationID, ColName, ColProvince, ColDate,
	ColTMed, ColPrec, ColTMin, ColTMax,
	ColVelMedia, ColRacha, ColPresMax, ColPresMin, ColAltitud,
}

// dateLayouts are tried in order when parsing the fecha column.
var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

// Observation is one station on one day, with numeric fields cleaned.
// Absent values are nil.
type Observation struct {
	StationID string
	Name      string
	Province  string
	Date      time.Time // zero when missing or unparseable

	TMed     *float64 // mean temperature, °C
	Prec     *float64 // precipitation, mm
	TMin     *float64 // °C
	TMax     *float64 // °C
	VelMedia *float64 // mean wind speed, m/s
	Racha    *float64 // max gust, m/s
	PresMax  *float64 // hPa
	PresMin  *float64 // hPa
	Altitud  *float64 // m

	// Extra holds the remaining raw columns (hrMedia, sol, horatmin...)
	// verbatim, in file order.
	Extra []Field
}

// ParseObservation builds an Observation from a row keyed by column name.
// Missing columns are treated as absent values.
func ParseObservation(row map[string]string) Observation {
	return Observation{
		StationID: textField(row[ColStationID]),
		Name:      textField(row[ColName]),
		Province:  textField(row[ColProvince]),
		Date:      parseDate(row[ColDate]),
		TMed:      CleanNumeric(row[ColTMed]),
		Prec:      CleanNumeric(row[ColPrec]),
		TMin:      CleanNumeric(row[ColTMin]),
		TMax:      CleanNumeric(row[ColTMax]),
		VelMedia:  CleanNumeric(row[ColVelMedia]),
		Racha:     CleanNumeric(row[ColRacha]),
		PresMax:   CleanNumeric(row[ColPresMax]),
		PresMin:   CleanNumeric(row[ColPresMin]),
		Altitud:   CleanNumeric(row[ColAltitud]),
	}
}

// Value returns the numeric field stored under column. ok is false when the
// column is not numeric.
func (o Observation) Value(column string) (v *float64, ok bool) {
	switch column {
	case ColTMed:
		return o.TMed, true
	case ColPrec:
		return o.Prec, true
	case ColTMin:
		return o.TMin, true
	case ColTMax:
		return o.TMax, true
	case ColVelMedia:
		return o.VelMedia, true
	case ColRacha:
		return o.Racha, true
	case ColPresMax:
		return o.PresMax, true
	case ColPresMin:
		return o.PresMin, true
	case ColAltitud:
		return o.Altitud, true
	default:
		return nil, false
	}
}

func textField(s string) string {
	if isNA(s) {
		return ""
	}
	return s
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if isNA(s) {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
