package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testStationA = "MALAGA AEROPUERTO"
	testStationB = "RONDA"
)

func TestParseObservation(t *testing.T) {
	t.Run("full row", func(t *testing.T) {
		o := ParseObservation(map[string]string{
			ColStationID: "6155A",
			ColName:      testStationA,
			ColProvince:  "MALAGA",
			ColDate:      "2024-07-14",
			ColTMed:      "26,4",
			ColPrec:      "Ip",
			ColTMin:      "21,0",
			ColTMax:      "31,8",
			ColVelMedia:  "3,1",
			ColRacha:     "Varias",
			ColPresMax:   "1015,2",
			ColPresMin:   "",
			ColAltitud:   "5",
		})

		assert.Equal(t, "6155A", o.StationID)
		assert.Equal(t, testStationA, o.Name)
		assert.Equal(t, "MALAGA", o.Province)
		assert.Equal(t, time.Date(2024, time.July, 14, 0, 0, 0, 0, time.UTC), o.Date)
		require.NotNil(t, o.TMed)
		assert.InDelta(t, 26.4, *o.TMed, 1e-9)
		require.NotNil(t, o.Prec)
		assert.Equal(t, 0.0, *o.Prec)
		assert.Nil(t, o.Racha)
		assert.Nil(t, o.PresMin)
		require.NotNil(t, o.Altitud)
		assert.Equal(t, 5.0, *o.Altitud)
	})

	t.Run("missing columns are absent", func(t *testing.T) {
		o := ParseObservation(map[string]string{ColName: testStationB, ColProvince: "NaN", ColDate: "not a date"})
		assert.Equal(t, testStationB, o.Name)
		assert.Empty(t, o.Province)
		assert.True(t, o.Date.IsZero())
		assert.Nil(t, o.TMed)
		assert.Nil(t, o.Altitud)
	})
}

func TestObservation_Value(t *testing.T) {
	o := Observation{TMed: ptr(10), Altitud: ptr(700)}

	v, ok := o.Value(ColTMed)
	assert.True(t, ok)
	assert.Equal(t, 10.0, *v)

	v, ok = o.Value(ColPrec)
	assert.True(t, ok)
	assert.Nil(t, v)

	_, ok = o.Value(ColName)
	assert.False(t, ok)
}

func TestFilterProvince(t *testing.T) {
	obs := []Observation{
		{Name: testStationA, Province: "MALAGA (AEROPUERTO)"},
		{Name: "CORDOBA", Province: "CORDOBA"},
		{Name: "SIN PROVINCIA", Province: ""},
		{Name: testStationB, Province: "MALAGA"},
		{Name: "LOWER", Province: "malaga"},
	}

	got := FilterProvince(obs, "MALAGA")
	require.Len(t, got, 2)
	assert.Equal(t, testStationA, got[0].Name)
	assert.Equal(t, testStationB, got[1].Name)

	assert.Empty(t, FilterProvince(nil, "MALAGA"))
	assert.Empty(t, FilterProvince(obs, "SEVILLA"))
}

func TestSeriesByStation(t *testing.T) {
	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	obs := []Observation{
		{Name: testStationB, Date: d1, TMed: ptr(9)},
		{Name: testStationA, Date: d1, TMed: ptr(14)},
		{Name: testStationB, Date: d2, TMed: nil},
		{Name: testStationA, Date: d2, TMed: ptr(15)},
		{Name: "NO DATA", Date: d1},
		{Name: "NO DATE", TMed: ptr(3)},
	}

	series := SeriesByStation(obs, ColTMed)
	require.Len(t, series, 2)
	assert.Equal(t, testStationB, series[0].Station)
	assert.Equal(t, []float64{9}, series[0].Values)
	assert.Equal(t, testStationA, series[1].Station)
	assert.Equal(t, []time.Time{d1, d2}, series[1].Dates)
	assert.Equal(t, []float64{14, 15}, series[1].Values)
}

func TestStationNamesAndDateRange(t *testing.T) {
	d1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	obs := []Observation{
		{Name: testStationB, Date: d1},
		{Name: testStationA},
		{Name: testStationB, Date: d2},
	}

	assert.Equal(t, []string{testStationB, testStationA}, StationNames(obs))

	from, to, ok := DateRange(obs)
	require.True(t, ok)
	assert.Equal(t, d2, from)
	assert.Equal(t, d1, to)

	_, _, ok = DateRange([]Observation{{Name: testStationA}})
	assert.False(t, ok)
}
