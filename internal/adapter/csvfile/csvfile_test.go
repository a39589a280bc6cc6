package csvfile

import (
	"encoding/json"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/aemet-climate-etl/internal/domain"
)

func testStore() *Store {
	return NewStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func ptr(v float64) *float64 { return &v }

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func rawRecords(t *testing.T, js string) []domain.RawRecord {
	t.Helper()
	var records []domain.RawRecord
	require.NoError(t, json.Unmarshal([]byte(js), &records))
	return records
}

func TestWriteRaw_HeaderIsUnionInFirstSeenOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "csv", "datos.csv")
	records := rawRecords(t, `[
		{"fecha":"2024-01-01","nombre":"MALAGA AEROPUERTO","tmed":"14,2"},
		{"fecha":"2024-01-01","nombre":"RONDA","prec":"Ip","tmed":"9,8"}
	]`)

	require.NoError(t, testStore().WriteRaw(path, records))

	lines := strings.Split(strings.TrimSpace(readFile(t, path)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "fecha,nombre,tmed,prec", lines[0])
	assert.Equal(t, `2024-01-01,MALAGA AEROPUERTO,"14,2",`, lines[1])
	assert.Equal(t, `2024-01-01,RONDA,"9,8",Ip`, lines[2])
}

func TestReadObservations_RoundTripsRawRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datos.csv")
	records := rawRecords(t, `[
		{"fecha":"2024-03-02","indicativo":"6155A","nombre":"MALAGA AEROPUERTO","provincia":"MALAGA","altitud":"7","tmed":"14,2","prec":"Ip","racha":"Varias"},
		{"fecha":"2024-03-02","indicativo":"6032B","nombre":"RONDA","provincia":"MALAGA","altitud":"739","tmed":"9,8","prec":"3,4"}
	]`)
	s := testStore()
	require.NoError(t, s.WriteRaw(path, records))

	obs, err := s.ReadObservations(path)
	require.NoError(t, err)
	require.Len(t, obs, 2)

	a := obs[0]
	assert.Equal(t, "6155A", a.StationID)
	assert.Equal(t, "MALAGA AEROPUERTO", a.Name)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), a.Date)
	assert.Equal(t, ptr(14.2), a.TMed)
	assert.Equal(t, ptr(0), a.Prec)
	assert.Nil(t, a.Racha)
	assert.Nil(t, a.TMax, "missing column is absent")
	assert.Equal(t, ptr(7), a.Altitud)

	b := obs[1]
	assert.Equal(t, ptr(3.4), b.Prec)
	assert.Nil(t, b.Racha, "empty cell is absent")
}

func TestReadObservations_NATokens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datos.csv")
	require.NoError(t, os.WriteFile(path, []byte("nombre,provincia,tmed\nRONDA,NA,NA\n"), 0o644))

	obs, err := testStore().ReadObservations(path)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Empty(t, obs[0].Province)
	assert.Nil(t, obs[0].TMed)
}

func TestReadObservations_MissingFile(t *testing.T) {
	_, err := testStore().ReadObservations(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestWriteObservations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datos_malaga.csv")
	obs := []domain.Observation{{
		StationID: "6155A",
		Name:      "MALAGA AEROPUERTO",
		Province:  "MALAGA",
		Date:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TMed:      ptr(14.2),
		Prec:      ptr(0),
		Altitud:   ptr(7),
	}}

	require.NoError(t, testStore().WriteObservations(path, obs))

	lines := strings.Split(strings.TrimSpace(readFile(t, path)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(domain.ObservationColumns, ","), lines[0])
	assert.Equal(t, "6155A,MALAGA AEROPUERTO,MALAGA,2024-01-01,14.2,0,,,,,,,7", lines[1])
}

func TestWriteObservations_PassesThroughRawColumns(t *testing.T) {
	in := filepath.Join(t.TempDir(), "datos.csv")
	require.NoError(t, os.WriteFile(in, []byte(
		"fecha,indicativo,nombre,provincia,altitud,tmed,hrMedia,sol,horatmin\n"+
			"2024-01-01,6155A,MALAGA AEROPUERTO,MALAGA,7,\"14,2\",72,\"8,1\",06:10\n"+
			"2024-01-01,6032B,RONDA,MALAGA,739,\"9,6\",NA,,Varias\n",
	), 0o644))

	s := testStore()
	obs, err := s.ReadObservations(in)
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, []domain.Field{{Key: "hrMedia", Value: "72"}, {Key: "sol", Value: "8,1"}, {Key: "horatmin", Value: "06:10"}}, obs[0].Extra)

	out := filepath.Join(t.TempDir(), "datos_malaga.csv")
	require.NoError(t, s.WriteObservations(out, obs))

	lines := strings.Split(strings.TrimSpace(readFile(t, out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(domain.ObservationColumns, ",")+",hrMedia,sol,horatmin", lines[0])
	assert.Equal(t, `6155A,MALAGA AEROPUERTO,MALAGA,2024-01-01,14.2,,,,,,,,7,72,"8,1",06:10`, lines[1])
	assert.Equal(t, "6032B,RONDA,MALAGA,2024-01-01,9.6,,,,,,,,739,,,Varias", lines[2])
}

func TestWriteObservations_EmptyWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datos_cadiz.csv")
	require.NoError(t, testStore().WriteObservations(path, nil))
	assert.Equal(t, strings.Join(domain.ObservationColumns, ",")+"\n", readFile(t, path))
}

func TestWriteRanking(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analisis_parque_tecnologico.csv")
	scores := []domain.RiskScore{
		{
			StationMetrics: domain.StationMetrics{Station: "A", TempMean: ptr(20), TempMax: ptr(30.5), PrecTotal: ptr(100), Altitude: ptr(5)},
			TempScore:      ptr(1),
			PrecScore:      ptr(1),
			AltScore:       ptr(1),
			Total:          ptr(1),
		},
		{
			StationMetrics: domain.StationMetrics{Station: "B", TempMean: ptr(10), PrecTotal: ptr(0)},
			TempScore:      ptr(0),
			PrecScore:      ptr(0),
		},
	}

	require.NoError(t, testStore().WriteRanking(path, scores))

	lines := strings.Split(strings.TrimSpace(readFile(t, path)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(RankingColumns, ","), lines[0])
	assert.Equal(t, "A,20,30.5,100,5,1,1,1,1", lines[1])
	assert.Equal(t, "B,10,,0,,0,0,,", lines[2])
}

func TestWrite_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer than the new one\n"), 0o644))

	require.NoError(t, testStore().WriteRanking(path, nil))
	assert.Equal(t, strings.Join(RankingColumns, ",")+"\n", readFile(t, path))
}

func TestReadRaw_KeepsHeaderOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datos.csv")
	require.NoError(t, os.WriteFile(path, []byte("fecha,nombre,racha\n2024-01-01,RONDA,Varias\n2024-01-02,RONDA,NA\n"), 0o644))

	records, err := testStore().ReadRaw(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"fecha", "nombre", "racha"}, domain.Columns(records))
	v, _ := records[0].Get("racha")
	assert.Equal(t, domain.TokenMultiple, v)
	v, _ = records[1].Get("racha")
	assert.Equal(t, "NaN", v)
}

func TestReadRawTable_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datos.csv")
	require.NoError(t, os.WriteFile(path, []byte("fecha,indicativo,nombre\n"), 0o644))

	header, records, err := testStore().ReadRawTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"fecha", "indicativo", "nombre"}, header)
	assert.Empty(t, records)
}

func TestReadRawTable_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datos.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	header, records, err := testStore().ReadRawTable(path)
	require.NoError(t, err)
	assert.Empty(t, header)
	assert.Empty(t, records)
}

func TestReadRawTable_HeaderWithRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datos.csv")
	require.NoError(t, os.WriteFile(path, []byte("fecha,nombre\n2024-01-01,RONDA\n"), 0o644))

	header, records, err := testStore().ReadRawTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"fecha", "nombre"}, header)
	require.Len(t, records, 1)
	v, _ := records[0].Get("nombre")
	assert.Equal(t, "RONDA", v)
}
