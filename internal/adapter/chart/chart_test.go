package chart

import (
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gochart "github.com/wcharczuk/go-chart/v2"
	"golang.org/x/image/math/fixed"

	"github.com/couchcryptid/aemet-climate-etl/internal/domain"
)

func testRenderer() *Renderer {
	return NewRenderer(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func ptr(v float64) *float64 { return &v }

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func decodePNG(t *testing.T, path string) (width, height int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestRenderLineChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "temperaturas_malaga.png")
	series := []domain.StationSeries{
		{Station: "MALAGA AEROPUERTO", Dates: []time.Time{day(1), day(2), day(3)}, Values: []float64{14.2, 15.1, 13.9}},
		{Station: "RONDA", Dates: []time.Time{day(1), day(3)}, Values: []float64{9.8, 8.7}},
	}

	require.NoError(t, testRenderer().RenderLineChart(path, "Temperatura Media por Estación en Málaga", "Temperatura Media (°C)", series))

	w, h := decodePNG(t, path)
	assert.Equal(t, lineWidth, w)
	assert.Equal(t, lineHeight, h)
}

func TestRenderLineChart_SinglePoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "precipitaciones.png")
	series := []domain.StationSeries{
		{Station: "RONDA", Dates: []time.Time{day(5)}, Values: []float64{0}},
	}

	require.NoError(t, testRenderer().RenderLineChart(path, "Precipitaciones", "Precipitación (mm)", series))
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestRenderLineChart_NoSeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	err := testRenderer().RenderLineChart(path, "t", "y", nil)
	require.ErrorIs(t, err, ErrNoSeries)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRenderHeatmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph", "analisis_riesgo_estaciones.png")
	scores := []domain.RiskScore{
		{StationMetrics: domain.StationMetrics{Station: "A"}, TempScore: ptr(1), PrecScore: ptr(0), AltScore: ptr(0.5)},
		{StationMetrics: domain.StationMetrics{Station: "B"}, TempScore: ptr(0), PrecScore: nil, AltScore: ptr(1)},
	}

	require.NoError(t, testRenderer().RenderHeatmap(path, "Análisis de Riesgo por Estación", scores))

	w, h := decodePNG(t, path)
	assert.Equal(t, int(labelWidth+3*cellWidth+2*margin), w)
	assert.Equal(t, int(titleHeight+headHeight+2*cellHeight+2*margin), h)
}

func TestLabelFace_CoversSpanishNames(t *testing.T) {
	face, err := labelFace(labelFontSize)
	require.NoError(t, err)
	f, err := gochart.GetDefaultFont()
	require.NoError(t, err)

	for _, r := range "CAÑETE LA REAL Análisis Estación ÁÉÍÓÚÜ" {
		_, _, _, _, ok := face.Glyph(fixed.Point26_6{}, r)
		assert.True(t, ok, "no glyph for %q", r)
		if r != ' ' {
			assert.NotZero(t, f.Index(r), "font lacks %q", r)
		}
	}
}

func TestRenderHeatmap_AccentedStations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analisis_riesgo_estaciones.png")
	scores := []domain.RiskScore{
		{StationMetrics: domain.StationMetrics{Station: "CAÑETE LA REAL"}, TempScore: ptr(0.2), PrecScore: ptr(0.9), AltScore: ptr(0)},
		{StationMetrics: domain.StationMetrics{Station: "CÁRTAMA"}, TempScore: ptr(1), PrecScore: ptr(0), AltScore: ptr(1)},
	}

	require.NoError(t, testRenderer().RenderHeatmap(path, "Análisis de Riesgo por Estación", scores))

	w, h := decodePNG(t, path)
	assert.Equal(t, int(labelWidth+3*cellWidth+2*margin), w)
	assert.Equal(t, int(titleHeight+headHeight+2*cellHeight+2*margin), h)
}

func TestRenderHeatmap_Empty(t *testing.T) {
	err := testRenderer().RenderHeatmap(filepath.Join(t.TempDir(), "h.png"), "t", nil)
	require.ErrorIs(t, err, ErrNoSeries)
}

func TestRampColor(t *testing.T) {
	assert.Equal(t, ylOrRd[0], rampColor(0))
	assert.Equal(t, ylOrRd[len(ylOrRd)-1], rampColor(1))
	assert.Equal(t, ylOrRd[0], rampColor(-3))
	assert.Equal(t, ylOrRd[len(ylOrRd)-1], rampColor(7))
	assert.Equal(t, ylOrRd[4], rampColor(0.5))
}

func TestTextColor(t *testing.T) {
	assert.Equal(t, color.White, textColor(ptr(0.9)))
	assert.Equal(t, color.Black, textColor(ptr(0.1)))
	assert.Equal(t, color.Black, textColor(nil))
}
