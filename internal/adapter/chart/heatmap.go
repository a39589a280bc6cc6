package chart

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	gochart "github.com/wcharczuk/go-chart/v2"
	"golang.org/x/image/font"

	"github.com/couchcryptid/aemet-climate-etl/internal/domain"
)

// HeatmapColumns are the sub-scores drawn as heatmap columns, left to right.
var HeatmapColumns = []string{"temp_score", "prec_score", "alt_score"}

const (
	cellWidth   = 160.0
	cellHeight  = 36.0
	labelWidth  = 240.0
	titleHeight = 60.0
	headHeight  = 30.0
	margin      = 20.0

	labelFontSize = 13.0
)

// ylOrRd is the ColorBrewer yellow-orange-red ramp, low to high.
var ylOrRd = []color.RGBA{
	{0xff, 0xff, 0xcc, 0xff},
	{0xff, 0xed, 0xa0, 0xff},
	{0xfe, 0xd9, 0x76, 0xff},
	{0xfe, 0xb2, 0x4c, 0xff},
	{0xfd, 0x8d, 0x3c, 0xff},
	{0xfc, 0x4e, 0x2a, 0xff},
	{0xe3, 0x1a, 0x1c, 0xff},
	{0xbd, 0x00, 0x26, 0xff},
	{0x80, 0x00, 0x26, 0xff},
}

var missingCell = color.RGBA{0xdd, 0xdd, 0xdd, 0xff}

// RenderHeatmap draws one row per station and one column per sub-score,
// each cell annotated with its value to 2 decimals. Rows follow the order of
// scores.
func (r *Renderer) RenderHeatmap(path, title string, scores []domain.RiskScore) error {
	if len(scores) == 0 {
		return fmt.Errorf("render %s: %w", path, ErrNoSeries)
	}

	width := int(labelWidth + cellWidth*float64(len(HeatmapColumns)) + 2*margin)
	height := int(titleHeight + headHeight + cellHeight*float64(len(scores)) + 2*margin)

	face, err := labelFace(labelFontSize)
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}

	dc := gg.NewContext(width, height)
	dc.SetFontFace(face)
	dc.SetColor(color.White)
	dc.Clear()

	dc.SetColor(color.Black)
	dc.DrawStringAnchored(title, float64(width)/2, margin+titleHeight/2, 0.5, 0.5)

	top := margin + titleHeight
	left := margin + labelWidth
	for j, col := range HeatmapColumns {
		dc.DrawStringAnchored(col, left+cellWidth*(float64(j)+0.5), top+headHeight/2, 0.5, 0.5)
	}
	top += headHeight

	for i, s := range scores {
		y := top + cellHeight*float64(i)
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(s.Station, left-8, y+cellHeight/2, 1, 0.5)

		for j, v := range []*float64{s.TempScore, s.PrecScore, s.AltScore} {
			x := left + cellWidth*float64(j)
			fill, text := missingCell, "NA"
			if v != nil {
				fill = rampColor(*v)
				text = strconv.FormatFloat(*v, 'f', 2, 64)
			}

			dc.SetColor(fill)
			dc.DrawRectangle(x, y, cellWidth, cellHeight)
			dc.Fill()

			dc.SetColor(textColor(v))
			dc.DrawStringAnchored(text, x+cellWidth/2, y+cellHeight/2, 0.5, 0.5)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create chart directory: %w", err)
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	r.logger.Info("heatmap written", "path", path, "stations", len(scores))
	return nil
}

// labelFace returns go-chart's bundled Roboto at size points. gg's default
// face is ASCII only and would drop accented station names.
func labelFace(size float64) (font.Face, error) {
	f, err := gochart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("load label font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}

// rampColor maps v in [0,1] onto ylOrRd with linear interpolation between
// stops. Values outside the interval are clamped.
func rampColor(v float64) color.RGBA {
	v = math.Max(0, math.Min(1, v))
	pos := v * float64(len(ylOrRd)-1)
	i := int(math.Floor(pos))
	if i >= len(ylOrRd)-1 {
		return ylOrRd[len(ylOrRd)-1]
	}
	t := pos - float64(i)
	a, b := ylOrRd[i], ylOrRd[i+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + t*(float64(y)-float64(x))))
	}
	return color.RGBA{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B), 0xff}
}

func textColor(v *float64) color.Color {
	if v != nil && *v > 0.6 {
		return color.White
	}
	return color.Black
}
