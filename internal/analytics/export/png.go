package export

import (
	"errors"
	"io"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/salesdash/salesdash/internal/analytics"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("export: no data to render")

// PNGRenderer draws the daily chart as a raster image.
type PNGRenderer struct {
	Width  int
	Height int
}

// RenderDaily writes a PNG area chart of the dimension across the daily records.
func (p PNGRenderer) RenderDaily(w io.Writer, records []analytics.DailyRecord, d analytics.Dimension) error {
	if len(records) == 0 {
		return ErrNoData
	}
	width, height := p.Width, p.Height
	if width <= 0 {
		width = 960
	}
	if height <= 0 {
		height = 360
	}

	xs := make([]float64, 0, len(records)+1)
	ys := make([]float64, 0, len(records)+1)
	for i, r := range records {
		xs = append(xs, float64(i))
		ys = append(ys, float64(d.Value(r)))
	}
	// go-chart needs a non-zero x range.
	if len(xs) == 1 {
		xs = append(xs, 1)
		ys = append(ys, ys[0])
	}
	ticks := dailyTicks(records, len(xs))

	maxY := 0.0
	for _, y := range ys {
		if y > maxY {
			maxY = y
		}
	}
	if maxY <= 0 {
		maxY = 1
	}

	color := hexColor(d.Config().Color)
	ch := chart.Chart{
		Title:      d.Config().Label,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 32, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxY * 1.1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return analytics.FormatAxisTick(d, f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    d.Config().Label,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: color,
					StrokeWidth: 2,
					FillColor:   color.WithAlpha(48),
				},
			},
		},
	}
	return ch.Render(chart.PNG, w)
}

// dailyTicks labels every stride-th record. Explicit ticks also define the
// x range, so the last plotted point always gets one.
func dailyTicks(records []analytics.DailyRecord, points int) []chart.Tick {
	every := tickStride(len(records))
	ticks := make([]chart.Tick, 0, len(records)/every+2)
	for i, r := range records {
		if i%every == 0 {
			ticks = append(ticks, chart.Tick{Value: float64(i), Label: r.Date})
		}
	}
	last := points - 1
	if last > 0 && ticks[len(ticks)-1].Value < float64(last) {
		label := ""
		if last < len(records) {
			label = records[last].Date
		}
		ticks = append(ticks, chart.Tick{Value: float64(last), Label: label})
	}
	return ticks
}

func tickStride(n int) int {
	if n <= 10 {
		return 1
	}
	return (n + 9) / 10
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
