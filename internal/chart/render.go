package chart

import (
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	colorBackground = drawing.Color{R: 0, G: 0, B: 0, A: 255}
	colorTitle      = drawing.Color{R: 255, G: 255, B: 255, A: 255}
	colorAxis       = drawing.Color{R: 102, G: 102, B: 102, A: 255}
	colorLine       = drawing.Color{R: 250, G: 204, B: 21, A: 255}
	colorLineFill   = drawing.Color{R: 250, G: 204, B: 21, A: 26}
	colorVolume     = drawing.Color{R: 59, G: 130, B: 246, A: 255}
	colorVolumeFill = drawing.Color{R: 59, G: 130, B: 246, A: 77}
)

const (
	maxXTicks    = 8
	chartPadding = 16
	titlePadding = 40
	yAxisReserve = 120
)

// RenderPNG draws window v of s as a PNG of width x height pixels: a filled
// line for price modes, bars for volume. It is the server-side twin of the
// Chart.js config and backs the export trigger.
func RenderPNG(w io.Writer, s Series, v Viewport, width, height int) error {
	n := s.Len()
	if n == 0 {
		return ErrNoData
	}
	v = v.Clamp(n)
	labels := s.Labels[v.Min : v.Max+1]
	values := s.Values[v.Min : v.Max+1]

	if s.Mode.IsVolume() {
		return renderBars(w, s, labels, values, width, height)
	}
	return renderLine(w, s, v, labels, values, width, height)
}

func renderLine(w io.Writer, s Series, v Viewport, labels []string, values []float64, width, height int) error {
	xs := make([]float64, len(values))
	for i := range values {
		xs[i] = float64(v.Min + i)
	}

	xMin, xMax := float64(v.Min), float64(v.Max)
	yMin, yMax := paddedRange(values)
	ticks := xTicks(labels, v.Min)
	if v.Min == v.Max {
		// a lone point becomes a flat segment so there is something to stroke
		xMin, xMax = xMin-0.5, xMax+0.5
		xs = []float64{xMin, xMax}
		values = []float64{values[0], values[0]}
		ticks = []gochart.Tick{
			{Value: xMin},
			{Value: float64(v.Min), Label: labels[0]},
			{Value: xMax},
		}
	}

	c := gochart.Chart{
		Title:      s.Title(),
		TitleStyle: gochart.Style{FontColor: colorTitle},
		Width:      width,
		Height:     height,
		Background: gochart.Style{
			FillColor: colorBackground,
			Padding:   gochart.Box{Top: titlePadding, Left: chartPadding, Right: chartPadding, Bottom: chartPadding},
		},
		Canvas: gochart.Style{FillColor: colorBackground},
		XAxis: gochart.XAxis{
			Style: axisStyle(),
			Range: &gochart.ContinuousRange{Min: xMin, Max: xMax},
			Ticks: ticks,
		},
		YAxis: gochart.YAxis{
			Style: axisStyle(),
			Range: &gochart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    s.DatasetLabel(),
				XValues: xs,
				YValues: values,
				Style: gochart.Style{
					StrokeColor: colorLine,
					StrokeWidth: 2,
					FillColor:   colorLineFill,
				},
			},
		},
	}
	return c.Render(gochart.PNG, w)
}

func renderBars(w io.Writer, s Series, labels []string, values []float64, width, height int) error {
	step := labelStep(len(values))
	bars := make([]gochart.Value, len(values))
	for i, val := range values {
		label := ""
		if i%step == 0 {
			label = labels[i]
		}
		bars[i] = gochart.Value{
			Value: val,
			Label: label,
			Style: gochart.Style{FillColor: colorVolumeFill, StrokeColor: colorVolume, StrokeWidth: 1},
		}
	}

	yMin, yMax := barRange(values)
	barWidth, spacing := barGeometry(width, len(bars))

	bc := gochart.BarChart{
		Title:      s.Title(),
		TitleStyle: gochart.Style{FontColor: colorTitle},
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Background: gochart.Style{
			FillColor: colorBackground,
			Padding:   gochart.Box{Top: titlePadding, Left: chartPadding, Right: chartPadding, Bottom: chartPadding},
		},
		Canvas: gochart.Style{FillColor: colorBackground},
		XAxis:  axisStyle(),
		YAxis: gochart.YAxis{
			Style: axisStyle(),
			Range: &gochart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Bars: bars,
	}
	return bc.Render(gochart.PNG, w)
}

func axisStyle() gochart.Style {
	return gochart.Style{StrokeColor: colorAxis, FontColor: colorAxis, FontSize: 8}
}

// xTicks labels at most maxXTicks+1 evenly spaced points. offset is the index
// of labels[0] on the full axis. go-chart takes the x range from the ticks,
// so the last label always gets one; a stepped tick too close to it is
// dropped.
func xTicks(labels []string, offset int) []gochart.Tick {
	n := len(labels)
	if n == 0 {
		return nil
	}
	step := labelStep(n)
	ticks := make([]gochart.Tick, 0, maxXTicks+2)
	for i := 0; i < n; i += step {
		ticks = append(ticks, gochart.Tick{Value: float64(offset + i), Label: labels[i]})
	}
	last := n - 1
	if int(ticks[len(ticks)-1].Value) == offset+last {
		return ticks
	}
	if len(ticks) > 1 && 2*(offset+last-int(ticks[len(ticks)-1].Value)) < step {
		ticks = ticks[:len(ticks)-1]
	}
	return append(ticks, gochart.Tick{Value: float64(offset + last), Label: labels[last]})
}

func labelStep(n int) int {
	if n <= maxXTicks {
		return 1
	}
	return int(math.Ceil(float64(n) / maxXTicks))
}

// paddedRange returns a y range 5% wider than the data, never zero-width.
func paddedRange(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.05, 1)
	}
	return lo - pad, hi + pad
}

// barRange anchors bars at zero unless the data goes negative.
func barRange(values []float64) (float64, float64) {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	hi *= 1.05
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

// barGeometry fits n bars in the plotting width: 3/4 bar, 1/4 gap, at least 1px each.
func barGeometry(width, n int) (int, int) {
	avail := width - yAxisReserve - 2*chartPadding
	per := 0
	if n > 0 {
		per = avail / n
	}
	spacing := per / 4
	if spacing < 1 {
		spacing = 1
	}
	bar := per - spacing
	if bar < 1 {
		bar = 1
	}
	return bar, spacing
}
