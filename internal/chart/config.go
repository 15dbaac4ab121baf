package chart

import (
	"fmt"
	"strings"

	"github.com/guttosm/b3view/internal/domain/models"
)

const (
	TypeLine = "line"
	TypeBar  = "bar"

	lineColor   = "#facc15"
	lineFill    = "rgba(250, 204, 21, 0.1)"
	volumeColor = "#3b82f6"
	volumeFill  = "rgba(59, 130, 246, 0.3)"
	dragFill    = "rgba(250, 204, 21, 0.2)"
	axisColor   = "#666"
	gridColor   = "rgba(255, 255, 255, 0.05)"
	fontFamily  = "JetBrains Mono"
)

// Series is the plotted data of one chart: one label and one value per record.
type Series struct {
	Ticker string
	Mode   models.DisplayMode
	Labels []string
	Values []float64
}

// Build derives the series of ticker in mode from records.
//
// Labels come from FormatLabel, values from the record field named by mode.
// It fails with ErrNoTicker / ErrNoData when a precondition is missing and
// with ErrMissingField when a record lacks the mode's field.
func Build(ticker string, mode models.DisplayMode, records []models.Record) (Series, error) {
	if strings.TrimSpace(ticker) == "" {
		return Series{}, ErrNoTicker
	}
	if len(records) == 0 {
		return Series{}, ErrNoData
	}

	labels, err := Labels(records)
	if err != nil {
		return Series{}, err
	}

	values := make([]float64, len(records))
	for i, r := range records {
		v, ok := r.Value(mode)
		if !ok {
			return Series{}, fmt.Errorf("%w: record %d (%s) has no %q", ErrMissingField, i, r.Date, mode)
		}
		values[i] = v
	}

	return Series{Ticker: ticker, Mode: mode, Labels: labels, Values: values}, nil
}

// Len is the number of points.
func (s Series) Len() int { return len(s.Values) }

// Type is "bar" for volume and "line" otherwise.
func (s Series) Type() string {
	if s.Mode.IsVolume() {
		return TypeBar
	}
	return TypeLine
}

// DatasetLabel is "{MODE} - {TICKER}".
func (s Series) DatasetLabel() string {
	return strings.ToUpper(string(s.Mode)) + " - " + s.Ticker
}

// Title is "{TICKER} - {mode label}", used on exported images.
func (s Series) Title() string {
	return s.Ticker + " - " + s.Mode.Label()
}

// Config is a Chart.js configuration object.
type Config struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label            string    `json:"label"`
	Data             []float64 `json:"data"`
	BorderColor      string    `json:"borderColor"`
	BackgroundColor  string    `json:"backgroundColor"`
	BorderWidth      int       `json:"borderWidth"`
	Fill             bool      `json:"fill"`
	Tension          float64   `json:"tension"`
	PointRadius      int       `json:"pointRadius"`
	PointHoverRadius int       `json:"pointHoverRadius"`
}

type Options struct {
	Responsive          bool        `json:"responsive"`
	MaintainAspectRatio bool        `json:"maintainAspectRatio"`
	Interaction         Interaction `json:"interaction"`
	Plugins             Plugins     `json:"plugins"`
	Scales              Scales      `json:"scales"`
}

type Interaction struct {
	Intersect bool   `json:"intersect"`
	Mode      string `json:"mode"`
}

type Plugins struct {
	Legend  Toggle  `json:"legend"`
	Zoom    Zoom    `json:"zoom"`
	Tooltip Tooltip `json:"tooltip"`
}

// Toggle is the {"enabled": bool} / {"display": bool} family of options.
type Toggle struct {
	Enabled *bool `json:"enabled,omitempty"`
	Display *bool `json:"display,omitempty"`
}

// Zoom configures chartjs-plugin-zoom. Both gestures are restricted to the x axis.
type Zoom struct {
	Pan  Pan         `json:"pan"`
	Zoom ZoomGesture `json:"zoom"`
}

type Pan struct {
	Enabled bool   `json:"enabled"`
	Mode    string `json:"mode"`
}

type ZoomGesture struct {
	Wheel Toggle `json:"wheel"`
	Drag  Drag   `json:"drag"`
	Mode  string `json:"mode"`
}

type Drag struct {
	Enabled         bool   `json:"enabled"`
	BackgroundColor string `json:"backgroundColor"`
	BorderColor     string `json:"borderColor"`
	BorderWidth     int    `json:"borderWidth"`
}

type Tooltip struct {
	BackgroundColor string `json:"backgroundColor"`
	TitleColor      string `json:"titleColor"`
	BodyColor       string `json:"bodyColor"`
	BorderColor     string `json:"borderColor"`
	BorderWidth     int    `json:"borderWidth"`
	TitleFont       Font   `json:"titleFont"`
}

type Font struct {
	Family string `json:"family"`
	Size   int    `json:"size,omitempty"`
}

type Scales struct {
	X Axis `json:"x"`
	Y Axis `json:"y"`
}

// Axis is one scale. Min/Max are label indexes on the x axis.
type Axis struct {
	Min   *int  `json:"min,omitempty"`
	Max   *int  `json:"max,omitempty"`
	Grid  Grid  `json:"grid"`
	Ticks Ticks `json:"ticks"`
}

type Grid struct {
	Display *bool  `json:"display,omitempty"`
	Color   string `json:"color,omitempty"`
}

type Ticks struct {
	Color string `json:"color"`
	Font  Font   `json:"font"`
}

// Config renders the series as a Chart.js configuration showing window v.
// A full window leaves the x scale bounds unset.
func (s Series) Config(v Viewport) Config {
	bar := s.Mode.IsVolume()

	ds := Dataset{
		Label:            s.DatasetLabel(),
		Data:             s.Values,
		BorderColor:      lineColor,
		BackgroundColor:  lineFill,
		BorderWidth:      2,
		Fill:             true,
		Tension:          0.3,
		PointRadius:      0,
		PointHoverRadius: 6,
	}
	if bar {
		ds.BorderColor = volumeColor
		ds.BackgroundColor = volumeFill
	}

	tickFont := Font{Family: fontFamily, Size: 10}
	x := Axis{
		Grid:  Grid{Display: boolPtr(false)},
		Ticks: Ticks{Color: axisColor, Font: tickFont},
	}
	if !v.IsFull(s.Len()) {
		x.Min, x.Max = intPtr(v.Min), intPtr(v.Max)
	}

	return Config{
		Type: s.Type(),
		Data: Data{Labels: s.Labels, Datasets: []Dataset{ds}},
		Options: Options{
			Responsive:          true,
			MaintainAspectRatio: false,
			Interaction:         Interaction{Intersect: false, Mode: "index"},
			Plugins: Plugins{
				Legend: Toggle{Display: boolPtr(false)},
				Zoom: Zoom{
					Pan: Pan{Enabled: true, Mode: "x"},
					Zoom: ZoomGesture{
						Wheel: Toggle{Enabled: boolPtr(true)},
						Drag: Drag{
							Enabled:         true,
							BackgroundColor: dragFill,
							BorderColor:     lineColor,
							BorderWidth:     1,
						},
						Mode: "x",
					},
				},
				Tooltip: Tooltip{
					BackgroundColor: "#171717",
					TitleColor:      lineColor,
					BodyColor:       "#fff",
					BorderColor:     "#333",
					BorderWidth:     1,
					TitleFont:       Font{Family: fontFamily},
				},
			},
			Scales: Scales{
				X: x,
				Y: Axis{
					Grid:  Grid{Color: gridColor},
					Ticks: Ticks{Color: axisColor, Font: tickFont},
				},
			},
		},
	}
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }
