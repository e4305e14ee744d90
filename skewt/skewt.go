// Package skewt renders Skew-T log-p diagrams of a single sounding.
package skewt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/icodeforyou/rapsounding-go/calc"
	"github.com/icodeforyou/rapsounding-go/types/maybe"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	PressureBottom = 1050.0
	PressureTop    = 100.0
	TemperatureMin = -40.0
	TemperatureMax = 50.0
)

var (
	colorTemperature = drawing.Color{R: 255, A: 255}
	colorDewpoint    = drawing.Color{G: 128, A: 255}
	colorWetBulb     = drawing.Color{R: 135, G: 206, B: 250, A: 255}
	colorParcel      = drawing.Color{A: 255}
	colorDryAdiabat  = drawing.Color{R: 255, G: 127, A: 64}
	colorMoistAdiab  = drawing.Color{B: 255, A: 64}
	colorMixingLine  = drawing.Color{G: 128, A: 64}
	colorGrid        = drawing.Color{R: 176, G: 176, B: 176, A: 160}
)

// Diagram is everything drawn on one chart. All pressures are in hPa and all
// temperatures in degC, ordered surface first.
type Diagram struct {
	Title       string
	Pressure    []float64
	Temperature []float64
	Dewpoint    []float64
	// Wind components in knots.
	U, V    []float64
	WetBulb []float64
	// Parcel is the lifted parcel path, nil when it should not be drawn.
	Parcel []float64
	LCL    maybe.Maybe[calc.Level]
	LFC    maybe.Maybe[calc.Level]
	EL     maybe.Maybe[calc.Level]
}

func (d Diagram) validate() error {
	n := len(d.Pressure)
	if n < 2 {
		return fmt.Errorf("diagram needs at least two levels, got %d", n)
	}
	for name, v := range map[string][]float64{
		"temperature": d.Temperature,
		"dewpoint":    d.Dewpoint,
		"u":           d.U,
		"v":           d.V,
		"wet bulb":    d.WetBulb,
	} {
		if len(v) != n {
			return fmt.Errorf("%s has %d values, pressure has %d", name, len(v), n)
		}
	}
	if d.Parcel != nil && len(d.Parcel) != n {
		return fmt.Errorf("parcel has %d values, pressure has %d", len(d.Parcel), n)
	}
	return nil
}

type Renderer struct {
	Width  int
	Height int
	DPI    float64
}

func NewRenderer(width, height int, dpi float64) *Renderer {
	return &Renderer{Width: width, Height: height, DPI: dpi}
}

// RenderFile writes the diagram as a PNG file, creating the directory if needed.
func (r *Renderer) RenderFile(path string, d Diagram) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := r.Render(w, d); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// Render writes the diagram as PNG to w.
func (r *Renderer) Render(w io.Writer, d Diagram) error {
	if err := d.validate(); err != nil {
		return err
	}
	graph := r.chart(d)
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render skew-t: %w", err)
	}
	return nil
}

func (r *Renderer) chart(d Diagram) chart.Chart {
	tr := newTransform(PressureBottom, PressureTop, TemperatureMin, TemperatureMax, r.Width, r.Height)

	var series []chart.Series
	add := func(pieces [][]point, style chart.Style) {
		for _, piece := range pieces {
			xs := make([]float64, len(piece))
			ys := make([]float64, len(piece))
			for i, pt := range piece {
				xs[i], ys[i] = pt.x, pt.y
			}
			series = append(series, chart.ContinuousSeries{
				Style:   style,
				YAxis:   chart.YAxisSecondary,
				XValues: xs,
				YValues: ys,
			})
		}
	}
	faint := func(c drawing.Color) chart.Style {
		return chart.Style{StrokeColor: c, StrokeWidth: 1}
	}

	bg := pressureSteps(PressureBottom, PressureTop, 10)
	for _, line := range dryAdiabats(bg) {
		add(tr.line(bg, line), faint(colorDryAdiabat))
	}
	for _, line := range moistAdiabats(bg) {
		add(tr.line(bg, line), faint(colorMoistAdiab))
	}
	mix := pressureSteps(PressureBottom, 600, 10)
	for _, line := range mixingLines(mix) {
		style := faint(colorMixingLine)
		style.StrokeDashArray = []float64{4, 4}
		add(tr.line(mix, line), style)
	}

	// Isotherms, reaching far enough left to fill the skewed corner.
	edge := []float64{PressureBottom, PressureTop}
	for t := -100.0; t <= TemperatureMax; t += 10 {
		add(tr.line(edge, []float64{t, t}), faint(colorGrid))
	}
	for _, p := range isobars {
		y := tr.y(p)
		add([][]point{{{TemperatureMin, y}, {TemperatureMax, y}}}, faint(colorGrid))
	}

	add(tr.line(d.Pressure, d.Temperature), chart.Style{StrokeColor: colorTemperature, StrokeWidth: 1.5})
	add(tr.line(d.Pressure, d.Dewpoint), chart.Style{StrokeColor: colorDewpoint, StrokeWidth: 1.5})
	if d.Parcel != nil {
		add(tr.line(d.Pressure, d.Parcel), chart.Style{
			StrokeColor:     colorParcel,
			StrokeWidth:     2,
			StrokeDashArray: []float64{6, 2},
		})
	}
	add(tr.line(d.Pressure, d.WetBulb), chart.Style{StrokeColor: colorWetBulb, StrokeWidth: 2})

	series = append(series,
		barbSeries{tr: tr, pressure: d.Pressure, u: d.U, v: d.V},
		markerSeries{tr: tr, levels: []marker{
			{label: "-- LCL --", level: d.LCL},
			{label: "-- LFC --", level: d.LFC},
			{label: "-- EL --", level: d.EL},
		}},
		surfaceLabelSeries{tr: tr, dpi: r.DPI, pressure: d.Pressure[0], temperature: d.Temperature[0], dewpoint: d.Dewpoint[0]},
	)

	return chart.Chart{
		Title:      d.Title,
		TitleStyle: chart.Style{FontSize: 11},
		Width:      r.Width,
		Height:     r.Height,
		DPI:        r.DPI,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Name:  "Temperature (C)",
			Range: &chart.ContinuousRange{Min: TemperatureMin, Max: TemperatureMax},
			Ticks: temperatureTicks(),
		},
		// go-chart takes the secondary range from the primary axis ticks, so
		// both axes carry the pressure ticks.
		YAxis: chart.YAxis{
			Style: chart.Hidden(),
			Range: &chart.ContinuousRange{Min: 0, Max: tr.yMax()},
			Ticks: pressureTicks(tr),
		},
		YAxisSecondary: chart.YAxis{
			Name:  "Pressure (hPa)",
			Range: &chart.ContinuousRange{Min: 0, Max: tr.yMax()},
			Ticks: pressureTicks(tr),
		},
		Series: series,
	}
}

var isobars = []float64{1000, 900, 800, 700, 600, 500, 400, 300, 200, 100}

func temperatureTicks() []chart.Tick {
	var ticks []chart.Tick
	for t := TemperatureMin; t <= TemperatureMax; t += 10 {
		ticks = append(ticks, chart.Tick{Value: t, Label: fmt.Sprintf("%.0f", t)})
	}
	return ticks
}

// pressureTicks spans the whole axis; go-chart derives the range from the ticks.
func pressureTicks(tr transform) []chart.Tick {
	ticks := []chart.Tick{{Value: tr.y(PressureBottom), Label: ""}}
	for _, p := range isobars {
		ticks = append(ticks, chart.Tick{Value: tr.y(p), Label: fmt.Sprintf("%.0f", p)})
	}
	return ticks
}
