package skewt

import (
	"fmt"
	"math"

	"github.com/icodeforyou/rapsounding-go/calc"
	"github.com/icodeforyou/rapsounding-go/convert"
	"github.com/icodeforyou/rapsounding-go/types/maybe"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// markerX is the horizontal position of level markers as a share of the plot width.
const markerX = 0.8

type marker struct {
	label string
	level maybe.Maybe[calc.Level]
}

// markerSeries writes the LCL, LFC and EL labels at their pressures.
type markerSeries struct {
	tr     transform
	levels []marker
}

func (markerSeries) GetName() string           { return "levels" }
func (markerSeries) GetYAxis() chart.YAxisType { return chart.YAxisSecondary }
func (markerSeries) GetStyle() chart.Style     { return chart.Style{} }
func (markerSeries) Validate() error           { return nil }

func (ms markerSeries) Render(r chart.Renderer, canvasBox chart.Box, _, yrange chart.Range, defaults chart.Style) {
	style := chart.Style{FontSize: 11, FontColor: drawing.Color{A: 230}}.InheritFrom(defaults)
	style.WriteTextOptionsToRenderer(r)

	x := canvasBox.Left + int(float64(canvasBox.Width())*markerX)
	for _, m := range ms.levels {
		lvl, ok := m.level.Get()
		if !ok || !ms.tr.inside(lvl.Pressure) {
			continue
		}
		y := canvasBox.Bottom - yrange.Translate(ms.tr.y(lvl.Pressure))
		box := r.MeasureText(m.label)
		r.Text(m.label, x, y+box.Height()/2)
	}
}

// surfaceLabelSeries annotates the surface temperature and dewpoint in degF.
type surfaceLabelSeries struct {
	tr          transform
	dpi         float64
	pressure    float64
	temperature float64
	dewpoint    float64
}

func (surfaceLabelSeries) GetName() string           { return "surface" }
func (surfaceLabelSeries) GetYAxis() chart.YAxisType { return chart.YAxisSecondary }
func (surfaceLabelSeries) GetStyle() chart.Style     { return chart.Style{} }
func (surfaceLabelSeries) Validate() error           { return nil }

func (ss surfaceLabelSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	if !ss.tr.inside(ss.pressure) {
		return
	}
	// Offsets are in points, like the font size.
	points := ss.dpi / 72
	y := canvasBox.Bottom - yrange.Translate(ss.tr.y(ss.pressure))
	labels := []struct {
		value  float64
		offset float64
		color  drawing.Color
	}{
		{ss.temperature, 22, drawing.Color{R: 255, A: 178}},
		{ss.dewpoint, -24, drawing.Color{G: 128, A: 178}},
	}
	for _, l := range labels {
		if math.IsNaN(l.value) {
			continue
		}
		style := chart.Style{FontSize: 11, FontColor: l.color}.InheritFrom(defaults)
		style.WriteTextOptionsToRenderer(r)
		text := fahrenheitLabel(l.value)
		box := r.MeasureText(text)
		x := canvasBox.Left + xrange.Translate(ss.tr.x(l.value, ss.pressure)) + int(l.offset*points)
		r.Text(text, x-box.Width()/2, y+box.Height()/2)
	}
}

// fahrenheitLabel truncates toward zero like the surface annotations always have.
func fahrenheitLabel(celsius float64) string {
	return fmt.Sprintf("%d°F", int(convert.CelsiusToFahrenheit(celsius)))
}
