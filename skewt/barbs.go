package skewt

import (
	"math"

	"github.com/icodeforyou/rapsounding-go/calc"
	"github.com/icodeforyou/rapsounding-go/convert"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// barb is the decomposition of a wind speed into pennants (50 kt), full
// barbs (10 kt) and half barbs (5 kt).
type barb struct {
	pennants, full, half int
}

func (b barb) calm() bool {
	return b.pennants == 0 && b.full == 0 && b.half == 0
}

// newBarb rounds speed (knots) to the nearest 5 kt.
func newBarb(speed float64) barb {
	n := int(math.Round(speed/5)) * 5
	b := barb{pennants: n / 50}
	n %= 50
	b.full = n / 10
	b.half = (n % 10) / 5
	return b
}

type vec struct{ x, y float64 }

func (a vec) add(b vec) vec       { return vec{a.x + b.x, a.y + b.y} }
func (a vec) scale(f float64) vec { return vec{a.x * f, a.y * f} }
func (a vec) ints() (int, int)    { return int(math.Round(a.x)), int(math.Round(a.y)) }

// barbShape is a barb in screen coordinates (y down) anchored at the origin.
type barbShape struct {
	staff    [2]vec
	pennants [][3]vec
	feathers [][2]vec
	calm     bool
}

// shape lays out the barb for a wind blowing from direction (degrees). The
// staff points into the wind and feathers sit on its clockwise side.
func (b barb) shape(direction, length float64) barbShape {
	if b.calm() {
		return barbShape{calm: true}
	}
	rad := convert.DegToRad(direction)
	along := vec{math.Sin(rad), -math.Cos(rad)}
	side := vec{-along.y, along.x}

	featherLen := length * 0.4
	spacing := length * 0.12
	tip := along.scale(length)
	s := barbShape{staff: [2]vec{{}, tip}}

	pos := length
	for i := 0; i < b.pennants; i++ {
		base := along.scale(pos)
		inner := along.scale(pos - spacing*1.5)
		outer := base.add(side.scale(featherLen))
		s.pennants = append(s.pennants, [3]vec{base, outer, inner})
		pos -= spacing * 2
	}
	if b.pennants > 0 {
		pos -= spacing * 0.5
	}
	for i := 0; i < b.full; i++ {
		base := along.scale(pos)
		s.feathers = append(s.feathers, [2]vec{base, base.add(side.scale(featherLen)).add(along.scale(spacing))})
		pos -= spacing
	}
	if b.half > 0 {
		// A lone half barb is set in from the tip so it is not mistaken for a full one.
		if b.pennants == 0 && b.full == 0 {
			pos -= spacing
		}
		base := along.scale(pos)
		s.feathers = append(s.feathers, [2]vec{base, base.add(side.scale(featherLen / 2)).add(along.scale(spacing / 2))})
	}
	return s
}

// barbSeries draws wind barbs along the right edge of the plot.
type barbSeries struct {
	tr       transform
	pressure []float64
	u, v     []float64
}

func (barbSeries) GetName() string           { return "wind" }
func (barbSeries) GetYAxis() chart.YAxisType { return chart.YAxisSecondary }
func (barbSeries) GetStyle() chart.Style     { return chart.Style{} }
func (barbSeries) Validate() error           { return nil }

func (bs barbSeries) Render(r chart.Renderer, canvasBox chart.Box, _, yrange chart.Range, _ chart.Style) {
	length := float64(canvasBox.Width()) * 0.06
	x := float64(canvasBox.Right) - length*0.6

	r.SetStrokeColor(drawing.ColorBlack)
	r.SetFillColor(drawing.ColorBlack)
	r.SetStrokeWidth(1)
	r.SetStrokeDashArray(nil)

	for i, p := range bs.pressure {
		if !bs.tr.inside(p) || math.IsNaN(bs.u[i]) || math.IsNaN(bs.v[i]) {
			continue
		}
		origin := vec{x, float64(canvasBox.Bottom - yrange.Translate(bs.tr.y(p)))}
		b := newBarb(calc.WindSpeed(bs.u[i], bs.v[i]))
		s := b.shape(calc.WindDirection(bs.u[i], bs.v[i]), length)
		if s.calm {
			r.Circle(length*0.1, int(origin.x), int(origin.y))
			r.Stroke()
			continue
		}
		moveTo(r, origin.add(s.staff[0]))
		lineTo(r, origin.add(s.staff[1]))
		r.Stroke()
		for _, f := range s.feathers {
			moveTo(r, origin.add(f[0]))
			lineTo(r, origin.add(f[1]))
			r.Stroke()
		}
		for _, t := range s.pennants {
			moveTo(r, origin.add(t[0]))
			lineTo(r, origin.add(t[1]))
			lineTo(r, origin.add(t[2]))
			r.Close()
			r.FillStroke()
		}
	}
}

func moveTo(r chart.Renderer, v vec) { r.MoveTo(v.ints()) }
func lineTo(r chart.Renderer, v vec) { r.LineTo(v.ints()) }
