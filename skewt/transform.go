package skewt

import "math"

// Plot coordinates: y = ln(bottom/p) grows upward from the bottom pressure,
// x = T + skew*y so isotherms lean to the right.
type transform struct {
	pBottom, pTop float64
	tMin, tMax    float64
	skew          float64
}

func newTransform(pBottom, pTop, tMin, tMax float64, width, height int) transform {
	t := transform{pBottom: pBottom, pTop: pTop, tMin: tMin, tMax: tMax}
	// 45 degree isotherms on the given aspect ratio.
	t.skew = (tMax - tMin) / t.y(pTop) * float64(height) / float64(width)
	return t
}

func (t transform) y(p float64) float64 {
	return math.Log(t.pBottom / p)
}

func (t transform) x(temp, p float64) float64 {
	return temp + t.skew*t.y(p)
}

func (t transform) yMax() float64 {
	return t.y(t.pTop)
}

type point struct{ x, y float64 }

// line maps a temperature profile into plot coordinates and clips it to the
// plot area. A line leaving and re-entering the area becomes several pieces.
func (t transform) line(p, temp []float64) [][]point {
	pts := make([]point, 0, len(p))
	for i := range p {
		if math.IsNaN(temp[i]) || math.IsNaN(p[i]) || p[i] <= 0 {
			continue
		}
		pts = append(pts, point{t.x(temp[i], p[i]), t.y(p[i])})
	}
	return clip(pts, point{t.tMin, 0}, point{t.tMax, t.yMax()})
}

// clip cuts a polyline to the box lo..hi (Liang-Barsky per segment).
func clip(pts []point, lo, hi point) [][]point {
	var out [][]point
	var curr []point
	flush := func() {
		if len(curr) > 1 {
			out = append(out, curr)
		}
		curr = nil
	}
	for i := 1; i < len(pts); i++ {
		a, b, ok := clipSegment(pts[i-1], pts[i], lo, hi)
		if !ok {
			flush()
			continue
		}
		if len(curr) == 0 || curr[len(curr)-1] != a {
			flush()
			curr = append(curr, a)
		}
		curr = append(curr, b)
		if b != pts[i] {
			flush()
		}
	}
	flush()
	return out
}

func clipSegment(a, b, lo, hi point) (point, point, bool) {
	dx, dy := b.x-a.x, b.y-a.y
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, a.x - lo.x},
		{dx, hi.x - a.x},
		{-dy, a.y - lo.y},
		{dy, hi.y - a.y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			t0 = max(t0, r)
		} else {
			t1 = min(t1, r)
		}
		if t0 > t1 {
			return a, b, false
		}
	}
	ca := a
	if t0 > 0 {
		ca = point{a.x + t0*dx, a.y + t0*dy}
	}
	cb := b
	if t1 < 1 {
		cb = point{a.x + t1*dx, a.y + t1*dy}
	}
	return ca, cb, true
}

func (t transform) inside(p float64) bool {
	return p <= t.pBottom && p >= t.pTop
}
