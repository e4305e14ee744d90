package calc

import (
	"math"
)

// Direction selects which crossings Intersections reports, seen from the
// first curve: Increasing when it rises above the second.
type Direction int

const (
	All Direction = iota
	Increasing
	Decreasing
)

// Intersections finds where the curves a and b cross on the pressure axis p.
// Interpolation is linear in ln p.
func Intersections(p, a, b []float64, dir Direction) (xs, ys []float64) {
	n := min(len(p), len(a), len(b))
	if n < 2 {
		return nil, nil
	}
	for i := 0; i < n-1; i++ {
		s0 := sign(a[i] - b[i])
		s1 := sign(a[i+1] - b[i+1])
		if s0 == s1 {
			continue
		}
		switch {
		case dir == Increasing && s1 <= 0:
			continue
		case dir == Decreasing && s1 >= 0:
			continue
		}

		x0, x1 := math.Log(p[i]), math.Log(p[i+1])
		dy0 := a[i] - b[i]
		dy1 := a[i+1] - b[i+1]
		x := (dy1*x0 - dy0*x1) / (dy1 - dy0)
		y := (x-x0)*(a[i+1]-a[i])/(x1-x0) + a[i]

		px := math.Exp(x)
		if len(xs) > 0 && xs[len(xs)-1] == px {
			continue
		}
		xs = append(xs, px)
		ys = append(ys, y)
	}
	return xs, ys
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func isClose(a, b float64) bool {
	return math.Abs(a-b) <= 1e-8+1e-5*math.Abs(b)
}

func lessOrClose(a, b float64) bool {
	return a < b || isClose(a, b)
}

func greaterOrClose(a, b float64) bool {
	return a > b || isClose(a, b)
}
