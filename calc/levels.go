package calc

import (
	"math"

	"github.com/icodeforyou/rapsounding-go/types/maybe"
)

// Which picks among several candidate LFCs or ELs.
type Which int

const (
	Top Which = iota
	Bottom
)

// LFC returns the level of free convection of parcel. The parcel path is
// expected on the same levels as p, t and td (surface first).
func LFC(p, t, td, parcel []float64, which Which) maybe.Maybe[Level] {
	if len(p) < 2 {
		return maybe.None[Level]()
	}
	var xs, ys []float64
	if isClose(parcel[0], t[0]) {
		xs, ys = Intersections(p[1:], parcel[1:], t[1:], Increasing)
	} else {
		xs, ys = Intersections(p, parcel, t, Increasing)
	}
	lcl := LCL(p[0], parcel[0], td[0])

	if len(xs) == 0 {
		for i := range p {
			if p[i] < lcl.Pressure && !lessOrClose(parcel[i], t[i]) {
				return maybe.Some(lcl)
			}
		}
		return maybe.None[Level]()
	}

	above := levelsAbove(xs, ys, lcl.Pressure)
	if len(above) == 0 {
		elp, _ := Intersections(p[1:], parcel[1:], t[1:], Decreasing)
		if len(elp) > 0 && minOf(elp) > lcl.Pressure {
			return maybe.None[Level]()
		}
		return maybe.Some(lcl)
	}
	return maybe.Some(pick(above, which))
}

// EL returns the equilibrium level of parcel, where it becomes colder than
// the environment for the last time above the LCL.
func EL(p, t, td, parcel []float64, which Which) maybe.Maybe[Level] {
	if len(p) < 2 {
		return maybe.None[Level]()
	}
	if parcel[len(parcel)-1] > t[len(t)-1] {
		return maybe.None[Level]()
	}
	xs, ys := Intersections(p[1:], parcel[1:], t[1:], Decreasing)
	lcl := LCL(p[0], t[0], td[0])
	if len(xs) == 0 || xs[len(xs)-1] >= lcl.Pressure {
		return maybe.None[Level]()
	}
	return maybe.Some(pick(levelsAbove(xs, ys, lcl.Pressure), which))
}

func levelsAbove(xs, ys []float64, pressure float64) []Level {
	var out []Level
	for i := range xs {
		if xs[i] < pressure {
			out = append(out, Level{Pressure: xs[i], Temperature: ys[i]})
		}
	}
	return out
}

func pick(levels []Level, which Which) Level {
	if which == Bottom {
		return levels[0]
	}
	return levels[len(levels)-1]
}

func minOf(v []float64) float64 {
	m := math.Inf(1)
	for _, x := range v {
		m = min(m, x)
	}
	return m
}
