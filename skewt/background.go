package skewt

import (
	"github.com/icodeforyou/rapsounding-go/calc"
)

// pressureSteps returns pressures from bottom to top every step hPa.
func pressureSteps(bottom, top, step float64) []float64 {
	var out []float64
	for p := bottom; p >= top; p -= step {
		out = append(out, p)
	}
	if out[len(out)-1] != top {
		out = append(out, top)
	}
	return out
}

func dryAdiabats(p []float64) [][]float64 {
	var lines [][]float64
	for theta := -30.0; theta <= 200; theta += 10 {
		lines = append(lines, calc.DryLapse(p, theta, 1000))
	}
	return lines
}

// moistAdiabats start every few degrees at 1000 hPa and are integrated both
// down to the bottom of p and up to its top.
func moistAdiabats(p []float64) [][]float64 {
	var starts []float64
	for t := -50.0; t < 10; t += 5 {
		starts = append(starts, t)
	}
	for t := 10.0; t < 40; t += 2.5 {
		starts = append(starts, t)
	}

	var below, above []float64
	for _, pi := range p {
		if pi > 1000 {
			below = append(below, pi)
		} else {
			above = append(above, pi)
		}
	}
	// Below runs from 1000 hPa toward the surface, so reverse it.
	for i, j := 0, len(below)-1; i < j; i, j = i+1, j-1 {
		below[i], below[j] = below[j], below[i]
	}

	lines := make([][]float64, 0, len(starts))
	for _, t0 := range starts {
		down := calc.MoistLapse(below, t0, 1000)
		up := calc.MoistLapse(above, t0, 1000)
		line := make([]float64, 0, len(p))
		for i := len(down) - 1; i >= 0; i-- {
			line = append(line, down[i])
		}
		lines = append(lines, append(line, up...))
	}
	return lines
}

// mixingRatios are the lines of constant saturation mixing ratio, in g/kg.
var mixingRatios = []float64{0.4, 1, 2, 3, 5, 8, 12, 16, 20}

func mixingLines(p []float64) [][]float64 {
	lines := make([][]float64, 0, len(mixingRatios))
	for _, w := range mixingRatios {
		line := make([]float64, len(p))
		for i, pi := range p {
			line[i] = calc.DewpointFromVaporPressure(calc.VaporPressure(pi, w/1000))
		}
		lines = append(lines, line)
	}
	return lines
}
