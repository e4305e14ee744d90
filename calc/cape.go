package calc

import (
	"math"
	"sort"
)

// CAPECIN integrates the parcel buoyancy. CAPE is taken between the LFC and
// the EL (or the top of the profile), CIN from the surface up to the LFC and
// is never positive. Both are J/kg.
func CAPECIN(p, t, td, parcel []float64) (cape, cin float64) {
	lfc, ok := LFC(p, t, td, parcel, Bottom).Get()
	if !ok {
		return 0, 0
	}
	elPressure := p[len(p)-1]
	if el, ok := EL(p, t, td, parcel, Top).Get(); ok {
		elPressure = el.Pressure
	}

	x, y := appendZeroCrossings(p, t, parcel)

	var capeX, capeY, cinX, cinY []float64
	for i := range x {
		if lessOrClose(x[i], lfc.Pressure) && greaterOrClose(x[i], elPressure) {
			capeX = append(capeX, math.Log(x[i]))
			capeY = append(capeY, y[i])
		}
		if greaterOrClose(x[i], lfc.Pressure) {
			cinX = append(cinX, math.Log(x[i]))
			cinY = append(cinY, y[i])
		}
	}
	cape = Rd * trapezoid(capeY, capeX)
	cin = min(Rd*trapezoid(cinY, cinX), 0)
	return cape, cin
}

// SurfaceBasedCAPECIN lifts the surface parcel, with the LCL added to the
// profile, and integrates CAPE and CIN.
func SurfaceBasedCAPECIN(p, t, td []float64) (cape, cin float64) {
	if len(p) < 2 {
		return 0, 0
	}
	pp, tt, tdd, parcel := ParcelProfileWithLCL(p, t, td)
	return CAPECIN(pp, tt, tdd, parcel)
}

// appendZeroCrossings returns the buoyancy parcel-t with the levels where it
// changes sign added, sorted by increasing pressure.
func appendZeroCrossings(p, t, parcel []float64) (x, y []float64) {
	x = make([]float64, len(p))
	y = make([]float64, len(p))
	for i := range p {
		x[i] = p[i]
		y[i] = parcel[i] - t[i]
	}
	zeros := make([]float64, len(p))
	cx, cy := Intersections(x[1:], y[1:], zeros[1:], All)
	x = append(x, cx...)
	y = append(y, cy...)

	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })

	sx := make([]float64, 0, len(x))
	sy := make([]float64, 0, len(y))
	for n, i := range idx {
		if n+1 < len(idx) && x[idx[n+1]]-x[i] <= 1e-6 {
			continue
		}
		sx = append(sx, x[i])
		sy = append(sy, y[i])
	}
	return sx, sy
}

func trapezoid(y, x []float64) float64 {
	var sum float64
	for i := 1; i < len(x); i++ {
		sum += (x[i] - x[i-1]) * (y[i] + y[i-1]) / 2
	}
	return sum
}
