package calc

import (
	"math"
)

const (
	lclMaxIterations = 50
	lclTolerance     = 1e-5
	// Largest pressure step (hPa) of the moist adiabat integration.
	moistStep = 2.0
)

// DryLapse returns the temperature of a parcel lifted dry adiabatically from
// (pRef, t0) to each pressure in p.
func DryLapse(p []float64, t0, pRef float64) []float64 {
	out := make([]float64, len(p))
	for i, pi := range p {
		out[i] = dryLapse(pi, t0, pRef)
	}
	return out
}

func dryLapse(p, t0, pRef float64) float64 {
	return (t0+zeroCelsius)*math.Pow(p/pRef, Kappa) - zeroCelsius
}

// moistLapseRate is dT/dp (K/hPa) along a pseudo-adiabat.
func moistLapseRate(p, tK float64) float64 {
	rs := SaturationMixingRatio(p, tK-zeroCelsius)
	num := Rd*tK + Lv*rs
	den := CpD + Lv*Lv*rs*Epsilon/(Rd*tK*tK)
	return num / den / p
}

// MoistLapse returns the temperature of a saturated parcel starting at
// (pRef, t0) at each pressure in p. The pressures are visited in order.
func MoistLapse(p []float64, t0, pRef float64) []float64 {
	out := make([]float64, len(p))
	currP, currT := pRef, t0+zeroCelsius
	for i, target := range p {
		currT = integrateMoist(currP, currT, target)
		currP = target
		out[i] = currT - zeroCelsius
	}
	return out
}

// integrateMoist runs fourth order Runge-Kutta from p0 to p1.
func integrateMoist(p0, tK, p1 float64) float64 {
	if p0 == p1 {
		return tK
	}
	n := int(math.Ceil(math.Abs(p1-p0) / moistStep))
	h := (p1 - p0) / float64(n)
	p := p0
	for i := 0; i < n; i++ {
		k1 := moistLapseRate(p, tK)
		k2 := moistLapseRate(p+h/2, tK+h/2*k1)
		k3 := moistLapseRate(p+h/2, tK+h/2*k2)
		k4 := moistLapseRate(p+h, tK+h*k3)
		tK += h / 6 * (k1 + 2*k2 + 2*k3 + k4)
		p += h
	}
	return tK
}

// LCL finds the lifted condensation level of a parcel at (p, t, td) by
// iterating on the constant mixing ratio line.
func LCL(p, t, td float64) Level {
	w := MixingRatio(SaturationVaporPressure(td), p)
	tK := t + zeroCelsius
	lclP := p
	for i := 0; i < lclMaxIterations; i++ {
		tdK := DewpointFromVaporPressure(VaporPressure(lclP, w)) + zeroCelsius
		next := min(p*math.Pow(tdK/tK, 1/Kappa), p)
		if math.Abs(next-lclP) < lclTolerance {
			lclP = next
			break
		}
		lclP = next
	}
	return Level{
		Pressure:    lclP,
		Temperature: DewpointFromVaporPressure(VaporPressure(lclP, w)),
	}
}

// ParcelProfile lifts a parcel from the first level of p, dry adiabatically
// up to its LCL and moist adiabatically above it. p must be ordered surface
// first.
func ParcelProfile(p []float64, t0, td0 float64) []float64 {
	if len(p) == 0 {
		return nil
	}
	lcl := LCL(p[0], t0, td0)
	out := make([]float64, len(p))
	split := len(p)
	for i, pi := range p {
		if pi < lcl.Pressure {
			split = i
			break
		}
		out[i] = dryLapse(pi, t0, p[0])
	}
	copy(out[split:], MoistLapse(p[split:], lcl.Temperature, lcl.Pressure))
	return out
}

// ParcelProfileWithLCL returns the sounding with the surface parcel's LCL
// inserted as an extra level, together with the parcel path on that grid.
func ParcelProfileWithLCL(p, t, td []float64) (pOut, tOut, tdOut, parcel []float64) {
	if len(p) == 0 {
		return nil, nil, nil, nil
	}
	lcl := LCL(p[0], t[0], td[0])

	pOut = make([]float64, 0, len(p)+1)
	tOut = make([]float64, 0, len(p)+1)
	tdOut = make([]float64, 0, len(p)+1)
	inserted := false
	for i := range p {
		if !inserted && p[i] < lcl.Pressure {
			if len(pOut) == 0 || math.Abs(pOut[len(pOut)-1]-lcl.Pressure) > 1e-6 {
				pOut = append(pOut, lcl.Pressure)
				tOut = append(tOut, interpolate(lcl.Pressure, p[i-1], p[i], t[i-1], t[i]))
				tdOut = append(tdOut, interpolate(lcl.Pressure, p[i-1], p[i], td[i-1], td[i]))
			}
			inserted = true
		}
		pOut = append(pOut, p[i])
		tOut = append(tOut, t[i])
		tdOut = append(tdOut, td[i])
	}

	parcel = make([]float64, len(pOut))
	split := len(pOut)
	for i, pi := range pOut {
		if pi < lcl.Pressure {
			split = i
			break
		}
		parcel[i] = dryLapse(pi, t[0], p[0])
	}
	copy(parcel[split:], MoistLapse(pOut[split:], lcl.Temperature, lcl.Pressure))
	return pOut, tOut, tdOut, parcel
}

// WetBulbTemperature lifts each level to its LCL and brings it back down
// along the moist adiabat.
func WetBulbTemperature(p, t, td []float64) []float64 {
	out := make([]float64, len(p))
	for i := range p {
		lcl := LCL(p[i], t[i], td[i])
		out[i] = MoistLapse([]float64{p[i]}, lcl.Temperature, lcl.Pressure)[0]
	}
	return out
}

func interpolate(x, x0, x1, y0, y1 float64) float64 {
	if x1 == x0 {
		return y0
	}
	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}
