package calc

import "math"

// Bolton (1980) coefficients.
const (
	satPressure0 = 6.112
	satA         = 17.67
	satB         = 243.5
)

// minRelativeHumidity keeps the dewpoint finite when the model reports 0 %.
const minRelativeHumidity = 0.01

func SaturationVaporPressure(t float64) float64 {
	return satPressure0 * math.Exp(satA*t/(t+satB))
}

func DewpointFromVaporPressure(e float64) float64 {
	v := math.Log(e / satPressure0)
	return satB * v / (satA - v)
}

// DewpointFromRH returns the dewpoint for temperature t and relative humidity rh in percent.
func DewpointFromRH(t, rh float64) float64 {
	rh = max(rh, minRelativeHumidity)
	return DewpointFromVaporPressure(rh / 100 * SaturationVaporPressure(t))
}

func MixingRatio(e, p float64) float64 {
	return Epsilon * e / (p - e)
}

func SaturationMixingRatio(p, t float64) float64 {
	return MixingRatio(SaturationVaporPressure(t), p)
}

func VaporPressure(p, w float64) float64 {
	return p * w / (Epsilon + w)
}
