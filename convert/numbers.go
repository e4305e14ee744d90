package convert

import (
	"math"
)

const (
	zeroCelsius  = 273.15
	knotsPerMs   = 1.94384
	pascalPerHPa = 100.0
)

func TwoDecimals(number float64) float64 {
	return RoundFloat64(number, 2)
}

func RoundFloat64(number float64, decimals int) float64 {
	return math.Round(number*math.Pow10(decimals)) / math.Pow10(decimals)
}

func KelvinToCelsius(k float64) float64 {
	return k - zeroCelsius
}

func CelsiusToKelvin(c float64) float64 {
	return c + zeroCelsius
}

func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// Knots uses the same factor as the RAP post-processing scripts (1.94384).
func MsToKnots(ms float64) float64 {
	return ms * knotsPerMs
}

func PaToHPa(pa float64) float64 {
	return pa / pascalPerHPa
}

func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
