// Package calc holds the thermodynamic calculations behind a forecast
// sounding. Temperatures are in degrees Celsius and pressures in hPa unless a
// name says otherwise.
package calc

const (
	Rd      = 287.04749097718457 // Dry air gas constant, J/(kg K)
	Rv      = 461.52311572606084 // Water vapour gas constant, J/(kg K)
	CpD     = 1004.6662184201462 // Dry air specific heat at constant pressure, J/(kg K)
	Lv      = 2.50084e6          // Latent heat of vaporization, J/kg
	Epsilon = Rd / Rv
	Kappa   = Rd / CpD

	zeroCelsius = 273.15
)

// Level is a point on a sounding, e.g. the LCL.
type Level struct {
	Pressure    float64
	Temperature float64
}
