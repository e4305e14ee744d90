package calc

import "math"

// WindSpeed keeps the unit of its components.
func WindSpeed(u, v float64) float64 {
	return math.Hypot(u, v)
}

// WindDirection is the direction the wind blows from, in degrees. North is
// 360 and calm is 0.
func WindDirection(u, v float64) float64 {
	if u == 0 && v == 0 {
		return 0
	}
	dir := 90 - math.Atan2(-v, -u)*180/math.Pi
	if dir <= 0 {
		dir += 360
	}
	return dir
}
