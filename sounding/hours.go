package sounding

import "slices"

// HourPolicy decides how far out a model run is rendered.
type HourPolicy struct {
	Default          int
	Extended         int
	ExtendedRunHours []int
}

// DefaultHourPolicy matches the RAP: runs at 03, 09, 15 and 21 UTC go out
// to 51 hours, the others to 21.
var DefaultHourPolicy = HourPolicy{
	Default:          21,
	Extended:         51,
	ExtendedRunHours: []int{3, 9, 15, 21},
}

// MaxForecastHour is the last forecast hour for a run initialized at
// initHour (UTC). Hours 0 through it are rendered.
func (h HourPolicy) MaxForecastHour(initHour int) int {
	if slices.Contains(h.ExtendedRunHours, initHour) {
		return h.Extended
	}
	return h.Default
}

func ForecastHours(initHour int) int {
	return DefaultHourPolicy.MaxForecastHour(initHour)
}
