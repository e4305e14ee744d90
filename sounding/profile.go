// Package sounding turns a model grid column into analyzed and rendered
// forecast soundings.
package sounding

import (
	"fmt"
	"time"

	"github.com/icodeforyou/rapsounding-go/calc"
	"github.com/icodeforyou/rapsounding-go/convert"
	"github.com/icodeforyou/rapsounding-go/slice"
)

const (
	TemperatureVar = "Temperature_isobaric"
	HumidityVar    = "Relative_humidity_isobaric"
	UWindVar       = "u-component_of_wind_isobaric"
	VWindVar       = "v-component_of_wind_isobaric"
)

// ColumnReader reads one vertical profile at a time index, e.g. a grid.Point.
type ColumnReader interface {
	Column(variable string, t int) ([]float64, error)
}

// Profile is one forecast hour of the column, surface first.
type Profile struct {
	ForecastHour  int
	ValidTime     time.Time
	Pressure      []float64 // hPa
	Temperature   []float64 // degC
	Dewpoint      []float64 // degC
	U             []float64 // knots
	V             []float64 // knots
	WindSpeed     []float64 // knots
	WindDirection []float64 // degrees
}

func (p Profile) Len() int {
	return len(p.Pressure)
}

// ExtractProfile reads time index t of the column. levels is the isobaric
// coordinate in Pa, in file order.
func ExtractProfile(col ColumnReader, levels []float64, t int, validTime time.Time) (Profile, error) {
	read := func(variable string) ([]float64, error) {
		v, err := col.Column(variable, t)
		if err != nil {
			return nil, err
		}
		if len(v) != len(levels) {
			return nil, fmt.Errorf("%s has %d levels, expected %d", variable, len(v), len(levels))
		}
		return v, nil
	}

	tempK, err := read(TemperatureVar)
	if err != nil {
		return Profile{}, err
	}
	rh, err := read(HumidityVar)
	if err != nil {
		return Profile{}, err
	}
	u, err := read(UWindVar)
	if err != nil {
		return Profile{}, err
	}
	v, err := read(VWindVar)
	if err != nil {
		return Profile{}, err
	}

	p := Profile{
		ForecastHour: t,
		ValidTime:    validTime,
		Pressure:     slice.Map(levels, convert.PaToHPa),
		Temperature:  slice.Map(tempK, convert.KelvinToCelsius),
		U:            slice.Map(u, convert.MsToKnots),
		V:            slice.Map(v, convert.MsToKnots),
	}
	p.Dewpoint = slice.Map2(p.Temperature, rh, calc.DewpointFromRH)
	p.WindSpeed = slice.Map2(p.U, p.V, calc.WindSpeed)
	p.WindDirection = slice.Map2(p.U, p.V, calc.WindDirection)

	if len(levels) > 1 && levels[0] < levels[len(levels)-1] {
		p = p.reversed()
	}
	return p, nil
}

// reversed flips the level order, the grid stores the top of the
// atmosphere first.
func (p Profile) reversed() Profile {
	return Profile{
		ForecastHour:  p.ForecastHour,
		ValidTime:     p.ValidTime,
		Pressure:      slice.Reversed(p.Pressure),
		Temperature:   slice.Reversed(p.Temperature),
		Dewpoint:      slice.Reversed(p.Dewpoint),
		U:             slice.Reversed(p.U),
		V:             slice.Reversed(p.V),
		WindSpeed:     slice.Reversed(p.WindSpeed),
		WindDirection: slice.Reversed(p.WindDirection),
	}
}
