package sounding

import (
	"github.com/icodeforyou/rapsounding-go/calc"
	"github.com/icodeforyou/rapsounding-go/types/maybe"
)

type Analysis struct {
	// Parcel is the surface parcel path on the profile's levels.
	Parcel  []float64
	WetBulb []float64
	SBCAPE  float64 // J/kg
	SBCIN   float64 // J/kg
	LCL     maybe.Maybe[calc.Level]
	LFC     maybe.Maybe[calc.Level]
	EL      maybe.Maybe[calc.Level]
}

func Analyze(p Profile) Analysis {
	if p.Len() < 2 {
		return Analysis{}
	}
	parcel := calc.ParcelProfile(p.Pressure, p.Temperature[0], p.Dewpoint[0])
	cape, cin := calc.SurfaceBasedCAPECIN(p.Pressure, p.Temperature, p.Dewpoint)
	// LFC and EL are searched on the profile with the LCL as an extra level.
	pp, tt, tdd, lifted := calc.ParcelProfileWithLCL(p.Pressure, p.Temperature, p.Dewpoint)

	return Analysis{
		Parcel:  parcel,
		WetBulb: calc.WetBulbTemperature(p.Pressure, p.Temperature, p.Dewpoint),
		SBCAPE:  cape,
		SBCIN:   cin,
		LCL:     maybe.Some(calc.LCL(p.Pressure[0], p.Temperature[0], p.Dewpoint[0])),
		LFC:     calc.LFC(pp, tt, tdd, lifted, calc.Top),
		EL:      calc.EL(pp, tt, tdd, lifted, calc.Top),
	}
}
