package sounding

import (
	"time"

	"github.com/icodeforyou/rapsounding-go/calc"
	"github.com/icodeforyou/rapsounding-go/convert"
	"github.com/icodeforyou/rapsounding-go/types/maybe"
)

// Summary is what gets published for one rendered forecast hour.
type Summary struct {
	RunId              int64     `json:"run_id"`
	ForecastHour       int       `json:"forecast_hour"`
	InitTime           time.Time `json:"init_time"`
	ValidTime          time.Time `json:"valid_time"`
	SurfacePressure    float64   `json:"surface_pressure"`
	SurfaceTemperature float64   `json:"surface_temperature"`
	SurfaceDewpoint    float64   `json:"surface_dewpoint"`
	SBCAPE             float64   `json:"sbcape"`
	SBCIN              float64   `json:"sbcin"`
	LCLPressure        *float64  `json:"lcl_pressure,omitempty"`
	LFCPressure        *float64  `json:"lfc_pressure,omitempty"`
	ELPressure         *float64  `json:"el_pressure,omitempty"`
	Image              string    `json:"image"`
}

func NewSummary(runId int64, initTime time.Time, p Profile, a Analysis, image string) Summary {
	return Summary{
		RunId:              runId,
		ForecastHour:       p.ForecastHour,
		InitTime:           initTime,
		ValidTime:          p.ValidTime,
		SurfacePressure:    convert.TwoDecimals(p.Pressure[0]),
		SurfaceTemperature: convert.TwoDecimals(p.Temperature[0]),
		SurfaceDewpoint:    convert.TwoDecimals(p.Dewpoint[0]),
		SBCAPE:             convert.TwoDecimals(a.SBCAPE),
		SBCIN:              convert.TwoDecimals(a.SBCIN),
		LCLPressure:        pressureOf(a.LCL),
		LFCPressure:        pressureOf(a.LFC),
		ELPressure:         pressureOf(a.EL),
		Image:              image,
	}
}

func pressureOf(l maybe.Maybe[calc.Level]) *float64 {
	p, ok := maybe.Map(l, func(lvl calc.Level) float64 {
		return convert.TwoDecimals(lvl.Pressure)
	}).Get()
	if !ok {
		return nil
	}
	return &p
}

// RunResult describes one pipeline run.
type RunResult struct {
	RunId         int64     `json:"run_id"`
	Dataset       string    `json:"dataset"`
	InitTime      time.Time `json:"init_time"`
	GridLatitude  float64   `json:"grid_latitude"`
	GridLongitude float64   `json:"grid_longitude"`
	// MaxForecastHour is the last hour the run should have, Rendered how many
	// were written.
	MaxForecastHour int       `json:"max_forecast_hour"`
	Rendered        int       `json:"rendered"`
	Skipped         bool      `json:"skipped"`
	Soundings       []Summary `json:"soundings,omitempty"`
}
