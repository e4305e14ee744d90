package sounding

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/icodeforyou/rapsounding-go/hours"
	"github.com/icodeforyou/rapsounding-go/skewt"
)

// ParcelThreshold is the SBCAPE (J/kg) above which the parcel path is drawn.
const ParcelThreshold = 250.0

// Title names the run cycle, the valid time and the forecast hour, e.g.
// "1200 UTC RAP: Forecast Sounding | 2024-05-01 1500 UTC | FH: 3".
func Title(initTime time.Time, p Profile) string {
	return fmt.Sprintf("%s RAP: Forecast Sounding | %s | FH: %d",
		hours.FromTime(initTime).CycleLabel(),
		hours.FromTime(p.ValidTime).ValidLabel(),
		p.ForecastHour)
}

func ImageName(forecastHour int) string {
	return fmt.Sprintf("sounding_%d.png", forecastHour)
}

func ImagePath(dir string, forecastHour int) string {
	return filepath.Join(dir, ImageName(forecastHour))
}

func NewDiagram(initTime time.Time, p Profile, a Analysis) skewt.Diagram {
	d := skewt.Diagram{
		Title:       Title(initTime, p),
		Pressure:    p.Pressure,
		Temperature: p.Temperature,
		Dewpoint:    p.Dewpoint,
		U:           p.U,
		V:           p.V,
		WetBulb:     a.WetBulb,
		LCL:         a.LCL,
		LFC:         a.LFC,
		EL:          a.EL,
	}
	if a.SBCAPE > ParcelThreshold {
		d.Parcel = a.Parcel
	}
	return d
}
