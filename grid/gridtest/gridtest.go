// Package gridtest writes small RAP-like netCDF-3 files for tests.
package gridtest

import (
	"fmt"
	"os"
	"time"

	"github.com/ctessum/cdf"
)

// Profile returns the value of a field at forecast step t and level z.
type Profile func(t, z int) float64

type Spec struct {
	TimeDim   string    // defaults to "time1"
	Reference time.Time // time coordinate reference
	Hours     []float64 // time coordinate values
	Levels    []float64 // isobaric levels in Pa, file order
	Lats      [][]float64
	Lons      [][]float64

	Temperature Profile // K
	Humidity    Profile // %
	U, V        Profile // m/s

	// CellOffset is added to the temperature times the cell's row-major
	// index, so tests can tell columns apart.
	CellOffset float64
}

// Standard is a three step, five level, 2x3 grid around Detroit.
func Standard(reference time.Time) Spec {
	return Spec{
		TimeDim:   "time1",
		Reference: reference,
		Hours:     []float64{0, 1, 2},
		Levels:    []float64{30000, 50000, 70000, 85000, 100000},
		Lats: [][]float64{
			{42.5, 42.5, 42.5},
			{42.7, 42.7, 42.7},
		},
		Lons: [][]float64{
			{276.4, 276.6, 276.8},
			{276.4, 276.6, 276.8},
		},
		Temperature: func(t, z int) float64 {
			return []float64{228, 253, 268, 280, 295}[z] + float64(t)
		},
		Humidity: func(t, z int) float64 {
			return []float64{20, 40, 60, 70, 80}[z]
		},
		U: func(t, z int) float64 { return 5 + float64(z) },
		V: func(t, z int) float64 { return -2 },
	}
}

// Write creates the file at path.
func Write(path string, s Spec) error {
	if s.TimeDim == "" {
		s.TimeDim = "time1"
	}
	nt, nz := len(s.Hours), len(s.Levels)
	ny, nx := len(s.Lats), len(s.Lats[0])

	h := cdf.NewHeader(
		[]string{s.TimeDim, "isobaric", "y", "x"},
		[]int{nt, nz, ny, nx})
	h.AddAttribute("", "Conventions", "CF-1.6")

	h.AddVariable(s.TimeDim, []string{s.TimeDim}, []float64{0})
	h.AddAttribute(s.TimeDim, "units", "Hour since "+s.Reference.UTC().Format(time.RFC3339))
	h.AddVariable("isobaric", []string{"isobaric"}, []float32{0})
	h.AddAttribute("isobaric", "units", "Pa")
	h.AddVariable("lat", []string{"y", "x"}, []float64{0})
	h.AddAttribute("lat", "units", "degrees_north")
	h.AddVariable("lon", []string{"y", "x"}, []float64{0})
	h.AddAttribute("lon", "units", "degrees_east")

	fields := []struct {
		name, units string
		profile     Profile
		offset      float64
	}{
		{"Temperature_isobaric", "K", s.Temperature, s.CellOffset},
		{"Relative_humidity_isobaric", "%", s.Humidity, 0},
		{"u-component_of_wind_isobaric", "m/s", s.U, 0},
		{"v-component_of_wind_isobaric", "m/s", s.V, 0},
	}
	for _, f := range fields {
		h.AddVariable(f.name, []string{s.TimeDim, "isobaric", "y", "x"}, []float32{0})
		h.AddAttribute(f.name, "units", f.units)
	}
	h.Define()

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	nc, err := cdf.Create(file, h)
	if err != nil {
		return fmt.Errorf("error creating netCDF file: %w", err)
	}

	if err := write(nc, s.TimeDim, s.Hours); err != nil {
		return err
	}
	levels := make([]float32, nz)
	for i, l := range s.Levels {
		levels[i] = float32(l)
	}
	if err := write(nc, "isobaric", levels); err != nil {
		return err
	}
	if err := write(nc, "lat", flatten(s.Lats)); err != nil {
		return err
	}
	if err := write(nc, "lon", flatten(s.Lons)); err != nil {
		return err
	}

	for _, f := range fields {
		data := make([]float32, 0, nt*nz*ny*nx)
		for t := 0; t < nt; t++ {
			for z := 0; z < nz; z++ {
				for cell := 0; cell < ny*nx; cell++ {
					data = append(data, float32(f.profile(t, z)+f.offset*float64(cell)))
				}
			}
		}
		if err := write(nc, f.name, data); err != nil {
			return err
		}
	}
	return nil
}

func write(nc *cdf.File, name string, data any) error {
	w := nc.Writer(name, nil, nil)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("error writing %s: %w", name, err)
	}
	return nil
}

func flatten(rows [][]float64) []float64 {
	var out []float64
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}
