// Package grid reads gridded model output from netCDF-3 files.
package grid

import (
	"fmt"
	"os"
	"slices"

	"github.com/ctessum/cdf"
)

type Dataset struct {
	file *os.File
	cdf  *cdf.File
}

// Open opens a netCDF-3 file (classic or 64-bit offset).
func Open(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	nc, err := cdf.Open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error reading netCDF header of %s: %w", path, err)
	}
	return &Dataset{file: f, cdf: nc}, nil
}

func (d *Dataset) Close() error {
	return d.file.Close()
}

func (d *Dataset) Variables() []string {
	return d.cdf.Header.Variables()
}

func (d *Dataset) HasVariable(name string) bool {
	return slices.Contains(d.Variables(), name)
}

func (d *Dataset) Dimensions(variable string) []string {
	return d.cdf.Header.Dimensions(variable)
}

func (d *Dataset) Lengths(variable string) []int {
	return d.cdf.Header.Lengths(variable)
}

// Attribute returns a text attribute, or "" when it is missing or not text.
// Use variable "" for global attributes.
func (d *Dataset) Attribute(variable, name string) string {
	if s, ok := d.cdf.Header.GetAttribute(variable, name).(string); ok {
		return s
	}
	return ""
}

// Read returns the whole variable widened to float64.
func (d *Dataset) Read(variable string) ([]float64, error) {
	return d.read(variable, nil, nil, product(d.Lengths(variable)))
}

// ReadRecord returns the hyperslab at index i of the variable's first
// dimension.
func (d *Dataset) ReadRecord(variable string, i int) ([]float64, error) {
	lengths := d.Lengths(variable)
	if len(lengths) == 0 {
		return nil, fmt.Errorf("variable %s not in dataset", variable)
	}
	if i < 0 || i >= lengths[0] {
		return nil, fmt.Errorf("index %d out of range for %s (%d)", i, variable, lengths[0])
	}
	begin := make([]int, len(lengths))
	end := make([]int, len(lengths))
	begin[0], end[0] = i, i+1
	return d.read(variable, begin, end, product(lengths[1:]))
}

func (d *Dataset) read(variable string, begin, end []int, n int) ([]float64, error) {
	if !d.HasVariable(variable) {
		return nil, fmt.Errorf("variable %s not in dataset", variable)
	}
	r := d.cdf.Reader(variable, begin, end)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", variable, err)
	}
	return widen(buf)
}

func widen(buf any) ([]float64, error) {
	switch v := buf.(type) {
	case []float64:
		return v, nil
	case []float32:
		return convertAll(v), nil
	case []int32:
		return convertAll(v), nil
	case []int16:
		return convertAll(v), nil
	case []int8:
		return convertAll(v), nil
	default:
		return nil, fmt.Errorf("unsupported netCDF data type %T", buf)
	}
}

func product(lengths []int) int {
	n := 1
	for _, l := range lengths {
		n *= l
	}
	return n
}

func convertAll[T float32 | int32 | int16 | int8](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
