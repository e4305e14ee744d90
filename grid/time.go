package grid

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

var timeDimensions = []string{"time", "time1", "time2", "time3"}

// TimeDimension returns the name of the time dimension of variable. The
// catalog's GRIB collections number them when several time axes exist.
func TimeDimension(ds *Dataset, variable string) (string, error) {
	dims := ds.Dimensions(variable)
	for _, name := range timeDimensions {
		if slices.Contains(dims, name) {
			return name, nil
		}
	}
	return "", fmt.Errorf("could not find the time dimension of %s", variable)
}

var referenceLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04Z",
	"2006-01-02",
}

// Times decodes the coordinate variable of dim, e.g. "Hour since
// 2024-05-01T12:00:00Z", into UTC times.
func Times(ds *Dataset, dim string) ([]time.Time, error) {
	values, err := ds.Read(dim)
	if err != nil {
		return nil, err
	}
	unit, ref, err := ParseTimeUnits(ds.Attribute(dim, "units"))
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", dim, err)
	}
	out := make([]time.Time, len(values))
	for i, v := range values {
		out[i] = ref.Add(time.Duration(v * float64(unit))).UTC()
	}
	return out, nil
}

// ParseTimeUnits splits a CF "<unit> since <reference>" string.
func ParseTimeUnits(units string) (time.Duration, time.Time, error) {
	name, refText, found := strings.Cut(strings.TrimSpace(units), " since ")
	if !found {
		return 0, time.Time{}, fmt.Errorf("unsupported time units %q", units)
	}

	var unit time.Duration
	switch strings.TrimSuffix(strings.ToLower(name), "s") {
	case "day":
		unit = 24 * time.Hour
	case "hour", "hr", "h":
		unit = time.Hour
	case "minute", "min":
		unit = time.Minute
	case "second", "sec":
		unit = time.Second
	default:
		return 0, time.Time{}, fmt.Errorf("unsupported time unit %q", name)
	}

	refText = strings.TrimSpace(refText)
	for _, layout := range referenceLayouts {
		if ref, err := time.Parse(layout, refText); err == nil {
			return unit, ref.UTC(), nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("unsupported reference time %q", refText)
}
