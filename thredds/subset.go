package thredds

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"time"
)

// SoundingVariables are the isobaric fields a forecast sounding needs.
var SoundingVariables = []string{
	"Temperature_isobaric",
	"Relative_humidity_isobaric",
	"u-component_of_wind_isobaric",
	"v-component_of_wind_isobaric",
}

// SubsetQuery is a NetCDF Subset Service grid request covering all times.
type SubsetQuery struct {
	Variables []string
	North     float64
	South     float64
	East      float64
	West      float64
}

// AroundPoint returns a query for a box of padding degrees around (lat, lon).
func AroundPoint(variables []string, lat, lon, padding float64) SubsetQuery {
	return SubsetQuery{
		Variables: variables,
		North:     lat + padding,
		South:     lat - padding,
		East:      lon + padding,
		West:      lon - padding,
	}
}

func (q SubsetQuery) Values() url.Values {
	v := url.Values{}
	for _, name := range q.Variables {
		v.Add("var", name)
	}
	v.Set("north", formatDegrees(q.North))
	v.Set("south", formatDegrees(q.South))
	v.Set("east", formatDegrees(q.East))
	v.Set("west", formatDegrees(q.West))
	v.Set("horizStride", "1")
	v.Set("temporal", "all")
	v.Set("accept", "netcdf3")
	v.Set("addLatLon", "true")
	return v
}

func formatDegrees(d float64) string {
	return strconv.FormatFloat(d, 'f', 4, 64)
}

// GridSubset downloads the subset into a temporary file in dir and returns
// its path. The caller removes the file.
func (c *Client) GridSubset(ctx context.Context, ncssURL string, q SubsetQuery, dir string) (string, error) {
	u, err := url.Parse(ncssURL)
	if err != nil {
		return "", fmt.Errorf("invalid ncss url %q: %w", ncssURL, err)
	}
	u.RawQuery = q.Values().Encode()

	c.logger.Info("downloading grid subset...", "url", u.String())
	start := time.Now()

	resp, err := c.get(ctx, u.String())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	f, err := os.CreateTemp(dir, "rap-*.nc")
	if err != nil {
		return "", fmt.Errorf("error creating temp file: %w", err)
	}
	n, err := io.Copy(f, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("error downloading grid subset: %w", err)
	}

	c.metrics.FetchBytes.WithLabelValues("subset").Add(float64(n))
	c.metrics.FetchDuration.WithLabelValues("subset").Observe(time.Since(start).Seconds())
	c.logger.Info("grid subset downloaded", "bytes", n, "duration", time.Since(start).Round(time.Millisecond))
	return f.Name(), nil
}
