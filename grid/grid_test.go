package grid_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icodeforyou/rapsounding-go/grid"
	"github.com/icodeforyou/rapsounding-go/grid/gridtest"
)

var reference = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func openStandard(t *testing.T, mutate func(*gridtest.Spec)) *grid.Dataset {
	t.Helper()
	spec := gridtest.Standard(reference)
	if mutate != nil {
		mutate(&spec)
	}
	path := filepath.Join(t.TempDir(), "rap.nc")
	require.NoError(t, gridtest.Write(path, spec))

	ds, err := grid.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { ds.Close() })
	return ds
}

func TestOpenMissingFile(t *testing.T) {
	_, err := grid.Open(filepath.Join(t.TempDir(), "nope.nc"))
	assert.Error(t, err)
}

func TestTimeDimension(t *testing.T) {
	ds := openStandard(t, nil)

	dim, err := grid.TimeDimension(ds, "Temperature_isobaric")
	require.NoError(t, err)
	assert.Equal(t, "time1", dim)
}

func TestTimeDimensionMissing(t *testing.T) {
	ds := openStandard(t, func(s *gridtest.Spec) { s.TimeDim = "reftime" })

	_, err := grid.TimeDimension(ds, "Temperature_isobaric")
	assert.ErrorContains(t, err, "could not find the time dimension")
}

func TestTimes(t *testing.T) {
	ds := openStandard(t, nil)

	times, err := grid.Times(ds, "time1")
	require.NoError(t, err)
	want := []time.Time{
		reference,
		reference.Add(time.Hour),
		reference.Add(2 * time.Hour),
	}
	if diff := cmp.Diff(want, times); diff != "" {
		t.Errorf("Times() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTimeUnits(t *testing.T) {
	tests := []struct {
		units string
		unit  time.Duration
		ref   time.Time
		fails bool
	}{
		{"Hour since 2024-05-01T09:00:00Z", time.Hour, reference, false},
		{"hours since 2024-05-01 09:00:00", time.Hour, reference, false},
		{"minutes since 2024-05-01T09:00:00Z", time.Minute, reference, false},
		{"days since 2024-05-01", 24 * time.Hour, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), false},
		{"fortnights since 2024-05-01", 0, time.Time{}, true},
		{"K", 0, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.units, func(t *testing.T) {
			unit, ref, err := grid.ParseTimeUnits(tt.units)
			if tt.fails {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.unit, unit)
			assert.True(t, tt.ref.Equal(ref), "got %s", ref)
		})
	}
}

func TestNearest(t *testing.T) {
	lats := []float64{42.5, 42.5, 42.5, 42.7, 42.7, 42.7}
	lons := []float64{276.4, 276.6, 276.8, 276.4, 276.6, 276.8}

	y, x := grid.Nearest(lats, lons, 3, 42.66, -83.41)
	assert.Equal(t, 1, y)
	assert.Equal(t, 1, x)

	y, x = grid.Nearest(lats, lons, 3, 42.4, 276.85)
	assert.Equal(t, 0, y)
	assert.Equal(t, 2, x)
}

func TestNearestTieGoesToFirst(t *testing.T) {
	lats := []float64{0, 0}
	lons := []float64{-1, 1}

	y, x := grid.Nearest(lats, lons, 2, 0, 0)
	assert.Equal(t, 0, y)
	assert.Equal(t, 0, x)
}

func TestPointAndColumn(t *testing.T) {
	ds := openStandard(t, func(s *gridtest.Spec) { s.CellOffset = 100 })

	p, err := ds.Point(42.66, -83.41)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Y)
	assert.Equal(t, 1, p.X)
	assert.InDelta(t, 42.7, p.Latitude, 1e-9)
	assert.InDelta(t, -83.4, p.Longitude, 1e-9)

	got, err := p.Column("Temperature_isobaric", 2)
	require.NoError(t, err)
	// Cell (1, 1) is row-major index 4.
	want := []float64{630, 655, 670, 682, 697}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-3)); diff != "" {
		t.Errorf("Column() mismatch (-want +got):\n%s", diff)
	}
}

func TestColumnOutOfRange(t *testing.T) {
	ds := openStandard(t, nil)

	_, err := grid.Column(ds, "Temperature_isobaric", 3, 0, 0)
	assert.Error(t, err)
	_, err = grid.Column(ds, "Temperature_isobaric", 0, 2, 0)
	assert.Error(t, err)
	_, err = grid.Column(ds, "lat", 0, 0, 0)
	assert.Error(t, err)
}

func TestLevels(t *testing.T) {
	ds := openStandard(t, nil)

	name, levels, err := grid.Levels(ds, "Temperature_isobaric")
	require.NoError(t, err)
	assert.Equal(t, "isobaric", name)
	assert.Equal(t, []float64{30000, 50000, 70000, 85000, 100000}, levels)
	assert.Equal(t, "Pa", ds.Attribute("isobaric", "units"))
	assert.Equal(t, "", ds.Attribute("isobaric", "missing"))
}
