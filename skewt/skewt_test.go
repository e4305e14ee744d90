package skewt

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/icodeforyou/rapsounding-go/calc"
	"github.com/icodeforyou/rapsounding-go/types/maybe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approx = cmp.Comparer(func(a, b point) bool {
	return cmp.Equal(a.x, b.x, cmpopts.EquateApprox(0, 1e-9)) && cmp.Equal(a.y, b.y, cmpopts.EquateApprox(0, 1e-9))
})

func TestClip(t *testing.T) {
	lo, hi := point{0, 0}, point{1, 1}

	got := clip([]point{{-1, 0.5}, {0.5, 0.5}, {2, 0.5}}, lo, hi)
	want := [][]point{{{0, 0.5}, {0.5, 0.5}, {1, 0.5}}}
	assert.Empty(t, cmp.Diff(want, got, approx))

	got = clip([]point{{0.5, 0.2}, {1.5, 0.2}, {0.5, 0.8}}, lo, hi)
	want = [][]point{
		{{0.5, 0.2}, {1, 0.2}},
		{{1, 0.5}, {0.5, 0.8}},
	}
	assert.Empty(t, cmp.Diff(want, got, approx))

	assert.Nil(t, clip([]point{{2, 2}, {3, 3}}, lo, hi))
	assert.Nil(t, clip([]point{{0.5, 0.5}}, lo, hi))
}

func TestTransform(t *testing.T) {
	tr := newTransform(PressureBottom, PressureTop, TemperatureMin, TemperatureMax, 900, 900)

	assert.Equal(t, 0.0, tr.y(PressureBottom))
	assert.Equal(t, 25.0, tr.x(25, PressureBottom))
	// Isotherms run corner to corner on a square chart.
	assert.InDelta(t, TemperatureMax, tr.x(TemperatureMin, PressureTop), 1e-9)
	assert.True(t, tr.inside(500))
	assert.False(t, tr.inside(1060))
	assert.False(t, tr.inside(50))
}

func TestLineSkipsMissingValues(t *testing.T) {
	tr := newTransform(PressureBottom, PressureTop, TemperatureMin, TemperatureMax, 900, 900)
	pieces := tr.line([]float64{1000, 850, 700}, []float64{20, math.NaN(), 5})
	require.Len(t, pieces, 1)
	assert.Len(t, pieces[0], 2)
}

func TestNewBarb(t *testing.T) {
	tests := []struct {
		speed float64
		want  barb
	}{
		{0, barb{}},
		{2.4, barb{}},
		{3, barb{half: 1}},
		{10, barb{full: 1}},
		{47, barb{full: 4, half: 1}},
		{65, barb{pennants: 1, full: 1, half: 1}},
		{101, barb{pennants: 2}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, newBarb(tt.speed), "speed %v", tt.speed)
	}
	assert.True(t, newBarb(1).calm())
}

func TestBarbShape(t *testing.T) {
	north := barb{full: 1}.shape(0, 10)
	assert.InDelta(t, 0, north.staff[1].x, 1e-9)
	assert.InDelta(t, -10, north.staff[1].y, 1e-9)
	require.Len(t, north.feathers, 1)
	// Feathers hang off the clockwise side, east of a north wind's staff.
	assert.Greater(t, north.feathers[0][1].x, 0.0)

	west := barb{pennants: 1, half: 1}.shape(270, 10)
	assert.InDelta(t, -10, west.staff[1].x, 1e-9)
	assert.InDelta(t, 0, west.staff[1].y, 1e-9)
	require.Len(t, west.pennants, 1)
	require.Len(t, west.feathers, 1)
	assert.Less(t, west.pennants[0][1].y, 0.0)

	assert.True(t, barb{}.shape(90, 10).calm)
}

func TestFahrenheitLabel(t *testing.T) {
	assert.Equal(t, "68°F", fahrenheitLabel(20))
	assert.Equal(t, "22°F", fahrenheitLabel(-5.5))
	assert.Equal(t, "0°F", fahrenheitLabel(-18.3))
	assert.Equal(t, "-4°F", fahrenheitLabel(-20))
}

func TestBackground(t *testing.T) {
	p := pressureSteps(PressureBottom, PressureTop, 10)
	assert.Equal(t, PressureBottom, p[0])
	assert.Equal(t, PressureTop, p[len(p)-1])

	moist := moistAdiabats(p)
	idx := 0
	for i, v := range p {
		if v == 1000 {
			idx = i
		}
	}
	assert.InDelta(t, -50, moist[0][idx], 1e-9)
	for _, line := range moist {
		assert.Len(t, line, len(p))
	}
	// Saturated air is colder the higher it goes.
	assert.Greater(t, moist[len(moist)-1][0], moist[len(moist)-1][len(p)-1])

	mix := mixingLines([]float64{1000})
	assert.InDelta(t, calc.DewpointFromVaporPressure(calc.VaporPressure(1000, 0.02)), mix[len(mix)-1][0], 1e-9)
}

func testDiagram() Diagram {
	p := []float64{1000, 925, 850, 700, 500, 300, 200}
	t := []float64{25, 20, 16, 6, -12, -40, -55}
	td := []float64{18, 15, 10, -2, -25, -50, -70}
	return Diagram{
		Title:       "1200 UTC RAP: Forecast Sounding | 2024-05-01 1500 UTC | FH: 3",
		Pressure:    p,
		Temperature: t,
		Dewpoint:    td,
		U:           []float64{0, 5, 15, 25, 40, 60, 55},
		V:           []float64{0, 5, 5, 0, -10, -5, 0},
		WetBulb:     calc.WetBulbTemperature(p, t, td),
		Parcel:      calc.ParcelProfile(p, t[0], td[0]),
		LCL:         maybe.Some(calc.LCL(p[0], t[0], td[0])),
		LFC:         maybe.Some(calc.Level{Pressure: 800, Temperature: 12}),
		EL:          maybe.None[calc.Level](),
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		dpi           float64
	}{
		{"small", 450, 300, 72},
		{"default", 900, 900, 100},
		{"print", 4050, 4050, 450},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewRenderer(tt.width, tt.height, tt.dpi).Render(&buf, testDiagram()))

			cfg, err := png.DecodeConfig(&buf)
			require.NoError(t, err)
			assert.Equal(t, tt.width, cfg.Width)
			assert.Equal(t, tt.height, cfg.Height)
		})
	}
}

func TestRenderStableProfile(t *testing.T) {
	d := testDiagram()
	d.Parcel = nil
	d.LCL, d.LFC, d.EL = maybe.None[calc.Level](), maybe.None[calc.Level](), maybe.None[calc.Level]()

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(300, 300, 72).Render(&buf, d))
	_, err := png.Decode(&buf)
	assert.NoError(t, err)
}

func TestRenderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "rap", "sounding_3.png")
	require.NoError(t, NewRenderer(300, 200, 72).RenderFile(path, testDiagram()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestRenderRejectsMismatchedProfile(t *testing.T) {
	d := testDiagram()
	d.Dewpoint = d.Dewpoint[:3]

	var buf bytes.Buffer
	err := NewRenderer(300, 300, 72).Render(&buf, d)
	assert.ErrorContains(t, err, "dewpoint")
	assert.Zero(t, buf.Len())
}
