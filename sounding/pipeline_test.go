package sounding

import (
	"context"
	"errors"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icodeforyou/rapsounding-go/config"
	"github.com/icodeforyou/rapsounding-go/database"
	"github.com/icodeforyou/rapsounding-go/grid/gridtest"
	"github.com/icodeforyou/rapsounding-go/metrics"
	"github.com/icodeforyou/rapsounding-go/skewt"
	"github.com/icodeforyou/rapsounding-go/thredds"
)

type fakeSource struct {
	spec       gridtest.Spec
	subsetURL  string
	query      thredds.SubsetQuery
	downloaded string
	err        error
}

func (f *fakeSource) Catalog(ctx context.Context, catalogURL string) (*thredds.Catalog, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &thredds.Catalog{
		URL: catalogURL,
		Datasets: []thredds.Dataset{{
			Name: "RAP_CONUS_13km_20240501_0900.grib2",
			AccessURLs: map[string]string{
				"NetcdfSubset": "https://thredds.example/ncss/grid/RAP_CONUS_13km_20240501_0900.grib2",
			},
		}},
	}, nil
}

func (f *fakeSource) GridSubset(ctx context.Context, ncssURL string, q thredds.SubsetQuery, dir string) (string, error) {
	f.subsetURL, f.query = ncssURL, q
	path := filepath.Join(dir, "rap-test.nc")
	if err := gridtest.Write(path, f.spec); err != nil {
		return "", err
	}
	f.downloaded = path
	return path, nil
}

type fakeStore struct {
	completed bool
	runs      []database.ModelRunRow
	finished  []database.RunStatus
	rendered  int
	message   string
	soundings []database.SoundingRow
}

func (f *fakeStore) HasCompletedRun(ctx context.Context, dataset string) (bool, error) {
	return f.completed, nil
}

func (f *fakeStore) InsertModelRun(ctx context.Context, r database.ModelRunRow) (int64, error) {
	f.runs = append(f.runs, r)
	return int64(len(f.runs)), nil
}

func (f *fakeStore) FinishModelRun(ctx context.Context, id int64, status database.RunStatus, rendered int, message string) error {
	f.finished = append(f.finished, status)
	f.rendered, f.message = rendered, message
	return nil
}

func (f *fakeStore) SaveSounding(ctx context.Context, r database.SoundingRow) error {
	f.soundings = append(f.soundings, r)
	return nil
}

type fakeRenderer struct {
	paths    []string
	diagrams []skewt.Diagram
	failAt   int
}

func (f *fakeRenderer) RenderFile(path string, d skewt.Diagram) error {
	if f.failAt > 0 && len(f.paths) == f.failAt {
		return errors.New("disk full")
	}
	f.paths = append(f.paths, path)
	f.diagrams = append(f.diagrams, d)
	return nil
}

type fakeNotifier struct {
	soundings []Summary
	runs      []RunResult
}

func (f *fakeNotifier) PublishSounding(ctx context.Context, s Summary) error {
	f.soundings = append(f.soundings, s)
	return nil
}

func (f *fakeNotifier) PublishRun(ctx context.Context, r RunResult) error {
	f.runs = append(f.runs, r)
	return errors.New("broker gone")
}

var reference = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	pipeline *Pipeline
	source   *fakeSource
	store    *fakeStore
	renderer *fakeRenderer
	notifier *fakeNotifier
	metrics  *metrics.Metrics
	outDir   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		source:   &fakeSource{spec: gridtest.Standard(reference)},
		store:    &fakeStore{},
		renderer: &fakeRenderer{},
		notifier: &fakeNotifier{},
		metrics:  metrics.NewForTesting(),
		outDir:   filepath.Join(t.TempDir(), "models", "rap"),
	}
	cfg := PipelineConfig{
		CatalogURL:  "https://thredds.example/catalog/latest.xml",
		Latitude:    42.66,
		Longitude:   -83.41,
		BboxPadding: 0.5,
		OutputDir:   f.outDir,
		WorkDir:     t.TempDir(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.pipeline = NewPipeline(cfg, f.source, f.store, f.renderer, f.metrics, logger)
	f.pipeline.SetNotifier(f.notifier)
	f.pipeline.SetClock(clockwork.NewFakeClockAt(reference.Add(40 * time.Minute)))
	return f
}

func TestPipelineRun(t *testing.T) {
	f := newFixture(t)
	var seen []int
	f.pipeline.OnSounding(func(s Summary) { seen = append(seen, s.ForecastHour) })

	res, err := f.pipeline.Run(context.Background(), false)
	require.NoError(t, err)

	// A 09 UTC run goes out 51 hours but the file only holds three steps.
	assert.Equal(t, 51, res.MaxForecastHour)
	assert.Equal(t, 3, res.Rendered)
	assert.Equal(t, reference, res.InitTime)
	assert.Equal(t, 42.7, res.GridLatitude)
	assert.InDelta(t, -83.4, res.GridLongitude, 1e-9)
	assert.Equal(t, []int{0, 1, 2}, seen)

	assert.Equal(t, "https://thredds.example/ncss/grid/RAP_CONUS_13km_20240501_0900.grib2", f.source.subsetURL)
	assert.Equal(t, thredds.SoundingVariables, f.source.query.Variables)
	assert.InDelta(t, 43.16, f.source.query.North, 1e-9)
	assert.NoFileExists(t, f.source.downloaded)

	require.Len(t, f.store.runs, 1)
	assert.Equal(t, 51, f.store.runs[0].ForecastHours)
	assert.Equal(t, []database.RunStatus{database.RunStatusDone}, f.store.finished)
	assert.Equal(t, 3, f.store.rendered)

	require.Len(t, f.store.soundings, 3)
	s := f.store.soundings[2]
	assert.Equal(t, 2, s.ForecastHour)
	assert.Equal(t, reference.Add(2*time.Hour), s.ValidTime)
	assert.Equal(t, 1000.0, s.SurfacePressure)
	assert.InDelta(t, 23.85, s.SurfaceTemperature, 1e-4)
	assert.Equal(t, filepath.Join(f.outDir, "sounding_2.png"), s.ImagePath)
	assert.True(t, s.LCLPressure.Valid)

	require.Len(t, f.renderer.diagrams, 3)
	d := f.renderer.diagrams[1]
	assert.Equal(t, "0900 UTC RAP: Forecast Sounding | 2024-05-01 1000 UTC | FH: 1", d.Title)
	assert.Equal(t, []float64{1000, 850, 700, 500, 300}, d.Pressure)

	assert.Len(t, f.notifier.soundings, 3)
	assert.Len(t, f.notifier.runs, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.NotifyErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Runs.WithLabelValues("success")))
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.SoundingsRendered))
	assert.Equal(t, float64(reference.Unix()), testutil.ToFloat64(f.metrics.LastRunInitTime))
}

func TestPipelineSkipsCompletedRun(t *testing.T) {
	f := newFixture(t)
	f.store.completed = true

	res, err := f.pipeline.Run(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Empty(t, f.store.runs)
	assert.Empty(t, f.source.subsetURL)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Runs.WithLabelValues("skipped")))

	res, err = f.pipeline.Run(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 3, res.Rendered)
}

func TestPipelineMissingTimeDimension(t *testing.T) {
	f := newFixture(t)
	f.source.spec.TimeDim = "reftime"

	_, err := f.pipeline.Run(context.Background(), false)
	assert.ErrorContains(t, err, "could not find the time dimension")
	assert.Empty(t, f.store.runs)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Runs.WithLabelValues("error")))
}

func TestPipelineRenderFailure(t *testing.T) {
	f := newFixture(t)
	f.renderer.failAt = 2

	_, err := f.pipeline.Run(context.Background(), false)
	assert.ErrorContains(t, err, "forecast hour 2: disk full")
	assert.Equal(t, []database.RunStatus{database.RunStatusFailed}, f.store.finished)
	assert.Equal(t, 2, f.store.rendered)
	assert.Contains(t, f.store.message, "disk full")
	assert.Empty(t, f.notifier.runs)
}

func TestPipelineCatalogError(t *testing.T) {
	f := newFixture(t)
	f.source.err = errors.New("thredds error: status 503")

	_, err := f.pipeline.Run(context.Background(), false)
	assert.ErrorContains(t, err, "503")
	assert.Empty(t, f.store.runs)
}

func TestPipelineCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	f.pipeline.OnSounding(func(s Summary) { cancel() })

	res, err := f.pipeline.Run(ctx, false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, res.Rendered)
	assert.Equal(t, []database.RunStatus{database.RunStatusFailed}, f.store.finished)
}

func TestPipelineWithSkewtRenderer(t *testing.T) {
	f := newFixture(t)
	f.source.spec.Hours = []float64{0, 1}
	inches, dpi := 3.0, 100
	out := config.AppConfigOutput{WidthInches: &inches, HeightInches: &inches, Dpi: &dpi}
	width, height := out.GetSize()
	f.pipeline.renderer = skewt.NewRenderer(width, height, out.GetDpi())

	res, err := f.pipeline.Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 2, res.Rendered)

	for fh := 0; fh < 2; fh++ {
		file, err := os.Open(ImagePath(f.outDir, fh))
		require.NoError(t, err)
		img, err := png.Decode(file)
		file.Close()
		require.NoError(t, err, "forecast hour %d", fh)
		assert.Equal(t, width, img.Bounds().Dx())
		assert.Equal(t, height, img.Bounds().Dy())
	}
}
