package sounding

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/icodeforyou/rapsounding-go/database"
	"github.com/icodeforyou/rapsounding-go/grid"
	"github.com/icodeforyou/rapsounding-go/metrics"
	"github.com/icodeforyou/rapsounding-go/skewt"
	"github.com/icodeforyou/rapsounding-go/thredds"
	"github.com/jonboulle/clockwork"
)

// Source is where model runs come from, normally a thredds.Client.
type Source interface {
	Catalog(ctx context.Context, catalogURL string) (*thredds.Catalog, error)
	GridSubset(ctx context.Context, ncssURL string, q thredds.SubsetQuery, dir string) (string, error)
}

// Store keeps the history of runs and soundings, normally a database.Database.
type Store interface {
	HasCompletedRun(ctx context.Context, dataset string) (bool, error)
	InsertModelRun(ctx context.Context, r database.ModelRunRow) (int64, error)
	FinishModelRun(ctx context.Context, id int64, status database.RunStatus, rendered int, message string) error
	SaveSounding(ctx context.Context, r database.SoundingRow) error
}

type Renderer interface {
	RenderFile(path string, d skewt.Diagram) error
}

type Notifier interface {
	PublishSounding(ctx context.Context, s Summary) error
	PublishRun(ctx context.Context, r RunResult) error
}

const subsetService = "NetcdfSubset"

type PipelineConfig struct {
	CatalogURL  string
	Latitude    float64
	Longitude   float64
	BboxPadding float64
	OutputDir   string
	// WorkDir holds the downloaded subset while a run is processed, "" means
	// the system temp dir.
	WorkDir string
	Hours   HourPolicy
}

type Pipeline struct {
	cfg        PipelineConfig
	source     Source
	store      Store
	renderer   Renderer
	notifier   Notifier
	metrics    *metrics.Metrics
	clock      clockwork.Clock
	logger     *slog.Logger
	onSounding func(Summary)
}

func NewPipeline(cfg PipelineConfig, source Source, store Store, renderer Renderer, m *metrics.Metrics, logger *slog.Logger) *Pipeline {
	if cfg.Hours.Default == 0 {
		cfg.Hours = DefaultHourPolicy
	}
	return &Pipeline{
		cfg:      cfg,
		source:   source,
		store:    store,
		renderer: renderer,
		metrics:  m,
		clock:    clockwork.NewRealClock(),
		logger:   logger,
	}
}

func (p *Pipeline) SetNotifier(n Notifier) {
	p.notifier = n
}

func (p *Pipeline) SetClock(c clockwork.Clock) {
	p.clock = c
}

// OnSounding registers a callback invoked after each forecast hour is stored.
func (p *Pipeline) OnSounding(fn func(Summary)) {
	p.onSounding = fn
}

// Run processes the first dataset of the catalog. Unless force is set, a
// dataset that already has a completed run is skipped.
func (p *Pipeline) Run(ctx context.Context, force bool) (RunResult, error) {
	start := p.clock.Now()
	res, err := p.run(ctx, force)
	switch {
	case err != nil:
		p.metrics.Runs.WithLabelValues("error").Inc()
	case res.Skipped:
		p.metrics.Runs.WithLabelValues("skipped").Inc()
	default:
		p.metrics.Runs.WithLabelValues("success").Inc()
		p.metrics.LastRunInitTime.Set(float64(res.InitTime.Unix()))
	}
	if err == nil && !res.Skipped {
		p.logger.Info("model run done",
			slog.String("dataset", res.Dataset),
			slog.Time("init_time", res.InitTime),
			slog.Int("rendered", res.Rendered),
			slog.Duration("duration", p.clock.Since(start)))
	}
	return res, err
}

func (p *Pipeline) run(ctx context.Context, force bool) (RunResult, error) {
	catalog, err := p.source.Catalog(ctx, p.cfg.CatalogURL)
	if err != nil {
		return RunResult{}, err
	}
	ds, err := catalog.FirstDataset()
	if err != nil {
		return RunResult{}, err
	}
	res := RunResult{Dataset: ds.Name}

	if !force {
		done, err := p.store.HasCompletedRun(ctx, ds.Name)
		if err != nil {
			return res, err
		}
		if done {
			p.logger.Debug("dataset already processed", slog.String("dataset", ds.Name))
			res.Skipped = true
			return res, nil
		}
	}

	ncss, ok := ds.AccessURLs[subsetService]
	if !ok {
		return res, fmt.Errorf("dataset %s has no %s access", ds.Name, subsetService)
	}

	p.logger.Info("downloading model run", slog.String("dataset", ds.Name))
	query := thredds.AroundPoint(thredds.SoundingVariables, p.cfg.Latitude, p.cfg.Longitude, p.cfg.BboxPadding)
	path, err := p.source.GridSubset(ctx, ncss, query, p.cfg.WorkDir)
	if err != nil {
		return res, err
	}
	defer os.Remove(path)

	g, err := grid.Open(path)
	if err != nil {
		return res, err
	}
	defer g.Close()

	return p.process(ctx, g, ds, ncss, res)
}

func (p *Pipeline) process(ctx context.Context, g *grid.Dataset, ds thredds.Dataset, accessURL string, res RunResult) (RunResult, error) {
	point, err := g.Point(p.cfg.Latitude, p.cfg.Longitude)
	if err != nil {
		return res, err
	}
	res.GridLatitude, res.GridLongitude = point.Latitude, point.Longitude

	timeDim, err := grid.TimeDimension(g, TemperatureVar)
	if err != nil {
		return res, err
	}
	times, err := grid.Times(g, timeDim)
	if err != nil {
		return res, err
	}
	if len(times) == 0 {
		return res, fmt.Errorf("%s has no time steps", timeDim)
	}
	_, levels, err := grid.Levels(g, TemperatureVar)
	if err != nil {
		return res, err
	}

	res.InitTime = times[0]
	res.MaxForecastHour = p.cfg.Hours.MaxForecastHour(res.InitTime.Hour())
	last := res.MaxForecastHour
	if len(times)-1 < last {
		p.logger.Warn("model run has fewer time steps than forecast hours",
			slog.String("dataset", ds.Name),
			slog.Int("time_steps", len(times)),
			slog.Int("max_forecast_hour", res.MaxForecastHour))
		last = len(times) - 1
	}

	res.RunId, err = p.store.InsertModelRun(ctx, database.ModelRunRow{
		Dataset:       ds.Name,
		InitTime:      res.InitTime,
		AccessUrl:     accessURL,
		GridLatitude:  point.Latitude,
		GridLongitude: point.Longitude,
		ForecastHours: res.MaxForecastHour,
	})
	if err != nil {
		return res, err
	}

	for fh := 0; fh <= last; fh++ {
		if err := ctx.Err(); err != nil {
			return res, p.fail(res, err)
		}
		summary, err := p.processHour(ctx, point, levels, fh, res, times[fh])
		if err != nil {
			return res, p.fail(res, fmt.Errorf("forecast hour %d: %w", fh, err))
		}
		res.Rendered++
		res.Soundings = append(res.Soundings, summary)
		p.publishSounding(ctx, summary)
		if p.onSounding != nil {
			p.onSounding(summary)
		}
	}

	if err := p.store.FinishModelRun(ctx, res.RunId, database.RunStatusDone, res.Rendered, ""); err != nil {
		return res, err
	}
	p.publishRun(ctx, res)
	return res, nil
}

func (p *Pipeline) processHour(ctx context.Context, col ColumnReader, levels []float64, fh int, res RunResult, validTime time.Time) (Summary, error) {
	start := p.clock.Now()

	profile, err := ExtractProfile(col, levels, fh, validTime)
	if err != nil {
		return Summary{}, err
	}
	if profile.Len() < 2 {
		return Summary{}, errors.New("profile has less than two levels")
	}
	analysis := Analyze(profile)

	path := ImagePath(p.cfg.OutputDir, fh)
	if err := p.renderer.RenderFile(path, NewDiagram(res.InitTime, profile, analysis)); err != nil {
		return Summary{}, err
	}
	p.metrics.RenderDuration.Observe(p.clock.Since(start).Seconds())
	p.metrics.SoundingsRendered.Inc()

	summary := NewSummary(res.RunId, res.InitTime, profile, analysis, ImageName(fh))
	err = p.store.SaveSounding(ctx, database.SoundingRow{
		RunId:              res.RunId,
		ForecastHour:       fh,
		ValidTime:          validTime,
		SurfacePressure:    profile.Pressure[0],
		SurfaceTemperature: profile.Temperature[0],
		SurfaceDewpoint:    profile.Dewpoint[0],
		SBCAPE:             analysis.SBCAPE,
		SBCIN:              analysis.SBCIN,
		LCLPressure:        nullLevel(summary.LCLPressure),
		LFCPressure:        nullLevel(summary.LFCPressure),
		ELPressure:         nullLevel(summary.ELPressure),
		ImagePath:          path,
	})
	if err != nil {
		return Summary{}, err
	}

	p.logger.Debug("sounding rendered",
		slog.Int("forecast_hour", fh),
		slog.Float64("sbcape", summary.SBCAPE),
		slog.Float64("sbcin", summary.SBCIN),
		slog.String("path", path))
	return summary, nil
}

func nullLevel(p *float64) sql.NullFloat64 {
	if p == nil {
		return database.NullPressure(0, false)
	}
	return database.NullPressure(*p, true)
}

// fail marks the run as failed with whatever was rendered so far. The store
// is written with a fresh context so a cancelled run is still recorded.
func (p *Pipeline) fail(res RunResult, cause error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.store.FinishModelRun(ctx, res.RunId, database.RunStatusFailed, res.Rendered, cause.Error()); err != nil {
		p.logger.Error("failed to mark model run as failed", slog.Int64("run_id", res.RunId), slog.Any("error", err))
	}
	return cause
}

func (p *Pipeline) publishSounding(ctx context.Context, s Summary) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.PublishSounding(ctx, s); err != nil {
		p.metrics.NotifyErrors.Inc()
		p.logger.Warn("failed to publish sounding", slog.Int("forecast_hour", s.ForecastHour), slog.Any("error", err))
	}
}

func (p *Pipeline) publishRun(ctx context.Context, r RunResult) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.PublishRun(ctx, r); err != nil {
		p.metrics.NotifyErrors.Inc()
		p.logger.Warn("failed to publish model run", slog.Int64("run_id", r.RunId), slog.Any("error", err))
	}
}
