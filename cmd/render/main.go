package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/icodeforyou/rapsounding-go/grid"
	"github.com/icodeforyou/rapsounding-go/skewt"
	"github.com/icodeforyou/rapsounding-go/sounding"
	"github.com/lmittmann/tint"
)

// Renders soundings from an already downloaded subset file, without the
// catalog, the database or the scheduler.
func main() {
	lat := flag.Float64("lat", 42.66, "target latitude")
	lon := flag.Float64("lon", -83.41, "target longitude")
	out := flag.String("out", "models/rap", "output directory")
	hour := flag.Int("fh", -1, "single forecast hour to render, -1 renders all")
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.RFC3339Nano,
	}))
	if flag.NArg() != 1 {
		logger.Error("usage: render [flags] <subset.nc>")
		os.Exit(2)
	}

	if err := render(logger, flag.Arg(0), *lat, *lon, *out, *hour); err != nil {
		logger.Error("render failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func render(logger *slog.Logger, path string, lat, lon float64, out string, only int) error {
	g, err := grid.Open(path)
	if err != nil {
		return err
	}
	defer g.Close()

	point, err := g.Point(lat, lon)
	if err != nil {
		return err
	}
	timeDim, err := grid.TimeDimension(g, sounding.TemperatureVar)
	if err != nil {
		return err
	}
	times, err := grid.Times(g, timeDim)
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return fmt.Errorf("%s has no time steps", timeDim)
	}
	_, levels, err := grid.Levels(g, sounding.TemperatureVar)
	if err != nil {
		return err
	}

	renderer := skewt.NewRenderer(900, 900, 100)
	last := min(sounding.ForecastHours(times[0].Hour()), len(times)-1)
	for fh := 0; fh <= last; fh++ {
		if only >= 0 && fh != only {
			continue
		}
		profile, err := sounding.ExtractProfile(point, levels, fh, times[fh])
		if err != nil {
			return err
		}
		a := sounding.Analyze(profile)
		file := sounding.ImagePath(out, fh)
		if err := renderer.RenderFile(file, sounding.NewDiagram(times[0], profile, a)); err != nil {
			return err
		}
		logger.Info("rendered",
			slog.Int("fh", fh),
			slog.String("file", file),
			slog.Float64("sbcape", a.SBCAPE),
			slog.Float64("sbcin", a.SBCIN))
	}
	return nil
}
