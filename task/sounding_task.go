package task

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/icodeforyou/rapsounding-go/sounding"
)

// runTimeout bounds a whole run: the download and up to 52 rendered hours.
const runTimeout = 30 * time.Minute

type Runner interface {
	Run(ctx context.Context, force bool) (sounding.RunResult, error)
}

type Reloader interface {
	Reload(ctx context.Context) error
}

// NewSoundingTask returns the task body. Only one run is in progress at a
// time, a run triggered while another is busy is dropped.
func NewSoundingTask(logger *slog.Logger, runner Runner, latest Reloader) func(force bool) {
	var mu sync.Mutex

	return func(force bool) {
		if !mu.TryLock() {
			logger.Warn("sounding task already running, skipping")
			return
		}
		defer mu.Unlock()

		logger.Debug("running sounding task...", slog.Bool("force", force))

		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		res, err := runner.Run(ctx, force)
		if err != nil {
			logger.Error("sounding task error", slog.String("dataset", res.Dataset), slog.Any("error", err))
		}
		if res.Skipped {
			logger.Debug("sounding task done, nothing new", slog.String("dataset", res.Dataset))
			return
		}

		// A failed run may still have rendered some hours.
		if err := latest.Reload(ctx); err != nil {
			logger.Error("sounding task error, reload latest run", slog.Any("error", err))
		}

		logger.Info("sounding task done",
			slog.String("dataset", res.Dataset),
			slog.Int("noOfHoursRendered", res.Rendered))
	}
}
