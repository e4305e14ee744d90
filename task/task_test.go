package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/icodeforyou/rapsounding-go/config"
	"github.com/icodeforyou/rapsounding-go/sounding"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeRunner struct {
	forced []bool
	res    sounding.RunResult
	err    error
	during func()
}

func (f *fakeRunner) Run(ctx context.Context, force bool) (sounding.RunResult, error) {
	f.forced = append(f.forced, force)
	if f.during != nil {
		f.during()
	}
	return f.res, f.err
}

type fakeReloader struct{ reloads int }

func (f *fakeReloader) Reload(ctx context.Context) error {
	f.reloads++
	return nil
}

func TestSoundingTaskReloadsAfterRun(t *testing.T) {
	runner := &fakeRunner{res: sounding.RunResult{Dataset: "RAP", Rendered: 22}}
	latest := &fakeReloader{}
	task := NewSoundingTask(discard, runner, latest)

	task(false)
	task(true)

	assert.Equal(t, []bool{false, true}, runner.forced)
	assert.Equal(t, 2, latest.reloads)
}

func TestSoundingTaskSkippedRunDoesNotReload(t *testing.T) {
	runner := &fakeRunner{res: sounding.RunResult{Dataset: "RAP", Skipped: true}}
	latest := &fakeReloader{}

	NewSoundingTask(discard, runner, latest)(false)

	assert.Len(t, runner.forced, 1)
	assert.Zero(t, latest.reloads)
}

func TestSoundingTaskFailedRunStillReloads(t *testing.T) {
	runner := &fakeRunner{res: sounding.RunResult{Rendered: 4}, err: errors.New("forecast hour 4: boom")}
	latest := &fakeReloader{}

	NewSoundingTask(discard, runner, latest)(false)

	assert.Equal(t, 1, latest.reloads)
}

func TestSoundingTaskDropsOverlappingRun(t *testing.T) {
	runner := &fakeRunner{}
	latest := &fakeReloader{}
	task := NewSoundingTask(discard, runner, latest)
	runner.during = func() {
		runner.during = nil
		task(true)
	}

	task(false)

	assert.Equal(t, []bool{false}, runner.forced)
}

type fakeMaintenance struct {
	calls []string
	args  []int
}

func (f *fakeMaintenance) Backup(ctx context.Context) error {
	f.calls = append(f.calls, "backup")
	return errors.New("disk full")
}

func (f *fakeMaintenance) PurgeBackups(ctx context.Context, retentionDays int) error {
	f.calls = append(f.calls, "backups")
	f.args = append(f.args, retentionDays)
	return nil
}

func (f *fakeMaintenance) PurgeLog(ctx context.Context, maxLogEntries int) error {
	f.calls = append(f.calls, "log")
	f.args = append(f.args, maxLogEntries)
	return nil
}

func (f *fakeMaintenance) PurgeModelRuns(ctx context.Context, retentionDays int) error {
	f.calls = append(f.calls, "runs")
	f.args = append(f.args, retentionDays)
	return nil
}

func TestMaintenanceTaskContinuesAfterErrors(t *testing.T) {
	days := 7
	cnfg := &config.AppConfig{Database: config.AppConfigDatabase{DataRetentionDays: &days}}
	store := &fakeMaintenance{}

	NewMaintenanceTask(discard, store, cnfg)()

	assert.Equal(t, []string{"backup", "backups", "log", "runs"}, store.calls)
	assert.Equal(t, []int{30, 10000, 7}, store.args)
}
