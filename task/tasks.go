package task

import (
	"context"
	"log/slog"

	"github.com/icodeforyou/rapsounding-go/config"
	"github.com/icodeforyou/rapsounding-go/database"
	"github.com/robfig/cron/v3"
)

const maintenanceSchedule = "30 2 * * *"

type Tasks struct {
	cron              *cron.Cron
	cnfg              *config.AppConfig
	SoundingTask      func()
	ForceSoundingTask func()
	MaintenanceTask   func()
}

func NewTasks(
	db *database.Database,
	runner Runner,
	latest *database.LatestRun,
	cnfg *config.AppConfig,
) *Tasks {
	logger := slog.Default().With("module", "tasks")
	sounding := NewSoundingTask(logger.With(slog.String("task", "sounding")), runner, latest)
	return &Tasks{
		cron:              cron.New(),
		cnfg:              cnfg,
		SoundingTask:      func() { sounding(false) },
		ForceSoundingTask: func() { sounding(true) },
		MaintenanceTask:   NewMaintenanceTask(logger.With(slog.String("task", "maintenance")), db, cnfg),
	}
}

func (t *Tasks) Run() {
	_, err := t.cron.AddFunc(t.cnfg.Model.GetRunAt(), t.SoundingTask)
	if err != nil {
		panic(err)
	}
	_, err = t.cron.AddFunc(maintenanceSchedule, t.MaintenanceTask)
	if err != nil {
		panic(err)
	}
	t.cron.Start()
}

func (t *Tasks) Stop() context.Context {
	return t.cron.Stop()
}
