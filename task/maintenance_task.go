package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/icodeforyou/rapsounding-go/config"
)

const maintenanceTimeout = 5 * time.Minute

// MaintenanceStore is the housekeeping part of database.Database.
type MaintenanceStore interface {
	Backup(ctx context.Context) error
	PurgeBackups(ctx context.Context, retentionDays int) error
	PurgeLog(ctx context.Context, maxLogEntries int) error
	PurgeModelRuns(ctx context.Context, retentionDays int) error
}

type maintenanceStep struct {
	name string
	run  func(ctx context.Context) error
}

// NewMaintenanceTask backs up the database and applies the retention
// settings. A failing step is logged and the next one still runs.
func NewMaintenanceTask(logger *slog.Logger, db MaintenanceStore, cnfg *config.AppConfig) func() {
	steps := []maintenanceStep{
		{"backup", db.Backup},
		{"purge backups", func(ctx context.Context) error {
			return db.PurgeBackups(ctx, cnfg.Database.GetBackupRetentionDays())
		}},
		{"purge log", func(ctx context.Context) error {
			return db.PurgeLog(ctx, cnfg.Logging.GetDbMaxEntries())
		}},
		// Soundings go with their run.
		{"purge model runs", func(ctx context.Context) error {
			return db.PurgeModelRuns(ctx, cnfg.Database.GetDataRetentionDays())
		}},
	}

	return func() {
		logger.Debug("running maintenance task...")
		ctx, cancel := context.WithTimeout(context.Background(), maintenanceTimeout)
		defer cancel()

		failed := 0
		for _, s := range steps {
			if err := s.run(ctx); err != nil {
				failed++
				logger.Error("maintenance step failed", slog.String("step", s.name), slog.Any("error", err))
			}
		}
		logger.Info("maintenance task done", slog.Int("failed", failed))
	}
}
