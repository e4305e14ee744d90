package database

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 1, 10, 25, 0, 0, time.UTC)

func newTestDatabase(t *testing.T) (*Database, *clockwork.FakeClock) {
	t.Helper()
	db, err := New(context.Background(), filepath.Join(t.TempDir(), "rapsounding.db"))
	require.NoError(t, err)
	t.Cleanup(db.Close)

	clock := clockwork.NewFakeClockAt(now)
	db.SetClock(clock)
	return db, clock
}

func testRun() ModelRunRow {
	return ModelRunRow{
		Dataset:       "RR_CONUS_13km_20240501_0900.grib2",
		InitTime:      time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		AccessUrl:     "https://thredds.example/ncss/rap.grib2",
		GridLatitude:  42.7,
		GridLongitude: -83.4,
		ForecastHours: 51,
	}
}

func TestModelRunLifecycle(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDatabase(t)

	_, err := db.GetLatestModelRun(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	id, err := db.InsertModelRun(ctx, testRun())
	require.NoError(t, err)

	run, err := db.GetModelRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.Equal(t, testRun().InitTime, run.InitTime)
	assert.Equal(t, now, run.Created)

	done, err := db.HasCompletedRun(ctx, testRun().Dataset)
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, db.FinishModelRun(ctx, id, RunStatusDone, 52, ""))

	done, err = db.HasCompletedRun(ctx, testRun().Dataset)
	require.NoError(t, err)
	assert.True(t, done)

	latest, err := db.GetLatestModelRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, latest.Id)
	assert.Equal(t, 52, latest.Rendered)

	runs, err := db.GetModelRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSoundings(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDatabase(t)

	id, err := db.InsertModelRun(ctx, testRun())
	require.NoError(t, err)

	row := SoundingRow{
		RunId:              id,
		ForecastHour:       3,
		ValidTime:          time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		SurfacePressure:    1000,
		SurfaceTemperature: 21.856,
		SurfaceDewpoint:    12.1,
		SBCAPE:             812.333,
		SBCIN:              -25,
		LCLPressure:        NullPressure(860.123, true),
		LFCPressure:        NullPressure(0, false),
		ImagePath:          "models/rap/sounding_3.png",
	}
	require.NoError(t, db.SaveSounding(ctx, row))

	row.SBCAPE = 900
	require.NoError(t, db.SaveSounding(ctx, row))

	got, err := db.GetSoundings(ctx, id)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 900.0, got[0].SBCAPE)
	assert.Equal(t, 21.86, got[0].SurfaceTemperature)
	assert.Equal(t, sql.NullFloat64{Float64: 860.12, Valid: true}, got[0].LCLPressure)
	assert.False(t, got[0].LFCPressure.Valid)
	assert.False(t, got[0].ELPressure.Valid)
	assert.Equal(t, row.ValidTime, got[0].ValidTime)
}

func TestPurgeModelRunsCascades(t *testing.T) {
	ctx := context.Background()
	db, clock := newTestDatabase(t)

	oldId, err := db.InsertModelRun(ctx, testRun())
	require.NoError(t, err)
	require.NoError(t, db.SaveSounding(ctx, SoundingRow{RunId: oldId, ImagePath: "a.png"}))

	clock.Advance(10 * 24 * time.Hour)
	newId, err := db.InsertModelRun(ctx, testRun())
	require.NoError(t, err)

	require.NoError(t, db.PurgeModelRuns(ctx, 5))

	_, err = db.GetModelRun(ctx, oldId)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.GetModelRun(ctx, newId)
	assert.NoError(t, err)

	soundings, err := db.GetSoundings(ctx, oldId)
	require.NoError(t, err)
	assert.Empty(t, soundings)
}

func TestLogEntries(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDatabase(t)

	for i, lvl := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		require.NoError(t, db.SaveLogEntry(ctx, LogEntryRow{
			Timestamp: now.Add(time.Duration(i) * time.Second),
			Level:     int(lvl),
			Message:   lvl.String(),
		}))
	}

	entries, err := db.GetLogEntries(ctx, LogFilter{MinLevel: slog.LevelInfo, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "ERROR", entries[0].Message)
	assert.Equal(t, "ERROR", entries[0].LevelName())
	assert.Equal(t, now.Add(3*time.Second), entries[0].Timestamp)

	entries, err = db.GetLogEntries(ctx, LogFilter{MinLevel: slog.LevelDebug, Contains: "warn"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "WARN", entries[0].Message)

	entries, err = db.GetLogEntries(ctx, LogFilter{MinLevel: slog.LevelDebug, Page: 2, PageSize: 3})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "DEBUG", entries[0].Message)

	require.NoError(t, db.PurgeLog(ctx, 2))
	entries, err = db.GetLogEntries(ctx, LogFilter{MinLevel: slog.LevelDebug, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestBackupAndPurge(t *testing.T) {
	ctx := context.Background()
	db, clock := newTestDatabase(t)

	require.NoError(t, db.Backup(ctx))
	dir := filepath.Join(filepath.Dir(db.Path()), "backups")
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "20240501_102500_rapsounding.db.zip", files[0].Name())

	backups, err := db.Backups()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, now, backups[0].Created)

	clock.Advance(3 * 24 * time.Hour)
	require.NoError(t, db.PurgeBackups(ctx, 5))
	files, _ = os.ReadDir(dir)
	assert.Len(t, files, 1)

	clock.Advance(3 * 24 * time.Hour)
	require.NoError(t, db.PurgeBackups(ctx, 5))
	files, _ = os.ReadDir(dir)
	assert.Empty(t, files)
}

func TestLatestRun(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDatabase(t)
	latest := NewLatestRun(db)

	require.NoError(t, latest.Reload(ctx))
	_, _, ok := latest.Get()
	assert.False(t, ok)

	id, err := db.InsertModelRun(ctx, testRun())
	require.NoError(t, err)
	require.NoError(t, db.SaveSounding(ctx, SoundingRow{RunId: id, ForecastHour: 0, ImagePath: "sounding_0.png"}))
	require.NoError(t, db.FinishModelRun(ctx, id, RunStatusDone, 1, ""))

	require.NoError(t, latest.Reload(ctx))
	run, soundings, ok := latest.Get()
	require.True(t, ok)
	assert.Equal(t, id, run.Id)
	assert.Len(t, soundings, 1)
}
