package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusDone    RunStatus = "done"
	RunStatusFailed  RunStatus = "failed"
)

type ModelRunRow struct {
	Id            int64
	Dataset       string
	InitTime      time.Time
	AccessUrl     string
	GridLatitude  float64
	GridLongitude float64
	ForecastHours int
	Rendered      int
	Status        RunStatus
	Message       string
	Created       time.Time
}

const modelRunColumns = `id, dataset, init_time, access_url, grid_latitude, grid_longitude,
	forecast_hours, rendered, status, message, created`

func (d *Database) InsertModelRun(ctx context.Context, r ModelRunRow) (int64, error) {
	d.logger.Debug("saving model run", "dataset", r.Dataset, "init_time", r.InitTime)

	res, err := d.write.ExecContext(ctx, `
		INSERT INTO model_run (
			dataset,
			init_time,
			access_url,
			grid_latitude,
			grid_longitude,
			forecast_hours,
			status,
			created
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Dataset,
		r.InitTime.Unix(),
		r.AccessUrl,
		r.GridLatitude,
		r.GridLongitude,
		r.ForecastHours,
		RunStatusRunning,
		d.clock.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("error when saving model run: %w", err)
	}
	return res.LastInsertId()
}

// FinishModelRun records the outcome of a run and how many hours it rendered.
func (d *Database) FinishModelRun(ctx context.Context, id int64, status RunStatus, rendered int, message string) error {
	_, err := d.write.ExecContext(ctx, `
		UPDATE model_run SET status = ?, rendered = ?, message = ?
		WHERE id = ?`,
		status, rendered, message, id)
	if err != nil {
		return fmt.Errorf("error when finishing model run %d: %w", id, err)
	}
	return nil
}

func (d *Database) GetModelRun(ctx context.Context, id int64) (ModelRunRow, error) {
	row := d.read.QueryRowContext(ctx,
		`SELECT `+modelRunColumns+` FROM model_run WHERE id = ?`, id)
	return scanModelRun(row)
}

// GetLatestModelRun returns the most recent run that rendered at least one
// sounding.
func (d *Database) GetLatestModelRun(ctx context.Context) (ModelRunRow, error) {
	row := d.read.QueryRowContext(ctx, `
		SELECT `+modelRunColumns+`
		FROM model_run
		WHERE rendered > 0
		ORDER BY init_time DESC, id DESC
		LIMIT 1`)
	return scanModelRun(row)
}

func (d *Database) GetModelRuns(ctx context.Context, limit int) ([]ModelRunRow, error) {
	rows, err := d.read.QueryContext(ctx, `
		SELECT `+modelRunColumns+`
		FROM model_run
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("error when fetching model runs: %w", err)
	}
	defer rows.Close()

	var runs []ModelRunRow
	for rows.Next() {
		r, err := scanModelRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// HasCompletedRun tells if dataset has already been processed successfully.
func (d *Database) HasCompletedRun(ctx context.Context, dataset string) (bool, error) {
	var n int
	err := d.read.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM model_run WHERE dataset = ? AND status = ?`,
		dataset, RunStatusDone).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("error when looking up model run: %w", err)
	}
	return n > 0, nil
}

// PurgeModelRuns deletes old runs, their soundings follow by cascade.
func (d *Database) PurgeModelRuns(ctx context.Context, retentionDays int) error {
	return d.purgeTable(ctx, "model_run", retentionDays)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanModelRun(s scanner) (ModelRunRow, error) {
	var r ModelRunRow
	var initTime, created int64
	err := s.Scan(
		&r.Id,
		&r.Dataset,
		&initTime,
		&r.AccessUrl,
		&r.GridLatitude,
		&r.GridLongitude,
		&r.ForecastHours,
		&r.Rendered,
		&r.Status,
		&r.Message,
		&created)
	if errors.Is(err, sql.ErrNoRows) {
		return ModelRunRow{}, ErrNotFound
	}
	if err != nil {
		return ModelRunRow{}, fmt.Errorf("error when scanning model run row: %w", err)
	}
	r.InitTime = time.Unix(initTime, 0).UTC()
	r.Created = time.Unix(created, 0).UTC()
	return r, nil
}
