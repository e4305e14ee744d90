package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/icodeforyou/rapsounding-go/convert"
)

type SoundingRow struct {
	RunId              int64
	ForecastHour       int
	ValidTime          time.Time
	SurfacePressure    float64
	SurfaceTemperature float64
	SurfaceDewpoint    float64
	SBCAPE             float64
	SBCIN              float64
	LCLPressure        sql.NullFloat64
	LFCPressure        sql.NullFloat64
	ELPressure         sql.NullFloat64
	ImagePath          string
}

func NullPressure(p float64, ok bool) sql.NullFloat64 {
	return nullFloat(convert.TwoDecimals(p), ok)
}

func (d *Database) SaveSounding(ctx context.Context, r SoundingRow) error {
	d.logger.Debug("saving sounding",
		"run_id", r.RunId,
		"forecast_hour", r.ForecastHour,
		"sbcape", r.SBCAPE)

	_, err := d.write.ExecContext(ctx, `
		INSERT INTO sounding (
			run_id,
			forecast_hour,
			valid_time,
			surface_pressure,
			surface_temperature,
			surface_dewpoint,
			sbcape,
			sbcin,
			lcl_pressure,
			lfc_pressure,
			el_pressure,
			image_path,
			created
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, forecast_hour) DO UPDATE SET
			valid_time = excluded.valid_time,
			surface_pressure = excluded.surface_pressure,
			surface_temperature = excluded.surface_temperature,
			surface_dewpoint = excluded.surface_dewpoint,
			sbcape = excluded.sbcape,
			sbcin = excluded.sbcin,
			lcl_pressure = excluded.lcl_pressure,
			lfc_pressure = excluded.lfc_pressure,
			el_pressure = excluded.el_pressure,
			image_path = excluded.image_path`,
		r.RunId,
		r.ForecastHour,
		r.ValidTime.Unix(),
		convert.TwoDecimals(r.SurfacePressure),
		convert.TwoDecimals(r.SurfaceTemperature),
		convert.TwoDecimals(r.SurfaceDewpoint),
		convert.TwoDecimals(r.SBCAPE),
		convert.TwoDecimals(r.SBCIN),
		r.LCLPressure,
		r.LFCPressure,
		r.ELPressure,
		r.ImagePath,
		d.clock.Now().Unix())
	if err != nil {
		return fmt.Errorf("error when saving sounding: %w", err)
	}
	return nil
}

func (d *Database) GetSoundings(ctx context.Context, runId int64) ([]SoundingRow, error) {
	rows, err := d.read.QueryContext(ctx, `
		SELECT run_id, forecast_hour, valid_time, surface_pressure, surface_temperature,
			surface_dewpoint, sbcape, sbcin, lcl_pressure, lfc_pressure, el_pressure, image_path
		FROM sounding
		WHERE run_id = ?
		ORDER BY forecast_hour`, runId)
	if err != nil {
		return nil, fmt.Errorf("error when fetching soundings: %w", err)
	}
	defer rows.Close()

	var soundings []SoundingRow
	for rows.Next() {
		var r SoundingRow
		var validTime int64
		err := rows.Scan(
			&r.RunId,
			&r.ForecastHour,
			&validTime,
			&r.SurfacePressure,
			&r.SurfaceTemperature,
			&r.SurfaceDewpoint,
			&r.SBCAPE,
			&r.SBCIN,
			&r.LCLPressure,
			&r.LFCPressure,
			&r.ELPressure,
			&r.ImagePath)
		if err != nil {
			return nil, fmt.Errorf("error when scanning sounding row: %w", err)
		}
		r.ValidTime = time.Unix(validTime, 0).UTC()
		soundings = append(soundings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading sounding rows: %w", err)
	}

	return soundings, nil
}
