package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type LogEntryRow struct {
	Timestamp time.Time
	Level     int
	Message   string
	Attrs     string
}

// LevelName is the slog name of the entry level, e.g. "WARN".
func (r LogEntryRow) LevelName() string {
	return slog.Level(r.Level).String()
}

// LogFilter selects a page of log entries, newest first.
type LogFilter struct {
	MinLevel slog.Level
	// Contains matches message or attributes, case insensitive. Empty matches all.
	Contains string
	Page     int // 1-based
	PageSize int
}

func (f LogFilter) normalized() LogFilter {
	f.Page = max(f.Page, 1)
	if f.PageSize < 1 {
		f.PageSize = 25
	}
	f.Contains = strings.TrimSpace(f.Contains)
	return f
}

func (d *Database) SaveLogEntry(ctx context.Context, r LogEntryRow) error {
	_, err := d.write.ExecContext(ctx,
		`INSERT INTO log (timestamp, level, message, attrs) VALUES (?, ?, ?, ?)`,
		r.Timestamp.UTC().Format(time.RFC3339Nano), r.Level, r.Message, r.Attrs)
	if err != nil {
		return fmt.Errorf("saving log entry: %w", err)
	}
	return nil
}

func (d *Database) GetLogEntries(ctx context.Context, f LogFilter) ([]LogEntryRow, error) {
	f = f.normalized()

	query := `SELECT timestamp, level, message, attrs FROM log WHERE level >= ?`
	args := []any{int(f.MinLevel)}
	if f.Contains != "" {
		query += ` AND (message LIKE ? OR attrs LIKE ?)`
		like := "%" + f.Contains + "%"
		args = append(args, like, like)
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := d.read.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching log entries: %w", err)
	}
	defer rows.Close()

	var entries []LogEntryRow
	for rows.Next() {
		var r LogEntryRow
		var ts string
		if err := rows.Scan(&ts, &r.Level, &r.Message, &r.Attrs); err != nil {
			return nil, fmt.Errorf("scanning log entry: %w", err)
		}
		if r.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parsing log timestamp %q: %w", ts, err)
		}
		entries = append(entries, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading log rows: %w", err)
	}
	return entries, nil
}

// PurgeLog keeps the maxLogEntries most recent entries.
func (d *Database) PurgeLog(ctx context.Context, maxLogEntries int) error {
	res, err := d.write.ExecContext(ctx,
		`DELETE FROM log WHERE id <= (SELECT id FROM log ORDER BY id DESC LIMIT 1 OFFSET ?)`, maxLogEntries)
	if err != nil {
		return fmt.Errorf("purging log: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		d.logger.Debug("log purged", slog.Int64("deleted", n))
	}
	return nil
}
