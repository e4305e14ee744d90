package database

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"
)

const backupTimeLayout = "20060102_150405"

var backupName = regexp.MustCompile(`^(\d{8}_\d{6})_.*\.zip$`)

// BackupFile is one zipped snapshot in the backup directory.
type BackupFile struct {
	Path    string
	Created time.Time
}

func (d *Database) backupDir() string {
	return filepath.Join(filepath.Dir(d.path), "backups")
}

// Backup snapshots the database with VACUUM INTO and zips the snapshot into
// the backup directory next to the database file.
func (d *Database) Backup(ctx context.Context) error {
	dir := d.backupDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	snapshot := filepath.Join(dir, d.clock.Now().UTC().Format(backupTimeLayout)+"_"+filepath.Base(d.path))
	if _, err := d.write.ExecContext(ctx, "VACUUM INTO ?", snapshot); err != nil {
		return fmt.Errorf("vacuuming database into %q: %w", snapshot, err)
	}
	defer func() {
		if err := os.Remove(snapshot); err != nil {
			d.logger.Warn("could not remove uncompressed snapshot", slog.Any("error", err))
		}
	}()

	zipPath := snapshot + ".zip"
	if err := zipSnapshot(zipPath, snapshot, filepath.Base(d.path)); err != nil {
		os.Remove(zipPath)
		return err
	}

	d.logger.Info("database backup complete", slog.String("filename", zipPath))
	return nil
}

func zipSnapshot(zipPath, snapshot, entryName string) error {
	src, err := os.Open(snapshot)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat snapshot: %w", err)
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("create zip header: %w", err)
	}
	header.Name = entryName
	header.Method = zip.Deflate

	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create zip file: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create zip entry: %w", err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize zip file: %w", err)
	}
	return out.Close()
}

// Backups lists the backup files, oldest first. Files not named like a
// backup are ignored.
func (d *Database) Backups() ([]BackupFile, error) {
	dir := d.backupDir()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	var backups []BackupFile
	for _, e := range entries {
		m := backupName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		t, err := time.Parse(backupTimeLayout, m[1])
		if err != nil {
			continue
		}
		backups = append(backups, BackupFile{Path: filepath.Join(dir, e.Name()), Created: t})
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].Created.Before(backups[j].Created) })
	return backups, nil
}

// PurgeBackups deletes backups older than retentionDays. Zero or less keeps
// everything.
func (d *Database) PurgeBackups(ctx context.Context, retentionDays int) error {
	if retentionDays < 1 {
		return nil
	}
	backups, err := d.Backups()
	if err != nil {
		return err
	}

	cutoff := d.clock.Now().Add(-time.Duration(retentionDays) * 24 * time.Hour)
	removed := 0
	for _, b := range backups {
		if !b.Created.Before(cutoff) {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.Remove(b.Path); err != nil {
			return fmt.Errorf("remove old backup %q: %w", b.Path, err)
		}
		removed++
	}

	d.logger.Info("backup purge complete", slog.Int("removed", removed))
	return nil
}
