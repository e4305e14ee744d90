package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// LatestRun caches the most recent rendered run and its soundings for the
// web front end.
type LatestRun struct {
	mu        sync.RWMutex
	db        *Database
	run       ModelRunRow
	soundings []SoundingRow
	loaded    bool
}

func NewLatestRun(db *Database) *LatestRun {
	return &LatestRun{db: db}
}

func (l *LatestRun) Get() (ModelRunRow, []SoundingRow, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.run, l.soundings, l.loaded
}

func (l *LatestRun) Reload(ctx context.Context) error {
	run, err := l.db.GetLatestModelRun(ctx)
	if errors.Is(err, ErrNotFound) {
		l.mu.Lock()
		l.run, l.soundings, l.loaded = ModelRunRow{}, nil, false
		l.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("reloading latest run: %w", err)
	}

	soundings, err := l.db.GetSoundings(ctx, run.Id)
	if err != nil {
		return fmt.Errorf("reloading latest run: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.run, l.soundings, l.loaded = run, soundings, true
	return nil
}
