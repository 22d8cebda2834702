// Package store manages the ephemeral staging directory. Every artifact is
// deleted a fixed TTL after creation, whether or not it was ever served;
// a per-file timer and a periodic sweep enforce the same rule redundantly.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vaibhavk10/YT-API/internal/media"
)

type Store struct {
	dir    string
	ttl    time.Duration
	settle time.Duration
	logger *zap.Logger
}

// New creates the staging directory if needed. The directory is passed in
// rather than discovered so tests can isolate their own.
func New(dir string, ttl, settle time.Duration, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Store{dir: dir, ttl: ttl, settle: settle, logger: logger}, nil
}

func (s *Store) Dir() string        { return s.dir }
func (s *Store) TTL() time.Duration { return s.ttl }

// Stage generates a destination for a new artifact. Millisecond timestamps
// make collisions negligible; no further guard is applied.
func (s *Store) Stage(kind media.Kind) (filename, path string) {
	filename = fmt.Sprintf("%s_%d.%s", kind, time.Now().UnixMilli(), kind.Ext())
	return filename, filepath.Join(s.dir, filename)
}

// Finalize waits out the settle delay (extraction tools may still be
// flushing) and returns the artifact size, or ErrMissingFile.
func (s *Store) Finalize(path string) (int64, error) {
	time.Sleep(s.settle)
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", media.ErrMissingFile, filepath.Base(path))
	}
	return info.Size(), nil
}

// ScheduleCleanup deletes the file after the TTL elapses. Best-effort:
// errors are logged, never returned, and a missing file is a normal outcome
// (the sweep may have won the race).
func (s *Store) ScheduleCleanup(path string) {
	time.AfterFunc(s.ttl, func() {
		s.Remove(path)
	})
}

// Remove deletes a staged file, treating "already gone" as a no-op.
func (s *Store) Remove(path string) {
	err := os.Remove(path)
	switch {
	case err == nil:
		s.logger.Info("removed expired file", zap.String("path", path))
	case errors.Is(err, fs.ErrNotExist):
	default:
		s.logger.Warn("cleanup failed", zap.String("path", path), zap.Error(err))
	}
}

// Sweep deletes every staged file older than the TTL and reports how many
// were removed. It is the safety net for missed or crashed per-file timers.
func (s *Store) Sweep() int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn("sweep: read staging dir", zap.Error(err))
		return 0
	}

	removed := 0
	cutoff := time.Now().Add(-s.ttl)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err == nil || errors.Is(err, fs.ErrNotExist) {
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("sweep removed stale files", zap.Int("count", removed))
	}
	return removed
}

// RunSweeper runs Sweep on the given interval until the context ends.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Open returns the named staged file for serving. Names that escape the
// staging directory are rejected.
func (s *Store) Open(filename string) (*os.File, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		return nil, fmt.Errorf("%w: %s", media.ErrMissingFile, filename)
	}
	f, err := os.Open(filepath.Join(s.dir, filename))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", media.ErrMissingFile, filename)
	}
	return f, nil
}
