// Package snapshot manages the directory of SQLite exports: one file per
// export, a latest.db link and retention of older files.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/michaelscutari/dircache/internal/db"

	_ "modernc.org/sqlite"
)

const (
	filePrefix = "dircache-"
	fileSuffix = ".db"
	latestName = "latest.db"
)

// Manager handles the export lifecycle including locking and retention.
type Manager struct {
	outputDir string
	retention int
	lockFile  *os.File
	now       func() time.Time
	log       *zap.Logger
}

// NewManager creates a manager writing into outputDir and keeping at most
// retention exports (0 = unlimited).
func NewManager(outputDir string, retention int, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		outputDir: outputDir,
		retention: retention,
		now:       time.Now,
		log:       log,
	}
}

// SetClock overrides the clock used to name export files.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Export writes the snapshots cached for paths into a new database file and
// points latest.db at it. The file only appears once fully written.
func (m *Manager) Export(ctx context.Context, src db.Source, paths []string) (string, db.ExportStats, error) {
	var stats db.ExportStats
	if err := os.MkdirAll(m.outputDir, 0755); err != nil {
		return "", stats, fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := m.acquireLock(); err != nil {
		return "", stats, fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer m.releaseLock()

	tempPath := filepath.Join(m.outputDir, fmt.Sprintf(".dircache-temp-%d.db", time.Now().UnixNano()))
	stats, err := m.write(ctx, tempPath, src, paths)
	if err != nil {
		removeDB(tempPath)
		return "", stats, err
	}

	finalName := filePrefix + m.now().Format("20060102-150405.000") + fileSuffix
	finalPath := filepath.Join(m.outputDir, finalName)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return "", stats, fmt.Errorf("failed to rename database: %w", err)
	}

	// Swap latest.db via temp symlink + rename.
	latestPath := filepath.Join(m.outputDir, latestName)
	tempLink := filepath.Join(m.outputDir, ".latest.db.tmp")
	os.Remove(tempLink)
	if err := os.Symlink(finalName, tempLink); err == nil {
		if err := os.Rename(tempLink, latestPath); err != nil {
			os.Remove(tempLink)
			m.log.Warn("failed to update latest.db symlink", zap.Error(err))
		}
	} else {
		m.log.Warn("failed to create latest.db symlink", zap.Error(err))
	}

	if err := m.prune(); err != nil {
		m.log.Warn("failed to prune old exports", zap.Error(err))
	}

	m.log.Info("export complete",
		zap.String("path", finalPath),
		zap.Int("snapshots", stats.Snapshots),
		zap.Int64("entries", stats.Entries))
	return finalPath, stats, nil
}

func (m *Manager) write(ctx context.Context, path string, src db.Source, paths []string) (db.ExportStats, error) {
	var stats db.ExportStats
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return stats, fmt.Errorf("failed to create database: %w", err)
	}
	defer database.Close()

	if err := db.InitSchema(database); err != nil {
		return stats, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := db.ApplyWritePragmas(database); err != nil {
		return stats, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	stats, err = db.NewWriter(database, m.log).Write(ctx, src, paths)
	if err != nil {
		return stats, fmt.Errorf("export failed: %w", err)
	}

	if err := db.BuildIndexes(database); err != nil {
		return stats, fmt.Errorf("failed to build indexes: %w", err)
	}
	if err := db.Finalize(database); err != nil {
		return stats, fmt.Errorf("failed to finalize database: %w", err)
	}
	return stats, nil
}

// removeDB deletes a database file and any WAL leftovers.
func removeDB(path string) {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		os.Remove(p)
	}
}

func (m *Manager) acquireLock() error {
	lockPath := filepath.Join(m.outputDir, ".dircache.lock")
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		return fmt.Errorf("another export is in progress")
	}

	m.lockFile = f
	return nil
}

func (m *Manager) releaseLock() {
	if m.lockFile != nil {
		syscall.Flock(int(m.lockFile.Fd()), syscall.LOCK_UN)
		m.lockFile.Close()
		m.lockFile = nil
	}
}

func (m *Manager) prune() error {
	if m.retention <= 0 {
		return nil
	}

	exports, err := m.ListExports()
	if err != nil {
		return err
	}

	// Names embed the timestamp, so lexical order is chronological.
	for len(exports) > m.retention {
		if err := os.Remove(exports[0]); err != nil {
			return fmt.Errorf("failed to remove %s: %w", exports[0], err)
		}
		exports = exports[1:]
	}
	return nil
}

// GetLatest returns the path to the latest export.
func (m *Manager) GetLatest() (string, error) {
	resolved, err := filepath.EvalSymlinks(filepath.Join(m.outputDir, latestName))
	if err != nil {
		return "", fmt.Errorf("no latest export found: %w", err)
	}
	return resolved, nil
}

// ListExports returns all export files, oldest first.
func (m *Manager) ListExports() ([]string, error) {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return nil, err
	}

	var exports []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), filePrefix) && strings.HasSuffix(e.Name(), fileSuffix) {
			exports = append(exports, filepath.Join(m.outputDir, e.Name()))
		}
	}

	sort.Strings(exports)
	return exports, nil
}
