package db

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/michaelscutari/dircache/internal/cache"
	"github.com/michaelscutari/dircache/internal/entry"
)

const deleteErrorsSQL = `DELETE FROM scan_errors WHERE snapshot_id IN (SELECT id FROM snapshots WHERE path = ?)`
const deleteEntriesSQL = `DELETE FROM entries WHERE snapshot_id IN (SELECT id FROM snapshots WHERE path = ?)`
const deleteSnapshotSQL = `DELETE FROM snapshots WHERE path = ?`
const insertSnapshotSQL = `INSERT INTO snapshots (path, generation, scanned_at, file_count, dir_count, total_size, total_files, total_dirs, error_count) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
const insertEntrySQL = `INSERT INTO entries (snapshot_id, name, kind, extension, size, mode, mtime, ctime, uid, gid, inode, dev_id, child_files, child_dirs, total_size) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
const insertErrorSQL = `INSERT INTO scan_errors (snapshot_id, path, message) VALUES (?, ?, ?)`

// Source is the read side of a directory cache.
type Source interface {
	Info(path string) (cache.Info, error)
	SortedBy(path string, order cache.Order, reverse bool) ([]entry.Entry, []entry.Entry, error)
}

// ExportStats summarizes a Write.
type ExportStats struct {
	Snapshots int
	Entries   int64
	Errors    int64
}

// Writer copies cached snapshots into a database.
type Writer struct {
	db  *sql.DB
	log *zap.Logger
}

// NewWriter creates a writer. A nil logger discards output.
func NewWriter(db *sql.DB, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{db: db, log: log}
}

type exportStmts struct {
	deleteErrors, deleteEntries, deleteSnapshot *sql.Stmt
	snapshot, entry, scanError                  *sql.Stmt
}

func (s *exportStmts) Close() {
	for _, st := range []*sql.Stmt{s.deleteErrors, s.deleteEntries, s.deleteSnapshot, s.snapshot, s.entry, s.scanError} {
		if st != nil {
			st.Close()
		}
	}
}

// Write stores the snapshots cached for paths in one transaction. A path
// already present in the database is replaced. Nothing is written if any
// path is not cached.
func (w *Writer) Write(ctx context.Context, src Source, paths []string) (ExportStats, error) {
	var stats ExportStats

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmts, err := prepareExport(ctx, tx)
	if err != nil {
		return stats, err
	}
	defer stmts.Close()

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		n, errs, err := w.writeSnapshot(ctx, stmts, src, path)
		if err != nil {
			return stats, err
		}
		stats.Snapshots++
		stats.Entries += n
		stats.Errors += errs
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("failed to commit transaction: %w", err)
	}
	w.log.Debug("export written",
		zap.Int("snapshots", stats.Snapshots),
		zap.Int64("entries", stats.Entries))
	return stats, nil
}

func prepareExport(ctx context.Context, tx *sql.Tx) (*exportStmts, error) {
	s := &exportStmts{}
	for _, p := range []struct {
		dst   **sql.Stmt
		query string
	}{
		{&s.deleteErrors, deleteErrorsSQL},
		{&s.deleteEntries, deleteEntriesSQL},
		{&s.deleteSnapshot, deleteSnapshotSQL},
		{&s.snapshot, insertSnapshotSQL},
		{&s.entry, insertEntrySQL},
		{&s.scanError, insertErrorSQL},
	} {
		st, err := tx.PrepareContext(ctx, p.query)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to prepare statement: %w", err)
		}
		*p.dst = st
	}
	return s, nil
}

func (w *Writer) writeSnapshot(ctx context.Context, s *exportStmts, src Source, path string) (int64, int64, error) {
	info, err := src.Info(path)
	if err != nil {
		return 0, 0, err
	}
	files, dirs, err := src.SortedBy(info.Path, cache.OrderName, false)
	if err != nil {
		return 0, 0, err
	}

	for _, st := range []*sql.Stmt{s.deleteErrors, s.deleteEntries, s.deleteSnapshot} {
		if _, err := st.ExecContext(ctx, info.Path); err != nil {
			return 0, 0, fmt.Errorf("failed to clear snapshot %q: %w", info.Path, err)
		}
	}

	res, err := s.snapshot.ExecContext(ctx,
		info.Path, info.Generation, info.ScannedAt.Unix(),
		info.FileCount, info.DirCount,
		info.Totals.TotalSize, info.Totals.TotalFiles, info.Totals.TotalDirs,
		len(info.Errors))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to insert snapshot %q: %w", info.Path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read snapshot id: %w", err)
	}

	var n int64
	for _, list := range [][]entry.Entry{dirs, files} {
		for i := range list {
			e := &list[i]
			totalSize := e.Size
			if e.Kind == entry.KindDir {
				totalSize = e.Totals.TotalSize
			}
			_, err := s.entry.ExecContext(ctx,
				id, e.Name(), e.Kind, e.Extension, e.Size, uint32(e.Mode),
				e.ModTime.Unix(), e.ChangeTime.Unix(), e.UID, e.GID,
				int64(e.Inode), int64(e.DevID),
				e.ChildFiles, e.ChildDirs, totalSize)
			if err != nil {
				return 0, 0, fmt.Errorf("failed to insert entry %q: %w", e.FullPath, err)
			}
			n++
		}
	}

	for _, se := range info.Errors {
		if _, err := s.scanError.ExecContext(ctx, id, se.Path, fmt.Sprint(se.Err)); err != nil {
			return 0, 0, fmt.Errorf("failed to insert error for %q: %w", se.Path, err)
		}
	}
	return n, int64(len(info.Errors)), nil
}
