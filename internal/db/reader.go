package db

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/michaelscutari/dircache/internal/entry"
	"github.com/michaelscutari/dircache/internal/natural"
	"github.com/michaelscutari/dircache/internal/pathutil"
)

// DisplayEntry is an exported entry as read back for display.
type DisplayEntry struct {
	Path       string
	Name       string
	Kind       entry.Kind
	Extension  string
	Size       int64
	ModTime    time.Time
	ChangeTime time.Time
	ChildFiles int64
	ChildDirs  int64
	TotalSize  int64 // subtree size for directories, Size for files
}

// SnapshotMeta describes one exported snapshot.
type SnapshotMeta struct {
	ID         int64
	Path       string
	Generation uint64
	ScannedAt  time.Time
	FileCount  int64
	DirCount   int64
	Totals     entry.Rollup
	ErrorCount int64
}

const snapshotColumns = `id, path, generation, scanned_at, file_count, dir_count, total_size, total_files, total_dirs, error_count`

// LoadEntries loads the entries exported for path. sortBy is one of
// name, mtime, ctime or size; name uses natural order. A limit of zero or
// less returns everything.
func LoadEntries(db *sql.DB, path, sortBy string, limit int) ([]DisplayEntry, error) {
	meta, err := GetSnapshotMeta(db, path)
	if err != nil {
		return nil, err
	}

	orderClause := "name ASC"
	switch sortBy {
	case "name", "":
	case "mtime":
		orderClause = "mtime DESC, name ASC"
	case "ctime":
		orderClause = "ctime DESC, name ASC"
	case "size":
		orderClause = "total_size DESC, name ASC"
	default:
		return nil, fmt.Errorf("invalid sort %q (expected name|mtime|ctime|size)", sortBy)
	}

	sqlLimit := limit
	if sortBy == "name" || sortBy == "" || limit <= 0 {
		sqlLimit = -1
	}

	query := fmt.Sprintf(`
		SELECT name, kind, extension, size, mtime, ctime, child_files, child_dirs, total_size
		FROM entries
		WHERE snapshot_id = ?
		ORDER BY %s
		LIMIT ?
	`, orderClause)

	rows, err := db.Query(query, meta.ID, sqlLimit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var entries []DisplayEntry
	for rows.Next() {
		var e DisplayEntry
		var mtime, ctime int64
		if err := rows.Scan(&e.Name, &e.Kind, &e.Extension, &e.Size, &mtime, &ctime, &e.ChildFiles, &e.ChildDirs, &e.TotalSize); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		e.Path = filepath.Join(meta.Path, e.Name)
		e.ModTime = time.Unix(mtime, 0)
		e.ChangeTime = time.Unix(ctime, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if sortBy == "name" || sortBy == "" {
		slices.SortFunc(entries, func(a, b DisplayEntry) int {
			if n := natural.Compare(a.Name, b.Name); n != 0 {
				return n
			}
			return strings.Compare(a.Name, b.Name)
		})
		if limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}
	}
	return entries, nil
}

// GetSnapshotMeta retrieves the snapshot row for path.
func GetSnapshotMeta(db *sql.DB, path string) (*SnapshotMeta, error) {
	path = pathutil.Resolve(path)
	row := db.QueryRow(`SELECT `+snapshotColumns+` FROM snapshots WHERE path = ?`, path)
	m, err := scanMeta(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &entry.NotCachedError{Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %q: %w", path, err)
	}
	return m, nil
}

// ListSnapshots returns every exported snapshot ordered by path.
func ListSnapshots(db *sql.DB) ([]SnapshotMeta, error) {
	rows, err := db.Query(`SELECT ` + snapshotColumns + ` FROM snapshots ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []SnapshotMeta
	for rows.Next() {
		m, err := scanMeta(rows)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// LoadErrors returns the skipped-directory errors recorded for path.
func LoadErrors(db *sql.DB, path string) ([]entry.ScanError, error) {
	meta, err := GetSnapshotMeta(db, path)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(`SELECT path, message FROM scan_errors WHERE snapshot_id = ? ORDER BY id`, meta.ID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []entry.ScanError
	for rows.Next() {
		var p, msg string
		if err := rows.Scan(&p, &msg); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		out = append(out, entry.ScanError{Path: p, Err: errors.New(msg)})
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeta(row rowScanner) (*SnapshotMeta, error) {
	var m SnapshotMeta
	var scannedAt int64
	err := row.Scan(&m.ID, &m.Path, &m.Generation, &scannedAt, &m.FileCount, &m.DirCount,
		&m.Totals.TotalSize, &m.Totals.TotalFiles, &m.Totals.TotalDirs, &m.ErrorCount)
	if err != nil {
		return nil, err
	}
	m.ScannedAt = time.Unix(scannedAt, 0)
	return &m, nil
}
