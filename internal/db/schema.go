package db

import (
	"database/sql"
	"fmt"
)

const snapshotsTableDDL = `
CREATE TABLE IF NOT EXISTS snapshots (
    id INTEGER PRIMARY KEY,
    path TEXT UNIQUE NOT NULL,
    generation INTEGER NOT NULL,
    scanned_at INTEGER NOT NULL,
    file_count INTEGER NOT NULL,
    dir_count INTEGER NOT NULL,
    total_size INTEGER NOT NULL,
    total_files INTEGER NOT NULL,
    total_dirs INTEGER NOT NULL,
    error_count INTEGER NOT NULL DEFAULT 0
);
`

const entriesTableDDL = `
CREATE TABLE IF NOT EXISTS entries (
    id INTEGER PRIMARY KEY,
    snapshot_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    kind INTEGER NOT NULL,
    extension TEXT NOT NULL,
    size INTEGER NOT NULL,
    mode INTEGER NOT NULL,
    mtime INTEGER NOT NULL,
    ctime INTEGER NOT NULL,
    uid INTEGER NOT NULL,
    gid INTEGER NOT NULL,
    inode INTEGER NOT NULL,
    dev_id INTEGER NOT NULL,
    child_files INTEGER NOT NULL DEFAULT 0,
    child_dirs INTEGER NOT NULL DEFAULT 0,
    total_size INTEGER NOT NULL DEFAULT 0
);
`

const scanErrorsTableDDL = `
CREATE TABLE IF NOT EXISTS scan_errors (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    snapshot_id INTEGER NOT NULL,
    path TEXT NOT NULL,
    message TEXT NOT NULL
);
`

const entriesSnapshotIndexDDL = `CREATE INDEX IF NOT EXISTS idx_entries_snapshot ON entries(snapshot_id);`
const entriesMtimeIndexDDL = `CREATE INDEX IF NOT EXISTS idx_entries_snapshot_mtime ON entries(snapshot_id, mtime DESC);`
const entriesSizeIndexDDL = `CREATE INDEX IF NOT EXISTS idx_entries_snapshot_size ON entries(snapshot_id, total_size DESC);`
const errorsSnapshotIndexDDL = `CREATE INDEX IF NOT EXISTS idx_scan_errors_snapshot ON scan_errors(snapshot_id);`

// InitSchema creates all tables in the database.
func InitSchema(db *sql.DB) error {
	ddls := []string{
		snapshotsTableDDL,
		entriesTableDDL,
		scanErrorsTableDDL,
	}

	for _, ddl := range ddls {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	return nil
}

// ApplyWritePragmas configures SQLite for a bulk export.
func ApplyWritePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -64000", // 64MB cache
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return nil
}

// ApplyReadPragmas configures SQLite for read-only queries.
func ApplyReadPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA cache_size = -64000",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA query_only = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return nil
}

// BuildIndexes creates indexes after the data load.
func BuildIndexes(db *sql.DB) error {
	indexes := []string{
		entriesSnapshotIndexDDL,
		entriesMtimeIndexDDL,
		entriesSizeIndexDDL,
		errorsSnapshotIndexDDL,
	}

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// Finalize prepares the database for read-only access.
func Finalize(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA optimize"); err != nil {
		return fmt.Errorf("failed to optimize: %w", err)
	}

	// DELETE journal mode leaves a single file behind.
	if _, err := db.Exec("PRAGMA journal_mode = DELETE"); err != nil {
		return fmt.Errorf("failed to set journal mode: %w", err)
	}

	return nil
}
