// Package db keeps the run manifest: one row per enumerated remote file,
// updated as the sync loop decides each file's fate. The database is
// in-memory and lives for a single invocation.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/prasmono/adb-to-local-copier/pkg/models"
)

// DB represents the manifest database connection.
type DB struct {
	*sql.DB
}

// New opens a fresh in-memory manifest.
func New() (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, err
	}
	// Every pool connection gets its own :memory: database. One connection
	// keeps every statement on the same one.
	sqlDB.SetMaxOpenConns(1)

	db := &DB{sqlDB}
	if err := db.initialize(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return db, nil
}

// initialize creates the manifest schema.
func (db *DB) initialize() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS files (
			remote_path TEXT PRIMARY KEY,
			root TEXT NOT NULL,
			local_path TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			detail TEXT NOT NULL DEFAULT '',
			bytes INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_files_root_status ON files(root, status);
	`)
	return err
}

// SaveFileRecordsBatch records enumerated files in a single transaction,
// preserving the listing order for later skip-log queries.
func (db *DB) SaveFileRecordsBatch(records []models.FileRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO files (remote_path, root, local_path, status, detail, bytes)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, record := range records {
		status := record.Status
		if status == "" {
			status = models.StatusPending
		}
		_, err = stmt.Exec(
			record.RemotePath,
			record.Root,
			record.LocalPath,
			status,
			record.Detail,
			record.Bytes,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// UpdateFileStatus records the outcome of one file. Detail carries the
// block-list hit or the error text; bytes the transferred count on success.
func (db *DB) UpdateFileStatus(remotePath, status, detail string, bytes int64) error {
	_, err := db.Exec(`
		UPDATE files
		SET status = ?, detail = ?, bytes = ?
		WHERE remote_path = ?
	`, status, detail, bytes, remotePath)
	return err
}

// Summary aggregates the outcome counters for one root. Elapsed time and
// the skipped-path list are filled in by the caller.
func (db *DB) Summary(root string) (*models.RunSummary, error) {
	var summary models.RunSummary
	err := db.QueryRow(`
		SELECT
			COUNT(CASE WHEN status IN ('copied', 'overwritten') THEN 1 END) AS successes,
			COUNT(CASE WHEN status = 'failed' THEN 1 END) AS errors,
			COUNT(CASE WHEN status = 'skipped' THEN 1 END) AS skipped,
			COUNT(CASE WHEN status = 'overwritten' THEN 1 END) AS overwritten,
			COALESCE(SUM(bytes), 0) AS bytes
		FROM files
		WHERE root = ?
	`, root).Scan(
		&summary.Successes,
		&summary.Errors,
		&summary.Skipped,
		&summary.Overwritten,
		&summary.BytesPulled,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %v", err)
	}
	return &summary, nil
}

// SkippedPaths returns the skipped remote paths for one root in the order
// they were enumerated.
func (db *DB) SkippedPaths(root string) ([]string, error) {
	rows, err := db.Query(`
		SELECT remote_path
		FROM files
		WHERE root = ? AND status = 'skipped'
		ORDER BY rowid
	`, root)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// FileStatus reports the recorded status and detail for one remote path.
func (db *DB) FileStatus(remotePath string) (status, detail string, err error) {
	err = db.QueryRow(`
		SELECT status, detail FROM files WHERE remote_path = ?
	`, remotePath).Scan(&status, &detail)
	if err != nil {
		return "", "", fmt.Errorf("file not recorded: %v", err)
	}
	return status, detail, nil
}
