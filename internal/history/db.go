// Package history keeps a local sqlite log of connection attempts, used by
// the history command and the status view.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// sqliteTimeFormat is the canonical timestamp layout stored in the db.
const sqliteTimeFormat = "2006-01-02 15:04:05"

// DB wraps the history database.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// modernc sqlite is not safe for concurrent writers on one connection
	// pool entry; this db sees low traffic, keep it to one.
	conn.SetMaxOpenConns(1)

	d := &DB{conn: conn, path: path}
	if err := d.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the database.
func (d *DB) Close() error {
	if d == nil || d.conn == nil {
		return nil
	}
	return d.conn.Close()
}

func (d *DB) migrate() error {
	_, err := d.conn.Exec(`
		CREATE TABLE IF NOT EXISTS connection_events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id  TEXT NOT NULL,
			endpoint    TEXT NOT NULL,
			host        TEXT NOT NULL,
			port        INTEGER NOT NULL,
			outcome     TEXT NOT NULL,
			started_at  TEXT NOT NULL,
			ended_at    TEXT NOT NULL,
			bytes_rx    INTEGER NOT NULL DEFAULT 0,
			drops       INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_connection_events_started
			ON connection_events (started_at);
	`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeFormat)
}

func parseSQLiteTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeFormat, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
