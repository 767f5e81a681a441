package history

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pagerterm/pagerterm/internal/config"
)

// Attempt is one recorded connection attempt.
type Attempt struct {
	ID        int64
	SessionID string
	Endpoint  string
	Host      string
	Port      int
	Outcome   string
	StartedAt time.Time
	EndedAt   time.Time
	BytesRx   uint64
	Drops     uint64
}

// InsertAttempt stores one finished connection attempt.
func (d *DB) InsertAttempt(a Attempt) error {
	if d == nil || d.conn == nil {
		return fmt.Errorf("db is not open")
	}
	if strings.TrimSpace(a.SessionID) == "" {
		return fmt.Errorf("session id is required")
	}

	_, err := d.conn.Exec(
		`INSERT INTO connection_events
		   (session_id, endpoint, host, port, outcome, started_at, ended_at, bytes_rx, drops)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.SessionID, a.Endpoint, a.Host, a.Port, a.Outcome,
		formatSQLiteTime(a.StartedAt), formatSQLiteTime(a.EndedAt),
		a.BytesRx, a.Drops,
	)
	if err != nil {
		return fmt.Errorf("insert connection_events: %w", err)
	}
	return nil
}

// ListRecent returns up to limit attempts, newest first.
func (d *DB) ListRecent(limit int) ([]Attempt, error) {
	if d == nil || d.conn == nil {
		return nil, fmt.Errorf("db is not open")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.conn.Query(
		`SELECT id, session_id, endpoint, host, port, outcome, started_at, ended_at, bytes_rx, drops
		   FROM connection_events
		  ORDER BY datetime(started_at) DESC, id DESC
		  LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query connection_events: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var (
			a          Attempt
			startedStr string
			endedStr   string
		)
		if err := rows.Scan(&a.ID, &a.SessionID, &a.Endpoint, &a.Host, &a.Port, &a.Outcome, &startedStr, &endedStr, &a.BytesRx, &a.Drops); err != nil {
			return nil, fmt.Errorf("scan connection_events: %w", err)
		}
		if a.StartedAt, err = parseSQLiteTime(startedStr); err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", startedStr, err)
		}
		if a.EndedAt, err = parseSQLiteTime(endedStr); err != nil {
			return nil, fmt.Errorf("parse ended_at %q: %w", endedStr, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate connection_events: %w", err)
	}
	return out, nil
}

// Recorder adapts a DB to the session manager's recorder hook, swallowing
// storage errors into the log so a full disk can never take a session down.
type Recorder struct {
	DB  *DB
	Log *slog.Logger
}

// RecordAttempt implements session.Recorder.
func (r Recorder) RecordAttempt(id string, ep config.Endpoint, outcome string, started, ended time.Time, bytesRx, drops uint64) {
	if r.DB == nil {
		return
	}
	err := r.DB.InsertAttempt(Attempt{
		SessionID: id,
		Endpoint:  ep.Name,
		Host:      ep.Host,
		Port:      ep.Port,
		Outcome:   outcome,
		StartedAt: started,
		EndedAt:   ended,
		BytesRx:   bytesRx,
		Drops:     drops,
	})
	if err != nil && r.Log != nil {
		r.Log.Warn("record attempt", "err", err)
	}
}
