package history

import (
	"fmt"
	"time"
)

// CleanupConfig holds retention settings.
type CleanupConfig struct {
	// RetentionDays is how long connection events are kept. <= 0 means
	// keep forever.
	RetentionDays int
}

// DefaultCleanupConfig returns the default retention.
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{RetentionDays: 90}
}

// Cleanup deletes connection events older than the retention window and
// returns how many rows were removed.
func (d *DB) Cleanup(cfg CleanupConfig) (int64, error) {
	if d == nil || d.conn == nil {
		return 0, fmt.Errorf("db is not open")
	}
	if cfg.RetentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -cfg.RetentionDays)
	res, err := d.conn.Exec(
		`DELETE FROM connection_events WHERE datetime(started_at) < datetime(?)`,
		formatSQLiteTime(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("delete old connection_events: %w", err)
	}
	deleted, _ := res.RowsAffected()
	return deleted, nil
}
