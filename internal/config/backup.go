package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// defaultKeepBackups is the number of timestamped config backups retained.
const defaultKeepBackups = 5

// backupFile copies path to path.YYYYMMDD-HHMMSS.bak and prunes old backups
// beyond keep. The copy keeps the original's bytes verbatim so a bad edit or
// a crashed rewrite can always be rolled back by hand.
func backupFile(path string, keep int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read original: %w", err)
	}

	stamp := time.Now().Format("20060102-150405")
	backup := fmt.Sprintf("%s.%s.bak", path, stamp)
	if err := os.WriteFile(backup, data, 0o600); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}

	return pruneBackups(path, keep)
}

// pruneBackups deletes the oldest backups of path beyond keep. Backup names
// embed a sortable timestamp, so lexical order is age order.
func pruneBackups(path string, keep int) error {
	if keep <= 0 {
		keep = defaultKeepBackups
	}

	matches, err := filepath.Glob(path + ".*.bak")
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}
	if len(matches) <= keep {
		return nil
	}

	sort.Strings(matches)
	for _, old := range matches[:len(matches)-keep] {
		if err := os.Remove(old); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove old backup %s: %w", old, err)
		}
	}
	return nil
}
