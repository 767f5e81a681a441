package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestPruneBackups_KeepsNewest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	// Stamps are lexically ordered, oldest first.
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("%s.20240101-00000%d.bak", path, i)
		if err := os.WriteFile(name, []byte("x"), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	if err := pruneBackups(path, 3); err != nil {
		t.Fatalf("pruneBackups() error = %v", err)
	}

	matches, _ := filepath.Glob(path + ".*.bak")
	if len(matches) != 3 {
		t.Fatalf("remaining backups = %d, want 3", len(matches))
	}
	for _, m := range matches {
		for i := 0; i < 5; i++ {
			if m == fmt.Sprintf("%s.20240101-00000%d.bak", path, i) {
				t.Fatalf("old backup %s survived prune", m)
			}
		}
	}
}

func TestBackupFile_CopiesBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("original"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := backupFile(path, 5); err != nil {
		t.Fatalf("backupFile() error = %v", err)
	}

	matches, _ := filepath.Glob(path + ".*.bak")
	if len(matches) != 1 {
		t.Fatalf("backups = %d, want 1", len(matches))
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(data) != "original" {
		t.Fatalf("backup contents = %q, want %q", data, "original")
	}
}
