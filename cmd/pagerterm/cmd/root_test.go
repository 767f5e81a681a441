package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pagerterm/pagerterm/internal/config"
)

// execute runs the CLI with args and returns captured stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestConfigInitThenShow(t *testing.T) {
	t.Setenv(config.EnvHome, t.TempDir())

	out, err := execute(t, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote ") {
		t.Fatalf("expected confirmation, got %q", out)
	}

	out, err = execute(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "servers:") || !strings.Contains(out, "timeouts:") {
		t.Fatalf("expected rendered config, got %q", out)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	t.Setenv(config.EnvHome, t.TempDir())

	if _, err := execute(t, "config", "init"); err != nil {
		t.Fatalf("first init: %v", err)
	}
	if _, err := execute(t, "config", "init"); err == nil {
		t.Fatal("expected second init without --force to fail")
	}
	if _, err := execute(t, "config", "init", "--force"); err != nil {
		t.Fatalf("init --force: %v", err)
	}
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)

	cfg := config.Default()
	cfg.Wifi = []config.Credential{{SSID: "home", Secret: "hunter2", Enabled: true}}
	if err := config.Save(cfg, filepath.Join(home, "config.yaml")); err != nil {
		t.Fatalf("save config: %v", err)
	}

	out, err := execute(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "hunter2") {
		t.Fatal("expected wifi secret redacted")
	}
	if !strings.Contains(out, "[redacted]") {
		t.Fatalf("expected redaction marker, got %q", out)
	}
}

func TestKeymapShowListsDefaults(t *testing.T) {
	t.Setenv(config.EnvHome, t.TempDir())

	out, err := execute(t, "keymap", "show")
	if err != nil {
		t.Fatalf("keymap show: %v", err)
	}
	for _, want := range []string{"ENTER", "BACKSPACE", "SHIFT", "sticky"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in keymap listing, got %q", want, out)
		}
	}
}

func TestHistoryEmpty(t *testing.T) {
	t.Setenv(config.EnvHome, t.TempDir())

	out, err := execute(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No connection attempts") {
		t.Fatalf("expected empty history notice, got %q", out)
	}
}

func TestVersionOutput(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "pagerterm") {
		t.Fatalf("expected program name in version output, got %q", out)
	}
}
