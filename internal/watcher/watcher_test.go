package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestWatcher_TranslateEvent_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	w := &Watcher{
		configPath: filepath.Join(dir, "config.yaml"),
		keymapPath: ".",
	}

	ev := fsnotify.Event{Name: filepath.Join(dir, ".config.yaml.swp"), Op: fsnotify.Write}
	if got := w.translateEvent(ev); got != nil {
		t.Fatalf("translateEvent() = %+v, want nil", *got)
	}
}

func TestWatcher_TranslateEvent_ClassifiesFiles(t *testing.T) {
	dir := t.TempDir()
	w := &Watcher{
		configPath: filepath.Join(dir, "config.yaml"),
		keymapPath: filepath.Join(dir, "keymap.yaml"),
	}

	got := w.translateEvent(fsnotify.Event{Name: filepath.Join(dir, "config.yaml"), Op: fsnotify.Write})
	if got == nil || got.Type != EventConfigChanged {
		t.Fatalf("config event = %+v, want EventConfigChanged", got)
	}

	got = w.translateEvent(fsnotify.Event{Name: filepath.Join(dir, "keymap.yaml"), Op: fsnotify.Create})
	if got == nil || got.Type != EventKeymapChanged {
		t.Fatalf("keymap event = %+v, want EventKeymapChanged", got)
	}

	if got := w.translateEvent(fsnotify.Event{Name: filepath.Join(dir, "config.yaml"), Op: fsnotify.Chmod}); got != nil {
		t.Fatalf("chmod event = %+v, want nil", *got)
	}
}

func TestWatcher_EndToEnd_ConfigRewrite(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("a: 1\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	w, err := NewWithDebounceDelay(configPath, "", 25*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWithDebounceDelay() error = %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(configPath, []byte("a: 2\n"), 0o600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	waitForEvent(t, w.Events(), func(e Event) bool {
		return e.Type == EventConfigChanged
	})
}

func waitForEvent(t *testing.T, ch <-chan Event, match func(Event) bool) Event {
	t.Helper()

	deadline := time.NewTimer(2 * time.Second)
	defer deadline.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				t.Fatalf("events channel closed while waiting")
			}
			if match(e) {
				return e
			}
		case <-deadline.C:
			t.Fatalf("timed out waiting for event")
		}
	}
}
