package watcher

import (
	"testing"
	"time"
)

func TestDebouncer_SuppressesBursts(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)

	if !d.ShouldEmit("config.yaml") {
		t.Fatalf("first event suppressed")
	}
	if d.ShouldEmit("config.yaml") {
		t.Fatalf("burst event emitted")
	}
	if !d.ShouldEmit("keymap.yaml") {
		t.Fatalf("unrelated key suppressed")
	}

	time.Sleep(60 * time.Millisecond)
	if !d.ShouldEmit("config.yaml") {
		t.Fatalf("event after the window suppressed")
	}
}

func TestDebouncer_NilAndEmptyKeyAlwaysEmit(t *testing.T) {
	var d *debouncer
	if !d.ShouldEmit("x") {
		t.Fatalf("nil debouncer suppressed")
	}
	d = newDebouncer(time.Hour)
	if !d.ShouldEmit("") || !d.ShouldEmit("") {
		t.Fatalf("empty key suppressed")
	}
}
