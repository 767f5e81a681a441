package tui

import (
	"testing"

	"github.com/pagerterm/pagerterm/internal/input"
	"github.com/pagerterm/pagerterm/internal/keymap"
)

func TestMenuNavigateAndSelect(t *testing.T) {
	m := newMenu()
	m.Open()

	m.HandleKey(input.Event{KeyID: "DOWN"})
	m.HandleKey(input.Event{KeyID: keymap.KeyEnter})

	if m.Visible() {
		t.Fatal("expected menu to close after selection")
	}
	if got := m.TakeAction(); got != actionDisconnect {
		t.Fatalf("expected disconnect action, got %v", got)
	}
	if got := m.TakeAction(); got != actionNone {
		t.Fatalf("expected action cleared after take, got %v", got)
	}
}

func TestMenuCursorStopsAtEdges(t *testing.T) {
	m := newMenu()
	m.Open()

	m.HandleKey(input.Event{KeyID: "UP"})
	if m.cursor != 0 {
		t.Fatalf("expected cursor pinned at top, got %d", m.cursor)
	}
	for i := 0; i < 20; i++ {
		m.HandleKey(input.Event{KeyID: "DOWN"})
	}
	if m.cursor != len(m.items)-1 {
		t.Fatalf("expected cursor pinned at bottom, got %d", m.cursor)
	}
}

func TestMenuEscapeClosesWithoutAction(t *testing.T) {
	m := newMenu()
	m.Open()

	m.HandleKey(input.Event{KeyID: keymap.KeyEscape})

	if m.Visible() {
		t.Fatal("expected menu closed")
	}
	if got := m.TakeAction(); got != actionNone {
		t.Fatalf("expected no action, got %v", got)
	}
}

func TestMenuIgnoresKeysWhenHidden(t *testing.T) {
	m := newMenu()

	m.HandleKey(input.Event{KeyID: keymap.KeyEnter})

	if got := m.TakeAction(); got != actionNone {
		t.Fatalf("expected hidden menu inert, got %v", got)
	}
}
