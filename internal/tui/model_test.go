package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pagerterm/pagerterm/internal/config"
	"github.com/pagerterm/pagerterm/internal/keymap"
	"github.com/pagerterm/pagerterm/internal/session"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	cfg := config.Default()
	mgr := session.NewManager(session.Options{})
	m := NewModel(Options{
		Config:  cfg,
		Manager: mgr,
	})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func TestTickDrainsRingIntoScrollback(t *testing.T) {
	m := newTestModel(t)
	m.manager.Ring().Push([]byte("hello from host\n"))

	m.Update(tickMsg{at: time.Now()})

	if !strings.Contains(m.scroll.Tail(5), "hello from host") {
		t.Fatalf("expected ring output in scrollback, got %q", m.scroll.Tail(5))
	}
}

func TestTypingOfflineEchoesLocally(t *testing.T) {
	m := newTestModel(t)

	for _, r := range "hi" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	if !strings.Contains(m.View(), "> hi") {
		t.Fatalf("expected local echo in view, got %q", m.View())
	}
}

func TestF2TogglesMenu(t *testing.T) {
	m := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyF2})
	if !m.menu.Visible() {
		t.Fatal("expected menu open after F2")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyF2})
	if m.menu.Visible() {
		t.Fatal("expected menu closed after second F2")
	}
}

func TestMenuSwallowsTerminalKeys(t *testing.T) {
	m := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyF2})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

	if strings.Contains(m.router.Echo(), "x") {
		t.Fatalf("expected key captured by menu, echo is %q", m.router.Echo())
	}
}

func TestMenuQuitDisconnects(t *testing.T) {
	m := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyF2})
	for i := 0; i < len(m.menu.items)-1; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Fatalf("expected tea.Quit, got %v", msg)
	}
}

func TestCtrlQQuits(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Fatalf("expected tea.Quit, got %v", msg)
	}
}

func TestTogglePreferRemoteUpdatesConfig(t *testing.T) {
	m := newTestModel(t)
	before := m.cfg.Servers.PreferRemote

	m.Update(tea.KeyMsg{Type: tea.KeyF2})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.cfg.Servers.PreferRemote == before {
		t.Fatal("expected prefer remote flipped")
	}
}

func TestStatusBarShowsState(t *testing.T) {
	m := newTestModel(t)

	if !strings.Contains(m.View(), "IDLE") {
		t.Fatalf("expected state in status bar, got %q", m.View())
	}
}

func TestKeymapReloadSwapsTable(t *testing.T) {
	m := newTestModel(t)
	before := m.keys

	m.Update(keymapReloadedMsg{table: keymap.Default()})

	if m.keys == before {
		t.Fatal("expected key translator rebuilt after reload")
	}
}
