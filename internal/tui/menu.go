package tui

import (
	"strings"

	"github.com/pagerterm/pagerterm/internal/input"
	"github.com/pagerterm/pagerterm/internal/keymap"
)

type menuAction int

const (
	actionNone menuAction = iota
	actionConnect
	actionDisconnect
	actionTogglePreferRemote
	actionToggleReconnect
	actionCycleTheme
	actionQuit
)

type menuItem struct {
	label  string
	action menuAction
}

// Menu is the modal overlay opened from the status bar. While visible it
// captures every key event; the terminal underneath keeps scrolling.
type Menu struct {
	visible bool
	cursor  int
	items   []menuItem
	pending menuAction
}

func newMenu() *Menu {
	return &Menu{
		items: []menuItem{
			{label: "Connect", action: actionConnect},
			{label: "Disconnect", action: actionDisconnect},
			{label: "Toggle prefer remote", action: actionTogglePreferRemote},
			{label: "Toggle auto reconnect", action: actionToggleReconnect},
			{label: "Cycle theme", action: actionCycleTheme},
			{label: "Quit", action: actionQuit},
		},
	}
}

// Visible reports whether the menu currently captures input.
func (m *Menu) Visible() bool { return m.visible }

// Open shows the menu with the cursor on the first entry.
func (m *Menu) Open() {
	m.visible = true
	m.cursor = 0
}

// Close hides the menu without selecting anything.
func (m *Menu) Close() { m.visible = false }

// HandleKey consumes navigation keys while the menu is open.
func (m *Menu) HandleKey(ev input.Event) {
	if !m.visible {
		return
	}
	switch ev.KeyID {
	case "UP":
		if m.cursor > 0 {
			m.cursor--
		}
	case "DOWN":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case keymap.KeyEnter:
		m.pending = m.items[m.cursor].action
		m.visible = false
	case keymap.KeyEscape:
		m.visible = false
	}
}

// TakeAction returns and clears the action picked by the last selection.
func (m *Menu) TakeAction() menuAction {
	a := m.pending
	m.pending = actionNone
	return a
}

// View renders the menu box.
func (m *Menu) View(st Styles) string {
	if !m.visible {
		return ""
	}
	var b strings.Builder
	for i, it := range m.items {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i == m.cursor {
			b.WriteString(st.MenuSel.Render("> " + it.label))
		} else {
			b.WriteString(st.MenuItem.Render("  " + it.label))
		}
	}
	return st.MenuBox.Render(b.String())
}
