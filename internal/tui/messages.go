package tui

import (
	"time"

	"github.com/pagerterm/pagerterm/internal/config"
	"github.com/pagerterm/pagerterm/internal/keymap"
)

// tickMsg drives the fixed-cadence foreground loop: ring drain,
// connectivity tick and status refresh all run on it.
type tickMsg struct {
	at time.Time
}

// configReloadedMsg carries a freshly reloaded configuration after the
// file watcher reported a change.
type configReloadedMsg struct {
	cfg *config.Config
	err error
}

// keymapReloadedMsg carries a freshly reloaded keymap table.
type keymapReloadedMsg struct {
	table *keymap.Table
	err   error
}

// watcherClosedMsg signals that the file watcher's event stream ended.
type watcherClosedMsg struct{}
