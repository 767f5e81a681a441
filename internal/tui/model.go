// Package tui is the foreground terminal loop: a fixed tick drains the
// session ring into the scrollback, advances the connectivity policy and
// repaints the status bar. Keystrokes funnel through the input router so
// the on-screen session behaves exactly like the handheld's.
package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pagerterm/pagerterm/internal/config"
	"github.com/pagerterm/pagerterm/internal/connect"
	"github.com/pagerterm/pagerterm/internal/input"
	"github.com/pagerterm/pagerterm/internal/keymap"
	"github.com/pagerterm/pagerterm/internal/session"
	"github.com/pagerterm/pagerterm/internal/watcher"
)

// tickInterval paces the foreground loop. Fast enough that output feels
// live, slow enough that an idle client costs nothing.
const tickInterval = 50 * time.Millisecond

// Options configures a Model. Watcher may be nil when live reload is off.
type Options struct {
	Config  *config.Config
	Manager *session.Manager
	Policy  *connect.Policy
	Table   *keymap.Table
	Watcher *watcher.Watcher
	Log     *slog.Logger
	Theme   string
}

// Model is the bubbletea model for the interactive client.
type Model struct {
	cfg     *config.Config
	log     *slog.Logger
	manager *session.Manager
	policy  *connect.Policy
	router  *input.Router
	menu    *Menu
	keys    *keyTranslator
	scroll  *Scrollback
	view    viewport.Model

	watch *watcher.Watcher

	themeIdx int
	styles   Styles

	width  int
	height int

	notice   string
	noticeAt time.Time

	drain [4096]byte
}

// NewModel wires the model. The router is created here so the menu overlay
// and the session share one key path.
func NewModel(opts Options) *Model {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Table == nil {
		opts.Table = keymap.Default()
	}
	m := &Model{
		cfg:     opts.Config,
		log:     opts.Log,
		manager: opts.Manager,
		policy:  opts.Policy,
		menu:    newMenu(),
		keys:    newKeyTranslator(opts.Table),
		scroll:  NewScrollback(opts.Config.Terminal.ScrollbackLines),
		view:    viewport.New(80, 23),
		watch:   opts.Watcher,
	}
	m.router = input.New(opts.Table, opts.Manager, m.menu)
	for i, t := range Themes {
		if t.Name == opts.Theme {
			m.themeIdx = i
		}
	}
	m.styles = NewStyles(Themes[m.themeIdx])
	m.syncViewport()
	return m
}

// Init starts the tick loop and, when configured, the reload watcher.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd()}
	if m.watch != nil {
		cmds = append(cmds, m.watchCmd())
	}
	return tea.Batch(cmds...)
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg{at: t}
	})
}

// watchCmd waits for the next file change and reloads the affected file
// off the UI goroutine.
func (m *Model) watchCmd() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.watch.Events()
		if !ok {
			return watcherClosedMsg{}
		}
		switch ev.Type {
		case watcher.EventKeymapChanged:
			table, err := keymap.Load(ev.Path)
			return keymapReloadedMsg{table: table, err: err}
		default:
			cfg, err := config.Load(ev.Path)
			return configReloadedMsg{cfg: cfg, err: err}
		}
	}
}

// Update is the bubbletea message loop.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.view.Width = msg.Width
		m.view.Height = msg.Height - 1
		m.syncViewport()
		return m, nil

	case tickMsg:
		m.drainRing()
		m.syncViewport()
		if m.policy != nil {
			m.policy.Tick(msg.at)
		}
		if m.notice != "" && msg.at.Sub(m.noticeAt) > 4*time.Second {
			m.notice = ""
		}
		return m, tickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case configReloadedMsg:
		if msg.err != nil {
			m.setNotice("config reload failed: " + msg.err.Error())
		} else {
			m.cfg = msg.cfg
			if m.policy != nil {
				m.policy.Reload(msg.cfg)
			}
			m.setNotice("configuration reloaded")
		}
		return m, m.watchCmd()

	case keymapReloadedMsg:
		if msg.err != nil {
			m.setNotice("keymap reload failed: " + msg.err.Error())
		} else {
			m.router.SetTable(msg.table)
			m.keys = newKeyTranslator(msg.table)
			m.setNotice("keymap reloaded: " + msg.table.Name)
		}
		return m, m.watchCmd()

	case watcherClosedMsg:
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global chords first. Ctrl+Q always quits; F2 toggles the menu. Both
	// stay outside the keymap so a broken keymap file cannot trap the user.
	switch msg.Type {
	case tea.KeyCtrlQ:
		return m.quit()
	case tea.KeyF2:
		if m.menu.Visible() {
			m.menu.Close()
		} else {
			m.menu.Open()
		}
		return m, nil
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		return m, cmd
	}

	for _, ev := range m.keys.translate(msg) {
		m.router.Route(ev)
	}
	m.syncViewport()
	switch m.menu.TakeAction() {
	case actionConnect:
		if m.policy != nil {
			m.policy.SetEnabled(true)
			m.setNotice("connecting")
		}
	case actionDisconnect:
		m.manager.Disconnect()
		m.setNotice("disconnected")
	case actionTogglePreferRemote:
		m.cfg.Servers.PreferRemote = !m.cfg.Servers.PreferRemote
		if m.policy != nil {
			m.policy.Reload(m.cfg)
		}
		m.setNotice(fmt.Sprintf("prefer remote: %v", m.cfg.Servers.PreferRemote))
	case actionToggleReconnect:
		if m.policy != nil {
			m.policy.SetEnabled(!m.policy.Enabled())
			m.setNotice(fmt.Sprintf("auto reconnect: %v", m.policy.Enabled()))
		}
	case actionCycleTheme:
		m.themeIdx = (m.themeIdx + 1) % len(Themes)
		m.styles = NewStyles(Themes[m.themeIdx])
		m.setNotice("theme: " + Themes[m.themeIdx].Name)
	case actionQuit:
		return m.quit()
	}
	return m, nil
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.manager.Disconnect()
	if m.watch != nil {
		m.watch.Close()
	}
	return m, tea.Quit
}

// drainRing pulls whatever the session worker buffered since the last
// tick. TryDrain never blocks the UI; a missed tick just leaves the bytes
// for the next one.
func (m *Model) drainRing() {
	r := m.manager.Ring()
	for {
		n, ok := r.TryDrain(m.drain[:])
		if !ok || n == 0 {
			return
		}
		m.scroll.Append(m.drain[:n])
		if n < len(m.drain) {
			return
		}
	}
}

// syncViewport rebuilds the viewport content, keeping it pinned to the
// bottom unless the user scrolled up.
func (m *Model) syncViewport() {
	atBottom := m.view.AtBottom()
	m.view.SetContent(m.bodyContent())
	if atBottom {
		m.view.GotoBottom()
	}
}

func (m *Model) bodyContent() string {
	if m.manager.CurrentState() == session.Ready {
		return m.scroll.Tail(0)
	}
	// Offline the body shows buffered output plus the local echo line, so
	// typing before the link is up still gives feedback.
	parts := []string{}
	if tail := m.scroll.Tail(0); tail != "" {
		parts = append(parts, tail)
	}
	parts = append(parts, m.router.Echo())
	return strings.Join(parts, "\n")
}

func (m *Model) setNotice(text string) {
	m.notice = text
	m.noticeAt = time.Now()
}

// View renders scrollback plus status bar, with the menu centered on top
// when open.
func (m *Model) View() string {
	width, height := m.width, m.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}

	bodyHeight := height - 1
	body := m.styles.Screen.Render(m.view.View())
	if m.menu.Visible() {
		body = lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center,
			m.menu.View(m.styles))
	}
	return body + "\n" + m.statusView(width)
}

func (m *Model) statusView(width int) string {
	st := m.manager.CurrentState()
	segs := []string{m.styles.StatusKey.Render(strings.ToUpper(st.String()))}

	if ep := m.manager.CurrentEndpoint(); ep.Name != "" && st != session.Idle {
		segs = append(segs, ep.Name)
	}
	if m.policy != nil {
		if s := m.policy.Status(); s != "" {
			segs = append(segs, s)
		}
	}
	if mods := m.router.ActiveModifiers(); len(mods) > 0 {
		segs = append(segs, m.styles.StatusKey.Render(strings.Join(mods, "+")))
	}
	if drops := m.manager.Ring().Drops(); drops > 0 {
		segs = append(segs, m.styles.Danger.Render(fmt.Sprintf("dropped %d", drops)))
	}
	if m.notice != "" {
		segs = append(segs, m.notice)
	}
	line := strings.Join(segs, "  ")
	return m.styles.Status.Width(width).Render(line)
}
