// Package input routes key events either into the session as protocol
// bytes or into a local echo buffer, consulting the keymap table and an
// explicit modifier set. No key identifier is special-cased in code.
package input

import (
	"strings"

	"github.com/pagerterm/pagerterm/internal/keymap"
	"github.com/pagerterm/pagerterm/internal/session"
)

// promptMarker starts each local-echo line while no session is up.
const promptMarker = "> "

// Event is one raw key event. KeyID names an entry in the keymap table,
// either a key or a modifier.
type Event struct {
	KeyID string
}

// Overlay is the menu collaborator consulted before any routing. While it
// is visible every event goes to it and no session bytes are produced.
type Overlay interface {
	Visible() bool
	HandleKey(ev Event)
}

// Session is the slice of the session manager the router needs.
type Session interface {
	CurrentState() session.State
	SendBytes(data []byte) error
}

// Router converts key events into session bytes or local echo.
type Router struct {
	table   *keymap.Table
	sess    Session
	overlay Overlay

	active map[string]bool
	echo   strings.Builder
}

// New builds a Router. overlay may be nil.
func New(table *keymap.Table, sess Session, overlay Overlay) *Router {
	r := &Router{
		table:   table,
		sess:    sess,
		overlay: overlay,
		active:  make(map[string]bool),
	}
	r.echo.WriteString(promptMarker)
	return r
}

// SetTable swaps the keymap, keeping modifier state for ids that still
// exist.
func (r *Router) SetTable(table *keymap.Table) {
	r.table = table
	for id := range r.active {
		if _, ok := table.ModifierDef(id); !ok {
			delete(r.active, id)
		}
	}
}

// ActiveModifiers lists the currently-active modifier ids, for the status
// bar.
func (r *Router) ActiveModifiers() []string {
	var out []string
	for _, m := range r.table.Modifiers {
		if r.active[m.ID] {
			out = append(out, m.ID)
		}
	}
	return out
}

// Echo returns the local-echo buffer shown while no session is ready.
func (r *Router) Echo() string {
	return r.echo.String()
}

// Route handles one key event. The order is fixed: a visible overlay takes
// everything; a modifier key toggles its state; otherwise the key resolves
// through the table and goes to the session when READY, or to local echo.
func (r *Router) Route(ev Event) {
	if r.overlay != nil && r.overlay.Visible() {
		r.overlay.HandleKey(ev)
		return
	}

	if mod, ok := r.table.ModifierDef(ev.KeyID); ok {
		r.active[mod.ID] = !r.active[mod.ID]
		return
	}

	key, ok := r.table.Lookup(ev.KeyID)
	if !ok {
		return
	}

	out := r.resolve(key)
	r.clearOneshots()
	if len(out) == 0 {
		return
	}

	if r.sess.CurrentState() == session.Ready {
		r.sess.SendBytes(out)
		return
	}
	r.echoLocal(out)
}

// resolve applies the active modifiers to one key definition.
func (r *Router) resolve(key keymap.Key) []byte {
	if key.HasCode() {
		return []byte{byte(key.Code)}
	}

	text := key.Normal
	if r.active[keymap.ModShift] && key.Shift != "" {
		text = key.Shift
	}
	if text == "" {
		return nil
	}

	if r.active[keymap.ModCtrl] {
		c := text[0]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			return []byte{c & 0x1f}
		}
	}
	return []byte(text)
}

// clearOneshots drops modifiers that apply to a single keystroke. Sticky
// modifiers stay until toggled off.
func (r *Router) clearOneshots() {
	for id := range r.active {
		if def, ok := r.table.ModifierDef(id); ok && def.Mode == keymap.Oneshot {
			delete(r.active, id)
		}
	}
}

// echoLocal feeds the offline display buffer: printable bytes append, DEL
// trims one character, the line terminator opens a fresh prompt.
func (r *Router) echoLocal(out []byte) {
	for _, b := range out {
		switch b {
		case 0x7f, 0x08:
			r.trimEcho()
		case '\n', '\r':
			r.echo.WriteString("\n" + promptMarker)
		default:
			if b >= 0x20 {
				r.echo.WriteByte(b)
			}
		}
	}
}

// trimEcho removes the last character unless only the prompt remains.
func (r *Router) trimEcho() {
	s := r.echo.String()
	if strings.HasSuffix(s, promptMarker) {
		return
	}
	r.echo.Reset()
	r.echo.WriteString(s[:len(s)-1])
}
