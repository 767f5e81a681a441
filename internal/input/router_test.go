package input

import (
	"strings"
	"testing"

	"github.com/pagerterm/pagerterm/internal/keymap"
	"github.com/pagerterm/pagerterm/internal/session"
)

type fakeSession struct {
	state session.State
	sent  []byte
}

func (f *fakeSession) CurrentState() session.State { return f.state }
func (f *fakeSession) SendBytes(p []byte) error {
	f.sent = append(f.sent, p...)
	return nil
}

type fakeOverlay struct {
	visible bool
	events  []Event
}

func (f *fakeOverlay) Visible() bool      { return f.visible }
func (f *fakeOverlay) HandleKey(ev Event) { f.events = append(f.events, ev) }

func readyRouter() (*Router, *fakeSession) {
	sess := &fakeSession{state: session.Ready}
	return New(keymap.Default(), sess, nil), sess
}

func TestRoute_PrintableAndEnter(t *testing.T) {
	r, sess := readyRouter()

	for _, id := range []string{"L", "S", keymap.KeyEnter} {
		r.Route(Event{KeyID: id})
	}
	if string(sess.sent) != "ls\n" {
		t.Fatalf("sent = %q, want %q", sess.sent, "ls\n")
	}
}

func TestRoute_BackspaceSendsDEL(t *testing.T) {
	r, sess := readyRouter()

	r.Route(Event{KeyID: keymap.KeyBackspace})
	if len(sess.sent) != 1 || sess.sent[0] != 0x7f {
		t.Fatalf("sent = %v, want [0x7f]", sess.sent)
	}
}

func TestRoute_OneshotShiftAppliesOnce(t *testing.T) {
	r, sess := readyRouter()

	r.Route(Event{KeyID: keymap.ModShift})
	r.Route(Event{KeyID: "A"})
	r.Route(Event{KeyID: "A"})

	if string(sess.sent) != "Aa" {
		t.Fatalf("sent = %q, want %q", sess.sent, "Aa")
	}
	if mods := r.ActiveModifiers(); len(mods) != 0 {
		t.Fatalf("ActiveModifiers() = %v, want none", mods)
	}
}

func TestRoute_StickyCtrlSequences(t *testing.T) {
	r, sess := readyRouter()

	r.Route(Event{KeyID: keymap.ModCtrl})
	r.Route(Event{KeyID: "C"})
	r.Route(Event{KeyID: "D"})

	if len(sess.sent) != 2 || sess.sent[0] != 0x03 || sess.sent[1] != 0x04 {
		t.Fatalf("sent = %v, want [0x03 0x04]", sess.sent)
	}

	// Sticky: still active until toggled off.
	if mods := r.ActiveModifiers(); len(mods) != 1 || mods[0] != keymap.ModCtrl {
		t.Fatalf("ActiveModifiers() = %v, want [CTRL]", mods)
	}
	r.Route(Event{KeyID: keymap.ModCtrl})
	r.Route(Event{KeyID: "Z"})
	if string(sess.sent[2:]) != "z" {
		t.Fatalf("after toggle off sent = %q, want %q", sess.sent[2:], "z")
	}
}

func TestRoute_CtrlZControlCode(t *testing.T) {
	r, sess := readyRouter()

	r.Route(Event{KeyID: keymap.ModCtrl})
	r.Route(Event{KeyID: "Z"})
	if len(sess.sent) != 1 || sess.sent[0] != 0x1a {
		t.Fatalf("sent = %v, want [0x1a]", sess.sent)
	}
}

func TestRoute_OverlaySwallowsEverything(t *testing.T) {
	sess := &fakeSession{state: session.Ready}
	ov := &fakeOverlay{visible: true}
	r := New(keymap.Default(), sess, ov)

	r.Route(Event{KeyID: "A"})
	r.Route(Event{KeyID: keymap.KeyEnter})

	if len(sess.sent) != 0 {
		t.Fatalf("session received %v while overlay visible", sess.sent)
	}
	if len(ov.events) != 2 {
		t.Fatalf("overlay received %d events, want 2", len(ov.events))
	}
}

func TestRoute_LocalEchoWhenNotReady(t *testing.T) {
	sess := &fakeSession{state: session.Idle}
	r := New(keymap.Default(), sess, nil)

	for _, id := range []string{"H", "I", "X", keymap.KeyBackspace, keymap.KeyEnter} {
		r.Route(Event{KeyID: id})
	}

	if len(sess.sent) != 0 {
		t.Fatalf("session received %v while idle", sess.sent)
	}
	want := "> hi\n> "
	if got := r.Echo(); got != want {
		t.Fatalf("Echo() = %q, want %q", got, want)
	}
}

func TestRoute_BackspaceNeverEatsPrompt(t *testing.T) {
	sess := &fakeSession{state: session.Idle}
	r := New(keymap.Default(), sess, nil)

	for i := 0; i < 5; i++ {
		r.Route(Event{KeyID: keymap.KeyBackspace})
	}
	if got := r.Echo(); got != "> " {
		t.Fatalf("Echo() = %q, want %q", got, "> ")
	}
	if !strings.HasPrefix(r.Echo(), "> ") {
		t.Fatalf("prompt marker lost")
	}
}

func TestRoute_UnknownKeyIgnored(t *testing.T) {
	r, sess := readyRouter()

	r.Route(Event{KeyID: "NO_SUCH_KEY"})
	if len(sess.sent) != 0 {
		t.Fatalf("sent = %v, want none", sess.sent)
	}
}
