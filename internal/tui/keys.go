package tui

import (
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pagerterm/pagerterm/internal/input"
	"github.com/pagerterm/pagerterm/internal/keymap"
)

// keyTranslator maps host terminal keystrokes onto the handheld's key
// identifiers so that everything funnels through the same router. The
// host keyboard produces finished characters, so a capital letter or a
// ctrl chord is expanded into the modifier-then-key sequence the
// handheld would have sent.
type keyTranslator struct {
	normal  map[rune]string
	shifted map[rune]string
}

func newKeyTranslator(t *keymap.Table) *keyTranslator {
	kt := &keyTranslator{
		normal:  make(map[rune]string),
		shifted: make(map[rune]string),
	}
	for _, k := range t.Keys {
		if k.HasCode() {
			continue
		}
		for _, r := range k.Normal {
			if _, dup := kt.normal[r]; !dup {
				kt.normal[r] = k.ID
			}
		}
		for _, r := range k.Shift {
			if k.Shift == k.Normal {
				continue
			}
			if _, dup := kt.shifted[r]; !dup {
				kt.shifted[r] = k.ID
			}
		}
	}
	return kt
}

// translate expands one key message into router events. Nil means the
// keystroke has no keymap equivalent and is ignored.
func (kt *keyTranslator) translate(msg tea.KeyMsg) []input.Event {
	switch msg.Type {
	case tea.KeyEnter:
		return []input.Event{{KeyID: keymap.KeyEnter}}
	case tea.KeyBackspace:
		return []input.Event{{KeyID: keymap.KeyBackspace}}
	case tea.KeyTab:
		return []input.Event{{KeyID: keymap.KeyTab}}
	case tea.KeyEsc:
		return []input.Event{{KeyID: keymap.KeyEscape}}
	case tea.KeyUp:
		return []input.Event{{KeyID: "UP"}}
	case tea.KeyDown:
		return []input.Event{{KeyID: "DOWN"}}
	case tea.KeySpace:
		return []input.Event{{KeyID: "SPACE"}}
	}

	s := msg.String()
	if letter, ok := strings.CutPrefix(s, "ctrl+"); ok && len(letter) == 1 {
		r := rune(letter[0])
		if r >= 'a' && r <= 'z' {
			id := string(unicode.ToUpper(r))
			// CTRL is sticky on the handheld, so a host chord becomes
			// toggle on, key, toggle off.
			return []input.Event{
				{KeyID: keymap.ModCtrl},
				{KeyID: id},
				{KeyID: keymap.ModCtrl},
			}
		}
		return nil
	}

	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return nil
	}
	r := msg.Runes[0]
	if id, ok := kt.normal[r]; ok {
		return []input.Event{{KeyID: id}}
	}
	if id, ok := kt.shifted[r]; ok {
		return []input.Event{
			{KeyID: keymap.ModShift},
			{KeyID: id},
		}
	}
	return nil
}
