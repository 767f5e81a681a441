// Package keymap holds the data-driven key table: key identifiers mapped to
// their normal and shifted outputs or a raw control code, plus the modifier
// definitions. The input router owns no per-key special cases; it only
// consults this table.
package keymap

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ModifierMode says how a modifier behaves once activated.
type ModifierMode string

const (
	// Oneshot modifiers apply to exactly one following keystroke and then
	// clear themselves.
	Oneshot ModifierMode = "oneshot"
	// Sticky modifiers stay active until explicitly toggled off.
	Sticky ModifierMode = "sticky"
)

// Key maps one key identifier to its outputs. Code takes precedence over
// Normal/Shift when >= 0; it is the raw byte sent for control keys.
type Key struct {
	ID     string `yaml:"id"`
	Normal string `yaml:"normal,omitempty"`
	Shift  string `yaml:"shift,omitempty"`
	Code   int    `yaml:"code,omitempty"`
}

// HasCode reports whether the key emits a raw control byte instead of the
// normal/shift outputs.
func (k Key) HasCode() bool { return k.Code > 0 }

// Modifier defines one modifier key.
type Modifier struct {
	ID   string       `yaml:"id"`
	Mode ModifierMode `yaml:"mode"`
}

// Table is a complete keymap.
type Table struct {
	Name      string     `yaml:"name"`
	Keys      []Key      `yaml:"keys"`
	Modifiers []Modifier `yaml:"modifiers"`

	keyIndex map[string]Key
	modIndex map[string]Modifier
}

// Well-known key identifiers referenced by the default table. These are
// names in the keymap file, not special cases in code.
const (
	KeyEnter     = "ENTER"
	KeyBackspace = "BACKSPACE"
	KeyTab       = "TAB"
	KeyEscape    = "ESC"
	ModShift     = "SHIFT"
	ModCtrl      = "CTRL"
)

// Load reads a keymap file. The built-in defaults fill any section the file
// omits.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keymap: %w", err)
	}

	t := &Table{}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parse keymap %s: %w", path, err)
	}
	def := Default()
	if len(t.Keys) == 0 {
		t.Keys = def.Keys
	}
	if len(t.Modifiers) == 0 {
		t.Modifiers = def.Modifiers
	}
	if t.Name == "" {
		t.Name = def.Name
	}
	t.buildIndex()
	return t, nil
}

// Lookup returns the key definition for id.
func (t *Table) Lookup(id string) (Key, bool) {
	k, ok := t.keyIndex[id]
	return k, ok
}

// ModifierDef returns the modifier definition for id.
func (t *Table) ModifierDef(id string) (Modifier, bool) {
	m, ok := t.modIndex[id]
	return m, ok
}

func (t *Table) buildIndex() {
	t.keyIndex = make(map[string]Key, len(t.Keys))
	for _, k := range t.Keys {
		t.keyIndex[k.ID] = k
	}
	t.modIndex = make(map[string]Modifier, len(t.Modifiers))
	for _, m := range t.Modifiers {
		t.modIndex[m.ID] = m
	}
}

// Default returns the built-in table: letters, digits with their usual
// shifted symbols, punctuation, Enter and Backspace, and the SHIFT/CTRL
// modifiers of the handheld keyboard (oneshot SHIFT, sticky CTRL).
func Default() *Table {
	t := &Table{Name: "builtin"}

	for r := 'a'; r <= 'z'; r++ {
		t.Keys = append(t.Keys, Key{
			ID:     string(r - 'a' + 'A'),
			Normal: string(r),
			Shift:  string(r - 'a' + 'A'),
			Code:   -1,
		})
	}

	digitShift := map[rune]string{
		'1': "!", '2': "@", '3': "#", '4': "$", '5': "%",
		'6': "^", '7': "&", '8': "*", '9': "(", '0': ")",
	}
	for r := '0'; r <= '9'; r++ {
		t.Keys = append(t.Keys, Key{
			ID:     string(r),
			Normal: string(r),
			Shift:  digitShift[r],
			Code:   -1,
		})
	}

	punct := []Key{
		{ID: "SPACE", Normal: " ", Shift: " ", Code: -1},
		{ID: "MINUS", Normal: "-", Shift: "_", Code: -1},
		{ID: "EQUALS", Normal: "=", Shift: "+", Code: -1},
		{ID: "COMMA", Normal: ",", Shift: "<", Code: -1},
		{ID: "PERIOD", Normal: ".", Shift: ">", Code: -1},
		{ID: "SLASH", Normal: "/", Shift: "?", Code: -1},
		{ID: "SEMICOLON", Normal: ";", Shift: ":", Code: -1},
		{ID: "QUOTE", Normal: "'", Shift: "\"", Code: -1},
		{ID: "BACKSLASH", Normal: "\\", Shift: "|", Code: -1},
		{ID: "LBRACKET", Normal: "[", Shift: "{", Code: -1},
		{ID: "RBRACKET", Normal: "]", Shift: "}", Code: -1},
		{ID: "BACKTICK", Normal: "`", Shift: "~", Code: -1},
		{ID: KeyEnter, Code: 0x0a},
		{ID: KeyBackspace, Code: 0x7f},
		{ID: KeyTab, Code: 0x09},
		{ID: KeyEscape, Code: 0x1b},
	}
	t.Keys = append(t.Keys, punct...)

	t.Modifiers = []Modifier{
		{ID: ModShift, Mode: Oneshot},
		{ID: ModCtrl, Mode: Sticky},
	}

	t.buildIndex()
	return t
}
