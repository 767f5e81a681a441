package tui

import (
	"reflect"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pagerterm/pagerterm/internal/input"
	"github.com/pagerterm/pagerterm/internal/keymap"
)

func runeMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func ids(evs []input.Event) []string {
	out := make([]string, len(evs))
	for i, ev := range evs {
		out[i] = ev.KeyID
	}
	return out
}

func TestTranslateLowercaseLetter(t *testing.T) {
	kt := newKeyTranslator(keymap.Default())

	got := ids(kt.translate(runeMsg('a')))
	if !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("expected plain key event, got %v", got)
	}
}

func TestTranslateUppercaseAddsShift(t *testing.T) {
	kt := newKeyTranslator(keymap.Default())

	got := ids(kt.translate(runeMsg('A')))
	if !reflect.DeepEqual(got, []string{keymap.ModShift, "A"}) {
		t.Fatalf("expected shift prefix, got %v", got)
	}
}

func TestTranslateShiftedSymbol(t *testing.T) {
	kt := newKeyTranslator(keymap.Default())

	got := ids(kt.translate(runeMsg('!')))
	if !reflect.DeepEqual(got, []string{keymap.ModShift, "1"}) {
		t.Fatalf("expected shifted digit key, got %v", got)
	}
}

func TestTranslateCtrlChordWrapsStickyModifier(t *testing.T) {
	kt := newKeyTranslator(keymap.Default())

	got := ids(kt.translate(tea.KeyMsg{Type: tea.KeyCtrlC}))
	want := []string{keymap.ModCtrl, "C", keymap.ModCtrl}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestTranslateSpecialKeys(t *testing.T) {
	kt := newKeyTranslator(keymap.Default())

	cases := []struct {
		msg  tea.KeyMsg
		want string
	}{
		{tea.KeyMsg{Type: tea.KeyEnter}, keymap.KeyEnter},
		{tea.KeyMsg{Type: tea.KeyBackspace}, keymap.KeyBackspace},
		{tea.KeyMsg{Type: tea.KeyTab}, keymap.KeyTab},
		{tea.KeyMsg{Type: tea.KeyEsc}, keymap.KeyEscape},
		{tea.KeyMsg{Type: tea.KeyUp}, "UP"},
		{tea.KeyMsg{Type: tea.KeyDown}, "DOWN"},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, "SPACE"},
	}
	for _, tc := range cases {
		got := ids(kt.translate(tc.msg))
		if !reflect.DeepEqual(got, []string{tc.want}) {
			t.Fatalf("key %v: expected %q, got %v", tc.msg.Type, tc.want, got)
		}
	}
}

func TestTranslateUnknownRuneIgnored(t *testing.T) {
	kt := newKeyTranslator(keymap.Default())

	if got := kt.translate(runeMsg('€')); got != nil {
		t.Fatalf("expected unmapped rune to be dropped, got %v", got)
	}
}
