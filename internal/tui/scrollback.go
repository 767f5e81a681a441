package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Scrollback keeps the most recent terminal output as plain text lines.
// Escape sequences are stripped on the way in; the small display cannot
// render them and the drop keeps the buffer byte-bounded.
type Scrollback struct {
	maxLines int
	lines    []string
	cur      strings.Builder
}

// NewScrollback returns a buffer keeping at most maxLines lines plus the
// line under construction.
func NewScrollback(maxLines int) *Scrollback {
	if maxLines < 1 {
		maxLines = 200
	}
	return &Scrollback{maxLines: maxLines}
}

// Append folds raw terminal output into the buffer.
func (s *Scrollback) Append(b []byte) {
	clean := ansi.Strip(string(b))
	for _, r := range clean {
		switch r {
		case '\n':
			s.commitLine()
		case '\r':
			// Carriage returns restart the current line, which is how
			// progress bars repaint themselves.
			s.cur.Reset()
		case '\b':
			s.backspace()
		case '\t':
			s.cur.WriteString("    ")
		default:
			if r >= 0x20 {
				s.cur.WriteRune(r)
			}
		}
	}
}

// AppendString is Append for already-clean local text such as echo lines.
func (s *Scrollback) AppendString(text string) {
	s.Append([]byte(text))
}

// Lines returns the committed lines followed by the partial line, if any.
func (s *Scrollback) Lines() []string {
	out := make([]string, 0, len(s.lines)+1)
	out = append(out, s.lines...)
	if s.cur.Len() > 0 {
		out = append(out, s.cur.String())
	}
	return out
}

// Tail returns the last n lines joined for display.
func (s *Scrollback) Tail(n int) string {
	lines := s.Lines()
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// Reset drops all buffered output.
func (s *Scrollback) Reset() {
	s.lines = nil
	s.cur.Reset()
}

func (s *Scrollback) commitLine() {
	s.lines = append(s.lines, s.cur.String())
	s.cur.Reset()
	if len(s.lines) > s.maxLines {
		s.lines = s.lines[len(s.lines)-s.maxLines:]
	}
}

func (s *Scrollback) backspace() {
	if s.cur.Len() == 0 {
		return
	}
	line := s.cur.String()
	s.cur.Reset()
	s.cur.WriteString(line[:len(line)-1])
}
