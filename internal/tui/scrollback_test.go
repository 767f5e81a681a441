package tui

import (
	"strings"
	"testing"
)

func TestScrollbackStripsEscapeSequences(t *testing.T) {
	s := NewScrollback(10)
	s.Append([]byte("\x1b[31mred\x1b[0m text\n"))

	lines := s.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), lines)
	}
	if lines[0] != "red text" {
		t.Fatalf("expected escape codes stripped, got %q", lines[0])
	}
}

func TestScrollbackKeepsPartialLine(t *testing.T) {
	s := NewScrollback(10)
	s.Append([]byte("done\nprom"))

	lines := s.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), lines)
	}
	if lines[1] != "prom" {
		t.Fatalf("expected partial line preserved, got %q", lines[1])
	}
}

func TestScrollbackCarriageReturnRepaintsLine(t *testing.T) {
	s := NewScrollback(10)
	s.Append([]byte("10%\r20%\r100%\n"))

	lines := s.Lines()
	if len(lines) != 1 || lines[0] != "100%" {
		t.Fatalf("expected repainted progress line, got %q", lines)
	}
}

func TestScrollbackBackspaceErases(t *testing.T) {
	s := NewScrollback(10)
	s.Append([]byte("lsx\bs\n"))

	if got := s.Lines()[0]; got != "lss" {
		t.Fatalf("expected %q, got %q", "lss", got)
	}
}

func TestScrollbackBoundsLineCount(t *testing.T) {
	s := NewScrollback(3)
	for i := 0; i < 10; i++ {
		s.Append([]byte(strings.Repeat("x", i) + "\n"))
	}

	lines := s.Lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 retained lines, got %d", len(lines))
	}
	if lines[2] != strings.Repeat("x", 9) {
		t.Fatalf("expected newest line retained, got %q", lines[2])
	}
}

func TestScrollbackTail(t *testing.T) {
	s := NewScrollback(10)
	s.Append([]byte("one\ntwo\nthree\n"))

	got := s.Tail(2)
	if got != "two\nthree" {
		t.Fatalf("expected last two lines, got %q", got)
	}
}
