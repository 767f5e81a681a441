package shell

import (
	"io"
	"testing"
	"time"
)

// readAll polls readNonBlocking until want bytes arrived or the deadline
// passes.
func readAll(t *testing.T, p *pump, want int) []byte {
	t.Helper()

	var out []byte
	buf := make([]byte, 16)
	deadline := time.Now().Add(2 * time.Second)
	for len(out) < want {
		if time.Now().After(deadline) {
			t.Fatalf("timed out with %d of %d bytes", len(out), want)
		}
		n, eof, err := p.readNonBlocking(buf)
		if err != nil {
			t.Fatalf("readNonBlocking() error = %v", err)
		}
		out = append(out, buf[:n]...)
		if eof {
			break
		}
		if n == 0 {
			time.Sleep(time.Millisecond)
		}
	}
	return out
}

func TestPump_DeliversBytesWithoutBlocking(t *testing.T) {
	pr, pw := io.Pipe()
	p := startPump(pr)
	defer p.close()

	// The very first poll must not block even though nothing was written.
	if n, eof, err := p.readNonBlocking(make([]byte, 8)); n != 0 || eof || err != nil {
		t.Fatalf("readNonBlocking() = %d %v %v, want 0 false nil", n, eof, err)
	}

	go pw.Write([]byte("hello, pager"))

	got := readAll(t, p, len("hello, pager"))
	if string(got) != "hello, pager" {
		t.Fatalf("read %q, want %q", got, "hello, pager")
	}
}

func TestPump_ReportsEOFAfterDrain(t *testing.T) {
	pr, pw := io.Pipe()
	p := startPump(pr)
	defer p.close()

	go func() {
		pw.Write([]byte("bye"))
		pw.Close()
	}()

	got := readAll(t, p, 3)
	if string(got) != "bye" {
		t.Fatalf("read %q, want %q", got, "bye")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		n, eof, err := p.readNonBlocking(make([]byte, 8))
		if err != nil {
			t.Fatalf("readNonBlocking() error = %v", err)
		}
		if eof {
			if n != 0 {
				t.Fatalf("eof delivered alongside %d bytes", n)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("never saw eof")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPump_SmallDestinationKeepsRemainder(t *testing.T) {
	pr, pw := io.Pipe()
	p := startPump(pr)
	defer p.close()

	go pw.Write([]byte("abcdefgh"))

	// Pull one byte at a time; ordering must hold across the pending
	// buffer.
	var out []byte
	buf := make([]byte, 1)
	deadline := time.Now().Add(2 * time.Second)
	for len(out) < 8 {
		if time.Now().After(deadline) {
			t.Fatalf("timed out with %q", out)
		}
		n, _, err := p.readNonBlocking(buf)
		if err != nil {
			t.Fatalf("readNonBlocking() error = %v", err)
		}
		if n > 0 {
			out = append(out, buf[0])
		}
	}
	if string(out) != "abcdefgh" {
		t.Fatalf("read %q, want %q", out, "abcdefgh")
	}
}
