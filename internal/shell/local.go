package shell

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/creack/pty"
)

// LocalClient runs a login shell on a local pty behind the same Client
// interface as the SSH transport. It backs the "local" endpoint and makes
// the whole session stack testable without a server.
type LocalClient struct {
	mu     sync.Mutex
	shell  string
	term   string
	cols   int
	rows   int
	cmd    *exec.Cmd
	ptmx   *os.File
	out    *pump
	done   atomic.Bool
	closed bool
}

// NewLocalClient returns a transport that will start the user's shell
// ($SHELL, falling back to /bin/sh) when RequestShell is called.
func NewLocalClient() *LocalClient {
	sh := os.Getenv("SHELL")
	if sh == "" {
		sh = "/bin/sh"
	}
	return &LocalClient{shell: sh}
}

// Connect verifies the shell binary exists. There is no network to dial.
func (c *LocalClient) Connect(host string, port int, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if _, err := exec.LookPath(c.shell); err != nil {
		return fmt.Errorf("shell %s: %w", c.shell, err)
	}
	return nil
}

// Authenticate is a no-op: the local user is already who they are.
func (c *LocalClient) Authenticate(user, secret string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

// RequestPty records the geometry applied when the shell starts.
func (c *LocalClient) RequestPty(term string, cols, rows int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.term = term
	c.cols = cols
	c.rows = rows
	return nil
}

// RequestShell starts the shell on a fresh pty and begins pumping output.
func (c *LocalClient) RequestShell() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.ptmx != nil {
		return ErrNoShell
	}

	cmd := exec.Command(c.shell, "-l")
	cmd.Env = append(os.Environ(), "TERM="+c.term)

	size := &pty.Winsize{Rows: uint16(c.rows), Cols: uint16(c.cols)}
	ptmx, err := pty.StartWithSize(cmd, size)
	if err != nil {
		return fmt.Errorf("start %s: %w", c.shell, err)
	}

	c.cmd = cmd
	c.ptmx = ptmx
	c.out = startPump(ptmx)
	// Reap as soon as the shell exits; the read side relies on the exit
	// flag to tell a clean exit from an I/O error.
	go func() {
		cmd.Wait()
		c.done.Store(true)
	}()
	return nil
}

// ReadNonBlocking drains bytes the pump has already received.
func (c *LocalClient) ReadNonBlocking(p []byte) (int, bool, error) {
	c.mu.Lock()
	out := c.out
	closed := c.closed
	c.mu.Unlock()

	if out == nil {
		if closed {
			return 0, false, ErrClosed
		}
		return 0, false, ErrNoShell
	}
	n, eof, err := out.readNonBlocking(p)
	// A closed pty master surfaces as EIO rather than EOF when the child
	// exits; treat it as a clean end of stream.
	if err != nil && c.done.Load() {
		return n, true, nil
	}
	return n, eof, err
}

// Write sends p to the shell's pty.
func (c *LocalClient) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, ErrClosed
	}
	if c.ptmx == nil {
		return 0, ErrNoShell
	}
	n, err := c.ptmx.Write(p)
	if err != nil {
		return n, fmt.Errorf("write pty: %w", err)
	}
	return n, nil
}

// Close stops the pump, closes the pty and reaps the shell process.
func (c *LocalClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.out != nil {
		c.out.close()
	}
	if c.ptmx != nil {
		c.ptmx.Close()
		c.ptmx = nil
	}
	if c.cmd != nil && c.cmd.Process != nil && !c.done.Load() {
		c.cmd.Process.Kill()
	}
	return nil
}
