// Package shell defines the remote shell transport driven by a session
// worker, with an SSH implementation and a local pty implementation.
package shell

import (
	"errors"
	"time"
)

// Errors returned by Client implementations. Worker code maps these to the
// session failure taxonomy; callers should match with errors.Is.
var (
	ErrNotConnected  = errors.New("shell: not connected")
	ErrNotAuthorized = errors.New("shell: not authenticated")
	ErrNoShell       = errors.New("shell: shell not started")
	ErrClosed        = errors.New("shell: transport closed")
)

// Client is one shell transport. Calls follow a strict order: Connect,
// Authenticate, RequestPty, RequestShell, then any mix of ReadNonBlocking
// and Write until Close.
//
// Implementations serialize every call that touches the underlying
// transport: the session worker loops ReadNonBlocking on its own goroutine
// while the foreground loop calls Write, and the two must never interleave
// inside a transport operation.
type Client interface {
	// Connect dials the endpoint. It blocks at most timeout.
	Connect(host string, port int, timeout time.Duration) error

	// Authenticate proves the user's identity on the established
	// connection.
	Authenticate(user, secret string) error

	// RequestPty negotiates a pseudo-terminal of the given geometry.
	RequestPty(term string, cols, rows int) error

	// RequestShell starts the remote interactive shell.
	RequestShell() error

	// ReadNonBlocking copies any already-received output into p and
	// returns immediately. eof reports a clean end of stream; err reports
	// a transport failure. n may be 0 with neither set.
	ReadNonBlocking(p []byte) (n int, eof bool, err error)

	// Write sends p to the shell's input.
	Write(p []byte) (int, error)

	// Close tears the transport down. Safe to call more than once and
	// from any goroutine.
	Close() error
}
