package shell

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// SSHClient is the Client implementation for SSH endpoints.
//
// All transport state is guarded by one mutex. The only blocking reads
// happen on the pump goroutine; every exported method holds the mutex for
// the duration of a single transport call, so foreground writes and worker
// teardown never interleave.
type SSHClient struct {
	mu      sync.Mutex
	tcp     net.Conn
	addr    string
	timeout time.Duration
	client  *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	out     *pump
	closed  bool
}

// NewSSHClient returns an unconnected SSH transport.
func NewSSHClient() *SSHClient {
	return &SSHClient{}
}

// Connect dials the TCP endpoint. SSH negotiation happens in Authenticate,
// where the username is known.
func (c *SSHClient) Connect(host string, port int, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	c.tcp = conn
	c.addr = addr
	c.timeout = timeout
	return nil
}

// Authenticate runs the SSH handshake with password auth over the dialed
// connection.
func (c *SSHClient) Authenticate(user, secret string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.tcp == nil {
		return ErrNotConnected
	}

	cfg := &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.Password(secret),
			ssh.KeyboardInteractive(func(name, instruction string, questions []string, echos []bool) ([]string, error) {
				// Some servers only offer keyboard-interactive;
				// answer every prompt with the same secret.
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = secret
				}
				return answers, nil
			}),
		},
		// The handheld this client descends from pairs with servers the
		// user configures explicitly; there is no known_hosts store.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         c.timeout,
	}

	sc, chans, reqs, err := ssh.NewClientConn(c.tcp, c.addr, cfg)
	if err != nil {
		return fmt.Errorf("ssh handshake: %w", err)
	}
	c.client = ssh.NewClient(sc, chans, reqs)
	return nil
}

// RequestPty opens the session channel and negotiates a pty of the given
// geometry.
func (c *SSHClient) RequestPty(term string, cols, rows int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.client == nil {
		return ErrNotAuthorized
	}

	sess, err := c.client.NewSession()
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := sess.RequestPty(term, rows, cols, modes); err != nil {
		sess.Close()
		return fmt.Errorf("request pty: %w", err)
	}
	c.session = sess
	return nil
}

// RequestShell starts the remote shell and begins pumping its output. With
// a pty in place the remote merges stderr into the pty stream, so a single
// stdout pump sees everything.
func (c *SSHClient) RequestShell() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.session == nil {
		return ErrNoShell
	}

	stdin, err := c.session.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := c.session.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	if err := c.session.Shell(); err != nil {
		return fmt.Errorf("start shell: %w", err)
	}

	c.stdin = stdin
	c.out = startPump(stdout)
	return nil
}

// ReadNonBlocking drains bytes the pump has already received. It does not
// touch the transport and therefore does not take the transport mutex.
func (c *SSHClient) ReadNonBlocking(p []byte) (int, bool, error) {
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
	return out.readNonBlocking(p)
}

// Write sends p to the remote shell's stdin.
func (c *SSHClient) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, ErrClosed
	}
	if c.stdin == nil {
		return 0, ErrNoShell
	}
	n, err := c.stdin.Write(p)
	if err != nil {
		return n, fmt.Errorf("write stdin: %w", err)
	}
	return n, nil
}

// Close tears everything down, newest layer first. Closing the TCP
// connection unblocks the pump's read if it is mid-call.
func (c *SSHClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.out != nil {
		c.out.close()
	}
	if c.session != nil {
		c.session.Close()
		c.session = nil
	}
	if c.client != nil {
		c.client.Close()
		c.client = nil
		c.tcp = nil // owned by the ssh client once handshaken
	}
	if c.tcp != nil {
		c.tcp.Close()
		c.tcp = nil
	}
	return nil
}
