// Package transfer copies files to and from a configured endpoint over
// SFTP, reusing the endpoint's SSH credential.
package transfer

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/pagerterm/pagerterm/internal/config"
)

// Client is one SFTP connection.
type Client struct {
	ssh  *ssh.Client
	sftp *sftp.Client
}

// Dial connects and authenticates against the endpoint's SSH server, then
// opens the SFTP subsystem.
func Dial(ep config.Endpoint, timeout time.Duration) (*Client, error) {
	cfg := &ssh.ClientConfig{
		User:            ep.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(ep.Secret)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	addr := net.JoinHostPort(ep.Host, fmt.Sprintf("%d", ep.Port))
	conn, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	sc, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open sftp: %w", err)
	}
	return &Client{ssh: conn, sftp: sc}, nil
}

// Close shuts down the SFTP session and the SSH connection under it.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if c.sftp != nil {
		c.sftp.Close()
	}
	if c.ssh != nil {
		return c.ssh.Close()
	}
	return nil
}

// Get downloads remotePath into localPath. A missing localPath directory is
// created; an empty localPath uses the remote base name in the current
// directory.
func (c *Client) Get(remotePath, localPath string) (int64, error) {
	if localPath == "" {
		localPath = filepath.Base(remotePath)
	}

	src, err := c.sftp.Open(remotePath)
	if err != nil {
		return 0, fmt.Errorf("open remote %s: %w", remotePath, err)
	}
	defer src.Close()

	if dir := filepath.Dir(localPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	dst, err := os.Create(localPath)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", localPath, err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, src)
	if err != nil {
		return n, fmt.Errorf("download %s: %w", remotePath, err)
	}
	return n, nil
}

// Put uploads localPath to remotePath. An empty remotePath uses the local
// base name in the remote working directory.
func (c *Client) Put(localPath, remotePath string) (int64, error) {
	if remotePath == "" {
		remotePath = filepath.Base(localPath)
	}

	src, err := os.Open(localPath)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", localPath, err)
	}
	defer src.Close()

	dst, err := c.sftp.Create(remotePath)
	if err != nil {
		return 0, fmt.Errorf("create remote %s: %w", remotePath, err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, src)
	if err != nil {
		return n, fmt.Errorf("upload %s: %w", localPath, err)
	}
	return n, nil
}
