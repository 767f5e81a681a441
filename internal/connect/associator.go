package connect

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// Associator abstracts the wireless join machinery. Join starts an
// association attempt and must not block; Connected reports the last known
// link state and must not block either, since both are called from the
// foreground tick.
type Associator interface {
	Join(ssid, secret string) error
	Connected() bool
}

// NullAssociator is used on hosts where the operating system manages the
// network; the link is always considered up.
type NullAssociator struct{}

// Join implements Associator.
func (NullAssociator) Join(ssid, secret string) error { return nil }

// Connected implements Associator.
func (NullAssociator) Connected() bool { return true }

// NmcliAssociator drives NetworkManager through nmcli. Both the join and
// the link check run on background goroutines; the tick only reads cached
// state.
type NmcliAssociator struct {
	mu        sync.Mutex
	connected bool
	checking  bool
	joinErr   error
}

// NewNmcliAssociator returns an associator backed by nmcli, or an error if
// the binary is not on PATH.
func NewNmcliAssociator() (*NmcliAssociator, error) {
	if _, err := exec.LookPath("nmcli"); err != nil {
		return nil, fmt.Errorf("nmcli not found: %w", err)
	}
	return &NmcliAssociator{}, nil
}

// Join asks NetworkManager to connect to the network. The command runs in
// the background; its failure shows up as Connected staying false until the
// policy moves on to the next credential.
func (a *NmcliAssociator) Join(ssid, secret string) error {
	go func() {
		cmd := exec.Command("nmcli", "dev", "wifi", "connect", ssid, "password", secret)
		err := cmd.Run()
		a.mu.Lock()
		a.joinErr = err
		a.mu.Unlock()
	}()
	return nil
}

// Connected returns the cached link state and refreshes it in the
// background when no refresh is already in flight.
func (a *NmcliAssociator) Connected() bool {
	a.mu.Lock()
	connected := a.connected
	if !a.checking {
		a.checking = true
		go a.refresh()
	}
	a.mu.Unlock()
	return connected
}

func (a *NmcliAssociator) refresh() {
	out, err := exec.Command("nmcli", "-t", "-f", "STATE", "general").Output()
	up := err == nil && strings.HasPrefix(strings.TrimSpace(string(out)), "connected")

	a.mu.Lock()
	a.connected = up
	a.checking = false
	a.mu.Unlock()
}
