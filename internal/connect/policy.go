// Package connect implements the selection-and-retry policy that brings a
// session up: wireless association in credential priority order, endpoint
// choice between the local and remote servers, and exponential backoff
// between failed attempts. The policy is advanced by Tick from the
// foreground loop and never blocks it.
package connect

import (
	"log/slog"
	"time"

	"github.com/pagerterm/pagerterm/internal/config"
	"github.com/pagerterm/pagerterm/internal/session"
)

// SessionControl is the slice of the session manager the policy drives.
type SessionControl interface {
	CurrentState() session.State
	LastFailure() session.Reason
	Connect(ep config.Endpoint, timeout time.Duration) error
}

// phase is where the policy currently is in its two-phase cycle.
type phase int

const (
	phaseNetwork phase = iota
	phaseServer
	phaseOnline
)

// Policy owns reconnection. One endpoint candidate is attempted per cycle:
// preferRemote is an ordering preference, not an automatic failover within
// a cycle.
type Policy struct {
	sess  SessionControl
	assoc Associator
	log   *slog.Logger

	creds    []config.Credential
	servers  config.Servers
	timeouts config.Timeouts

	enabled bool
	phase   phase
	status  string

	// network phase
	credIdx     int
	joined      bool
	polls       int
	nextPoll    time.Time
	nextNetScan time.Time

	// server phase
	backoff     *Backoff
	nextAttempt time.Time
	inFlight    bool
}

// New builds a Policy from the configuration. It starts enabled: the first
// Tick begins the network phase.
func New(sess SessionControl, assoc Associator, cfg *config.Config, log *slog.Logger) *Policy {
	if log == nil {
		log = slog.Default()
	}
	if assoc == nil {
		assoc = NullAssociator{}
	}
	return &Policy{
		sess:     sess,
		assoc:    assoc,
		log:      log,
		creds:    cfg.EnabledCredentials(),
		servers:  cfg.Servers,
		timeouts: cfg.Timeouts,
		enabled:  true,
		backoff:  NewBackoff(cfg.Timeouts.ReconnectDelay(), cfg.Timeouts.MaxReconnectDelay()),
		status:   "starting",
	}
}

// SetEnabled turns automatic reconnection on or off. Disabling does not
// touch an established session.
func (p *Policy) SetEnabled(on bool) {
	p.enabled = on
	if on && p.phase == phaseOnline && p.sess.CurrentState() == session.Idle {
		p.phase = phaseServer
	}
}

// Enabled reports whether automatic reconnection is active.
func (p *Policy) Enabled() bool { return p.enabled }

// Status returns a one-line description for the status bar.
func (p *Policy) Status() string { return p.status }

// Reload replaces the credential list, servers and timing parameters, and
// restarts the network phase so new credentials are honored.
func (p *Policy) Reload(cfg *config.Config) {
	p.creds = cfg.EnabledCredentials()
	p.servers = cfg.Servers
	p.timeouts = cfg.Timeouts
	p.backoff = NewBackoff(cfg.Timeouts.ReconnectDelay(), cfg.Timeouts.MaxReconnectDelay())
	if p.phase == phaseNetwork {
		p.resetNetworkPhase()
	}
}

// Tick advances the policy. It is called once per foreground tick and does
// nothing that can block.
func (p *Policy) Tick(now time.Time) {
	switch p.sess.CurrentState() {
	case session.Connecting, session.Authenticating, session.Closing, session.Failed:
		return
	case session.Ready:
		if p.phase != phaseOnline {
			p.phase = phaseOnline
			p.backoff.Success()
			p.status = "connected"
		}
		p.inFlight = false
		return
	}

	// Idle from here on. A session we started or were riding just ended:
	// decide between backing off and standing down.
	if p.inFlight || p.phase == phaseOnline {
		p.inFlight = false
		p.phase = phaseServer
		if p.sess.LastFailure() == session.ReasonNone {
			// Clean user-initiated close: stay down until asked.
			p.enabled = false
			p.status = "disconnected"
			return
		}
		delay := p.backoff.Delay()
		p.nextAttempt = now.Add(delay)
		p.backoff.Failure()
		p.status = "retry in " + delay.Round(100*time.Millisecond).String()
		p.log.Info("reconnect scheduled", "delay", delay, "failures", p.backoff.Failures())
		return
	}

	if !p.enabled {
		return
	}

	switch p.phase {
	case phaseNetwork:
		p.tickNetwork(now)
	case phaseServer:
		p.tickServer(now)
	}
}

// tickNetwork walks the credential list in priority order, polling the
// associator a bounded number of times per credential.
func (p *Policy) tickNetwork(now time.Time) {
	if p.assoc.Connected() {
		p.phase = phaseServer
		p.status = "network up"
		return
	}

	if len(p.creds) == 0 {
		p.status = session.ReasonNetworkUnavailable.String()
		return
	}
	if !p.nextNetScan.IsZero() && now.Before(p.nextNetScan) {
		return
	}

	if p.credIdx >= len(p.creds) {
		// List exhausted: report and rescan after the backoff cap.
		p.status = session.ReasonNetworkUnavailable.String()
		p.nextNetScan = now.Add(p.timeouts.MaxReconnectDelay())
		p.resetNetworkPhase()
		return
	}

	cred := p.creds[p.credIdx]
	if !p.joined {
		p.log.Info("joining network", "ssid", cred.SSID)
		if err := p.assoc.Join(cred.SSID, cred.Secret); err != nil {
			p.log.Warn("join failed", "ssid", cred.SSID, "err", err)
			p.credIdx++
			return
		}
		p.joined = true
		p.polls = 0
		p.nextPoll = now
		p.status = "joining " + cred.SSID
		return
	}

	if now.Before(p.nextPoll) {
		return
	}
	if p.assoc.Connected() {
		p.phase = phaseServer
		p.status = "network up"
		return
	}
	p.polls++
	p.nextPoll = now.Add(p.timeouts.AssocPollInterval())
	if p.polls >= p.timeouts.AssocAttempts {
		p.log.Warn("association timed out", "ssid", cred.SSID)
		p.credIdx++
		p.joined = false
	}
}

// tickServer starts one connection attempt toward the preferred endpoint
// once the backoff window has passed.
func (p *Policy) tickServer(now time.Time) {
	if now.Before(p.nextAttempt) {
		return
	}

	ep, ok := p.chooseEndpoint()
	if !ok {
		p.status = "no endpoint enabled"
		return
	}

	if err := p.sess.Connect(ep, p.timeouts.ConnectTimeout()); err != nil {
		// Busy: someone else started a session between ticks.
		return
	}
	p.inFlight = true
	p.status = "connecting " + ep.Host
}

// chooseEndpoint picks the single candidate for this cycle. The preference
// flag orders the pair; a disabled first choice falls through to the other.
func (p *Policy) chooseEndpoint() (config.Endpoint, bool) {
	first, second := p.servers.Local, p.servers.Remote
	if p.servers.PreferRemote {
		first, second = second, first
	}
	if first.Enabled {
		return first, true
	}
	if second.Enabled {
		return second, true
	}
	return config.Endpoint{}, false
}

func (p *Policy) resetNetworkPhase() {
	p.credIdx = 0
	p.joined = false
	p.polls = 0
}
