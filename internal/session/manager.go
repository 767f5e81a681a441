package session

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pagerterm/pagerterm/internal/config"
	"github.com/pagerterm/pagerterm/internal/ring"
	"github.com/pagerterm/pagerterm/internal/shell"
)

// Dialer builds a fresh transport for one endpoint. Injected so tests and
// the local endpoint can substitute the SSH client.
type Dialer func(ep config.Endpoint) shell.Client

// Observer is notified synchronously on every state transition, from
// whichever goroutine caused it. Observers must not block.
type Observer func(st State, reason Reason)

// Recorder receives a summary of every finished connection attempt.
// The history database implements it; NopRecorder ignores everything.
type Recorder interface {
	RecordAttempt(id string, ep config.Endpoint, outcome string, started, ended time.Time, bytesRx uint64, drops uint64)
}

// NopRecorder discards attempt records.
type NopRecorder struct{}

// RecordAttempt implements Recorder.
func (NopRecorder) RecordAttempt(string, config.Endpoint, string, time.Time, time.Time, uint64, uint64) {
}

// Options configures a Manager.
type Options struct {
	Dialer       Dialer
	Ring         *ring.Channel
	Logger       *slog.Logger
	Recorder     Recorder
	Term         string
	Cols, Rows   int
	PollInterval time.Duration
}

// Manager is the public face of the session layer. It owns at most one
// worker at a time and the ring channel the worker feeds. All exported
// methods are safe from the foreground loop; CurrentState and LastFailure
// never block.
type Manager struct {
	dial     Dialer
	ring     *ring.Channel
	log      *slog.Logger
	recorder Recorder
	term     string
	cols     int
	rows     int
	poll     time.Duration

	state   atomic.Int32
	failure atomic.Int32

	mu        sync.Mutex
	worker    *worker
	endpoint  config.Endpoint
	observers []Observer
}

// NewManager builds a Manager. Zero-value options get working defaults.
func NewManager(opts Options) *Manager {
	if opts.Dialer == nil {
		opts.Dialer = func(ep config.Endpoint) shell.Client {
			if ep.Local {
				return shell.NewLocalClient()
			}
			return shell.NewSSHClient()
		}
	}
	if opts.Ring == nil {
		opts.Ring = ring.New(ring.DefaultCapacity)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = NopRecorder{}
	}
	if opts.Term == "" {
		opts.Term = "xterm-256color"
	}
	if opts.Cols <= 0 {
		opts.Cols = 80
	}
	if opts.Rows <= 0 {
		opts.Rows = 24
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Millisecond
	}
	return &Manager{
		dial:     opts.Dialer,
		ring:     opts.Ring,
		log:      opts.Logger,
		recorder: opts.Recorder,
		term:     opts.Term,
		cols:     opts.Cols,
		rows:     opts.Rows,
		poll:     opts.PollInterval,
	}
}

// Ring returns the channel the foreground loop drains.
func (m *Manager) Ring() *ring.Channel {
	return m.ring
}

// Subscribe registers an observer for state transitions.
func (m *Manager) Subscribe(obs Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, obs)
}

// CurrentState returns the session state without blocking.
func (m *Manager) CurrentState() State {
	return State(m.state.Load())
}

// LastFailure returns the reason of the most recent failed session, or
// ReasonNone.
func (m *Manager) LastFailure() Reason {
	return Reason(m.failure.Load())
}

// CurrentEndpoint returns the endpoint of the session in flight, or the
// zero Endpoint when idle.
func (m *Manager) CurrentEndpoint() config.Endpoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.worker == nil {
		return config.Endpoint{}
	}
	return m.endpoint
}

// Connect starts a new session toward ep. It fails with ErrBusy unless the
// manager is idle. Observers are notified of CONNECTING before Connect
// returns.
func (m *Manager) Connect(ep config.Endpoint, connectTimeout time.Duration) error {
	m.mu.Lock()
	if m.CurrentState() != Idle || m.worker != nil {
		m.mu.Unlock()
		return ErrBusy
	}

	w := newWorker(m, m.dial(ep), ep, connectTimeout)
	m.worker = w
	m.endpoint = ep
	m.failure.Store(int32(ReasonNone))
	m.mu.Unlock()

	m.setState(Connecting, ReasonNone)
	m.log.Info("session connect", "session", w.id, "endpoint", ep.Addr())
	go w.run()
	return nil
}

// Disconnect requests a cooperative stop. It returns immediately; the
// manager reports IDLE only after the worker has torn the transport down
// and exited.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	w := m.worker
	m.mu.Unlock()

	switch m.CurrentState() {
	case Connecting, Authenticating, Ready:
		if w == nil {
			return
		}
		m.setState(Closing, ReasonNone)
		w.requestStop()
	}
}

// SendBytes forwards data to the shell. Outside READY it sends nothing and
// returns ErrNotReady. The transport serializes this write against the
// worker's concurrent reads.
func (m *Manager) SendBytes(data []byte) error {
	if m.CurrentState() != Ready {
		return ErrNotReady
	}
	m.mu.Lock()
	w := m.worker
	m.mu.Unlock()
	if w == nil {
		return ErrNotReady
	}
	return w.write(data)
}

// setState stores the new state before notifying, so observers that read
// CurrentState see a consistent value.
func (m *Manager) setState(st State, reason Reason) {
	m.state.Store(int32(st))
	if reason != ReasonNone {
		m.failure.Store(int32(reason))
	}

	m.mu.Lock()
	obs := make([]Observer, len(m.observers))
	copy(obs, m.observers)
	m.mu.Unlock()

	for _, o := range obs {
		o(st, reason)
	}
}

// workerDone is called by the worker as its last act before exiting. The
// failure path surfaces FAILED(reason) and then returns to IDLE; a
// cooperative stop goes straight to IDLE.
func (m *Manager) workerDone(w *worker, reason Reason) {
	m.mu.Lock()
	if m.worker != w {
		// A stale worker from a previous session; nothing to do.
		m.mu.Unlock()
		return
	}
	m.worker = nil
	m.endpoint = config.Endpoint{}
	m.mu.Unlock()

	if reason != ReasonNone {
		m.log.Warn("session failed", "session", w.id, "reason", reason.String())
		m.setState(Failed, reason)
	} else {
		m.log.Info("session closed", "session", w.id)
	}
	m.setState(Idle, ReasonNone)
}
