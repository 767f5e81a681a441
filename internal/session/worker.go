package session

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pagerterm/pagerterm/internal/config"
	"github.com/pagerterm/pagerterm/internal/shell"
)

// readBufSize is the per-iteration read size of the worker loop.
const readBufSize = 2048

// worker owns one connection attempt end to end: connect, authenticate,
// negotiate the pty and shell, then poll-read until EOF, error or a
// cooperative stop. It writes received bytes only into the manager's ring
// channel and reports its fate through Manager.workerDone.
type worker struct {
	id      string
	m       *Manager
	client  shell.Client
	ep      config.Endpoint
	timeout time.Duration

	stop    atomic.Bool
	done    chan struct{}
	bytesRx atomic.Uint64
	drops   atomic.Uint64
}

func newWorker(m *Manager, client shell.Client, ep config.Endpoint, timeout time.Duration) *worker {
	return &worker{
		id:      uuid.NewString(),
		m:       m,
		client:  client,
		ep:      ep,
		timeout: timeout,
		done:    make(chan struct{}),
	}
}

// requestStop flags the worker to exit. The flag is observed once per read
// iteration, so exit latency is bounded by the poll interval.
func (w *worker) requestStop() {
	w.stop.Store(true)
}

// write forwards foreground input to the transport, which serializes it
// against the worker's own reads.
func (w *worker) write(p []byte) error {
	if _, err := w.client.Write(p); err != nil {
		return err
	}
	return nil
}

func (w *worker) run() {
	defer close(w.done)

	started := time.Now()
	reason := w.establish()
	if reason == ReasonNone {
		reason = w.readLoop()
	}

	// Teardown happens before the manager learns the outcome, so IDLE is
	// never reported with a live transport behind it.
	w.client.Close()

	outcome := "closed"
	if reason != ReasonNone {
		outcome = reason.String()
	}
	w.m.recorder.RecordAttempt(w.id, w.ep, outcome, started, time.Now(), w.bytesRx.Load(), w.drops.Load())
	w.m.workerDone(w, reason)
}

// establish walks the connect -> authenticate -> pty -> shell sequence,
// mapping each stage's failure to its typed reason.
func (w *worker) establish() Reason {
	if err := w.client.Connect(w.ep.Host, w.ep.Port, w.timeout); err != nil {
		w.m.log.Warn("connect failed", "session", w.id, "err", err)
		return ReasonTransportError
	}
	if w.stop.Load() {
		return ReasonNone
	}

	w.m.setState(Authenticating, ReasonNone)
	if err := w.client.Authenticate(w.ep.Username, w.ep.Secret); err != nil {
		w.m.log.Warn("authentication failed", "session", w.id, "err", err)
		return ReasonAuthenticationFailed
	}
	if w.stop.Load() {
		return ReasonNone
	}

	if err := w.client.RequestPty(w.m.term, w.m.cols, w.m.rows); err != nil {
		w.m.log.Warn("pty negotiation failed", "session", w.id, "err", err)
		return ReasonProtocolNegotiationFailed
	}
	if err := w.client.RequestShell(); err != nil {
		w.m.log.Warn("shell negotiation failed", "session", w.id, "err", err)
		return ReasonProtocolNegotiationFailed
	}

	w.m.setState(Ready, ReasonNone)
	return ReasonNone
}

// readLoop pumps transport output into the ring channel until the stream
// ends or a stop is requested. Overflow drops are counted and logged, never
// escalated to a session failure.
func (w *worker) readLoop() Reason {
	buf := make([]byte, readBufSize)
	for {
		if w.stop.Load() {
			return ReasonNone
		}

		n, eof, err := w.client.ReadNonBlocking(buf)
		if n > 0 {
			w.bytesRx.Add(uint64(n))
			if dropped := w.m.ring.Push(buf[:n]); dropped > 0 {
				w.drops.Add(uint64(dropped))
				w.m.log.Debug("ring overflow", "session", w.id, "dropped", dropped)
			}
		}
		if eof {
			return ReasonRemoteClosed
		}
		if err != nil {
			w.m.log.Warn("read failed", "session", w.id, "err", err)
			return ReasonTransportError
		}
		if n == 0 {
			time.Sleep(w.m.poll)
		}
	}
}
