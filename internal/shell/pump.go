package shell

import (
	"io"
	"sync"
)

// pumpChunk is the read size of the pump goroutine.
const pumpChunk = 4096

// pumpDepth bounds how many unread chunks the pump buffers before it stops
// reading from the transport. Downstream loss policy lives in the ring
// channel, not here.
const pumpDepth = 64

// pump turns a blocking reader into the non-blocking read the worker loop
// needs. One goroutine owns all blocking reads on r and queues chunks; the
// consumer takes them without ever touching the transport.
type pump struct {
	data chan []byte
	stop chan struct{}

	mu      sync.Mutex
	pending []byte
	eof     bool
	err     error

	stopOnce sync.Once
}

func startPump(r io.Reader) *pump {
	p := &pump{
		data: make(chan []byte, pumpDepth),
		stop: make(chan struct{}),
	}
	go p.run(r)
	return p
}

func (p *pump) run(r io.Reader) {
	defer close(p.data)
	buf := make([]byte, pumpChunk)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case p.data <- chunk:
			case <-p.stop:
				return
			}
		}
		if err != nil {
			p.mu.Lock()
			if err == io.EOF {
				p.eof = true
			} else {
				p.err = err
			}
			p.mu.Unlock()
			return
		}
	}
}

// readNonBlocking copies queued bytes into dst without blocking. Once the
// queue is exhausted after the reader goroutine has exited, it reports the
// stored end state.
func (p *pump) readNonBlocking(dst []byte) (int, bool, error) {
	n := 0
	for n < len(dst) {
		p.mu.Lock()
		if len(p.pending) > 0 {
			c := copy(dst[n:], p.pending)
			p.pending = p.pending[c:]
			n += c
			p.mu.Unlock()
			continue
		}
		p.mu.Unlock()

		select {
		case chunk, ok := <-p.data:
			if !ok {
				if n > 0 {
					// Deliver what we have; the end state
					// is reported on the next call.
					return n, false, nil
				}
				p.mu.Lock()
				eof, err := p.eof, p.err
				p.mu.Unlock()
				return 0, eof, err
			}
			c := copy(dst[n:], chunk)
			n += c
			if c < len(chunk) {
				p.mu.Lock()
				p.pending = append(p.pending, chunk[c:]...)
				p.mu.Unlock()
			}
		default:
			return n, false, nil
		}
	}
	return n, false, nil
}

// close releases the reader goroutine if it is blocked handing off a chunk.
// The underlying reader must be closed separately to unblock a blocking
// Read.
func (p *pump) close() {
	p.stopOnce.Do(func() { close(p.stop) })
}
