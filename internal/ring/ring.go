// Package ring implements the bounded byte channel that bridges the session
// worker to the UI loop. It is a single-producer/single-consumer ring: the
// worker pushes received shell output, the foreground tick drains it.
package ring

import "sync"

// DefaultCapacity is sized for a couple of full screens of terminal output
// between ticks.
const DefaultCapacity = 8192

// Channel is a fixed-capacity FIFO byte channel. When a push would overflow,
// the newest incoming bytes are dropped; bytes already buffered are never
// displaced. One byte of capacity is sacrificed to distinguish full from
// empty, so a Channel built with capacity C holds at most C-1 bytes.
//
// Push is safe from exactly one producer and Drain from exactly one consumer;
// the two may run concurrently.
type Channel struct {
	mu    sync.Mutex
	buf   []byte
	head  int // next write position
	tail  int // next read position
	drops uint64
}

// New returns a Channel able to hold capacity-1 bytes. Capacities below 2
// are raised to DefaultCapacity.
func New(capacity int) *Channel {
	if capacity < 2 {
		capacity = DefaultCapacity
	}
	return &Channel{buf: make([]byte, capacity)}
}

// Push appends p to the channel in FIFO order. It never blocks and never
// grows the buffer: whatever does not fit is discarded from the tail of p.
// The return value is the number of bytes dropped (0 when everything fit).
func (c *Channel) Push(p []byte) int {
	if len(p) == 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	free := c.freeLocked()
	dropped := 0
	if len(p) > free {
		dropped = len(p) - free
		p = p[:free]
	}
	for _, b := range p {
		c.buf[c.head] = b
		c.head = (c.head + 1) % len(c.buf)
	}
	c.drops += uint64(dropped)
	return dropped
}

// Drain copies up to len(dst) of the oldest unread bytes into dst and
// returns the number copied, possibly 0. It never blocks.
func (c *Channel) Drain(dst []byte) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drainLocked(dst)
}

// TryDrain is Drain except that it gives up immediately when the producer
// holds the lock, returning ok=false. The foreground tick uses it so a
// drain can never stall the frame; a missed drain is retried next tick.
func (c *Channel) TryDrain(dst []byte) (n int, ok bool) {
	if !c.mu.TryLock() {
		return 0, false
	}
	defer c.mu.Unlock()
	return c.drainLocked(dst), true
}

func (c *Channel) drainLocked(dst []byte) int {
	n := 0
	for n < len(dst) && c.tail != c.head {
		dst[n] = c.buf[c.tail]
		c.tail = (c.tail + 1) % len(c.buf)
		n++
	}
	return n
}

// Len reports the number of unread bytes currently buffered.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lenLocked()
}

// Cap reports the usable capacity (one less than the allocation).
func (c *Channel) Cap() int {
	return len(c.buf) - 1
}

// Drops reports the cumulative number of bytes discarded by Push since the
// channel was created.
func (c *Channel) Drops() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drops
}

func (c *Channel) lenLocked() int {
	if c.head >= c.tail {
		return c.head - c.tail
	}
	return len(c.buf) - c.tail + c.head
}

func (c *Channel) freeLocked() int {
	return len(c.buf) - 1 - c.lenLocked()
}
