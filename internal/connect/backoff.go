package connect

import "time"

// Backoff tracks the reconnection delay schedule: the first retry waits the
// initial delay, each consecutive failure doubles it up to the cap, and any
// success resets it.
type Backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
	fails   int
}

// NewBackoff builds a Backoff. Non-positive arguments fall back to 800ms
// initial / 5s cap, the firmware defaults.
func NewBackoff(initial, max time.Duration) *Backoff {
	if initial <= 0 {
		initial = 800 * time.Millisecond
	}
	if max < initial {
		max = 5 * time.Second
		if max < initial {
			max = initial
		}
	}
	return &Backoff{initial: initial, max: max, current: initial}
}

// Delay returns the delay to apply before the next attempt.
func (b *Backoff) Delay() time.Duration {
	return b.current
}

// Failure records a failed attempt, doubling the next delay up to the cap.
func (b *Backoff) Failure() {
	b.fails++
	next := b.current * 2
	if next > b.max {
		next = b.max
	}
	b.current = next
}

// Success resets the schedule to the initial delay.
func (b *Backoff) Success() {
	b.fails = 0
	b.current = b.initial
}

// Failures reports the consecutive failure count since the last success.
func (b *Backoff) Failures() int {
	return b.fails
}
