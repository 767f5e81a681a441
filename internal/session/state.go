// Package session owns the remote-shell session lifecycle: a manager-facing
// state machine and the background worker that performs the blocking
// transport calls for one connection attempt.
package session

import "errors"

// State is the session lifecycle state. The happy path is Idle ->
// Connecting -> Authenticating -> Ready -> Closing -> Idle; any state can fall
// to Failed, after which the manager returns to Idle on its own.
type State int32

const (
	Idle State = iota
	Connecting
	Authenticating
	Ready
	Closing
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Connecting:
		return "CONNECTING"
	case Authenticating:
		return "AUTHENTICATING"
	case Ready:
		return "READY"
	case Closing:
		return "CLOSING"
	case Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Reason classifies why a session ended or could not be established.
type Reason int32

const (
	ReasonNone Reason = iota
	// ReasonNetworkUnavailable - no configured wireless network could be
	// associated. Produced by the connectivity policy, not the worker.
	ReasonNetworkUnavailable
	// ReasonAuthenticationFailed - the server rejected the credential.
	ReasonAuthenticationFailed
	// ReasonProtocolNegotiationFailed - the pty or shell request was
	// rejected after authentication succeeded.
	ReasonProtocolNegotiationFailed
	// ReasonRemoteClosed - the remote ended the stream cleanly.
	ReasonRemoteClosed
	// ReasonTransportError - a dial, read or write failed.
	ReasonTransportError
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNetworkUnavailable:
		return "network unavailable"
	case ReasonAuthenticationFailed:
		return "authentication failed"
	case ReasonProtocolNegotiationFailed:
		return "protocol negotiation failed"
	case ReasonRemoteClosed:
		return "remote closed"
	case ReasonTransportError:
		return "transport error"
	default:
		return "unknown"
	}
}

// Errors returned to callers of Manager operations.
var (
	// ErrBusy - Connect was called while a session is already in flight.
	ErrBusy = errors.New("session: already connecting or connected")
	// ErrNotReady - SendBytes was called outside the READY state.
	ErrNotReady = errors.New("session: not ready")
)
