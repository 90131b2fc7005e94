package session

import "runtime"

// State is the lifecycle phase of a Session.  It only moves forward:
// Active → Closing → Closed.
type State int32

const (
	StateActive State = iota
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Reason records which path ended a session.
type Reason int32

const (
	ReasonNone        Reason = iota
	ReasonPeerHangup         // remote end-of-stream or reset
	ReasonLocalQuit          // quit word or explicit Close
	ReasonInputClosed        // local input exhausted
	ReasonReadError          // receive failed
	ReasonWriteError         // send failed
	ReasonCancelled          // context cancelled (signal)
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonPeerHangup:
		return "peer disconnected"
	case ReasonLocalQuit:
		return "local quit"
	case ReasonInputClosed:
		return "input closed"
	case ReasonReadError:
		return "read error"
	case ReasonWriteError:
		return "write error"
	case ReasonCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Remote reports whether the session was ended from the peer's side.
func (r Reason) Remote() bool {
	return r == ReasonPeerHangup || r == ReasonReadError
}

// lineEnding terminates every outbound message.
var lineEnding = func() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}()
