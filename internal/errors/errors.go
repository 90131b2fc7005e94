// Package errors provides domain-specific error types for peerchat.
//
// Setup failures carry a kind (could not bind vs. could not reach the
// peer) so the CLI can report them precisely; session-time failures
// carry the operation and address that failed.
package errors

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrSessionClosed   = errors.New("session closed")
	ErrUsage           = errors.New("usage error")
	ErrBind            = errors.New("could not bind/listen")
	ErrUnreachable     = errors.New("could not reach peer")
	ErrNoPeer          = errors.New("no peer connected")
	ErrNotConnected    = errors.New("not connected")
	ErrTimeout         = errors.New("operation timed out")
	ErrAuthFailed      = errors.New("authentication failed")
	ErrHostKeyMismatch = errors.New("host key mismatch")
)

// ── Structured error types ───────────────────────────────────────────

// SetupError is a failure while establishing the peer connection.
// Kind is ErrBind, ErrNoPeer or ErrUnreachable.
type SetupError struct {
	Kind error  // ErrBind, ErrNoPeer or ErrUnreachable
	Op   string // "listen", "accept", "connect"
	Addr string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("%v: %s %s: %v", e.Kind, e.Op, e.Addr, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *SetupError) Unwrap() []error { return []error{e.Kind, e.Err} }

// NetworkError represents a failure in a network operation.
type NetworkError struct {
	Op        string // operation: "read", "write", "dial"
	Addr      string // network address involved
	Err       error  // underlying error
	Retryable bool   // whether the caller should retry
}

func (e *NetworkError) Error() string {
	s := fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	if e.Retryable {
		s += " (retryable)"
	}
	return s
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SSHError represents an SSH-specific failure with host context.
type SSHError struct {
	Op   string // "handshake", "auth", "hostkey"
	Host string
	Port int
	Err  error
}

func (e *SSHError) Error() string {
	return fmt.Sprintf("ssh %s %s:%d: %v", e.Op, e.Host, e.Port, e.Err)
}

func (e *SSHError) Unwrap() error { return e.Err }

// ConfigError represents an invalid invocation or configuration value.
// Every ConfigError matches ErrUsage.
type ConfigError struct {
	Field   string      // flag or argument name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// Is reports whether target is ErrUsage.
func (e *ConfigError) Is(target error) bool { return target == ErrUsage }

// ── Constructors ─────────────────────────────────────────────────────

// Bind creates a SetupError for a listen or accept failure.
func Bind(op, addr string, err error) *SetupError {
	return &SetupError{Kind: ErrBind, Op: op, Addr: addr, Err: err}
}

// NoPeer creates a SetupError for a listener whose accept wait ran out.
// The socket was bound; nobody connected within wait.
func NoPeer(addr string, wait time.Duration) *SetupError {
	return &SetupError{Kind: ErrNoPeer, Op: "accept", Addr: addr, Err: fmt.Errorf("%w after %v", ErrTimeout, wait)}
}

// Unreachable creates a SetupError for a failed connect.
func Unreachable(addr string, err error) *SetupError {
	return &SetupError{Kind: ErrUnreachable, Op: "connect", Addr: addr, Err: err}
}

// Wrap creates a NetworkError, automatically detecting retryability
// from the underlying error.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{
		Op:        op,
		Addr:      addr,
		Err:       err,
		Retryable: classifyRetryable(err),
	}
}

// WrapSSH creates an SSHError.
func WrapSSH(op, host string, port int, err error) *SSHError {
	return &SSHError{Op: op, Host: host, Port: port, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Retryable
	}
	return classifyRetryable(err)
}

// IsRefused reports whether err is a refused connection, which for a
// connector usually means the listener has not started yet.
func IsRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}

// IsClosed reports whether err only says the stream was closed or
// reached its end.  These are normal termination signals for a session.
func IsClosed(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, net.ErrClosed) ||
		errors.Is(err, ErrSessionClosed) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET)
}

// classifyRetryable inspects standard library error types.
func classifyRetryable(err error) bool {
	if err == nil {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Temporary() //nolint:staticcheck // Temporary is deprecated but still useful
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() //nolint:staticcheck
	}
	return false
}
