package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags and environment variable loading.

const (
	// DefaultPort is the well-known listener port.  A connector must
	// be given the real peer's port explicitly.
	DefaultPort = 12345

	// DefaultPrefix marks lines received from the peer.
	DefaultPrefix = "Peer: "

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// DefaultConnTimeout bounds the SSH gateway handshake.  Plain TCP
	// accept/connect have no timeout unless -w is given.
	DefaultConnTimeout = 30 * time.Second

	// DefaultMaxLineSize caps a single received message (64 KiB).
	DefaultMaxLineSize = 64 * 1024

	// DefaultConnectAttempts is a single connect with no retries.
	DefaultConnectAttempts = 1

	// DefaultRetryDelay is the first backoff delay between connect
	// attempts when --retry is used.
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay caps the exponential connect backoff.
	DefaultMaxRetryDelay = 10 * time.Second

	// DefaultVerbosity shows status lines (connected, disconnected).
	DefaultVerbosity = 1
)

// QuitWords are the local control messages that end a session.  They
// are matched case-insensitively and never sent to the peer.
var QuitWords = []string{"exit", "quit"} //nolint:gochecknoglobals
