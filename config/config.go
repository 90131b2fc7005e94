// Package config defines the runtime configuration for peerchat and
// provides helpers for parsing ports and SSH gateway specifications.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	pcerr "peerchat/internal/errors"
)

// Role decides who waits and who dials.  It is resolved once from the
// positional arguments and never changes for the life of the process.
type Role int

const (
	// RoleListener binds a port and accepts exactly one peer.
	RoleListener Role = iota
	// RoleConnector dials a listening peer.
	RoleConnector
)

func (r Role) String() string {
	switch r {
	case RoleListener:
		return "listener"
	case RoleConnector:
		return "connector"
	default:
		return "unknown"
	}
}

// Config holds every tuneable for a single peerchat run.
type Config struct {
	// ── Connection ───────────────────────────────────────────────────
	Role            Role
	Host            string        // connector: peer host
	Port            int           // connector: peer port
	LocalPort       int           // listener: bind port (0 = ListenPort); connector: source port (0 = ephemeral)
	ListenPort      int           // listener-only port from PEERCHAT_PORT (0 = DefaultPort)
	Timeout         time.Duration // accept/connect wait (0 = indefinite)
	ConnectAttempts int           // connector: total dial attempts
	NoDNS           bool

	// ── SSH gateway ──────────────────────────────────────────────────
	TunnelSpec     string // raw user@host[:port] from -T
	TunnelEnabled  bool
	TunnelUser     string
	TunnelHost     string
	TunnelPort     int
	SSHKeyPath     string
	SSHPassword    bool // true → prompt interactively
	UseSSHAgent    bool
	StrictHostKey  bool
	KnownHostsPath string

	// ── Session ──────────────────────────────────────────────────────
	Prefix      string  // printed before every received line
	SendRate    float64 // max outbound lines per second (0 = unlimited)
	SendBurst   int
	MaxLineSize int

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
	Quiet   bool
	DryRun  bool
}

// Defaults returns a Config with every default applied.
func Defaults() *Config {
	return &Config{
		Role:            RoleListener,
		ConnectAttempts: DefaultConnectAttempts,
		Prefix:          DefaultPrefix,
		MaxLineSize:     DefaultMaxLineSize,
	}
}

// Verbosity folds the -v count and -q into a logger level.
func (c *Config) Verbosity() int {
	if c.Quiet {
		return 0
	}
	return DefaultVerbosity + c.Verbose
}

// ── Role resolution ──────────────────────────────────────────────────

// ResolveRole applies the positional arguments: none selects the
// listener, exactly two (host, port) select the connector, and any
// other shape is a usage error.  Nothing touches the network here.
func (c *Config) ResolveRole(args []string) error {
	switch len(args) {
	case 0:
		c.Role = RoleListener
		c.Host = ""
		c.Port = 0
		if c.LocalPort == 0 {
			c.LocalPort = c.ListenPort
		}
		if c.LocalPort == 0 {
			c.LocalPort = DefaultPort
		}
		return nil
	case 2:
		port, err := ParsePort(args[1])
		if err != nil {
			return &pcerr.ConfigError{
				Field:   "port",
				Value:   args[1],
				Message: err.Error(),
				Hint:    "the peer port must be a number between 1 and 65535",
			}
		}
		if strings.TrimSpace(args[0]) == "" {
			return &pcerr.ConfigError{
				Field:   "host",
				Message: "peer host must not be empty",
			}
		}
		c.Role = RoleConnector
		c.Host = args[0]
		c.Port = port
		return nil
	default:
		return &pcerr.ConfigError{
			Field:   "args",
			Value:   len(args),
			Message: "expected no arguments (listen) or <host> <port> (connect)",
			Hint:    "run with --help for usage",
		}
	}
}

// ── Port helpers ─────────────────────────────────────────────────────

// ParsePort accepts a decimal port in 1..65535.
func ParsePort(spec string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(spec))
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", spec)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return port, nil
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe matches [user@]host[:port].
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host, and port from a string such as
// "admin@bastion.example.com:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q – expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	if host == "" {
		return "", "", 0, fmt.Errorf("tunnel host is required")
	}
	return user, host, port, nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	switch c.Role {
	case RoleListener:
		if c.LocalPort < 1 || c.LocalPort > 65535 {
			return &pcerr.ConfigError{
				Field:   "port",
				Value:   c.LocalPort,
				Message: "listen port out of range 1-65535",
				Hint:    fmt.Sprintf("omit -p to use the default port %d", DefaultPort),
			}
		}
		if c.TunnelEnabled {
			return &pcerr.ConfigError{
				Field:   "tunnel",
				Value:   c.TunnelSpec,
				Message: "the listener cannot be reached through an SSH gateway",
				Hint:    "use -T on the connecting side instead",
			}
		}
	case RoleConnector:
		if c.Host == "" {
			return &pcerr.ConfigError{Field: "host", Message: "peer host is required in connect mode"}
		}
		if c.Port < 1 || c.Port > 65535 {
			return &pcerr.ConfigError{
				Field:   "port",
				Value:   c.Port,
				Message: "peer port out of range 1-65535",
			}
		}
		if c.LocalPort < 0 || c.LocalPort > 65535 {
			return &pcerr.ConfigError{
				Field:   "port",
				Value:   c.LocalPort,
				Message: "source port out of range 0-65535",
			}
		}
	default:
		return &pcerr.ConfigError{Field: "role", Value: int(c.Role), Message: "unknown role"}
	}

	if c.Timeout < 0 {
		return &pcerr.ConfigError{Field: "timeout", Value: c.Timeout, Message: "must not be negative"}
	}
	if c.ConnectAttempts < 1 {
		return &pcerr.ConfigError{
			Field:   "retry",
			Value:   c.ConnectAttempts,
			Message: "must be at least 1",
			Hint:    "--retry counts total connect attempts; 1 disables retries",
		}
	}
	if c.SendRate < 0 {
		return &pcerr.ConfigError{Field: "rate", Value: c.SendRate, Message: "must not be negative"}
	}
	if c.SendRate > 0 && c.SendBurst < 0 {
		return &pcerr.ConfigError{Field: "burst", Value: c.SendBurst, Message: "must not be negative"}
	}
	if c.MaxLineSize < 1 {
		return &pcerr.ConfigError{Field: "max-line", Value: c.MaxLineSize, Message: "must be positive"}
	}
	if c.TunnelEnabled && c.TunnelHost == "" {
		return &pcerr.ConfigError{Field: "tunnel", Message: "tunnel host is required"}
	}
	return nil
}
