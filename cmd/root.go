// Package cmd wires up the CLI flags and dispatches to the core modes.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"peerchat/config"
	"peerchat/internal/core"
	pcerr "peerchat/internal/errors"
	"peerchat/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X peerchat/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the listener or connector.
func Execute(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg := config.Defaults()
	config.LoadFromEnv(cfg)

	fs := flag.NewFlagSet("peerchat", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// ── connection ───────────────────────────────────────────────
	fs.IntVarP(&cfg.LocalPort, "port", "p", cfg.LocalPort,
		fmt.Sprintf("Listen port (default %d, or PEERCHAT_PORT); source port when connecting", config.DefaultPort))
	timeoutSec := int(cfg.Timeout / time.Second)
	fs.IntVarP(&timeoutSec, "timeout", "w", timeoutSec, "Seconds to wait for the peer (0 = forever)")
	fs.IntVar(&cfg.ConnectAttempts, "retry", cfg.ConnectAttempts, "Total connect attempts (connector)")
	fs.BoolVarP(&cfg.NoDNS, "no-dns", "n", cfg.NoDNS, "Numeric-only, no DNS resolution")

	// ── session ──────────────────────────────────────────────────
	fs.StringVar(&cfg.Prefix, "prefix", cfg.Prefix, "Prefix for lines received from the peer")
	fs.Float64Var(&cfg.SendRate, "rate", cfg.SendRate, "Max outbound lines per second (0 = unlimited)")
	fs.IntVar(&cfg.SendBurst, "burst", cfg.SendBurst, "Lines allowed in a burst with --rate")
	fs.IntVar(&cfg.MaxLineSize, "max-line", cfg.MaxLineSize, "Longest accepted line in bytes")

	// ── SSH gateway ──────────────────────────────────────────────
	fs.StringVarP(&cfg.TunnelSpec, "tunnel", "T", cfg.TunnelSpec, "Reach the peer via SSH gateway [user@]host[:port]")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", cfg.SSHPassword, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVarP(&cfg.Quiet, "quiet", "q", false, "Only report errors")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Resolve and validate, then exit")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(stderr, fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		printUsage(stderr, fs)
		return fmt.Errorf("%w: %v", pcerr.ErrUsage, err)
	}

	if showHelp {
		printUsage(stdout, fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "peerchat %s\n", version)
		return nil
	}

	cfg.Timeout = time.Duration(timeoutSec) * time.Second

	// ── role, tunnel, validation ─────────────────────────────────
	if err := configure(cfg, fs.Args()); err != nil {
		if errors.Is(err, pcerr.ErrUsage) {
			printUsage(stderr, fs)
		}
		return err
	}

	logger := util.NewLogger(cfg.Verbosity())
	logger.SetOutput(stderr)

	mode, err := core.Build(cfg, logger)
	if err != nil {
		if errors.Is(err, pcerr.ErrUsage) {
			printUsage(stderr, fs)
		}
		return err
	}

	if cfg.DryRun {
		printPlan(stdout, cfg)
		return nil
	}
	return mode.Run(ctx)
}

// configure resolves the role from the positional arguments, expands
// the tunnel spec and validates the result.  No socket is touched.
func configure(cfg *config.Config, positional []string) error {
	if err := cfg.ResolveRole(positional); err != nil {
		return err
	}

	if cfg.TunnelSpec != "" {
		user, host, port, err := config.ParseTunnelSpec(cfg.TunnelSpec)
		if err != nil {
			return &pcerr.ConfigError{Field: "tunnel", Value: cfg.TunnelSpec, Message: err.Error()}
		}
		cfg.TunnelEnabled = true
		cfg.TunnelUser = user
		cfg.TunnelHost = host
		cfg.TunnelPort = port
	}

	return cfg.Validate()
}

// ── helpers ──────────────────────────────────────────────────────────

func printPlan(w io.Writer, cfg *config.Config) {
	switch cfg.Role {
	case config.RoleListener:
		fmt.Fprintf(w, "role: %s\nlisten: %s\n", cfg.Role, util.BindAddr(cfg.LocalPort))
	case config.RoleConnector:
		fmt.Fprintf(w, "role: %s\npeer: %s\n", cfg.Role, util.FormatAddr(cfg.Host, cfg.Port))
		if cfg.LocalPort > 0 {
			fmt.Fprintf(w, "source: %s\n", util.BindAddr(cfg.LocalPort))
		}
		if cfg.TunnelEnabled {
			fmt.Fprintf(w, "gateway: %s@%s:%d\n", cfg.TunnelUser, cfg.TunnelHost, cfg.TunnelPort)
		}
	}
	if cfg.Timeout > 0 {
		fmt.Fprintf(w, "timeout: %v\n", cfg.Timeout)
	}
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `peerchat %s

Direct line-by-line text chat between two peers.

Usage:
  peerchat [options]                  Listen for one peer (port %d)
  peerchat [options] <host> <port>    Connect to a listening peer

Type a line and press Enter to send it.  'exit' or 'quit' ends the chat.

Options:
`, version, config.DefaultPort)
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintf(w, `
Examples:
  peerchat                                Wait for a peer on port %d
  peerchat 192.168.1.20 %d             Connect to that peer
  peerchat -p 9000                        Listen on port 9000
  peerchat --retry 10 peer.lan 9000       Keep trying until the peer listens
  peerchat -T admin@bastion 10.0.0.5 %d   Reach the peer via SSH gateway
`, config.DefaultPort, config.DefaultPort, config.DefaultPort)
}
