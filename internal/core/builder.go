package core

import (
	"os"

	"golang.org/x/term"

	"peerchat/config"
	pcerr "peerchat/internal/errors"
	"peerchat/internal/metrics"
	"peerchat/internal/retry"
	"peerchat/internal/session"
	"peerchat/internal/transport"
	"peerchat/tunnel"
	"peerchat/util"
)

// Build constructs the Mode for the configured role.  cfg must already
// have a resolved role and have passed Validate.
func Build(cfg *config.Config, logger *util.Logger) (Mode, error) {
	chat := buildChat(cfg, logger)

	switch cfg.Role {
	case config.RoleListener:
		return buildListen(cfg, chat), nil
	case config.RoleConnector:
		return buildConnect(cfg, chat)
	default:
		return nil, &pcerr.ConfigError{Field: "role", Value: int(cfg.Role), Message: "unknown role"}
	}
}

// ── mode builders ────────────────────────────────────────────────────

func buildListen(cfg *config.Config, chat Chat) *ListenMode {
	return &ListenMode{
		Chat:    chat,
		Address: util.BindAddr(cfg.LocalPort),
		Timeout: cfg.Timeout,
	}
}

func buildConnect(cfg *config.Config, chat Chat) (*ConnectMode, error) {
	address, err := util.ResolveAddr(cfg.Host, cfg.Port, cfg.NoDNS)
	if err != nil {
		return nil, &pcerr.ConfigError{
			Field:   "no-dns",
			Value:   cfg.Host,
			Message: err.Error(),
			Hint:    "drop -n to allow host name lookups",
		}
	}

	return &ConnectMode{
		Chat:    chat,
		Dialer:  buildDialer(cfg, chat.Logger),
		Address: address,
		Backoff: retry.Attempts(cfg.ConnectAttempts, config.DefaultRetryDelay, config.DefaultMaxRetryDelay),
	}, nil
}

// ── shared helpers ───────────────────────────────────────────────────

func buildChat(cfg *config.Config, logger *util.Logger) Chat {
	return Chat{
		Session: session.Options{
			Prefix:      cfg.Prefix,
			MaxLineSize: cfg.MaxLineSize,
			SendRate:    cfg.SendRate,
			SendBurst:   cfg.SendBurst,
			QuitWords:   config.QuitWords,
		},
		Logger:      logger,
		Metrics:     metrics.New(),
		Interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
}

// buildDialer creates the right transport.Dialer for the given config.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if cfg.TunnelEnabled {
		return transport.NewSSHDialer(&tunnel.Config{
			User:          cfg.TunnelUser,
			Host:          cfg.TunnelHost,
			Port:          cfg.TunnelPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
			Timeout:       cfg.Timeout,
		}, logger)
	}

	return &transport.TCPDialer{
		Timeout:   cfg.Timeout,
		LocalPort: cfg.LocalPort,
	}
}
