package tunnel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"peerchat/config"
	pcerr "peerchat/internal/errors"
	"peerchat/util"
)

// Gateway is an SSH connection to a jump host that forwards TCP
// streams on the connector's behalf.
type Gateway struct {
	config *Config
	logger *util.Logger

	mu     sync.RWMutex
	client *ssh.Client
	alive  bool
}

// NewGateway returns a Gateway that is ready to [Gateway.Open].
func NewGateway(cfg *Config, logger *util.Logger) *Gateway {
	if cfg.Port == 0 {
		cfg.Port = config.DefaultSSHPort
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = config.DefaultConnTimeout
	}
	return &Gateway{config: cfg, logger: logger}
}

// Open dials the gateway and completes the SSH handshake.  A cancelled
// ctx aborts both the TCP dial and the handshake.
func (g *Gateway) Open(ctx context.Context) error {
	cfg := g.config
	addr := cfg.Addr()

	auth, err := BuildAuthMethods(cfg)
	if err != nil {
		return pcerr.WrapSSH("auth", cfg.Host, cfg.Port, err)
	}
	verify, err := hostKeyCallback(cfg)
	if err != nil {
		return pcerr.WrapSSH("hostkey", cfg.Host, cfg.Port, err)
	}

	var keyErr error
	clientCfg := &ssh.ClientConfig{
		User: cfg.User,
		Auth: auth,
		HostKeyCallback: func(host string, remote net.Addr, key ssh.PublicKey) error {
			if err := verify(host, remote, key); err != nil {
				keyErr = err
				return err
			}
			return nil
		},
		Timeout: cfg.Timeout,
	}

	g.logger.Debug("SSH: dialing %s as %s", addr, cfg.User)
	dialer := net.Dialer{Timeout: cfg.Timeout}
	tcpConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return pcerr.Wrap("dial", addr, err)
	}

	// Bound the handshake by the context as well as the timeout.
	deadline := time.Now().Add(cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	tcpConn.SetDeadline(deadline) //nolint:errcheck
	stop := context.AfterFunc(ctx, func() { tcpConn.Close() })
	defer stop()

	sshConn, chans, reqs, err := ssh.NewClientConn(tcpConn, addr, clientCfg)
	if err != nil {
		tcpConn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return pcerr.WrapSSH("handshake", cfg.Host, cfg.Port, classifyHandshake(err, keyErr))
	}
	tcpConn.SetDeadline(time.Time{}) //nolint:errcheck

	client := ssh.NewClient(sshConn, chans, reqs)

	g.mu.Lock()
	g.client = client
	g.alive = true
	g.mu.Unlock()

	go g.monitor(client)
	return nil
}

// Dial asks the gateway to open a TCP stream to address.
func (g *Gateway) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	g.mu.RLock()
	client, alive := g.client, g.alive
	g.mu.RUnlock()

	if !alive || client == nil {
		return nil, pcerr.ErrNotConnected
	}

	g.logger.Debug("SSH: forwarding %s %s via %s", network, address, g.config.Addr())
	conn, err := client.DialContext(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("gateway dial %s: %w", address, err)
	}
	return conn, nil
}

// Close shuts the SSH connection down, which also ends every stream
// forwarded through it.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.alive = false
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}

// Alive reports whether the SSH connection is still up.
func (g *Gateway) Alive() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.alive
}

func (g *Gateway) monitor(client *ssh.Client) {
	err := client.Wait()

	g.mu.Lock()
	if g.client == client {
		g.alive = false
	}
	g.mu.Unlock()

	if err != nil && !errors.Is(err, net.ErrClosed) {
		g.logger.Debug("SSH gateway closed: %v", err)
	} else {
		g.logger.Debug("SSH gateway closed")
	}
}

// classifyHandshake maps a failed handshake onto the package sentinels.
func classifyHandshake(err, keyErr error) error {
	switch {
	case keyErr != nil:
		return fmt.Errorf("%w: %v", pcerr.ErrHostKeyMismatch, keyErr)
	case strings.Contains(err.Error(), "unable to authenticate"):
		return fmt.Errorf("%w: %v", pcerr.ErrAuthFailed, err)
	default:
		return err
	}
}
