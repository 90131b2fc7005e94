package transport

import (
	"context"
	"net"
	"sync"

	"peerchat/tunnel"
	"peerchat/util"
)

// SSHDialer reaches the peer through an SSH gateway.  The gateway
// connection is opened on the first Dial and torn down on Close.
type SSHDialer struct {
	gateway *tunnel.Gateway
	config  *tunnel.Config
	logger  *util.Logger

	mu   sync.Mutex
	open bool
}

// NewSSHDialer returns a dialer that forwards through the gateway
// described by cfg.  Nothing is dialed until the first Dial.
func NewSSHDialer(cfg *tunnel.Config, logger *util.Logger) *SSHDialer {
	return &SSHDialer{
		gateway: tunnel.NewGateway(cfg, logger),
		config:  cfg,
		logger:  logger,
	}
}

func (d *SSHDialer) connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.open && d.gateway.Alive() {
		return nil
	}

	d.logger.Verbose("opening SSH gateway %s@%s", d.config.User, d.config.Addr())
	if err := d.gateway.Open(ctx); err != nil {
		return err
	}
	d.open = true
	d.logger.Verbose("SSH gateway ready")
	return nil
}

// Dial opens a forwarded stream to address, opening the gateway first
// if needed.
func (d *SSHDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	if err := d.connect(ctx); err != nil {
		return nil, err
	}
	return d.gateway.Dial(ctx, network, address)
}

// Close tears down the gateway connection.
func (d *SSHDialer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return nil
	}
	d.open = false
	return d.gateway.Close()
}
