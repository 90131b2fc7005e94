package core

import (
	"context"
	"errors"
	"net"
	"time"

	pcerr "peerchat/internal/errors"
)

// ListenMode waits for exactly one peer.  The listening socket is
// closed as soon as Accept returns, so a second connector is refused.
type ListenMode struct {
	Chat
	Address string        // ":port"
	Timeout time.Duration // 0 waits until the context is cancelled

	// bound, if set, receives the listening address (tests use ":0").
	bound func(net.Addr)
}

// Run waits for the peer and chats with it.  Cancelling ctx while no
// peer has arrived is a normal exit.
func (m *ListenMode) Run(ctx context.Context) error {
	conn, err := m.Establish(ctx)
	if err != nil {
		if ctx.Err() != nil {
			m.Logger.Info("no peer connected; shutting down")
			return nil
		}
		return err
	}
	return m.chat(ctx, conn)
}

// Establish binds the listening socket and performs one accept.
func (m *ListenMode) Establish(ctx context.Context) (net.Conn, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", m.Address)
	if err != nil {
		return nil, pcerr.Bind("listen", m.Address, err)
	}
	defer ln.Close()

	m.Logger.Info("listening on %s, waiting for a peer", ln.Addr())
	if m.bound != nil {
		m.bound(ln.Addr())
	}

	acceptCtx := ctx
	if m.Timeout > 0 {
		var cancel context.CancelFunc
		acceptCtx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}

	// Closing the listener is what unblocks Accept.
	stop := context.AfterFunc(acceptCtx, func() { ln.Close() })
	defer stop()

	m.Metrics.ConnectAttempt()
	conn, err := ln.Accept()
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.Is(acceptCtx.Err(), context.DeadlineExceeded):
			return nil, pcerr.NoPeer(ln.Addr().String(), m.Timeout)
		default:
			return nil, pcerr.Bind("accept", ln.Addr().String(), err)
		}
	}
	return conn, nil
}
