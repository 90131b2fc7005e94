package core

import (
	"context"
	"net"
	"time"

	"peerchat/config"
	pcerr "peerchat/internal/errors"
	"peerchat/internal/retry"
	"peerchat/internal/transport"
)

// ConnectMode dials one listening peer.  Only the initial dial may be
// retried; a session that drops is never re-established.
type ConnectMode struct {
	Chat
	Dialer  transport.Dialer
	Address string
	Backoff *retry.Backoff // nil means a single attempt
}

// Run dials the peer and chats with it.  The dialer is closed when Run
// returns.
func (m *ConnectMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()

	conn, err := m.Establish(ctx)
	if err != nil {
		if ctx.Err() != nil {
			m.Logger.Info("connect cancelled; shutting down")
			return nil
		}
		return err
	}
	return m.chat(ctx, conn)
}

// Establish connects to the peer, retrying refused or temporary
// failures when a Backoff allows more than one attempt.
func (m *ConnectMode) Establish(ctx context.Context) (net.Conn, error) {
	b := m.Backoff
	if b == nil {
		b = retry.Attempts(1, config.DefaultRetryDelay, config.DefaultMaxRetryDelay)
	}
	if b.OnRetry == nil {
		b.OnRetry = func(attempt int, err error, wait time.Duration) {
			m.Logger.Verbose("attempt %d: %v (retrying in %v)", attempt, err, wait.Round(time.Millisecond))
		}
	}

	m.Logger.Verbose("connecting to %s", m.Address)

	var conn net.Conn
	err := b.Do(ctx, func(attempt int) error {
		m.Metrics.ConnectAttempt()
		c, err := m.Dialer.Dial(ctx, "tcp", m.Address)
		if err != nil {
			if ctx.Err() != nil {
				return retry.Permanent(ctx.Err())
			}
			if pcerr.IsRefused(err) || pcerr.IsRetryable(err) {
				return err
			}
			return retry.Permanent(err)
		}
		conn = c
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		m.Metrics.RecordError(err.Error())
		return nil, pcerr.Unreachable(m.Address, err)
	}
	return conn, nil
}
