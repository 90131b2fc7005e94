package core

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	pcerr "peerchat/internal/errors"
	"peerchat/internal/metrics"
	"peerchat/internal/retry"
	"peerchat/internal/transport"
	"peerchat/util"
)

// failingDialer always fails with err and counts attempts.
type failingDialer struct {
	err    error
	dials  atomic.Int32
	closed atomic.Bool
}

func (d *failingDialer) Dial(context.Context, string, string) (net.Conn, error) {
	d.dials.Add(1)
	return nil, d.err
}

func (d *failingDialer) Close() error {
	d.closed.Store(true)
	return nil
}

func newConnect(d transport.Dialer, addr string, attempts int) *ConnectMode {
	return &ConnectMode{
		Chat:    Chat{Logger: util.NewLogger(0), Metrics: metrics.New()},
		Dialer:  d,
		Address: addr,
		Backoff: retry.Attempts(attempts, 10*time.Millisecond, 50*time.Millisecond),
	}
}

// TestConnectMode_Refused verifies a dead port is an unreachable peer.
func TestConnectMode_Refused(t *testing.T) {
	port, err := util.FindFreePort()
	if err != nil {
		t.Fatal(err)
	}

	m := newConnect(&transport.TCPDialer{Timeout: 2 * time.Second}, util.FormatAddr("127.0.0.1", port), 1)
	_, err = m.Establish(context.Background())
	if !errors.Is(err, pcerr.ErrUnreachable) {
		t.Fatalf("err = %v, want ErrUnreachable", err)
	}
	if errors.Is(err, pcerr.ErrBind) {
		t.Error("connect failure must not look like a bind failure")
	}
	if got := m.Metrics.ConnectAttempts(); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

// TestConnectMode_RetriesUntilListenerUp starts the listener after the
// connector has begun retrying.
func TestConnectMode_RetriesUntilListenerUp(t *testing.T) {
	port, err := util.FindFreePort()
	if err != nil {
		t.Fatal(err)
	}
	addr := util.FormatAddr("127.0.0.1", port)

	accepted := make(chan struct{})
	go func() {
		time.Sleep(150 * time.Millisecond)
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return
		}
		defer ln.Close()
		if c, err := ln.Accept(); err == nil {
			close(accepted)
			c.Close()
		}
	}()

	m := newConnect(&transport.TCPDialer{Timeout: 2 * time.Second}, addr, 50)
	conn, err := m.Establish(context.Background())
	if err != nil {
		t.Fatalf("Establish: %v", err)
	}
	conn.Close()

	select {
	case <-accepted:
	case <-time.After(3 * time.Second):
		t.Fatal("listener never saw the connection")
	}
	if m.Metrics.ConnectAttempts() < 2 {
		t.Errorf("attempts = %d, want a retry", m.Metrics.ConnectAttempts())
	}
}

// TestConnectMode_PermanentErrorNotRetried verifies that only refused
// or temporary failures are retried.
func TestConnectMode_PermanentErrorNotRetried(t *testing.T) {
	d := &failingDialer{err: errors.New("no route to gateway")}
	m := newConnect(d, "10.0.0.1:12345", 5)

	_, err := m.Establish(context.Background())
	if !errors.Is(err, pcerr.ErrUnreachable) {
		t.Fatalf("err = %v, want ErrUnreachable", err)
	}
	if d.dials.Load() != 1 {
		t.Errorf("dials = %d, want 1", d.dials.Load())
	}
}

// TestConnectMode_RunClosesDialer verifies the dialer is released even
// when no connection was made, and a cancelled connect is not an error.
func TestConnectMode_RunClosesDialer(t *testing.T) {
	d := &failingDialer{err: errors.New("unreachable")}
	m := newConnect(d, "10.0.0.1:12345", 1)

	if err := m.Run(context.Background()); !errors.Is(err, pcerr.ErrUnreachable) {
		t.Fatalf("Run = %v, want ErrUnreachable", err)
	}
	if !d.closed.Load() {
		t.Error("dialer was not closed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := newConnect(&failingDialer{err: context.Canceled}, "10.0.0.1:1", 3).Run(ctx); err != nil {
		t.Errorf("Run with cancelled ctx = %v, want nil", err)
	}
}
