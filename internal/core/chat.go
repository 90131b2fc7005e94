package core

import (
	"context"
	"io"
	"net"
	"os"

	"peerchat/internal/metrics"
	"peerchat/internal/session"
	"peerchat/util"
)

// connectedHint is shown once the stream is up and stdin is a terminal.
const connectedHint = "You are connected. Type a message and press Enter; 'exit' or 'quit' leaves."

// Chat is the part of a Mode shared by both roles: everything needed
// to run a session once a stream exists.
type Chat struct {
	Session     session.Options
	Logger      *util.Logger
	Metrics     *metrics.Collector
	Interactive bool // stdin is a terminal

	// Stdin/Stdout default to os.Stdin/os.Stdout when nil.
	// Override in tests for deterministic I/O.
	Stdin  io.Reader
	Stdout io.Writer
}

func (c *Chat) stdin() io.Reader {
	if c.Stdin != nil {
		return c.Stdin
	}
	return os.Stdin
}

func (c *Chat) stdout() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stdout
}

// chat runs one session over conn and reports how it ended.
func (c *Chat) chat(ctx context.Context, conn net.Conn) error {
	opts := c.Session
	opts.Output = c.stdout()
	opts.Logger = c.Logger
	opts.Metrics = c.Metrics

	sess := session.New(conn, opts)
	defer sess.Close()

	c.Logger.Info("connection established with peer %s", sess.RemoteAddr())
	if c.Interactive {
		c.Logger.Info(connectedHint)
	}

	err := sess.Run(ctx, c.stdin())

	switch reason := sess.Reason(); reason {
	case session.ReasonPeerHangup, session.ReasonReadError, session.ReasonWriteError:
		c.Logger.Info("peer disconnected")
	case session.ReasonCancelled:
		c.Logger.Info("interrupted")
	default:
		c.Logger.Verbose("session ended: %s", reason)
	}
	if cause := sess.Err(); cause != nil {
		c.Logger.Verbose("cause: %v", cause)
	}
	c.Logger.Info("shutting down")
	if c.Logger.Enabled(util.LogVerbose) {
		c.Logger.Verbose("metrics: %s", c.Metrics.JSON())
	}
	return err
}
