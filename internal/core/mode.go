// Package core is the Connection Establisher.  It turns a resolved
// Config into a Mode: a listener that waits for exactly one peer, or a
// connector that dials one.  Either way the result is a single
// connected stream handed to a duplex session.
//
// Architecture layers (bottom → top):
//
//	transport  →  session  →  core  →  cmd (CLI)
package core

import (
	"context"
	"net"
)

// Mode is one complete run of the program for a given role: establish
// the stream, chat over it, tear it down.
type Mode interface {
	Run(ctx context.Context) error
}

// Establisher produces the connected stream for a role.  It is a
// one-shot, blocking call made before any session exists.
type Establisher interface {
	Establish(ctx context.Context) (net.Conn, error)
}

var (
	_ Establisher = (*ListenMode)(nil)
	_ Establisher = (*ConnectMode)(nil)
)
