// Package transport opens the connector's outbound stream.  A Dialer
// only decides how the bytes reach the listening peer (directly over
// TCP, or forwarded by an SSH gateway); what runs over the stream is
// the session's business.
package transport

import (
	"context"
	"net"
)

// Dialer opens outbound stream connections.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases any long-lived resources held by the dialer
	// (e.g. an SSH connection).  Stateless dialers return nil.
	Close() error
}
