// Package wire holds the connection handling shared by the line-oriented
// protocols: one request line, then everything the server sends until it
// closes the connection.
package wire

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"
)

const (
	DefaultConnectTimeout  = 10 * time.Second
	DefaultReadIdleTimeout = 30 * time.Second
)

// Dialer opens one connection per request. The zero value and a nil
// *Dialer are both usable and apply the default timeouts.
type Dialer struct {
	// ConnectTimeout bounds TCP connection establishment.
	ConnectTimeout time.Duration

	// ReadIdleTimeout is the longest the reader waits for the next chunk of
	// a response. Zero means DefaultReadIdleTimeout, a negative value waits
	// forever.
	ReadIdleTimeout time.Duration

	DialContext func(ctx context.Context, network, addr string) (net.Conn, error)
}

func (d *Dialer) Timeout() time.Duration {
	if d == nil || d.ConnectTimeout <= 0 {
		return DefaultConnectTimeout
	}
	return d.ConnectTimeout
}

func (d *Dialer) idleTimeout() time.Duration {
	if d == nil || d.ReadIdleTimeout == 0 {
		return DefaultReadIdleTimeout
	}
	return d.ReadIdleTimeout
}

// Dial connects to host:port over TCP.
func (d *Dialer) Dial(ctx context.Context, host string, port int) (net.Conn, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	var dial func(ctx context.Context, network, addr string) (net.Conn, error)
	if d != nil {
		dial = d.DialContext
	}
	if dial == nil {
		var dialer net.Dialer
		dial = dialer.DialContext
	}

	dctx, cancel := context.WithTimeout(ctx, d.Timeout())
	defer cancel()

	conn, err := dial(dctx, "tcp", addr)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			return nil, Errorf(AddressResolutionFailure, err, "failed to resolve %s", addr)
		}
		return nil, Errorf(ConnectionFailure, err, "TCP connection to %s failed", addr)
	}
	return conn, nil
}
