// Package finger queries Finger (RFC 1288) servers.
package finger

import (
	"context"

	"github.com/knowfox/smolweb/wire"
)

const DefaultPort = 79

type Client struct {
	Dialer *wire.Dialer
}

// Fetch asks host:port about username. An empty username requests the
// server's default listing, usually every logged in user.
func (c Client) Fetch(ctx context.Context, host string, port int, username string) (string, error) {
	conn, err := c.Dialer.Dial(ctx, host, port)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	raw, err := c.Dialer.Exchange(ctx, conn, username)
	if err != nil {
		return "", err
	}
	return wire.DecodeLossy(raw), nil
}
