// Package gopher fetches documents and menus from Gopher servers.
package gopher

import (
	"context"

	"github.com/knowfox/smolweb/wire"
)

const DefaultPort = 70

type Client struct {
	Dialer *wire.Dialer
}

// Fetch sends selector to host:port and returns everything the server
// writes before closing the connection. An empty selector asks for the
// root menu. Gopher has no status line, so any complete read succeeds.
func (c Client) Fetch(ctx context.Context, host string, port int, selector string) (string, error) {
	conn, err := c.Dialer.Dial(ctx, host, port)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	raw, err := c.Dialer.Exchange(ctx, conn, selector)
	if err != nil {
		return "", err
	}
	return wire.DecodeLossy(raw), nil
}
