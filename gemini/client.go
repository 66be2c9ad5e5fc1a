package gemini

import (
	"context"
	"crypto/tls"

	"github.com/knowfox/smolweb/wire"
)

type Client struct {
	// InsecureSkipVerify controls whether a client verifies the server's
	// certificate chain and host name. If InsecureSkipVerify is true, crypto/tls
	// accepts any certificate presented by the server and any host name in that
	// certificate. In this mode, TLS is susceptible to machine-in-the-middle
	// attacks unless custom verification is used. Most capsules use
	// self-signed certificates, so browsers commonly enable it.
	InsecureSkipVerify bool

	// Dialer opens the TCP connection. A nil Dialer uses the defaults.
	Dialer *wire.Dialer
}

// Fetch sends requestURL to the Gemini server at host:port and reads the
// response until the server closes the connection. requestURL is written
// verbatim; see NormalizeURL.
func (c Client) Fetch(ctx context.Context, host string, port int, requestURL string) (*Response, error) {
	conn, err := c.connect(ctx, host, port)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	raw, err := c.Dialer.Exchange(ctx, conn, requestURL)
	if err != nil {
		return nil, err
	}
	return ParseResponse(raw)
}

func (c Client) connect(ctx context.Context, host string, port int) (*tls.Conn, error) {
	raw, err := c.Dialer.Dial(ctx, host, port)
	if err != nil {
		return nil, err
	}

	conf := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: c.InsecureSkipVerify,
		ServerName:         host,
	}
	conn := tls.Client(raw, conf)

	hctx, cancel := context.WithTimeout(ctx, c.Dialer.Timeout())
	defer cancel()
	if err := conn.HandshakeContext(hctx); err != nil {
		raw.Close()
		return nil, wire.Errorf(wire.TLSHandshakeFailure, err, "TLS connection to %s failed", host)
	}
	return conn, nil
}
