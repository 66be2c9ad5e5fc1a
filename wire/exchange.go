package wire

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"
)

const readChunk = 4096

// Exchange writes line followed by CRLF to conn and reads until the peer
// closes the connection. There is no other framing, so the connection is
// never reused; callers close it when Exchange returns.
//
// Cancelling ctx closes conn.
func (d *Dialer) Exchange(ctx context.Context, conn net.Conn, line string) ([]byte, error) {
	if strings.ContainsAny(line, "\r\n") {
		return nil, Errorf(InvalidURL, nil, "request %q contains a line break", line)
	}

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if _, err := conn.Write([]byte(line + "\r\n")); err != nil {
		return nil, Errorf(IOFailure, ctxErr(ctx, err), "failed to send request")
	}

	idle := d.idleTimeout()
	var out bytes.Buffer
	buf := make([]byte, readChunk)
	for {
		if idle > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(idle)); err != nil {
				return nil, Errorf(IOFailure, ctxErr(ctx, err), "failed to read response")
			}
		}
		n, err := conn.Read(buf)
		out.Write(buf[:n])
		if errors.Is(err, io.EOF) {
			return out.Bytes(), nil
		}
		if err != nil {
			return nil, Errorf(IOFailure, ctxErr(ctx, err), "failed to read response")
		}
	}
}

// ctxErr prefers the context's error once it is done, since the I/O error
// is then only a symptom of the close.
func ctxErr(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	return err
}
