package wire_test

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/knowfox/smolweb/wire"
	"github.com/stretchr/testify/require"
)

// serveOnce accepts a single connection, hands the request line to respond
// and closes the connection when respond returns.
func serveOnce(t *testing.T, respond func(conn net.Conn, line string)) (host string, port int, lines <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	got := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		line, _ := bufio.NewReader(conn).ReadString('\n')
		got <- line
		respond(conn, line)
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port, got
}

func TestExchangeReadsUntilClose(t *testing.T) {
	host, port, lines := serveOnce(t, func(conn net.Conn, line string) {
		conn.Write([]byte("first\r\n"))
		conn.Write([]byte("second"))
	})

	var d wire.Dialer
	ctx := context.Background()
	conn, err := d.Dial(ctx, host, port)
	require.NoError(t, err)
	defer conn.Close()

	raw, err := d.Exchange(ctx, conn, "/hello")
	require.NoError(t, err)
	require.Equal(t, "first\r\nsecond", string(raw))
	require.Equal(t, "/hello\r\n", <-lines)
}

func TestExchangeEmptyLine(t *testing.T) {
	host, port, lines := serveOnce(t, func(conn net.Conn, line string) {})

	d := &wire.Dialer{}
	conn, err := d.Dial(context.Background(), host, port)
	require.NoError(t, err)
	defer conn.Close()

	raw, err := d.Exchange(context.Background(), conn, "")
	require.NoError(t, err)
	require.Empty(t, raw)
	require.Equal(t, "\r\n", <-lines)
}

func TestExchangeReadIdleTimeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	host, port, _ := serveOnce(t, func(conn net.Conn, line string) {
		conn.Write([]byte("partial"))
		<-release
	})

	d := &wire.Dialer{ReadIdleTimeout: 50 * time.Millisecond}
	conn, err := d.Dial(context.Background(), host, port)
	require.NoError(t, err)
	defer conn.Close()

	_, err = d.Exchange(context.Background(), conn, "")
	require.Error(t, err)
	require.True(t, errors.Is(err, wire.IOFailure))
}

func TestExchangeCancel(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	host, port, _ := serveOnce(t, func(conn net.Conn, line string) { <-release })

	d := &wire.Dialer{ReadIdleTimeout: -1}
	conn, err := d.Dial(context.Background(), host, port)
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = d.Exchange(ctx, conn, "")
	require.ErrorIs(t, err, wire.IOFailure)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExchangeRejectsLineBreaks(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	var d wire.Dialer
	_, err := d.Exchange(context.Background(), client, "user\r\nother")
	require.ErrorIs(t, err, wire.InvalidURL)
}

func TestDialErrorKinds(t *testing.T) {
	d := &wire.Dialer{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return nil, &net.OpError{Op: "dial", Net: network, Err: &net.DNSError{Err: "no such host", Name: "nowhere.invalid", IsNotFound: true}}
		},
	}
	_, err := d.Dial(context.Background(), "nowhere.invalid", 1965)
	require.ErrorIs(t, err, wire.AddressResolutionFailure)
	require.Contains(t, err.Error(), "nowhere.invalid:1965")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	_, err = (&wire.Dialer{}).Dial(context.Background(), "127.0.0.1", port)
	require.ErrorIs(t, err, wire.ConnectionFailure)
	require.Contains(t, err.Error(), "127.0.0.1:"+strconv.Itoa(port))
}

func TestDialAppliesConnectTimeout(t *testing.T) {
	var deadline time.Time
	d := &wire.Dialer{
		ConnectTimeout: time.Second,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			deadline, _ = ctx.Deadline()
			return nil, errors.New("refused")
		},
	}
	start := time.Now()
	_, err := d.Dial(context.Background(), "example.org", 70)
	require.ErrorIs(t, err, wire.ConnectionFailure)
	require.WithinDuration(t, start.Add(time.Second), deadline, 500*time.Millisecond)

	var nilDialer *wire.Dialer
	require.Equal(t, wire.DefaultConnectTimeout, nilDialer.Timeout())
}

func TestErrorMatchesKind(t *testing.T) {
	inner := wire.Errorf(wire.ConnectionFailure, errors.New("refused"), "TCP connection to %s failed", "host:1")
	outer := wire.Errorf(wire.InvalidURL, inner, "invalid URL %q", "x y")

	require.ErrorIs(t, outer, wire.InvalidURL)
	require.ErrorIs(t, outer, wire.ConnectionFailure)
	require.NotErrorIs(t, outer, wire.MissingHost)
	require.Equal(t, `invalid URL "x y": TCP connection to host:1 failed: refused`, outer.Error())
	require.Equal(t, "missing host", wire.MissingHost.Error())
}

func TestDecodeLossy(t *testing.T) {
	require.Equal(t, "Hello, world!", wire.DecodeLossy([]byte("Hello, world!")))

	got := wire.DecodeLossy([]byte("caf\xe9 ok"))
	require.Contains(t, got, "\uFFFD")
	require.Contains(t, got, "caf")
	require.Contains(t, got, " ok")
}

func TestDecodeCharset(t *testing.T) {
	require.Equal(t, "café", wire.DecodeCharset([]byte("caf\xe9"), "iso-8859-1"))
	require.Equal(t, "café", wire.DecodeCharset([]byte("café"), "UTF-8"))
	require.Contains(t, wire.DecodeCharset([]byte("caf\xe9"), "no-such-charset"), "\uFFFD")
}
