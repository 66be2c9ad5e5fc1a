package gemini

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"

	"github.com/rs/zerolog/log"
)

// ListenAndServe create a TCP server on the specified address and pass
// new connections to the given handler.
// Each request is handled in a separate goroutine.
func ListenAndServe(addr, certFile, keyFile string, handler Handler) error {
	if addr == "" {
		addr = "127.0.0.1:1965"
	}

	cer, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return fmt.Errorf("failed to load certificates: %v", err)
	}

	listener, err := Listen(addr, cer)
	if err != nil {
		return err
	}
	defer listener.Close()

	return Serve(listener, handler)
}

// Listen opens a TLS listener presenting cer. Client certificates are
// requested but not verified.
func Listen(addr string, cer tls.Certificate) (net.Listener, error) {
	config := &tls.Config{
		Certificates:       []tls.Certificate{cer},
		InsecureSkipVerify: true,
		ClientAuth:         tls.RequestClientCert,
		MinVersion:         tls.VersionTLS12,
	}
	ln, err := tls.Listen("tcp", addr, config)
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %v", err)
	}

	return ln, nil
}

// Serve accepts connections from a listener created by Listen until the
// listener is closed.
func Serve(listener net.Listener, handler Handler) error {
	for {
		conn, err := listener.Accept()
		if errors.Is(err, net.ErrClosed) {
			return nil
		}
		if err != nil {
			log.Warn().Err(err).Msg("Failed to accept connection")
			continue
		}
		tlsConn, ok := conn.(*tls.Conn)
		if !ok {
			conn.Close()
			return errors.New("listener does not produce TLS connections")
		}
		go handleConnection(tlsConn, handler)
	}
}

func handleConnection(conn *tls.Conn, handler Handler) {
	defer conn.Close()
	request, err := getRequest(conn)
	if err != nil {
		log.Debug().Err(err).Stringer("remote", conn.RemoteAddr()).Msg("Dropping bad request")
		r := &response{conn: conn}
		switch {
		case errors.Is(err, errorRequestTooLong):
			r.WriteStatusMsg(StatusBadRequest, "Request too long")
		case errors.Is(err, errorBadRequest):
			r.WriteStatusMsg(StatusBadRequest, "Bad request")
		}
		return
	}
	r := &response{conn: conn}

	handler.ServeGemini(r, request)
}

func getRequest(conn *tls.Conn) (*Request, error) {
	line, err := readLine(conn)
	if err != nil {
		if errors.Is(err, errorRequestTooLong) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read request: %v", err)
	}
	log.Debug().Bytes("request", line).Msg("Raw request")
	r := &Request{}
	if err := r.Reset(conn, string(line)); err != nil {
		return nil, fmt.Errorf("%w: %v", errorBadRequest, err)
	}
	return r, nil
}

type response struct {
	headerWritten bool
	conn          net.Conn
	err           error
}

var _ ResponseWriter = (*response)(nil)

func (w *response) WriteStatusMsg(status StatusCode, msg string) error {
	if w.headerWritten {
		return errors.New("status has been sent already")
	}
	_, w.err = fmt.Fprintf(w.conn, "%d %s\r\n", status, msg)
	if w.err != nil {
		w.err = fmt.Errorf("failed to write response status message: %v", w.err)
		return w.err
	}
	w.headerWritten = true
	return nil
}

func (w *response) WriteBody(body []byte) (int, error) {
	if !w.headerWritten {
		return 0, errors.New("status message is not written")
	}
	if w.err != nil {
		return 0, w.err
	}
	var written int
	written, w.err = w.conn.Write(body)
	if w.err != nil {
		w.err = fmt.Errorf("failed to write response body: %v", w.err)
	}
	return written, w.err
}
