// Package gemini implements a Gemini protocol client and a minimal server.
package gemini

import (
	"bytes"
	"errors"
	"io"
	"runtime/debug"

	"github.com/rs/zerolog/log"
)

// StatusCode is Gemini status codes as defined in the Gemini spec.
type StatusCode int

// Lists Gemini related URI schemas.
const (
	SchemaGemini = "gemini"

	// Prefix starts every request URL sent to a Gemini server.
	Prefix = SchemaGemini + "://"

	DefaultPort = 1965
)

// Provides status codes.
const (
	StatusPlainInput        StatusCode = 10
	StatusSensitiveInput    StatusCode = 11
	StatusSuccess           StatusCode = 20
	StatusTemporaryRedirect StatusCode = 30
	StatusPermanentRedirect StatusCode = 31
	StatusUnspecified       StatusCode = 40
	StatusServerUnavalable  StatusCode = 41
	StatusCGIError          StatusCode = 42
	StatusProxyError        StatusCode = 43
	StatusSlowDown          StatusCode = 44
	StatusGeneralPermFail   StatusCode = 50
	StatusNotFound          StatusCode = 51
	StatusGone              StatusCode = 52
	StatusProxyRefused      StatusCode = 53
	StatusBadRequest        StatusCode = 59
	StatusCertRequired      StatusCode = 60
	StatusCertNotAuthorized StatusCode = 61
	StatusCertNotValid      StatusCode = 62
)

// Status classes, the leading digit of a status code.
const (
	ClassInput               = 1
	ClassSuccess             = 2
	ClassRedirect            = 3
	ClassTemporaryFailure    = 4
	ClassPermanentFailure    = 5
	ClassCertificateRequired = 6
)

// Class returns the leading digit of the status code.
func (s StatusCode) Class() int {
	return int(s) / 10
}

type ResponseWriter interface {
	WriteStatusMsg(status StatusCode, msg string) error
	WriteBody([]byte) (int, error)
}

// ServeGemini is the interface a struct need to implement to be able to handle Gemini requests
type Handler interface {
	ServeGemini(ResponseWriter, *Request)
}

type HandlerFunc func(ResponseWriter, *Request)

// ServeGemini calls f(w, r).
func (f HandlerFunc) ServeGemini(w ResponseWriter, r *Request) {
	f(w, r)
}

// SimplifyStatus simplify the response status by omiting the detailed second digit of the status code.
func SimplifyStatus(status int) int {
	return (status / 10) * 10
}

func NotFound(w ResponseWriter, req *Request) {
	w.WriteStatusMsg(StatusNotFound, "Not found")
}

func TrapPanic(next HandlerFunc) HandlerFunc {
	return func(w ResponseWriter, req *Request) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Str("url", req.URL.String()).
					Msg("Trapped panic in handler")
				w.WriteStatusMsg(StatusUnspecified, "Internal Server Error")
			}
		}()
		next(w, req)
	}
}

var errorRequestTooLong = errors.New("request exceeds 1024 length")

var errorBadRequest = errors.New("bad request")

// readLine reads a single CRLF terminated line, one byte at a time so that
// nothing past the line is consumed.
func readLine(conn io.Reader) ([]byte, error) {
	var line []byte
	delim := []byte("\r\n")
	// A small buffer is inefficient but the maximum length of the header is small so it's okay
	buf := make([]byte, 1)

	for {
		n, err := conn.Read(buf)
		if err != nil {
			return []byte{}, err
		}
		if n == 0 {
			continue
		}

		line = append(line, buf...)
		if bytes.HasSuffix(line, delim) {
			return line[:len(line)-len(delim)], nil
		}
		if len(line) > 1024+len(delim) {
			return []byte{}, errorRequestTooLong
		}
	}
}
