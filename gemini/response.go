package gemini

import (
	"bytes"
	"fmt"
	"mime"
	"strings"

	"github.com/knowfox/smolweb/wire"
)

// Header is the status line that starts every Gemini response.
type Header struct {
	// Code is the status token exactly as received.
	Code string

	// Status is Code as a number, or 0 when Code is not two ASCII digits.
	Status StatusCode

	// Meta is the rest of the status line, its fields joined by single spaces.
	Meta string
}

// Response represents a successful response from a Gemini server.
type Response struct {
	Status StatusCode // e.g. 20

	// Meta supplied after status code. For a success it is the MIME type
	// of the body.
	Meta string

	// Body is the response body decoded to UTF-8. Undecodable bytes are
	// replaced rather than rejected.
	Body string
}

// MediaType parses Meta as a MIME type.
func (r *Response) MediaType() (string, map[string]string, error) {
	return mime.ParseMediaType(r.Meta)
}

// StatusError is returned for every response whose status is not a success.
type StatusError struct {
	Code   string
	Status StatusCode
	Meta   string
}

func (e *StatusError) Error() string {
	switch e.Status.Class() {
	case ClassRedirect:
		return fmt.Sprintf("Redirect (%s): %s", e.Code, e.Meta)
	case ClassTemporaryFailure:
		return fmt.Sprintf("Temporary failure (%s): %s", e.Code, e.Meta)
	case ClassPermanentFailure:
		return fmt.Sprintf("Permanent failure (%s): %s", e.Code, e.Meta)
	case ClassCertificateRequired:
		return fmt.Sprintf("Client certificate required (%s): %s", e.Code, e.Meta)
	}
	return fmt.Sprintf("Unknown status code: %s - %s", e.Code, e.Meta)
}

// Is allows matching against wire.ProtocolStatusFailure with errors.Is.
func (e *StatusError) Is(err error) bool {
	return err == wire.ProtocolStatusFailure
}

var crlf = []byte("\r\n")

// ParseResponse splits a complete response into header and body and
// classifies the status. Anything but a 2x status yields a *StatusError.
func ParseResponse(raw []byte) (*Response, error) {
	var line, body []byte
	if i := bytes.Index(raw, crlf); i >= 0 {
		line, body = raw[:i], raw[i+len(crlf):]
	} else {
		body = raw
	}

	header, err := ParseHeader(string(line))
	if err != nil {
		return nil, err
	}

	if header.Status.Class() != ClassSuccess {
		return nil, &StatusError{Code: header.Code, Status: header.Status, Meta: header.Meta}
	}

	res := &Response{Status: header.Status, Meta: header.Meta}
	charset := ""
	if _, params, err := res.MediaType(); err == nil {
		charset = params["charset"]
	}
	res.Body = wire.DecodeCharset(body, charset)
	return res, nil
}

// ParseHeader parses a status line without its CRLF.
func ParseHeader(line string) (Header, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Header{}, wire.Errorf(wire.MalformedHeader, nil, "Invalid status line format")
	}

	h := Header{
		Code: fields[0],
		Meta: strings.Join(fields[1:], " "),
	}
	if len(h.Code) == 2 && isDigit(h.Code[0]) && isDigit(h.Code[1]) {
		h.Status = StatusCode(int(h.Code[0]-'0')*10 + int(h.Code[1]-'0'))
	}
	return h, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
