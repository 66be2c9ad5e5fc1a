package wire

import "fmt"

// Kind classifies a navigation failure.
type Kind int

const (
	InvalidURL Kind = iota + 1
	UnsupportedScheme
	MissingHost
	AddressResolutionFailure
	ConnectionFailure
	TLSHandshakeFailure
	IOFailure
	ProtocolStatusFailure
	MalformedHeader
)

var kindNames = map[Kind]string{
	InvalidURL:               "invalid URL",
	UnsupportedScheme:        "unsupported scheme",
	MissingHost:              "missing host",
	AddressResolutionFailure: "address resolution failure",
	ConnectionFailure:        "connection failure",
	TLSHandshakeFailure:      "TLS handshake failure",
	IOFailure:                "I/O failure",
	ProtocolStatusFailure:    "protocol status failure",
	MalformedHeader:          "malformed header",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is implemented to allow an Error to match against a Kind using
// errors.Is.
func (k Kind) Error() string { return k.String() }

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func Errorf(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(err error) bool {
	k, ok := err.(Kind)
	return ok && k == e.Kind
}
