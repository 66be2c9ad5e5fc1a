package gemini

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// NormalizeURL turns rawurl into the exact request line sent to a server.
// A URL already starting with "gemini://" is kept verbatim, anything else
// is rebuilt behind that prefix. An empty path becomes "/".
func NormalizeURL(rawurl string) string {
	if !strings.HasPrefix(rawurl, Prefix) {
		if i := strings.Index(rawurl, "://"); i >= 0 {
			rawurl = rawurl[i+len("://"):]
		}
		rawurl = Prefix + rawurl
	}

	rest := rawurl[len(Prefix):]
	i := strings.IndexAny(rest, "/?#")
	switch {
	case i < 0:
		return rawurl + "/"
	case rest[i] != '/':
		return Prefix + rest[:i] + "/" + rest[i:]
	}
	return rawurl
}

// SearchURL builds the request URL for a query against a search capsule.
// The query is percent-encoded with spaces as %20.
func SearchURL(host string, port int, query string) string {
	authority := host
	if port != DefaultPort {
		authority += ":" + strconv.Itoa(port)
	}
	escaped := strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
	return Prefix + authority + "/search?" + escaped
}

// Request contains the data of the client request received by a Server.
type Request struct {
	URL *url.URL

	conn *tls.Conn
}

func (r *Request) Reset(conn *tls.Conn, rawurl string) error {
	r.conn = conn
	var err error
	r.URL, err = url.ParseRequestURI(rawurl)
	if err != nil {
		return fmt.Errorf("failed to parse request: %v, error: %v", rawurl, err)
	}
	if r.URL.Scheme == "" {
		return fmt.Errorf("request is missing scheme: %v", rawurl)
	}
	if r.URL.Scheme != SchemaGemini {
		return fmt.Errorf("unsupported request scheme: %v", rawurl)
	}
	r.resetGeminiURL()
	return nil
}

func (r *Request) resetGeminiURL() {
	// Gemini specific handling
	if r.URL.Path == "" {
		r.URL.Path = "/"
	}
}

func (r *Request) Certificate() *x509.Certificate {
	if r.conn == nil {
		return nil
	}
	if len(r.conn.ConnectionState().PeerCertificates) > 0 {
		return r.conn.ConnectionState().PeerCertificates[0]
	}
	return nil
}

func dateToStr(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 36)
}

func (r *Request) UserName() []string {
	cert := r.Certificate()
	if cert == nil {
		return []string{""}
	}
	return []string{cert.Subject.CommonName, cert.SerialNumber.String(), dateToStr(cert.NotBefore), dateToStr(cert.NotAfter)}
}
