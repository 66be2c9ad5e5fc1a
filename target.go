package smolweb

import (
	"net"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"

	"github.com/knowfox/smolweb/finger"
	"github.com/knowfox/smolweb/gemini"
	"github.com/knowfox/smolweb/gopher"
	"github.com/knowfox/smolweb/wire"
)

const (
	SchemeGemini = gemini.SchemaGemini
	SchemeGopher = "gopher"
	SchemeFinger = "finger"
)

var defaultPorts = map[string]int{
	SchemeGemini: gemini.DefaultPort,
	SchemeGopher: gopher.DefaultPort,
	SchemeFinger: finger.DefaultPort,
}

// Target is a parsed navigation request, ready to be handed to one of the
// protocol clients.
type Target struct {
	Scheme string
	Host   string
	Port   int

	// Selector is the request line: the normalised URL for Gemini, the path
	// for Gopher and the username for Finger.
	Selector string
}

// parseStep tries to read input as an absolute URL. It returns the string
// that was parsed alongside the URL.
type parseStep struct {
	name  string
	parse func(input string) (*url.URL, string, bool)
}

var parseChain = []parseStep{
	{"direct", func(input string) (*url.URL, string, bool) {
		u, ok := parseAbsolute(input)
		return u, input, ok
	}},
	{"gemini-prefixed", func(input string) (*url.URL, string, bool) {
		s := gemini.Prefix + input
		u, ok := parseAbsolute(s)
		if ok && u.Hostname() == "" {
			return nil, "", false
		}
		return u, s, ok
	}},
}

func parseAbsolute(s string) (*url.URL, bool) {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return nil, false
	}
	if p := u.Port(); p != "" {
		if _, err := strconv.ParseUint(p, 10, 16); err != nil {
			return nil, false
		}
	}
	return u, true
}

// ParseTarget resolves input the same way Navigate does, without any I/O.
// Input that is not a URL even behind a "gemini://" prefix yields an
// InvalidURL error; Navigate sends such input to the search capsule.
func ParseTarget(input string) (Target, error) {
	input = strings.TrimSpace(input)
	for _, step := range parseChain {
		u, parsed, ok := step.parse(input)
		if !ok {
			continue
		}
		return targetFromURL(u, parsed)
	}
	return Target{}, wire.Errorf(wire.InvalidURL, nil, "Invalid URL format: %q", input)
}

func targetFromURL(u *url.URL, parsed string) (Target, error) {
	port, ok := defaultPorts[u.Scheme]
	if !ok {
		return Target{}, wire.Errorf(wire.UnsupportedScheme, nil,
			"Only gemini://, gopher://, and finger:// URLs are supported, got %s://", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return Target{}, wire.Errorf(wire.MissingHost, nil, "Invalid host in URL %q", parsed)
	}
	if p := u.Port(); p != "" {
		// parseAbsolute already rejected ports outside 0-65535.
		port, _ = strconv.Atoi(p)
	}

	t := Target{
		Scheme: u.Scheme,
		Host:   asciiHost(host),
		Port:   port,
	}
	switch u.Scheme {
	case SchemeGemini:
		t.Selector = gemini.NormalizeURL(parsed)
	case SchemeGopher:
		t.Selector = u.Path
	case SchemeFinger:
		if u.User != nil && u.User.Username() != "" {
			t.Selector = u.User.Username()
		} else {
			t.Selector = strings.TrimPrefix(u.Path, "/")
		}
	}
	return t, nil
}

// asciiHost converts an internationalised host name to its punycode form
// for dialing. Hosts that do not convert are used as they are.
func asciiHost(host string) string {
	if net.ParseIP(host) != nil || isASCII(host) {
		return host
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return host
	}
	return ascii
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func searchTarget(cfg *Config, query string) Target {
	return Target{
		Scheme:   SchemeGemini,
		Host:     cfg.SearchHost,
		Port:     cfg.SearchPort,
		Selector: gemini.SearchURL(cfg.SearchHost, cfg.SearchPort, query),
	}
}
