package smolweb_test

import (
	"testing"

	"github.com/knowfox/smolweb"
	"github.com/knowfox/smolweb/wire"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	for _, tc := range []struct {
		in  string
		out smolweb.Target
	}{
		{"gemini://example.org", smolweb.Target{Scheme: "gemini", Host: "example.org", Port: 1965, Selector: "gemini://example.org/"}},
		{"gemini://example.org:1966/docs/", smolweb.Target{Scheme: "gemini", Host: "example.org", Port: 1966, Selector: "gemini://example.org:1966/docs/"}},
		{"example.org", smolweb.Target{Scheme: "gemini", Host: "example.org", Port: 1965, Selector: "gemini://example.org/"}},
		{"example.gmi", smolweb.Target{Scheme: "gemini", Host: "example.gmi", Port: 1965, Selector: "gemini://example.gmi/"}},
		{"  gemini://example.org/page.gmi \n", smolweb.Target{Scheme: "gemini", Host: "example.org", Port: 1965, Selector: "gemini://example.org/page.gmi"}},
		{"gemini://bücher.example/", smolweb.Target{Scheme: "gemini", Host: "xn--bcher-kva.example", Port: 1965, Selector: "gemini://bücher.example/"}},
		{"gemini://[::1]:1965/", smolweb.Target{Scheme: "gemini", Host: "::1", Port: 1965, Selector: "gemini://[::1]:1965/"}},
		{"gopher://example.org/1/menu", smolweb.Target{Scheme: "gopher", Host: "example.org", Port: 70, Selector: "/1/menu"}},
		{"gopher://example.org:7070", smolweb.Target{Scheme: "gopher", Host: "example.org", Port: 7070, Selector: ""}},
		{"finger://user@example.org", smolweb.Target{Scheme: "finger", Host: "example.org", Port: 79, Selector: "user"}},
		{"finger://example.org/bob", smolweb.Target{Scheme: "finger", Host: "example.org", Port: 79, Selector: "bob"}},
		{"finger://example.org//bob", smolweb.Target{Scheme: "finger", Host: "example.org", Port: 79, Selector: "/bob"}},
		{"finger://example.org", smolweb.Target{Scheme: "finger", Host: "example.org", Port: 79, Selector: ""}},
		{"finger://@example.org/alice", smolweb.Target{Scheme: "finger", Host: "example.org", Port: 79, Selector: "alice"}},
	} {
		t.Run(tc.in, func(t *testing.T) {
			got, err := smolweb.ParseTarget(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.out, got)
		})
	}
}

func TestParseTargetErrors(t *testing.T) {
	for _, tc := range []struct {
		in   string
		kind wire.Kind
	}{
		{"https://example.org/", wire.UnsupportedScheme},
		{"localhost:1965", wire.UnsupportedScheme},
		{"gemini:opaque", wire.MissingHost},
		{"gopher:///1/menu", wire.MissingHost},
		{"what is gemini", wire.InvalidURL},
		{"", wire.InvalidURL},
	} {
		t.Run(tc.in, func(t *testing.T) {
			_, err := smolweb.ParseTarget(tc.in)
			require.ErrorIs(t, err, tc.kind)
		})
	}
}

func TestStartPage(t *testing.T) {
	require.Equal(t, "gemini://gemini.circumlunar.space/", smolweb.StartPage())
}
