// Package smolweb fetches plaintext from the small internet: Gemini, Gopher
// and Finger. Navigate accepts anything a user might type into an address
// bar, from a complete URL to a bare host name or a search query.
package smolweb

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/knowfox/smolweb/finger"
	"github.com/knowfox/smolweb/gemini"
	"github.com/knowfox/smolweb/gopher"
	"github.com/knowfox/smolweb/wire"
)

// GeminiFetcher is implemented by gemini.Client.
type GeminiFetcher interface {
	Fetch(ctx context.Context, host string, port int, requestURL string) (*gemini.Response, error)
}

// TextFetcher is implemented by gopher.Client and finger.Client.
type TextFetcher interface {
	Fetch(ctx context.Context, host string, port int, line string) (string, error)
}

// Page is the content retrieved by a navigation.
type Page struct {
	// URL is the request that produced the page; for Gemini this is the
	// exact URL sent, which is the search URL after a fallback.
	URL    string
	Scheme string

	// Status and Meta are only set for Gemini.
	Status gemini.StatusCode
	Meta   string

	Body string
}

// String renders the page for display. Gemini pages are prefixed with their
// status line.
func (p *Page) String() string {
	if p.Scheme == SchemeGemini {
		return fmt.Sprintf("%d %s\n%s", p.Status, p.Meta, p.Body)
	}
	return p.Body
}

// Navigator resolves input to a target and fetches it. The zero value is
// not usable; use NewNavigator.
type Navigator struct {
	Config *Config
	Gemini GeminiFetcher
	Gopher TextFetcher
	Finger TextFetcher
	Log    zerolog.Logger
}

// NewNavigator builds a Navigator with real protocol clients. cfg is copied
// and may be nil.
func NewNavigator(cfg *Config) *Navigator {
	cfg = cfg.resolved()
	dialer := cfg.dialer()
	return &Navigator{
		Config: cfg,
		Gemini: gemini.Client{InsecureSkipVerify: *cfg.InsecureSkipVerify, Dialer: dialer},
		Gopher: gopher.Client{Dialer: dialer},
		Finger: finger.Client{Dialer: dialer},
		Log:    zerolog.Nop(),
	}
}

var defaultNavigator = NewNavigator(nil)

// Navigate fetches url with the default configuration and returns the
// rendered page. The default configuration accepts any Gemini server
// certificate; use a Navigator with Config.InsecureSkipVerify set to false
// to verify them.
func Navigate(ctx context.Context, url string) (string, error) {
	return defaultNavigator.Navigate(ctx, url)
}

// StartPage is the page a browser opens with.
func StartPage() string {
	return DefaultStartPage
}

func (n *Navigator) Navigate(ctx context.Context, url string) (string, error) {
	page, err := n.Resolve(ctx, url)
	if err != nil {
		return "", err
	}
	return page.String(), nil
}

// plan is the ordered list of fetch attempts for one input. The first
// success wins; when all fail the last failure is reported.
type plan struct {
	attempts []Target

	// unparsed marks input that was not a URL at all and went straight to
	// search.
	unparsed bool
}

func (n *Navigator) plan(input string) (plan, error) {
	cfg := n.Config.resolved()
	target, err := ParseTarget(input)
	switch {
	case err == nil:
	case errors.Is(err, wire.InvalidURL):
		return plan{attempts: []Target{searchTarget(cfg, input)}, unparsed: true}, nil
	default:
		return plan{}, err
	}

	p := plan{attempts: []Target{target}}
	if target.Scheme == SchemeGemini {
		p.attempts = append(p.attempts, searchTarget(cfg, input))
	}
	return p, nil
}

// Resolve fetches url and returns the page. See the package documentation
// for the input accepted.
func (n *Navigator) Resolve(ctx context.Context, url string) (*Page, error) {
	log := n.logger(ctx).With().
		Str("navigation_id", xid.New().String()).
		Str("input", url).
		Logger()

	p, err := n.plan(url)
	if err != nil {
		log.Debug().Err(err).Msg("Rejected navigation input")
		return nil, err
	}
	if p.unparsed {
		log.Info().Msg("Input is not a URL, searching instead")
	}

	var lastErr error
	for i, target := range p.attempts {
		if i > 0 {
			log.Info().Err(lastErr).Str("fallback", target.Selector).Msg("Fetch failed, falling back to search")
		}
		log.Debug().
			Str("scheme", target.Scheme).
			Str("host", target.Host).
			Int("port", target.Port).
			Str("selector", target.Selector).
			Msg("Fetching")

		page, err := n.fetch(ctx, target)
		if err == nil {
			return page, nil
		}
		lastErr = err
	}

	log.Debug().Err(lastErr).Msg("Navigation failed")
	if p.unparsed {
		return nil, wire.Errorf(wire.InvalidURL, lastErr, "Invalid URL format: %q", url)
	}
	return nil, fmt.Errorf("Failed to fetch %s: %w", url, lastErr)
}

func (n *Navigator) fetch(ctx context.Context, t Target) (*Page, error) {
	page := &Page{URL: t.Selector, Scheme: t.Scheme}
	switch t.Scheme {
	case SchemeGemini:
		res, err := n.Gemini.Fetch(ctx, t.Host, t.Port, t.Selector)
		if err != nil {
			return nil, err
		}
		page.Status, page.Meta, page.Body = res.Status, res.Meta, res.Body
	case SchemeGopher:
		body, err := n.Gopher.Fetch(ctx, t.Host, t.Port, t.Selector)
		if err != nil {
			return nil, err
		}
		page.URL = "gopher://" + net.JoinHostPort(t.Host, strconv.Itoa(t.Port)) + t.Selector
		page.Body = body
	case SchemeFinger:
		body, err := n.Finger.Fetch(ctx, t.Host, t.Port, t.Selector)
		if err != nil {
			return nil, err
		}
		page.URL = "finger://" + net.JoinHostPort(t.Host, strconv.Itoa(t.Port)) + "/" + t.Selector
		page.Body = body
	default:
		return nil, wire.Errorf(wire.UnsupportedScheme, nil, "no client for scheme %q", t.Scheme)
	}
	return page, nil
}

// logger returns the logger from the context if available, otherwise the
// Navigator's own.
func (n *Navigator) logger(ctx context.Context) *zerolog.Logger {
	if ctxLog := zerolog.Ctx(ctx); ctxLog != nil && ctxLog.GetLevel() != zerolog.Disabled {
		return ctxLog
	}
	return &n.Log
}
