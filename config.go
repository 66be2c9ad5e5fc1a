package smolweb

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/knowfox/smolweb/gemini"
	"github.com/knowfox/smolweb/wire"
)

const (
	DefaultSearchHost = "kennedy.gemi.dev"
	DefaultSearchPort = gemini.DefaultPort
	DefaultStartPage  = "gemini://gemini.circumlunar.space/"
)

// Config controls how a Navigator connects and where it falls back to.
type Config struct {
	// SearchHost receives queries for input that is not a usable URL, and
	// for Gemini URLs that could not be fetched.
	SearchHost string `yaml:"search_host"`
	SearchPort int    `yaml:"search_port"`

	StartPage string `yaml:"start_page"`

	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	ReadIdleTimeout time.Duration `yaml:"read_idle_timeout"`

	// InsecureSkipVerify disables Gemini certificate and host name checks.
	// Unset means true: capsules overwhelmingly use self-signed
	// certificates.
	InsecureSkipVerify *bool `yaml:"insecure_skip_verify"`
}

func (c *Config) WithDefaults() *Config {
	if c == nil {
		c = &Config{}
	}
	if strings.TrimSpace(c.SearchHost) == "" {
		c.SearchHost = DefaultSearchHost
	}
	if c.SearchPort <= 0 {
		c.SearchPort = DefaultSearchPort
	}
	if strings.TrimSpace(c.StartPage) == "" {
		c.StartPage = DefaultStartPage
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = wire.DefaultConnectTimeout
	}
	if c.ReadIdleTimeout == 0 {
		c.ReadIdleTimeout = wire.DefaultReadIdleTimeout
	}
	if c.InsecureSkipVerify == nil {
		skip := true
		c.InsecureSkipVerify = &skip
	}
	return c
}

// resolved returns a copy of c with defaults applied, leaving c untouched so
// a Config can be shared between concurrent navigations.
func (c *Config) resolved() *Config {
	var cp Config
	if c != nil {
		cp = *c
	}
	return cp.WithDefaults()
}

func (c *Config) dialer() *wire.Dialer {
	return &wire.Dialer{
		ConnectTimeout:  c.ConnectTimeout,
		ReadIdleTimeout: c.ReadIdleTimeout,
	}
}

// LoadConfig reads a YAML config file and applies defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg.WithDefaults(), nil
}
