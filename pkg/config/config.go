package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	ZoneMatchLongest = "longest"
	ZoneMatchFirst   = "first"
)

type Config struct {
	BaseURL      string        `env:"LINODE_API_URL" envDefault:"https://api.linode.com/v4"`
	Token        string        `env:"LINODE_TOKEN,unset"`
	Timeout      int           `env:"TIMEOUT" envDefault:"15"`
	RecordTTL    int           `env:"RECORD_TTL" envDefault:"300"`
	Resolver     string        `env:"DNS_RESOLVER" envDefault:"92.123.94.2:53"`
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"15s"`
	PollAttempts int           `env:"POLL_ATTEMPTS" envDefault:"80"`
	ZoneMatch    string        `env:"ZONE_MATCH" envDefault:"longest"`
	ListenAddr   string        `env:"LISTEN_ADDR" envDefault:":8080"`
	Auth         Auth          `envPrefix:"HTTPREQ_"`
	Debug        bool          `env:"DEBUG"`

	// TrustedProxies may set the client address through forwarding headers.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
	// AllowedDomains limits the domains served in serve mode. Subdomains of
	// an entry are included and "*" allows everything.
	AllowedDomains []string `env:"ALLOWED_DOMAINS" envSeparator:"," envDefault:"*"`
}

// Auth holds optional basic auth credentials for serve mode.
type Auth struct {
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD,unset"`
}

// Parse reads the configuration from the environment and applies defaults.
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings which every mode depends on.
func (c *Config) Validate() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, errors.New("LINODE_API_URL must not be empty"))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("invalid timeout %d", c.Timeout))
	}
	if c.PollInterval < 0 {
		errs = append(errs, fmt.Errorf("invalid poll interval %s", c.PollInterval))
	}
	if c.PollAttempts < 1 {
		errs = append(errs, fmt.Errorf("poll attempts must be at least 1, got %d", c.PollAttempts))
	}
	if c.ZoneMatch != ZoneMatchLongest && c.ZoneMatch != ZoneMatchFirst {
		errs = append(errs, fmt.Errorf("invalid zone match policy %q", c.ZoneMatch))
	}
	if c.Resolver == "" {
		errs = append(errs, errors.New("DNS_RESOLVER must not be empty"))
	}
	if (c.Auth.Username == "") != (c.Auth.Password == "") {
		errs = append(errs, errors.New("HTTPREQ_USERNAME and HTTPREQ_PASSWORD must be set together"))
	}
	for _, p := range c.TrustedProxies {
		if net.ParseIP(p) == nil {
			if _, _, err := net.ParseCIDR(p); err != nil {
				errs = append(errs, fmt.Errorf("invalid trusted proxy %q", p))
			}
		}
	}
	return errors.Join(errs...)
}

// RequireToken fails when no API token was supplied.
func (c *Config) RequireToken() error {
	if c.Token == "" {
		return errors.New("LINODE_TOKEN is not set")
	}
	return nil
}

// ResolverAddr returns the resolver address with the DNS port added when missing.
func (c *Config) ResolverAddr() string {
	if _, _, err := net.SplitHostPort(c.Resolver); err != nil {
		return net.JoinHostPort(c.Resolver, "53")
	}
	return c.Resolver
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
