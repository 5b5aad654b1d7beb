package config

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/router"
)

// Config holds runtime settings for the sessionkeeper client.
//
// Units: all durations are time.Duration values.
type Config struct {
	ServerURL         string        `env:"SERVER_URL"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT"`
	ExpiryLeeway      time.Duration `env:"EXPIRY_LEEWAY"`
	ExpiryWarning     time.Duration `env:"EXPIRY_WARNING"`
	SignedOutRoute    string        `env:"SIGNED_OUT_ROUTE"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME"`
	SessionCookie     string        `env:"SESSION_COOKIE"`
	BearerToken       string        `env:"BEARER_TOKEN"`
	LogLevel          string        `env:"LOG_LEVEL"`
	LogFormat         string        `env:"LOG_FORMAT"`
	OTelEndpoint      string        `env:"OTEL_ENDPOINT"`
	OTelEnabled       bool          `env:"OTEL_ENABLED"`
	OTelServiceName   string        `env:"OTEL_SERVICE_NAME"`
	OTelSampleRatio   float64       `env:"OTEL_SAMPLE_RATIO"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8084"
	c.RequestTimeout = 10 * time.Second
	c.ExpiryLeeway = time.Minute
	c.ExpiryWarning = time.Hour
	c.SignedOutRoute = "/signed-out"
	c.SessionCookieName = "q_session"
	c.SessionCookie = ""
	c.BearerToken = ""
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.OTelEndpoint = ""
	c.OTelEnabled = true
	c.OTelServiceName = "sessionkeeper"
	c.OTelSampleRatio = 1
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the JSON file at path (if non-empty) and from SESSIONKEEPER_* environment
// variables. Command-line flags are applied afterwards by the caller via
// Flags.Apply. Later sources take precedence over earlier ones.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

var ErrInvalidConfig = errors.New("invalid config")

// Validate checks the values that would otherwise fail later at request time.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: server url %q must be an absolute http(s) url", ErrInvalidConfig, c.ServerURL)
	}
	if !strings.HasPrefix(c.SignedOutRoute, "/") {
		return fmt.Errorf("%w: signed-out route %q must start with /", ErrInvalidConfig, c.SignedOutRoute)
	}
	if path.Clean(c.SignedOutRoute) == router.Root {
		return fmt.Errorf("%w: signed-out route must not be the home route", ErrInvalidConfig)
	}
	if c.OTelSampleRatio < 0 || c.OTelSampleRatio > 1 {
		return fmt.Errorf("%w: otel sample ratio %v must be within [0, 1]", ErrInvalidConfig, c.OTelSampleRatio)
	}
	if c.RequestTimeout < 0 || c.ExpiryLeeway < 0 || c.ExpiryWarning < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	}
	return nil
}
