package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds runtime settings for the client core.
type Config struct {
	// Environment selects between the development and production base URL.
	Environment string

	DevHost     string
	DevPort     int
	ProdBaseURL string
	// APIBaseURL, when set, wins over the environment-derived URL.
	APIBaseURL string

	RealtimePath string

	RequestTimeout time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration

	ReconnectBaseDelay   time.Duration
	MaxReconnectAttempts int
	HeartbeatInterval    time.Duration

	CacheTTL            time.Duration
	MaxQueueRetries     int
	OnlineCheckInterval time.Duration

	DatabasePath   string
	KeyringService string
	MetricsAddr    string
}

// LoadDefaults populates c with the documented defaults.
func (c *Config) LoadDefaults() {
	c.Environment = EnvDevelopment
	c.DevHost = "192.168.1.100"
	c.DevPort = 8000
	c.ProdBaseURL = "https://api.tradesmarket.app/api"
	c.APIBaseURL = ""
	c.RealtimePath = "/ws/notifications/"

	c.RequestTimeout = 15 * time.Second
	c.MaxRetries = 3
	c.RetryBaseDelay = time.Second

	c.ReconnectBaseDelay = 3 * time.Second
	c.MaxReconnectAttempts = 5
	c.HeartbeatInterval = 30 * time.Second

	c.CacheTTL = 24 * time.Hour
	c.MaxQueueRetries = 3
	c.OnlineCheckInterval = 3 * time.Second

	c.DatabasePath = "marketclient.db"
	c.KeyringService = "marketclient"
	c.MetricsAddr = ""
}

// BaseURL resolves the REST base URL.
func (c *Config) BaseURL() string {
	if c.APIBaseURL != "" {
		return strings.TrimRight(c.APIBaseURL, "/")
	}
	if c.Environment == EnvProduction {
		return strings.TrimRight(c.ProdBaseURL, "/")
	}
	return fmt.Sprintf("http://%s:%d/api", c.DevHost, c.DevPort)
}

// RealtimeURL derives the websocket endpoint from the REST host: the scheme
// is switched to ws/wss and the path replaced by RealtimePath.
func (c *Config) RealtimeURL() (string, error) {
	u, err := url.Parse(c.BaseURL())
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported base url scheme %q", u.Scheme)
	}
	u.Path = c.RealtimePath
	u.RawQuery = ""
	return u.String(), nil
}

// Load builds a Config from defaults, the optional config file, the
// environment and args (usually os.Args[1:]), in that order.
func Load(args []string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, lookupEnv); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments and environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:], os.LookupEnv)
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		return fmt.Errorf("unknown environment %q", c.Environment)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", c.MaxRetries)
	}
	if c.MaxQueueRetries <= 0 {
		return fmt.Errorf("max queue retries must be positive, got %d", c.MaxQueueRetries)
	}
	if c.MaxReconnectAttempts <= 0 {
		return fmt.Errorf("max reconnect attempts must be positive, got %d", c.MaxReconnectAttempts)
	}
	if _, err := c.RealtimeURL(); err != nil {
		return err
	}
	return nil
}
