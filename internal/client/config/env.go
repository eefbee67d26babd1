package config

import (
	"fmt"
	"strconv"
)

const (
	envEnvironment = "MARKET_ENV"
	envAPIHost     = "MARKET_API_HOST"
	envAPIPort     = "MARKET_API_PORT"
	envAPIURL      = "MARKET_API_URL"
	envProdURL     = "MARKET_PROD_URL"
)

// parseEnv overlays cfg with values from the environment. A nil lookup
// leaves cfg untouched.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}
	if v, ok := lookup(envEnvironment); ok && v != "" {
		cfg.Environment = v
	}
	if v, ok := lookup(envAPIHost); ok && v != "" {
		cfg.DevHost = v
	}
	if v, ok := lookup(envAPIPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envAPIPort, err)
		}
		cfg.DevPort = port
	}
	if v, ok := lookup(envAPIURL); ok && v != "" {
		cfg.APIBaseURL = v
	}
	if v, ok := lookup(envProdURL); ok && v != "" {
		cfg.ProdBaseURL = v
	}
	return nil
}
