// Package config loads runtime configuration for the marketplace client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c or -config. Files ending in
//     .yaml/.yml are decoded with yaml.v3, anything else as JSON.
//  3. Environment variables (MARKET_ENV, MARKET_API_HOST, MARKET_API_PORT,
//     MARKET_API_URL, MARKET_PROD_URL).
//  4. Command-line flags, which override everything above.
//
// Supported flags
//
//	-a string   explicit API base URL (skips environment selection)
//	-e string   environment: development or production
//	-i int      online status check interval (seconds)
//	-d string   path of the local SQLite database
//	-m string   listen address for the /metrics endpoint (empty disables)
//
// # File schema
//
// Durations use timex.Duration, so they may be strings like "15s" or integer
// nanoseconds:
//
//	{
//	  "environment": "production",
//	  "prod_base_url": "https://api.example.com/api",
//	  "request_timeout": "15s",
//	  "cache_ttl": "24h"
//	}
package config
