package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/marketclient/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Only the flags listed here are looked at, so callers may share args with
// other parsers.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, "-a", "-e", "-i", "-d", "-m")

	fs := flag.NewFlagSet("marketclient", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	fs.StringVar(&cfg.Environment, "e", cfg.Environment, "environment (development|production)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		}
	})
	return nil
}
