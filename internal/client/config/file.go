package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/marketclient/internal/flagx"
	"github.com/dmitrijs2005/marketclient/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape. Zero values mean "not set" and leave the
// corresponding Config field alone.
type FileConfig struct {
	Environment string `json:"environment" yaml:"environment"`
	DevHost     string `json:"dev_host" yaml:"dev_host"`
	DevPort     int    `json:"dev_port" yaml:"dev_port"`
	ProdBaseURL string `json:"prod_base_url" yaml:"prod_base_url"`
	APIBaseURL  string `json:"api_base_url" yaml:"api_base_url"`

	RealtimePath string `json:"realtime_path" yaml:"realtime_path"`

	RequestTimeout timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	MaxRetries     *int           `json:"max_retries" yaml:"max_retries"`
	RetryBaseDelay timex.Duration `json:"retry_base_delay" yaml:"retry_base_delay"`

	ReconnectBaseDelay   timex.Duration `json:"reconnect_base_delay" yaml:"reconnect_base_delay"`
	MaxReconnectAttempts *int           `json:"max_reconnect_attempts" yaml:"max_reconnect_attempts"`
	HeartbeatInterval    timex.Duration `json:"heartbeat_interval" yaml:"heartbeat_interval"`

	CacheTTL            timex.Duration `json:"cache_ttl" yaml:"cache_ttl"`
	MaxQueueRetries     int            `json:"max_queue_retries" yaml:"max_queue_retries"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`

	DatabasePath   string `json:"database_path" yaml:"database_path"`
	KeyringService string `json:"keyring_service" yaml:"keyring_service"`
	MetricsAddr    string `json:"metrics_addr" yaml:"metrics_addr"`
}

// parseFile overlays cfg with the file named by -c/-config, if any.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.Environment, fc.Environment)
	setString(&cfg.DevHost, fc.DevHost)
	if fc.DevPort != 0 {
		cfg.DevPort = fc.DevPort
	}
	setString(&cfg.ProdBaseURL, fc.ProdBaseURL)
	setString(&cfg.APIBaseURL, fc.APIBaseURL)
	setString(&cfg.RealtimePath, fc.RealtimePath)

	setDuration(&cfg.RequestTimeout, fc.RequestTimeout)
	if fc.MaxRetries != nil {
		cfg.MaxRetries = *fc.MaxRetries
	}
	setDuration(&cfg.RetryBaseDelay, fc.RetryBaseDelay)

	setDuration(&cfg.ReconnectBaseDelay, fc.ReconnectBaseDelay)
	if fc.MaxReconnectAttempts != nil {
		cfg.MaxReconnectAttempts = *fc.MaxReconnectAttempts
	}
	setDuration(&cfg.HeartbeatInterval, fc.HeartbeatInterval)

	setDuration(&cfg.CacheTTL, fc.CacheTTL)
	if fc.MaxQueueRetries != 0 {
		cfg.MaxQueueRetries = fc.MaxQueueRetries
	}
	setDuration(&cfg.OnlineCheckInterval, fc.OnlineCheckInterval)

	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.KeyringService, fc.KeyringService)
	setString(&cfg.MetricsAddr, fc.MetricsAddr)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
