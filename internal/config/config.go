// Package config loads and validates linkcheck configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Checker CheckerConfig `mapstructure:"checker"`
	Dataset DatasetConfig `mapstructure:"dataset"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CheckerConfig governs URL construction and probe scheduling.
type CheckerConfig struct {
	BaseURL            string `mapstructure:"base_url"`
	UserAgent          string `mapstructure:"user_agent"`
	Concurrency        int    `mapstructure:"concurrency"`
	RequestTimeoutMs   int    `mapstructure:"request_timeout_ms"`
	MaxRedirects       int    `mapstructure:"max_redirects"`
	BatchSize          int    `mapstructure:"batch_size"`
	BatchPauseMs       int    `mapstructure:"batch_pause_ms"`
	MinStartIntervalMs int    `mapstructure:"min_start_interval_ms"`
	StartJitterMs      int    `mapstructure:"start_jitter_ms"`
}

// DatasetConfig locates the record set to validate.
type DatasetConfig struct {
	Path string `mapstructure:"path"`
}

// MetricsConfig controls the optional Prometheus listener.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LINKCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("checker.base_url", "https://en.wikipedia.org/wiki/")
	v.SetDefault("checker.user_agent", "linkcheck/1.0 (+https://github.com/plinora/linkcheck)")
	v.SetDefault("checker.concurrency", 8)
	v.SetDefault("checker.request_timeout_ms", 10000)
	v.SetDefault("checker.max_redirects", 5)
	v.SetDefault("checker.batch_size", 10)
	v.SetDefault("checker.batch_pause_ms", 750)
	v.SetDefault("checker.min_start_interval_ms", 300)
	v.SetDefault("checker.start_jitter_ms", 50)
	v.SetDefault("dataset.path", "")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Checker.BaseURL == "" {
		return fmt.Errorf("checker.base_url must be set")
	}
	if c.Checker.UserAgent == "" {
		return fmt.Errorf("checker.user_agent must be set")
	}
	if c.Checker.Concurrency <= 0 {
		return fmt.Errorf("checker.concurrency must be > 0")
	}
	if c.Checker.RequestTimeoutMs <= 0 {
		return fmt.Errorf("checker.request_timeout_ms must be > 0")
	}
	if c.Checker.MaxRedirects < 0 {
		return fmt.Errorf("checker.max_redirects must be >= 0")
	}
	if c.Checker.BatchSize <= 0 {
		return fmt.Errorf("checker.batch_size must be > 0")
	}
	if c.Checker.BatchPauseMs < 0 {
		return fmt.Errorf("checker.batch_pause_ms must be >= 0")
	}
	if c.Checker.MinStartIntervalMs < 0 {
		return fmt.Errorf("checker.min_start_interval_ms must be >= 0")
	}
	if c.Checker.StartJitterMs < 0 {
		return fmt.Errorf("checker.start_jitter_ms must be >= 0")
	}
	return nil
}

// RequestTimeout returns the per-hop probe timeout.
func (c CheckerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// BatchPause returns the pause inserted between batches.
func (c CheckerConfig) BatchPause() time.Duration {
	return time.Duration(c.BatchPauseMs) * time.Millisecond
}

// MinStartInterval returns the minimum spacing between request starts.
func (c CheckerConfig) MinStartInterval() time.Duration {
	return time.Duration(c.MinStartIntervalMs) * time.Millisecond
}

// StartJitter returns the upper bound of the random start jitter.
func (c CheckerConfig) StartJitter() time.Duration {
	return time.Duration(c.StartJitterMs) * time.Millisecond
}
