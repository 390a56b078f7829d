// Package config provides worker configuration loading and the process-wide
// default network I/O timeout with its temporary-override discipline.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/bootsteps/errors"
)

// Duration wraps time.Duration so YAML values like "5s" parse. yaml.v3
// has no native handling for duration strings.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

// PlatformConfig identifies the organization and platform a worker belongs
// to.
type PlatformConfig struct {
	Organization string `yaml:"organization"`
	Name         string `yaml:"name"`
}

// NATSConfig holds NATS connection settings
type NATSConfig struct {
	URL            string   `yaml:"url"`
	Name           string   `yaml:"name"`
	ConnectTimeout Duration `yaml:"connect_timeout"`
	MaxReconnects  int      `yaml:"max_reconnects"`
	ReconnectWait  Duration `yaml:"reconnect_wait"`
}

// MetricsConfig holds the metrics HTTP endpoint settings
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// Config is the complete worker configuration
type Config struct {
	Platform PlatformConfig `yaml:"platform"`
	NATS     NATSConfig     `yaml:"nats"`
	Metrics  MetricsConfig  `yaml:"metrics"`

	// NetTimeout overrides the process-wide default network I/O timeout
	// at load time when set.
	NetTimeout Duration `yaml:"net_timeout"`
}

// Default returns a configuration with usable defaults for local
// development.
func Default() *Config {
	return &Config{
		Platform: PlatformConfig{Organization: "c360", Name: "worker"},
		NATS: NATSConfig{
			URL:            "nats://localhost:4222",
			ConnectTimeout: Duration(5 * time.Second),
			MaxReconnects:  -1,
			ReconnectWait:  Duration(2 * time.Second),
		},
		Metrics: MetricsConfig{Enabled: true, Addr: ":9090", Path: "/metrics"},
	}
}

// Load reads and validates a YAML configuration file, filling unset fields
// from Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "config", "Load", "reading configuration file")
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapInvalid(err, "config", "Load", "parsing YAML")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.NetTimeout > 0 {
		SetDefaultNetTimeout(cfg.NetTimeout.Std())
	}
	return cfg, nil
}

// Validate checks the configuration for values the worker cannot run with
func (c *Config) Validate() error {
	if c.NATS.URL == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "config", "Validate", "nats.url")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "config", "Validate", "metrics.addr")
	}
	if c.NetTimeout < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("net_timeout must not be negative: %s", c.NetTimeout.Std()),
			"config", "Validate", "net_timeout")
	}
	return nil
}
