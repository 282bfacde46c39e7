// Package config loads the server configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dexxiez/analog-nest-rpc/pkg/domain"
)

// Duration wraps time.Duration so YAML values like "1h30m" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration: %w", err)
	}
	*d = Duration(parsed)
	return nil
}

// RedisConfig enables the Redis replay cache when Addr is set.
type RedisConfig struct {
	Addr     string   `yaml:"addr"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	TTL      Duration `yaml:"ttl"`
}

// Config is the serve-command configuration.
type Config struct {
	Addr     string      `yaml:"addr"`
	Endpoint string      `yaml:"endpoint"`
	LogLevel string      `yaml:"log_level"`
	Metrics  bool        `yaml:"metrics"`
	Redis    RedisConfig `yaml:"redis"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Addr:     ":8080",
		Endpoint: domain.DefaultEndpoint,
		LogLevel: "info",
	}
}

// Load reads a YAML config file, filling unset fields with defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = domain.DefaultEndpoint
	}
	return cfg, nil
}
