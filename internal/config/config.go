// Package config loads the abacus configuration from a YAML or JSON file and the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/abacus/pkg/pipeline"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvEndpoint = "ABACUS_ENDPOINT"
	EnvLogLevel = "ABACUS_LOG_LEVEL"
	EnvRedisURL = "ABACUS_REDIS_URL"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "abacus.yaml"

var validate = validator.New()

// Config is the complete configuration of the CLI and the reference server.
type Config struct {
	// Endpoint is the base URL of the remote evaluator. Empty evaluates in process.
	Endpoint string        `mapstructure:"endpoint" validate:"omitempty,url"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gte=0"`
	LogLevel string        `mapstructure:"log_level" validate:"oneof=debug info warn warning error"`
	Retry    RetryConfig   `mapstructure:"retry"`
	Server   ServerConfig  `mapstructure:"server"`
}

// RetryConfig mirrors pipeline.Policy.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay  time.Duration `mapstructure:"base_delay" validate:"gte=0"`
	Jitter     float64       `mapstructure:"jitter" validate:"gte=0,lte=1"`
}

// ServerConfig configures the reference evaluation server.
type ServerConfig struct {
	Addr        string        `mapstructure:"addr" validate:"required"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
	RedisURL    string        `mapstructure:"redis_url" validate:"omitempty,url"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
	RateLimit   float64       `mapstructure:"rate_limit" validate:"gte=0"`
	Burst       int           `mapstructure:"burst" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	policy := pipeline.DefaultPolicy()
	return Config{
		Timeout:  10 * time.Second,
		LogLevel: "info",
		Retry: RetryConfig{
			MaxRetries: policy.MaxRetries,
			BaseDelay:  policy.BaseDelay,
			Jitter:     policy.JitterFraction,
		},
		Server: ServerConfig{
			Addr:      ":8080",
			CacheTTL:  10 * time.Minute,
			RateLimit: 50,
			Burst:     100,
		},
	}
}

// Policy returns the retry policy described by the configuration.
func (c Config) Policy() pipeline.Policy {
	return pipeline.Policy{
		MaxRetries:     c.Retry.MaxRetries,
		BaseDelay:      c.Retry.BaseDelay,
		JitterFraction: c.Retry.Jitter,
	}
}

// Load reads path (YAML, or JSON by extension) over the defaults, applies the
// environment overrides and validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := readFile(path)
	if err != nil {
		return Config{}, err
	}
	if len(raw) > 0 {
		if err := decode(raw, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func readFile(path string) (map[string]interface{}, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	raw := make(map[string]interface{})
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}
	return raw, nil
}

func decode(raw map[string]interface{}, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvEndpoint); ok {
		cfg.Endpoint = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv(EnvRedisURL); ok {
		cfg.Server.RedisURL = v
	}
}
