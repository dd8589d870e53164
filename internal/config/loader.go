package config

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if WATERLINE_CONFIG is set
//  3. env (prefix WATERLINE_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("WATERLINE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: WATERLINE_ADDR, WATERLINE_BROKER_URL, ...
	// Map env keys like WATERLINE_QUEUE_SIZE -> queue_size (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("WATERLINE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "waterline_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	// Basic validation
	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.WindowSize <= 0 {
		return nil, errors.New("window_size must be positive")
	}
	if cfg.ThresholdML < 0 {
		return nil, errors.New("threshold_ml must not be negative")
	}
	if len(cfg.Topics) == 0 {
		return nil, errors.New("at least one channel topic must be configured")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, errors.New("timezone must be a valid IANA location")
	}
	return &cfg, nil
}

// Location resolves the configured timezone. Load validates the name, so
// this only fails if the config was constructed by hand with a bad value.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, err
	}
	return loc, nil
}
