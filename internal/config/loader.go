package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if SYNHEART_CONFIG is set
//  3. env (prefix SYNHEART_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("SYNHEART_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: SYNHEART_ADDR, SYNHEART_WINDOW_SECONDS, ...
	// Map env keys like SYNHEART_WINDOW_SECONDS -> window_seconds (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("SYNHEART_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "synheart_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.WindowSeconds <= 0 {
		return fmt.Errorf("%w: window_seconds must be positive", ErrInvalidConfig)
	}
	if c.StepSeconds <= 0 {
		return fmt.Errorf("%w: step_seconds must be positive", ErrInvalidConfig)
	}
	if c.MinRRCount < 0 {
		return fmt.Errorf("%w: min_rr_count must not be negative", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	}
	if c.HistorySize <= 0 {
		return fmt.Errorf("%w: history_size must be positive", ErrInvalidConfig)
	}
	if c.PollIntervalMS <= 0 {
		return fmt.Errorf("%w: poll_interval_ms must be positive", ErrInvalidConfig)
	}
	return nil
}
