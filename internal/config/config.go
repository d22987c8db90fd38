// Package config loads the chartfeed service configuration from a YAML
// file, with environment variable expansion for secrets and per-host
// values.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wxcharts/chartfeed/internal/series"
)

// Config holds all configuration for the service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Traces   []TraceConfig  `yaml:"traces"`
	Logging  LoggingConfig  `yaml:"logging"`
	Prewarm  PrewarmConfig  `yaml:"prewarm"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// UpstreamConfig bounds traffic towards the aggregation API and sizes the
// per-trace segment cache.
type UpstreamConfig struct {
	RateLimit      float64 `yaml:"rate_limit"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
	CacheSize      int     `yaml:"cache_size"`
}

// TraceConfig describes one chart trace.
type TraceConfig struct {
	Name                   string `yaml:"name"`
	URL                    string `yaml:"url"`
	AggregateType          string `yaml:"aggregate_type"`
	ArchiveIntervalMinutes int    `yaml:"archive_interval_minutes"`
	MinDataPoints          int    `yaml:"min_data_points"`
	OffsetSeconds          int64  `yaml:"offset_seconds"`
}

// Params converts the trace entry to the immutable per-trace parameters.
func (t TraceConfig) Params() series.Params {
	return series.Params{
		URL:                    t.URL,
		AggregateType:          t.AggregateType,
		ArchiveIntervalMinutes: t.ArchiveIntervalMinutes,
		MinDataPoints:          t.MinDataPoints,
		Offset:                 time.Duration(t.OffsetSeconds) * time.Second,
	}
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// PrewarmConfig controls the cron job that keeps the trailing window of
// each trace warm in the cache.
type PrewarmConfig struct {
	Enabled     bool `yaml:"enabled"`
	WindowHours int  `yaml:"window_hours"`
}

// Load reads configuration from file, expanding $VAR references from the
// environment before decoding.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	config := defaults()
	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Upstream: UpstreamConfig{
			RateLimit:      5.0,
			RateLimitBurst: 10,
			CacheSize:      1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Prewarm: PrewarmConfig{
			WindowHours: 24,
		},
	}
}

// Validate rejects configurations a running service cannot work with.
func (c *Config) Validate() error {
	if len(c.Traces) == 0 {
		return fmt.Errorf("no traces configured")
	}
	seen := make(map[string]bool, len(c.Traces))
	for _, t := range c.Traces {
		if t.Name == "" {
			return fmt.Errorf("trace with missing name")
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate trace name: %s", t.Name)
		}
		seen[t.Name] = true
		if err := t.Params().Validate(); err != nil {
			return fmt.Errorf("trace %s: %w", t.Name, err)
		}
	}
	if c.Prewarm.Enabled && c.Prewarm.WindowHours <= 0 {
		return fmt.Errorf("invalid prewarm window: %d hours", c.Prewarm.WindowHours)
	}
	return nil
}
