package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ghalamif/SensorFlow/internal/adapters/producer"
	"github.com/ghalamif/SensorFlow/internal/adapters/shm"
	"github.com/ghalamif/SensorFlow/internal/layout"
	"github.com/ghalamif/SensorFlow/internal/ports"
)

const DefaultInterval = time.Second

type Config struct {
	Poll     PollConfig      `yaml:"poll"`
	Segment  shm.Config      `yaml:"segment"`
	Layout   LayoutConfig    `yaml:"layout"`
	Producer producer.Config `yaml:"producer"`
	Dispatch DispatchConfig  `yaml:"dispatch"`
	Metrics  MetricsConfig   `yaml:"metrics"`
	Log      LogConfig       `yaml:"log"`
}

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

func (p PollConfig) Interval() time.Duration {
	return time.Duration(p.IntervalMs) * time.Millisecond
}

type LayoutConfig struct {
	StrictVersion bool `yaml:"strict_version"`
}

func (l LayoutConfig) Policy() layout.Policy {
	return layout.Policy{StrictVersion: l.StrictVersion}
}

type DispatchConfig struct {
	Mode        string `yaml:"mode"` // "queued" or "sync"
	QueueLen    int    `yaml:"queue_len"`
	OnQueueFull string `yaml:"on_queue_full"`
}

func (d DispatchConfig) Policy() ports.DispatchPolicy {
	if d.Mode == "sync" {
		return ports.DispatchPolicy{}
	}
	return ports.DispatchPolicy{QueueLen: d.QueueLen, OnQueueFull: d.OnQueueFull}
}

type MetricsConfig struct {
	Addr    string `yaml:"addr"`
	Enabled *bool  `yaml:"enabled"`
}

func (m MetricsConfig) On() bool { return m.Enabled == nil || *m.Enabled }

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault is Load, except that an empty path or a missing file
// yields Default.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func (c *Config) applyDefaults() {
	if c.Poll.IntervalMs == 0 {
		c.Poll.IntervalMs = int(DefaultInterval / time.Millisecond)
	}
	if c.Dispatch.Mode == "" {
		c.Dispatch.Mode = "queued"
	}
	if c.Dispatch.QueueLen == 0 {
		c.Dispatch.QueueLen = 16
	}
	if c.Dispatch.OnQueueFull == "" {
		c.Dispatch.OnQueueFull = ports.DropOldest
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9120"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}

	c.Segment.ApplyDefaults()
	c.Producer.ApplyDefaults()
}

func (c *Config) validate() error {
	if c.Poll.IntervalMs < 0 {
		return fmt.Errorf("poll.interval_ms must be positive, got %d", c.Poll.IntervalMs)
	}
	if err := c.Segment.Validate(); err != nil {
		return fmt.Errorf("segment config: %w", err)
	}
	switch c.Dispatch.Mode {
	case "queued", "sync":
	default:
		return fmt.Errorf("dispatch.mode %q: want queued or sync", c.Dispatch.Mode)
	}
	if c.Dispatch.QueueLen < 0 {
		return fmt.Errorf("dispatch.queue_len must not be negative")
	}
	switch c.Dispatch.OnQueueFull {
	case ports.DropOldest, ports.DropNewest:
	default:
		return fmt.Errorf("dispatch.on_queue_full %q: want %s or %s", c.Dispatch.OnQueueFull, ports.DropOldest, ports.DropNewest)
	}
	if c.Metrics.On() && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format %q: want json or console", c.Log.Format)
	}
	return nil
}

// Validate re-checks a configuration built in code.
func (c *Config) Validate() error {
	c.applyDefaults()
	return c.validate()
}
