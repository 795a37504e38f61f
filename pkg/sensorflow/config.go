package sensorflow

import (
	"github.com/ghalamif/SensorFlow/internal/adapters/producer"
	"github.com/ghalamif/SensorFlow/internal/adapters/shm"
	"github.com/ghalamif/SensorFlow/internal/app/config"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// PollConfig sets the tick interval.
	PollConfig = config.PollConfig
	// SegmentConfig names the shared segment.
	SegmentConfig = shm.Config
	// LayoutConfig tunes which segment versions are accepted.
	LayoutConfig = config.LayoutConfig
	// ProducerConfig lists the producer's process names.
	ProducerConfig = producer.Config
	// DispatchConfig selects synchronous or queued delivery.
	DispatchConfig = config.DispatchConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// LogConfig configures the zap logger.
	LogConfig = config.LogConfig
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// LoadConfigOrDefault is LoadConfig, falling back to DefaultConfig when
// path is empty or missing.
func LoadConfigOrDefault(path string) (*Config, error) {
	return config.LoadOrDefault(path)
}

// DefaultConfig polls the producer's default segment once per second.
func DefaultConfig() *Config {
	return config.Default()
}
