package sensorflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	base "github.com/ghalamif/SensorFlow/pkg/sensorflow"
)

// Re-exported errors for convenience.
var (
	ErrSegmentNotFound    = base.ErrSegmentNotFound
	ErrAccessDenied       = base.ErrAccessDenied
	ErrSignatureMismatch  = base.ErrSignatureMismatch
	ErrProducerInactive   = base.ErrProducerInactive
	ErrBufferTooSmall     = base.ErrBufferTooSmall
	ErrOutOfBounds        = base.ErrOutOfBounds
	ErrUnsupportedVersion = base.ErrUnsupportedVersion
	ErrCorruptCycle       = base.ErrCorruptCycle
)

// Type aliases so consumers can import github.com/ghalamif/SensorFlow directly.
type (
	Config            = base.Config
	PollConfig        = base.PollConfig
	SegmentConfig     = base.SegmentConfig
	LayoutConfig      = base.LayoutConfig
	ProducerConfig    = base.ProducerConfig
	DispatchConfig    = base.DispatchConfig
	MetricsConfig     = base.MetricsConfig
	LogConfig         = base.LogConfig
	Monitor           = base.Monitor
	Option            = base.Option
	Snapshot          = base.Snapshot
	SnapshotMeta      = base.SnapshotMeta
	Metric            = base.Metric
	Subscriber        = base.Subscriber
	SubscriberFunc    = base.SubscriberFunc
	Segment           = base.Segment
	SegmentOpener     = base.SegmentOpener
	SegmentOpenerFunc = base.SegmentOpenerFunc
	ProducerProbe     = base.ProducerProbe
	ProducerStatus    = base.ProducerStatus
	Observability     = base.Observability
	Field             = base.Field
	State             = base.State
)

const (
	CPUTemperature = base.CPUTemperature
	CPUPower       = base.CPUPower
	GPUFrequency   = base.GPUFrequency
	CPUVoltage     = base.CPUVoltage
	CPUUsage       = base.CPUUsage
	CPUCurrent     = base.CPUCurrent

	StateIdle     = base.StateIdle
	StateAttached = base.StateAttached
	StatePolling  = base.StatePolling
	StateStopped  = base.StateStopped
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func LoadConfigOrDefault(path string) (*Config, error) {
	return base.LoadConfigOrDefault(path)
}

func DefaultConfig() *Config {
	return base.DefaultConfig()
}

// Monitor and options.
func New(cfg *Config, opts ...Option) (*Monitor, error) {
	return base.New(cfg, opts...)
}

func WithSubscriber(sub Subscriber) Option {
	return base.WithSubscriber(sub)
}

func WithSegmentOpener(op SegmentOpener) Option {
	return base.WithSegmentOpener(op)
}

func WithObservability(obs Observability) Option {
	return base.WithObservability(obs)
}

func WithProducerProbe(p ProducerProbe) Option {
	return base.WithProducerProbe(p)
}

func WithLogger(l *zap.Logger) Option {
	return base.WithLogger(l)
}

func WithRegisterer(reg prometheus.Registerer) Option {
	return base.WithRegisterer(reg)
}

// Subscriber adapters.
func NewChannelSubscriber(buffer int) (Subscriber, <-chan Snapshot, func()) {
	return base.NewChannelSubscriber(buffer)
}
