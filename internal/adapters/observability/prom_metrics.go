package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ghalamif/SensorFlow/internal/domain"
	"github.com/ghalamif/SensorFlow/internal/ports"
)

type PromObs struct {
	logger *zap.Logger

	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer

	failures *prometheus.CounterVec
	values   *prometheus.GaugeVec
}

// NewPromObs registers the SensorFlow collectors on reg (the default
// registerer when nil) and logs through logger (a no-op logger when nil).
func NewPromObs(reg prometheus.Registerer, logger *zap.Logger) *PromObs {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cycles := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricCycles,
		Help: "Poll cycles that produced a snapshot.",
	}))
	skipped := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricTicksSkipped,
		Help: "Ticks skipped because the previous cycle was still running.",
	}))
	dropped := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricSnapshotsDrop,
		Help: "Snapshots lost to dispatch queue backpressure.",
	}))
	sensors := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: ports.MetricSensors,
		Help: "Sensors declared by the last decoded segment.",
	}))
	readings := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: ports.MetricReadings,
		Help: "Readings declared by the last decoded segment.",
	}))
	queueLen := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: ports.MetricQueueLength,
		Help: "Snapshots waiting for the subscriber.",
	}))
	duration := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    ports.MetricCycleDuration,
		Help:    "Time spent copying and decoding the segment per cycle.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
	}))
	dispatch := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    ports.MetricDispatchLatency,
		Help:    "Time the subscriber spent handling one snapshot.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	}))
	failures := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: ports.MetricCycleFailures,
		Help: "Poll cycles skipped because decoding failed.",
	}, []string{"reason"}))
	values := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sensorflow_metric_value",
		Help: "Last published value per metric. Absent metrics have no series.",
	}, []string{"metric"}))

	return &PromObs{
		logger: logger,
		counters: map[string]prometheus.Counter{
			ports.MetricCycles:        cycles,
			ports.MetricTicksSkipped:  skipped,
			ports.MetricSnapshotsDrop: dropped,
		},
		gauges: map[string]prometheus.Gauge{
			ports.MetricSensors:     sensors,
			ports.MetricReadings:    readings,
			ports.MetricQueueLength: queueLen,
		},
		histos: map[string]prometheus.Observer{
			ports.MetricCycleDuration:   duration,
			ports.MetricDispatchLatency: dispatch,
		},
		failures: failures,
		values:   values,
	}
}

// register returns the collector already registered under the same
// descriptor when one exists, so several monitors can share a registry.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (p *PromObs) Logger() *zap.Logger { return p.logger }

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.logger.Info(msg, zapFields(nil, fields)...)
}

func (p *PromObs) LogWarn(msg string, err error, fields ...ports.Field) {
	p.logger.Warn(msg, zapFields(err, fields)...)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	p.logger.Error(msg, zapFields(err, fields)...)
}

// LogCritical logs at DPanic: fatal in development loggers, an error in
// production ones.
func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	p.logger.DPanic(msg, zapFields(err, fields)...)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) RecordCycleFailure(cycle uint64, reason string, err error) {
	p.failures.WithLabelValues(reason).Inc()
	p.logger.Warn("cycle_failed",
		zap.Uint64("cycle", cycle),
		zap.String("reason", reason),
		zap.Error(err),
	)
}

func (p *PromObs) ObserveSnapshot(s domain.Snapshot) {
	meta := s.Meta()
	p.SetGauge(ports.MetricSensors, float64(meta.SensorCount))
	p.SetGauge(ports.MetricReadings, float64(meta.ReadingCount))

	for _, m := range domain.Metrics {
		if v, ok := s.Value(m); ok {
			p.values.WithLabelValues(m.String()).Set(v)
		} else {
			p.values.DeleteLabelValues(m.String())
		}
	}
}

func zapFields(err error, fields []ports.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+1)
	if err != nil {
		out = append(out, zap.Error(err))
	}
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

var _ ports.Observability = (*PromObs)(nil)
