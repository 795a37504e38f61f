package ports

import "github.com/ghalamif/SensorFlow/internal/domain"

// Metric names understood by Observability implementations.
const (
	MetricCycles          = "sensorflow_cycles_total"
	MetricCycleFailures   = "sensorflow_cycle_failures_total"
	MetricTicksSkipped    = "sensorflow_ticks_skipped_total"
	MetricSnapshotsDrop   = "sensorflow_snapshots_dropped_total"
	MetricCycleDuration   = "sensorflow_cycle_duration_seconds"
	MetricDispatchLatency = "sensorflow_dispatch_latency_seconds"
	MetricSensors         = "sensorflow_sensors"
	MetricReadings        = "sensorflow_readings"
	MetricQueueLength     = "sensorflow_queue_length"
)

type Observability interface {
	LogInfo(msg string, fields ...Field)
	LogWarn(msg string, err error, fields ...Field)
	LogError(msg string, err error, fields ...Field)
	LogCritical(msg string, err error, fields ...Field)

	IncCounter(name string, v float64)
	ObserveLatency(name string, seconds float64)

	SetGauge(name string, v float64)

	// RecordCycleFailure counts a skipped cycle under reason.
	RecordCycleFailure(cycle uint64, reason string, err error)
	// ObserveSnapshot exports the values of a published snapshot.
	ObserveSnapshot(s domain.Snapshot)
}

type Field struct {
	Key   string
	Value any
}

// NopObservability discards everything.
type NopObservability struct{}

func (NopObservability) LogInfo(string, ...Field)                 {}
func (NopObservability) LogWarn(string, error, ...Field)          {}
func (NopObservability) LogError(string, error, ...Field)         {}
func (NopObservability) LogCritical(string, error, ...Field)      {}
func (NopObservability) IncCounter(string, float64)               {}
func (NopObservability) ObserveLatency(string, float64)           {}
func (NopObservability) SetGauge(string, float64)                 {}
func (NopObservability) RecordCycleFailure(uint64, string, error) {}
func (NopObservability) ObserveSnapshot(domain.Snapshot)          {}
