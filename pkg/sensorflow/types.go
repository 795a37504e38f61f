package sensorflow

import (
	"github.com/ghalamif/SensorFlow/internal/app/pipeline"
	"github.com/ghalamif/SensorFlow/internal/domain"
	"github.com/ghalamif/SensorFlow/internal/ports"
)

// Snapshot is the immutable set of CPU/GPU values extracted in one poll
// cycle. Metrics that were not observed report ok == false.
type Snapshot = domain.Snapshot

// SnapshotMeta carries the cycle number and timing of a Snapshot.
type SnapshotMeta = domain.SnapshotMeta

// Metric names one tracked value.
type Metric = domain.Metric

const (
	CPUTemperature = domain.CPUTemperature
	CPUPower       = domain.CPUPower
	GPUFrequency   = domain.GPUFrequency
	CPUVoltage     = domain.CPUVoltage
	CPUUsage       = domain.CPUUsage
	CPUCurrent     = domain.CPUCurrent
)

// Metrics lists every tracked metric in a stable order.
var Metrics = domain.Metrics

// Subscriber receives snapshots in poll order and is never called
// concurrently with itself. It runs on a SensorFlow goroutine; marshalling
// onto a UI thread is the subscriber's job.
type Subscriber = ports.Subscriber

// Segment is a read-only view of the producer's shared region.
type Segment = ports.Segment

// SegmentOpener attaches to the shared region. Override it to read from
// somewhere other than the producer's named segment.
type SegmentOpener = ports.SegmentOpener

// SegmentOpenerFunc adapts a function to SegmentOpener.
type SegmentOpenerFunc = ports.SegmentOpenerFunc

// ProducerProbe reports whether the producer process is running.
type ProducerProbe = ports.ProducerProbe

// ProducerStatus is the result of a ProducerProbe.
type ProducerStatus = ports.ProducerStatus

// Observability receives logs and metrics about poll cycles.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

// State is the lifecycle state of a Monitor.
type State = pipeline.State

const (
	StateIdle     = pipeline.StateIdle
	StateAttached = pipeline.StateAttached
	StatePolling  = pipeline.StatePolling
	StateStopped  = pipeline.StateStopped
)

// Errors returned by Start (attach) and recorded per cycle (decode).
var (
	ErrSegmentNotFound    = domain.ErrSegmentNotFound
	ErrAccessDenied       = domain.ErrAccessDenied
	ErrSignatureMismatch  = domain.ErrSignatureMismatch
	ErrProducerInactive   = domain.ErrProducerInactive
	ErrBufferTooSmall     = domain.ErrBufferTooSmall
	ErrOutOfBounds        = domain.ErrOutOfBounds
	ErrUnsupportedVersion = domain.ErrUnsupportedVersion
	ErrCorruptCycle       = domain.ErrCorruptCycle
)
