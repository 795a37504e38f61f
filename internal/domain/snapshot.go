package domain

import (
	"encoding/json"
	"time"
)

// Metric names one tracked value of a Snapshot.
type Metric uint8

const (
	CPUTemperature Metric = iota
	CPUPower
	GPUFrequency
	CPUVoltage
	CPUUsage
	CPUCurrent

	metricCount
)

// Metrics lists every tracked metric in a stable order.
var Metrics = [...]Metric{CPUTemperature, CPUPower, GPUFrequency, CPUVoltage, CPUUsage, CPUCurrent}

var metricNames = [metricCount]string{
	CPUTemperature: "cpu_temperature",
	CPUPower:       "cpu_power",
	GPUFrequency:   "gpu_frequency",
	CPUVoltage:     "cpu_voltage",
	CPUUsage:       "cpu_usage",
	CPUCurrent:     "cpu_current",
}

func (m Metric) String() string {
	if m >= metricCount {
		return "unknown"
	}
	return metricNames[m]
}

// Snapshot is the set of CPU/GPU values extracted from one poll cycle.
// It is a value type with unexported state: once built it cannot be
// changed by whoever receives it.
type Snapshot struct {
	cycle        uint64
	collectedAt  time.Time
	pollTime     time.Time
	sensorCount  int
	readingCount int

	values  [metricCount]float64
	present [metricCount]bool
}

// SnapshotMeta carries the cycle metadata attached to a Snapshot.
type SnapshotMeta struct {
	Cycle        uint64
	CollectedAt  time.Time
	PollTime     time.Time
	SensorCount  int
	ReadingCount int
}

// SnapshotBuilder accumulates metric values for a single cycle. The zero
// value is ready to use.
type SnapshotBuilder struct {
	s Snapshot
}

// Set records v for m, replacing any earlier value.
func (b *SnapshotBuilder) Set(m Metric, v float64) {
	if m >= metricCount {
		return
	}
	b.s.values[m] = v
	b.s.present[m] = true
}

// Build returns the finished Snapshot stamped with meta.
func (b *SnapshotBuilder) Build(meta SnapshotMeta) Snapshot {
	s := b.s
	s.cycle = meta.Cycle
	s.collectedAt = meta.CollectedAt
	s.pollTime = meta.PollTime
	s.sensorCount = meta.SensorCount
	s.readingCount = meta.ReadingCount
	return s
}

// Value returns the value recorded for m and whether it was observed.
func (s Snapshot) Value(m Metric) (float64, bool) {
	if m >= metricCount || !s.present[m] {
		return 0, false
	}
	return s.values[m], true
}

func (s Snapshot) CPUTemperature() (float64, bool) { return s.Value(CPUTemperature) }
func (s Snapshot) CPUPower() (float64, bool)       { return s.Value(CPUPower) }
func (s Snapshot) GPUFrequency() (float64, bool)   { return s.Value(GPUFrequency) }
func (s Snapshot) CPUVoltage() (float64, bool)     { return s.Value(CPUVoltage) }
func (s Snapshot) CPUUsage() (float64, bool)       { return s.Value(CPUUsage) }
func (s Snapshot) CPUCurrent() (float64, bool)     { return s.Value(CPUCurrent) }

// Empty reports whether no metric was observed.
func (s Snapshot) Empty() bool {
	for _, ok := range s.present {
		if ok {
			return false
		}
	}
	return true
}

func (s Snapshot) Meta() SnapshotMeta {
	return SnapshotMeta{
		Cycle:        s.cycle,
		CollectedAt:  s.collectedAt,
		PollTime:     s.pollTime,
		SensorCount:  s.sensorCount,
		ReadingCount: s.readingCount,
	}
}

type snapshotJSON struct {
	Cycle        uint64             `json:"cycle"`
	CollectedAt  time.Time          `json:"collected_at"`
	PollTime     time.Time          `json:"poll_time"`
	SensorCount  int                `json:"sensors"`
	ReadingCount int                `json:"readings"`
	Values       map[string]float64 `json:"values"`
}

// MarshalJSON emits only the metrics that were observed.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{
		Cycle:        s.cycle,
		CollectedAt:  s.collectedAt,
		PollTime:     s.pollTime,
		SensorCount:  s.sensorCount,
		ReadingCount: s.readingCount,
		Values:       make(map[string]float64, metricCount),
	}
	for _, m := range Metrics {
		if v, ok := s.Value(m); ok {
			out.Values[m.String()] = v
		}
	}
	return json.Marshal(out)
}
