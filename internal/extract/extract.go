// Package extract turns one cycle's catalog into a Snapshot.
package extract

import (
	"github.com/ghalamif/SensorFlow/internal/domain"
)

// Classifier reports whether a sensor's readings should be considered.
type Classifier func(domain.SensorDescriptor) bool

// table maps reading types to snapshot metrics. Types missing here are
// ignored.
var table = map[domain.ReadingType]domain.Metric{
	domain.ReadingTemperature: domain.CPUTemperature,
	domain.ReadingPower:       domain.CPUPower,
	domain.ReadingFrequency:   domain.GPUFrequency,
	domain.ReadingVoltage:     domain.CPUVoltage,
	domain.ReadingUsage:       domain.CPUUsage,
	domain.ReadingCurrent:     domain.CPUCurrent,
}

// MetricFor returns the metric a reading type feeds, if any.
func MetricFor(t domain.ReadingType) (domain.Metric, bool) {
	m, ok := table[t]
	return m, ok
}

// Extract fills a SnapshotBuilder from readings whose owning sensor is
// relevant. When several readings feed the same metric the last one in
// iteration order wins. Sensor indexes must already be validated; a
// reading pointing past sensors is skipped.
func Extract(sensors []domain.SensorDescriptor, readings []domain.ReadingDescriptor, relevant Classifier) *domain.SnapshotBuilder {
	var b domain.SnapshotBuilder

	verdicts := make([]int8, len(sensors))
	for _, r := range readings {
		m, ok := table[r.Type]
		if !ok {
			continue
		}
		if int64(r.SensorIndex) >= int64(len(sensors)) {
			continue
		}
		idx := r.SensorIndex
		if verdicts[idx] == 0 {
			verdicts[idx] = -1
			if relevant(sensors[idx]) {
				verdicts[idx] = 1
			}
		}
		if verdicts[idx] < 0 {
			continue
		}
		b.Set(m, r.Value)
	}
	return &b
}
