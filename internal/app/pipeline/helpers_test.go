package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ghalamif/SensorFlow/internal/domain"
	"github.com/ghalamif/SensorFlow/internal/layout"
	"github.com/ghalamif/SensorFlow/internal/ports"
)

func sampleSegment() []byte {
	return layout.Segment{
		Version:  2,
		PollTime: 1_700_000_000,
		Sensors: []domain.SensorDescriptor{
			{ID: 0xf0000300, NameOrig: "CPU Package"},
			{ID: 0xf0000400, NameOrig: "Fan1"},
		},
		Readings: []domain.ReadingDescriptor{
			{Type: domain.ReadingTemperature, SensorIndex: 0, LabelOrig: "CPU Package", Unit: "°C", Value: 47.5},
			{Type: domain.ReadingFan, SensorIndex: 1, LabelOrig: "Fan1", Unit: "RPM", Value: 1200},
		},
	}.Bytes()
}

type memSegment struct {
	mu     sync.Mutex
	data   []byte
	closes int
}

func (m *memSegment) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data
}

func (m *memSegment) set(data []byte) {
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
}

func (m *memSegment) Close() error {
	m.mu.Lock()
	m.closes++
	m.mu.Unlock()
	return nil
}

func (m *memSegment) closeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

type countingOpener struct {
	seg   ports.Segment
	err   error
	calls atomic.Int32
}

func (o *countingOpener) Open() (ports.Segment, error) {
	o.calls.Add(1)
	if o.err != nil {
		return nil, o.err
	}
	return o.seg, nil
}

type recorder struct {
	ch chan domain.Snapshot
}

func newRecorder() *recorder { return &recorder{ch: make(chan domain.Snapshot, 256)} }

func (r *recorder) OnSnapshot(s domain.Snapshot) { r.ch <- s }

func (r *recorder) next(t *testing.T) domain.Snapshot {
	t.Helper()
	select {
	case s := <-r.ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for snapshot")
		return domain.Snapshot{}
	}
}

type subFunc func(domain.Snapshot)

func (f subFunc) OnSnapshot(s domain.Snapshot) { f(s) }

type fakeProbe struct {
	status ports.ProducerStatus
	err    error
}

func (p fakeProbe) Probe(context.Context) (ports.ProducerStatus, error) { return p.status, p.err }

type mockObs struct {
	mu       sync.Mutex
	counters map[string]float64
	failures []string
	warns    []string
	errors   []error
	observed int
}

func newMockObs() *mockObs { return &mockObs{counters: map[string]float64{}} }

func (m *mockObs) LogInfo(string, ...ports.Field) {}

func (m *mockObs) LogWarn(msg string, _ error, _ ...ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warns = append(m.warns, msg)
}

func (m *mockObs) LogError(_ string, err error, _ ...ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, err)
}

func (m *mockObs) LogCritical(string, error, ...ports.Field) {}

func (m *mockObs) IncCounter(name string, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += v
}

func (m *mockObs) ObserveLatency(string, float64) {}
func (m *mockObs) SetGauge(string, float64)       {}

func (m *mockObs) RecordCycleFailure(_ uint64, reason string, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, reason)
}

func (m *mockObs) ObserveSnapshot(domain.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observed++
}

func (m *mockObs) counter(name string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

func (m *mockObs) failureReasons() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.failures...)
}

func (m *mockObs) errorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errors)
}

// eventually polls cond until it holds or two seconds pass.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met: %s", msg)
		}
		time.Sleep(time.Millisecond)
	}
}
