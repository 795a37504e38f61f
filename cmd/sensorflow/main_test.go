package main

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghalamif/SensorFlow/internal/adapters/observability"
	"github.com/ghalamif/SensorFlow/internal/app/mock"
	"github.com/ghalamif/SensorFlow/internal/domain"
	"github.com/ghalamif/SensorFlow/internal/layout"
	"github.com/ghalamif/SensorFlow/internal/ports"
)

func TestBuildReportMarksRelevantReadings(t *testing.T) {
	rep, err := buildReport(mock.Frame(0, time.Now()).Bytes(), layout.Policy{})
	require.NoError(t, err)

	require.Len(t, rep.Sensors, 3)
	assert.True(t, rep.Sensors[0].Relevant)
	assert.Equal(t, "GPU Core", rep.Sensors[1].Name)
	assert.False(t, rep.Sensors[2].Relevant)

	for _, r := range rep.Readings {
		switch {
		case r.Sensor == 2:
			assert.Empty(t, r.Metric, "irrelevant sensor reading %q", r.Label)
		case r.Type == domain.ReadingClock.String():
			assert.Empty(t, r.Metric)
		default:
			assert.NotEmpty(t, r.Metric, "reading %q", r.Label)
		}
	}

	var out bytes.Buffer
	require.NoError(t, printReport(&out, rep))
	assert.Contains(t, out.String(), "cpu_temperature")
	assert.Contains(t, out.String(), "Total CPU Usage")
}

func TestBuildReportRejectsCorruptSegment(t *testing.T) {
	_, err := buildReport([]byte("HWiS"), layout.Policy{})
	assert.ErrorIs(t, err, domain.ErrBufferTooSmall)
}

func TestPrintMetricsSnapshot(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := observability.NewPromObs(reg, nil)
	obs.IncCounter(ports.MetricCycles, 12)
	obs.RecordCycleFailure(3, "signature_mismatch", domain.ErrSignatureMismatch)

	var b domain.SnapshotBuilder
	b.Set(domain.CPUTemperature, 51.25)
	obs.ObserveSnapshot(b.Build(domain.SnapshotMeta{}))

	srv := httptest.NewServer(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	defer srv.Close()

	var out bytes.Buffer
	require.NoError(t, printMetricsSnapshot(&out, srv.URL))

	line := out.String()
	for _, want := range []string{"cycles=12", "failed=1", "skipped=0", "cpu_temperature=51.25"} {
		assert.True(t, strings.Contains(line, want), "missing %q in %q", want, line)
	}
}
