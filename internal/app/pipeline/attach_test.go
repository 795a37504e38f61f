package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ghalamif/SensorFlow/internal/domain"
	"github.com/ghalamif/SensorFlow/internal/ports"
)

func TestExplainAttach(t *testing.T) {
	notFound := fmt.Errorf("%w: seg", domain.ErrSegmentNotFound)
	other := errors.New("mapping failed")
	tests := []struct {
		name  string
		err   error
		probe ports.ProducerProbe
		want  string
	}{
		{"running without shared memory", notFound, fakeProbe{status: ports.ProducerStatus{Running: true, Name: "HWiNFO64.exe", PID: 7}}, "HWiNFO64.exe is running as pid 7"},
		{"not running", notFound, fakeProbe{}, "producer is not running"},
		{"access denied", fmt.Errorf("%w: seg", domain.ErrAccessDenied), fakeProbe{}, "rights"},
		{"other errors untouched", other, fakeProbe{}, "mapping failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ExplainAttach(tt.err, tt.probe, nil)
			if !errors.Is(err, tt.err) {
				t.Fatalf("cause lost: %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %q", tt.want, err)
			}
		})
	}
}

func TestExplainAttachLogsProbeFailure(t *testing.T) {
	notFound := fmt.Errorf("%w: seg", domain.ErrSegmentNotFound)
	obs := newMockObs()

	err := ExplainAttach(notFound, fakeProbe{err: errors.New("no process table")}, obs)
	if err != notFound {
		t.Fatalf("probe failure must return the attach error unchanged, got %v", err)
	}
	if len(obs.warns) != 1 || obs.warns[0] != "producer_probe_failed" {
		t.Fatalf("expected one probe warning, got %v", obs.warns)
	}

	if err := ExplainAttach(notFound, fakeProbe{err: errors.New("again")}, nil); err != notFound {
		t.Fatalf("nil observability must be tolerated, got %v", err)
	}
}
