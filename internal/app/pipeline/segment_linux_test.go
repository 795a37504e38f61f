//go:build linux

package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/ghalamif/SensorFlow/internal/adapters/shm"
	"github.com/ghalamif/SensorFlow/internal/domain"
)

const mappedSize = 64 << 10

// writeMappedFile writes a decodable segment padded to mappedSize.
func writeMappedFile(t *testing.T, path string) {
	t.Helper()
	data := make([]byte, mappedSize)
	copy(data, sampleSegment())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write segment: %v", err)
	}
}

// rawSegment hands out the whole mapping with no size check, so reads
// past a shrunk file hit unbacked pages.
type rawSegment struct {
	data []byte
}

func (r rawSegment) Bytes() []byte { return r.data }
func (r rawSegment) Close() error  { return nil }

func mapFile(t *testing.T, path string) []byte {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	data, err := unix.Mmap(int(f.Fd()), 0, mappedSize, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		t.Fatalf("mmap: %v", err)
	}
	t.Cleanup(func() { _ = unix.Munmap(data) })
	return data
}

func TestCopySegmentSurvivesTruncatedMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seg")
	writeMappedFile(t, path)
	seg := rawSegment{data: mapFile(t, path)}

	buf, err := CopySegment(nil, seg)
	if err != nil || len(buf) != mappedSize {
		t.Fatalf("copy of intact mapping: %d bytes, %v", len(buf), err)
	}

	if err := os.Truncate(path, 0); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	buf, err = CopySegment(buf, seg)
	if !errors.Is(err, domain.ErrCorruptCycle) {
		t.Fatalf("expected ErrCorruptCycle, got %v", err)
	}
	if len(buf) != 0 {
		t.Fatalf("failed copy must leave no bytes, got %d", len(buf))
	}
}

func TestSchedulerKeepsPollingWhenMappingFaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seg")
	writeMappedFile(t, path)
	rec := newRecorder()
	obs := newMockObs()
	s, _ := newTestScheduler(t, 5*time.Millisecond, rawSegment{data: mapFile(t, path)}, rec, obs)

	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	rec.next(t)

	if err := os.Truncate(path, 0); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	eventually(t, func() bool {
		for _, r := range obs.failureReasons() {
			if r == ReasonCorrupt {
				return true
			}
		}
		return false
	}, "fault reported as a corrupt cycle")

	if s.State() != StatePolling {
		t.Fatalf("expected polling after fault, got %s", s.State())
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestSchedulerRecoversWhenSegmentFileShrinks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seg")
	writeMappedFile(t, path)

	seg, err := shm.Open(shm.Config{Name: "seg", Dir: dir})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	rec := newRecorder()
	obs := newMockObs()
	s, _ := newTestScheduler(t, 5*time.Millisecond, seg, rec, obs)

	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	rec.next(t)

	if err := os.Truncate(path, 0); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	eventually(t, func() bool {
		for _, r := range obs.failureReasons() {
			if r == ReasonTooSmall {
				return true
			}
		}
		return false
	}, "shrunk segment reported as too small")

	for len(rec.ch) > 0 {
		<-rec.ch
	}
	if err := os.WriteFile(path, sampleSegment(), 0o644); err != nil {
		t.Fatalf("rewrite segment: %v", err)
	}
	snap := rec.next(t)
	if v, ok := snap.CPUTemperature(); !ok || v != 47.5 {
		t.Fatalf("unexpected cpu temperature after recovery: %v (present=%v)", v, ok)
	}
	if s.State() != StatePolling {
		t.Fatalf("expected polling, got %s", s.State())
	}
}
