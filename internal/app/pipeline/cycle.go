package pipeline

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/ghalamif/SensorFlow/internal/classify"
	"github.com/ghalamif/SensorFlow/internal/domain"
	"github.com/ghalamif/SensorFlow/internal/extract"
	"github.com/ghalamif/SensorFlow/internal/layout"
	"github.com/ghalamif/SensorFlow/internal/ports"
)

// CopySegment copies the mapped region into dst, reusing its capacity.
// The producer owns the mapping and may shrink it under us; a fault while
// reading it is returned as domain.ErrCorruptCycle instead of killing
// the process.
func CopySegment(dst []byte, seg ports.Segment) (out []byte, err error) {
	defer debug.SetPanicOnFault(debug.SetPanicOnFault(true))
	defer func() {
		if r := recover(); r != nil {
			out = dst[:0]
			err = fmt.Errorf("%w: reading segment: %v", domain.ErrCorruptCycle, r)
		}
	}()
	return append(dst[:0], seg.Bytes()...), nil
}

// RunCycle decodes one private copy of the segment and extracts the
// relevant metrics. It never panics: anything unexpected surfaces as
// domain.ErrCorruptCycle.
func RunCycle(buf []byte, pol layout.Policy, cycle uint64, now time.Time) (snap domain.Snapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			snap = domain.Snapshot{}
			err = fmt.Errorf("%w: panic: %v", domain.ErrCorruptCycle, r)
		}
	}()

	cat, err := layout.Decode(buf, pol)
	if err != nil {
		return domain.Snapshot{}, err
	}

	b := extract.Extract(cat.Sensors, cat.Readings, classify.Sensor)
	return b.Build(domain.SnapshotMeta{
		Cycle:        cycle,
		CollectedAt:  now,
		PollTime:     cat.Header.LastPoll(),
		SensorCount:  len(cat.Sensors),
		ReadingCount: len(cat.Readings),
	}), nil
}

// Failure reasons used as the metrics label for skipped cycles.
const (
	ReasonInactive    = "producer_inactive"
	ReasonSignature   = "signature_mismatch"
	ReasonTooSmall    = "buffer_too_small"
	ReasonVersion     = "unsupported_version"
	ReasonCorrupt     = "corrupt_cycle"
	ReasonOutOfBounds = "out_of_bounds"
	ReasonPanic       = "panic"
	ReasonUnknown     = "unknown"
)

// FailureReason maps a cycle error onto a bounded label set. Wrapped
// errors are matched from the most specific sentinel outwards.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrProducerInactive):
		return ReasonInactive
	case errors.Is(err, domain.ErrSignatureMismatch):
		return ReasonSignature
	case errors.Is(err, domain.ErrBufferTooSmall):
		return ReasonTooSmall
	case errors.Is(err, domain.ErrUnsupportedVersion):
		return ReasonVersion
	case errors.Is(err, domain.ErrCorruptCycle):
		return ReasonCorrupt
	case errors.Is(err, domain.ErrOutOfBounds):
		return ReasonOutOfBounds
	default:
		return ReasonUnknown
	}
}
