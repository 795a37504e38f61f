package pipeline

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghalamif/SensorFlow/internal/domain"
	"github.com/ghalamif/SensorFlow/internal/layout"
)

func TestRunCycleExtractsRelevantMetrics(t *testing.T) {
	now := time.Unix(1_700_000_005, 0)
	snap, err := RunCycle(sampleSegment(), layout.Policy{}, 4, now)
	require.NoError(t, err)

	temp, ok := snap.CPUTemperature()
	require.True(t, ok)
	assert.Equal(t, 47.5, temp)
	_, ok = snap.GPUFrequency()
	assert.False(t, ok, "fan sensor must not contribute")

	meta := snap.Meta()
	assert.Equal(t, uint64(4), meta.Cycle)
	assert.Equal(t, now, meta.CollectedAt)
	assert.Equal(t, int64(1_700_000_000), meta.PollTime.Unix())
	assert.Equal(t, 2, meta.SensorCount)
	assert.Equal(t, 2, meta.ReadingCount)
}

func TestRunCycleFailsClosed(t *testing.T) {
	valid := sampleSegment()

	badSig := append([]byte(nil), valid...)
	copy(badSig, "XXXX")

	truncated := valid[:len(valid)-10]

	_, err := RunCycle(badSig, layout.Policy{}, 1, time.Now())
	assert.ErrorIs(t, err, domain.ErrSignatureMismatch)

	_, err = RunCycle(truncated, layout.Policy{}, 1, time.Now())
	assert.ErrorIs(t, err, domain.ErrCorruptCycle)

	_, err = RunCycle(nil, layout.Policy{}, 1, time.Now())
	assert.ErrorIs(t, err, domain.ErrBufferTooSmall)
}

func TestFailureReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: %w", domain.ErrSignatureMismatch, domain.ErrProducerInactive), ReasonInactive},
		{domain.ErrSignatureMismatch, ReasonSignature},
		{fmt.Errorf("header: %w", domain.ErrBufferTooSmall), ReasonTooSmall},
		{domain.ErrUnsupportedVersion, ReasonVersion},
		{fmt.Errorf("%w: reading 3: %w", domain.ErrCorruptCycle, domain.ErrOutOfBounds), ReasonCorrupt},
		{domain.ErrOutOfBounds, ReasonOutOfBounds},
		{errors.New("other"), ReasonUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FailureReason(tt.err), "error %v", tt.err)
	}
}
