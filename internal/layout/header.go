// Package layout decodes the producer's shared-memory segment: a fixed
// header followed by two arrays (sensors, readings) whose offsets, element
// sizes and counts come from the header. Every number read from the
// segment is untrusted; nothing is indexed without a bounds check first.
package layout

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/ghalamif/SensorFlow/internal/domain"
)

const (
	// Signature is "HWiS" read as a little-endian uint32.
	Signature uint32 = 0x53695748
	// SignatureDead is written by the producer when it stops updating.
	SignatureDead uint32 = 0x44414544

	// MaxKnownVersion is the newest layout version this decoder was
	// written against.
	MaxKnownVersion uint32 = 2

	HeaderSize = 44
)

// Header is the fixed prefix of the segment.
type Header struct {
	Signature uint32
	Version   uint32
	Revision  uint32
	PollTime  int64

	SensorOffset uint32
	SensorSize   uint32
	SensorCount  uint32

	ReadingOffset uint32
	ReadingSize   uint32
	ReadingCount  uint32
}

// Policy tunes how strictly a segment is accepted.
type Policy struct {
	// StrictVersion rejects layouts newer than MaxKnownVersion.
	StrictVersion bool
}

// LastPoll converts PollTime (Unix seconds) to a time. Zero stays zero.
func (h Header) LastPoll() time.Time {
	if h.PollTime == 0 {
		return time.Time{}
	}
	return time.Unix(h.PollTime, 0)
}

// DecodeHeader reads the header from the start of buf and checks its
// signature. Nothing past HeaderSize is touched.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("%w: have %d bytes, header needs %d", domain.ErrBufferTooSmall, len(buf), HeaderSize)
	}

	le := binary.LittleEndian
	h := Header{
		Signature:     le.Uint32(buf[0:4]),
		Version:       le.Uint32(buf[4:8]),
		Revision:      le.Uint32(buf[8:12]),
		PollTime:      int64(le.Uint64(buf[12:20])),
		SensorOffset:  le.Uint32(buf[20:24]),
		SensorSize:    le.Uint32(buf[24:28]),
		SensorCount:   le.Uint32(buf[28:32]),
		ReadingOffset: le.Uint32(buf[32:36]),
		ReadingSize:   le.Uint32(buf[36:40]),
		ReadingCount:  le.Uint32(buf[40:44]),
	}

	switch h.Signature {
	case Signature:
	case SignatureDead:
		return h, fmt.Errorf("%w: %w", domain.ErrSignatureMismatch, domain.ErrProducerInactive)
	default:
		return h, fmt.Errorf("%w: got 0x%08x, want 0x%08x", domain.ErrSignatureMismatch, h.Signature, Signature)
	}
	return h, nil
}

// Check applies the version policy and the minimum element sizes.
func (h Header) Check(pol Policy) error {
	if h.Version == 0 {
		return fmt.Errorf("%w: version 0", domain.ErrUnsupportedVersion)
	}
	if pol.StrictVersion && h.Version > MaxKnownVersion {
		return fmt.Errorf("%w: version %d newer than %d", domain.ErrUnsupportedVersion, h.Version, MaxKnownVersion)
	}
	if h.SensorCount > 0 && h.SensorSize < SensorElementSize {
		return fmt.Errorf("%w: sensor element size %d < %d", domain.ErrCorruptCycle, h.SensorSize, SensorElementSize)
	}
	if h.ReadingCount > 0 && h.ReadingSize < ReadingElementSize {
		return fmt.Errorf("%w: reading element size %d < %d", domain.ErrCorruptCycle, h.ReadingSize, ReadingElementSize)
	}
	return nil
}

// AppendHeader appends the wire form of h to dst.
func AppendHeader(dst []byte, h Header) []byte {
	le := binary.LittleEndian
	dst = le.AppendUint32(dst, h.Signature)
	dst = le.AppendUint32(dst, h.Version)
	dst = le.AppendUint32(dst, h.Revision)
	dst = le.AppendUint64(dst, uint64(h.PollTime))
	dst = le.AppendUint32(dst, h.SensorOffset)
	dst = le.AppendUint32(dst, h.SensorSize)
	dst = le.AppendUint32(dst, h.SensorCount)
	dst = le.AppendUint32(dst, h.ReadingOffset)
	dst = le.AppendUint32(dst, h.ReadingSize)
	dst = le.AppendUint32(dst, h.ReadingCount)
	return dst
}
