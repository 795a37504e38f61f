package layout

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghalamif/SensorFlow/internal/domain"
)

func TestDecodeHeaderRoundTrip(t *testing.T) {
	headers := []Header{
		{Signature: Signature, Version: 2, Revision: 1, PollTime: 1_700_000_000,
			SensorOffset: 44, SensorSize: 264, SensorCount: 3,
			ReadingOffset: 836, ReadingSize: 316, ReadingCount: 7},
		{Signature: Signature, Version: 1, PollTime: -1,
			SensorOffset: 0xFFFFFFFF, SensorSize: 0xFFFFFFFF, SensorCount: 0xFFFFFFFF,
			ReadingOffset: 0xFFFFFFFF, ReadingSize: 0xFFFFFFFF, ReadingCount: 0xFFFFFFFF},
		{Signature: Signature},
	}

	for _, want := range headers {
		buf := AppendHeader(nil, want)
		require.Len(t, buf, HeaderSize)

		got, err := DecodeHeader(buf)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestDecodeHeaderIgnoresTrailingBytes(t *testing.T) {
	want := Header{Signature: Signature, Version: 2, SensorCount: 4}
	buf := append(AppendHeader(nil, want), 0xde, 0xad, 0xbe, 0xef)

	got, err := DecodeHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeHeaderBufferTooSmall(t *testing.T) {
	buf := AppendHeader(nil, Header{Signature: Signature, Version: 2})
	for n := 0; n < HeaderSize; n++ {
		_, err := DecodeHeader(buf[:n])
		require.ErrorIs(t, err, domain.ErrBufferTooSmall, "length %d", n)
	}
}

func TestDecodeHeaderSignatureMismatch(t *testing.T) {
	buf := AppendHeader(nil, Header{Signature: 0x004F494D, Version: 2})

	_, err := DecodeHeader(buf)
	require.ErrorIs(t, err, domain.ErrSignatureMismatch)
	assert.NotErrorIs(t, err, domain.ErrProducerInactive)
}

func TestDecodeHeaderDeadProducer(t *testing.T) {
	buf := AppendHeader(nil, Header{Signature: SignatureDead, Version: 2})

	_, err := DecodeHeader(buf)
	require.ErrorIs(t, err, domain.ErrSignatureMismatch)
	assert.ErrorIs(t, err, domain.ErrProducerInactive)
}

func TestSignatureSpellsHWiS(t *testing.T) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], Signature)
	assert.Equal(t, "HWiS", string(b[:]))
	binary.LittleEndian.PutUint32(b[:], SignatureDead)
	assert.Equal(t, "DEAD", string(b[:]))
}

func TestHeaderCheck(t *testing.T) {
	valid := Header{Signature: Signature, Version: 2,
		SensorSize: SensorElementSize, SensorCount: 1,
		ReadingSize: ReadingElementSize, ReadingCount: 1}

	tests := []struct {
		name    string
		mutate  func(*Header)
		pol     Policy
		wantErr error
	}{
		{name: "valid", mutate: func(*Header) {}},
		{name: "larger elements accepted", mutate: func(h *Header) {
			h.SensorSize += 64
			h.ReadingSize += 128
		}},
		{name: "version zero", mutate: func(h *Header) { h.Version = 0 }, wantErr: domain.ErrUnsupportedVersion},
		{name: "newer version lenient", mutate: func(h *Header) { h.Version = MaxKnownVersion + 1 }},
		{name: "newer version strict", mutate: func(h *Header) { h.Version = MaxKnownVersion + 1 },
			pol: Policy{StrictVersion: true}, wantErr: domain.ErrUnsupportedVersion},
		{name: "sensor element too small", mutate: func(h *Header) { h.SensorSize = SensorElementSize - 1 },
			wantErr: domain.ErrCorruptCycle},
		{name: "reading element too small", mutate: func(h *Header) { h.ReadingSize = 12 },
			wantErr: domain.ErrCorruptCycle},
		{name: "empty arrays ignore sizes", mutate: func(h *Header) {
			h.SensorCount, h.SensorSize = 0, 0
			h.ReadingCount, h.ReadingSize = 0, 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := valid
			tt.mutate(&h)
			err := h.Check(tt.pol)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
