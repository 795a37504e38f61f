package layout

import (
	"encoding/binary"
	"math"

	"github.com/ghalamif/SensorFlow/internal/domain"
)

// Segment describes a synthetic segment in producer order. Bytes lays it
// out exactly as the producer would: header, sensor array, reading array.
// It backs the mock producer and the tests.
type Segment struct {
	Version  uint32
	Revision uint32
	PollTime int64
	// Dead writes the "DEAD" signature instead of the live one.
	Dead bool

	// SensorPad and ReadingPad grow each element past its minimum size,
	// the way newer producers append fields.
	SensorPad  uint32
	ReadingPad uint32

	Sensors  []domain.SensorDescriptor
	Readings []domain.ReadingDescriptor
}

// Header returns the header Bytes would write.
func (s Segment) Header() Header {
	sig := Signature
	if s.Dead {
		sig = SignatureDead
	}
	sensorSize := uint32(SensorElementSize) + s.SensorPad
	readingSize := uint32(ReadingElementSize) + s.ReadingPad
	sensorOff := uint32(HeaderSize)
	readingOff := sensorOff + sensorSize*uint32(len(s.Sensors))
	return Header{
		Signature:     sig,
		Version:       s.Version,
		Revision:      s.Revision,
		PollTime:      s.PollTime,
		SensorOffset:  sensorOff,
		SensorSize:    sensorSize,
		SensorCount:   uint32(len(s.Sensors)),
		ReadingOffset: readingOff,
		ReadingSize:   readingSize,
		ReadingCount:  uint32(len(s.Readings)),
	}
}

// Bytes encodes the segment.
func (s Segment) Bytes() []byte {
	h := s.Header()
	size := uint64(h.ReadingOffset) + uint64(h.ReadingSize)*uint64(h.ReadingCount)
	buf := make([]byte, 0, size)
	buf = AppendHeader(buf, h)

	for _, sensor := range s.Sensors {
		el := make([]byte, h.SensorSize)
		EncodeSensor(el, sensor)
		buf = append(buf, el...)
	}
	for _, r := range s.Readings {
		el := make([]byte, h.ReadingSize)
		EncodeReading(el, r)
		buf = append(buf, el...)
	}
	return buf
}

// EncodeSensor writes sensor into el, which must hold SensorElementSize
// bytes.
func EncodeSensor(el []byte, sensor domain.SensorDescriptor) {
	le := binary.LittleEndian
	le.PutUint32(el[sensorOffID:], sensor.ID)
	le.PutUint32(el[sensorOffInstance:], sensor.Instance)
	encodeString(el[sensorOffNameOrig:sensorOffNameUser], sensor.NameOrig)
	encodeString(el[sensorOffNameUser:sensorOffNameUser+NameLen], sensor.NameUser)
}

// EncodeReading writes r into el, which must hold ReadingElementSize bytes.
func EncodeReading(el []byte, r domain.ReadingDescriptor) {
	le := binary.LittleEndian
	le.PutUint32(el[readingOffType:], uint32(r.Type))
	le.PutUint32(el[readingOffSensorIndex:], r.SensorIndex)
	le.PutUint32(el[readingOffID:], r.ID)
	encodeString(el[readingOffLabelOrig:readingOffLabelUser], r.LabelOrig)
	encodeString(el[readingOffLabelUser:readingOffUnit], r.LabelUser)
	encodeString(el[readingOffUnit:readingOffValue], r.Unit)
	le.PutUint64(el[readingOffValue:], math.Float64bits(r.Value))
	le.PutUint64(el[readingOffMin:], math.Float64bits(r.Min))
	le.PutUint64(el[readingOffMax:], math.Float64bits(r.Max))
	le.PutUint64(el[readingOffAvg:], math.Float64bits(r.Avg))
}
