package layout

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ghalamif/SensorFlow/internal/domain"
)

// Minimum element sizes. Producers may declare larger elements when they
// append fields; only the prefix below is decoded.
const (
	SensorElementSize  = 4 + 4 + NameLen + NameLen
	ReadingElementSize = 4 + 4 + 4 + NameLen + NameLen + UnitLen + 4*8
)

// Field offsets inside a sensor element.
const (
	sensorOffID       = 0
	sensorOffInstance = 4
	sensorOffNameOrig = 8
	sensorOffNameUser = sensorOffNameOrig + NameLen
)

// Field offsets inside a reading element.
const (
	readingOffType        = 0
	readingOffSensorIndex = 4
	readingOffID          = 8
	readingOffLabelOrig   = 12
	readingOffLabelUser   = readingOffLabelOrig + NameLen
	readingOffUnit        = readingOffLabelUser + NameLen
	readingOffValue       = readingOffUnit + UnitLen
	readingOffMin         = readingOffValue + 8
	readingOffMax         = readingOffMin + 8
	readingOffAvg         = readingOffMax + 8
)

// Catalog is the fully decoded content of one cycle.
type Catalog struct {
	Header   Header
	Sensors  []domain.SensorDescriptor
	Readings []domain.ReadingDescriptor
}

// Decode reads the header, applies pol and builds the catalog from buf.
func Decode(buf []byte, pol Policy) (Catalog, error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return Catalog{}, err
	}
	if err := h.Check(pol); err != nil {
		return Catalog{}, err
	}
	return BuildCatalog(buf, h)
}

// BuildCatalog walks both arrays described by h. Any bad element fails
// the whole build with ErrCorruptCycle; a partial sensor list would make
// reading-to-sensor joins unsafe, so nothing partial is returned.
func BuildCatalog(buf []byte, h Header) (Catalog, error) {
	sensors := make([]domain.SensorDescriptor, 0, maxElements(buf, h.SensorOffset, h.SensorSize, h.SensorCount))
	for i := uint32(0); i < h.SensorCount; i++ {
		el, err := Element(buf, h.SensorOffset, h.SensorSize, i)
		if err != nil {
			return Catalog{}, fmt.Errorf("%w: sensor %d: %w", domain.ErrCorruptCycle, i, err)
		}
		s, err := decodeSensor(el)
		if err != nil {
			return Catalog{}, fmt.Errorf("%w: sensor %d: %w", domain.ErrCorruptCycle, i, err)
		}
		sensors = append(sensors, s)
	}

	readings := make([]domain.ReadingDescriptor, 0, maxElements(buf, h.ReadingOffset, h.ReadingSize, h.ReadingCount))
	for i := uint32(0); i < h.ReadingCount; i++ {
		el, err := Element(buf, h.ReadingOffset, h.ReadingSize, i)
		if err != nil {
			return Catalog{}, fmt.Errorf("%w: reading %d: %w", domain.ErrCorruptCycle, i, err)
		}
		r, err := decodeReading(el)
		if err != nil {
			return Catalog{}, fmt.Errorf("%w: reading %d: %w", domain.ErrCorruptCycle, i, err)
		}
		if int64(r.SensorIndex) >= int64(len(sensors)) {
			return Catalog{}, fmt.Errorf("%w: reading %d: sensor index %d out of range [0,%d)", domain.ErrCorruptCycle, i, r.SensorIndex, len(sensors))
		}
		readings = append(readings, r)
	}

	return Catalog{Header: h, Sensors: sensors, Readings: readings}, nil
}

func decodeSensor(el []byte) (domain.SensorDescriptor, error) {
	if len(el) < SensorElementSize {
		return domain.SensorDescriptor{}, fmt.Errorf("%w: sensor element is %d bytes", domain.ErrOutOfBounds, len(el))
	}
	le := binary.LittleEndian
	orig, err := decodeString(el[sensorOffNameOrig:sensorOffNameUser])
	if err != nil {
		return domain.SensorDescriptor{}, fmt.Errorf("original name: %w", err)
	}
	user, err := decodeString(el[sensorOffNameUser : sensorOffNameUser+NameLen])
	if err != nil {
		return domain.SensorDescriptor{}, fmt.Errorf("user name: %w", err)
	}
	return domain.SensorDescriptor{
		ID:       le.Uint32(el[sensorOffID:]),
		Instance: le.Uint32(el[sensorOffInstance:]),
		NameOrig: orig,
		NameUser: user,
	}, nil
}

func decodeReading(el []byte) (domain.ReadingDescriptor, error) {
	if len(el) < ReadingElementSize {
		return domain.ReadingDescriptor{}, fmt.Errorf("%w: reading element is %d bytes", domain.ErrOutOfBounds, len(el))
	}
	le := binary.LittleEndian
	typ := domain.ReadingType(le.Uint32(el[readingOffType:]))
	if !typ.Valid() {
		return domain.ReadingDescriptor{}, fmt.Errorf("unknown reading type %d", uint32(typ))
	}
	labelOrig, err := decodeString(el[readingOffLabelOrig:readingOffLabelUser])
	if err != nil {
		return domain.ReadingDescriptor{}, fmt.Errorf("original label: %w", err)
	}
	labelUser, err := decodeString(el[readingOffLabelUser:readingOffUnit])
	if err != nil {
		return domain.ReadingDescriptor{}, fmt.Errorf("user label: %w", err)
	}
	unit, err := decodeString(el[readingOffUnit:readingOffValue])
	if err != nil {
		return domain.ReadingDescriptor{}, fmt.Errorf("unit: %w", err)
	}
	return domain.ReadingDescriptor{
		Type:        typ,
		SensorIndex: le.Uint32(el[readingOffSensorIndex:]),
		ID:          le.Uint32(el[readingOffID:]),
		LabelOrig:   labelOrig,
		LabelUser:   labelUser,
		Unit:        unit,
		Value:       math.Float64frombits(le.Uint64(el[readingOffValue:])),
		Min:         math.Float64frombits(le.Uint64(el[readingOffMin:])),
		Max:         math.Float64frombits(le.Uint64(el[readingOffMax:])),
		Avg:         math.Float64frombits(le.Uint64(el[readingOffAvg:])),
	}, nil
}
