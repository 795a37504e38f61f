package domain

// ReadingType is the closed set of reading tags published by the producer.
type ReadingType uint32

const (
	ReadingNone ReadingType = iota
	ReadingTemperature
	ReadingVoltage
	ReadingFan
	ReadingCurrent
	ReadingPower
	ReadingFrequency
	ReadingUsage
	ReadingOther
	ReadingClock

	readingTypeCount
)

var readingTypeNames = [readingTypeCount]string{
	"none", "temperature", "voltage", "fan", "current",
	"power", "frequency", "usage", "other", "clock",
}

// Valid reports whether t is one of the known tags.
func (t ReadingType) Valid() bool { return t < readingTypeCount }

func (t ReadingType) String() string {
	if !t.Valid() {
		return "invalid"
	}
	return readingTypeNames[t]
}

// SensorDescriptor identifies one physical or logical sensor. Its position
// in the per-cycle sensor slice is what readings refer to.
type SensorDescriptor struct {
	ID       uint32
	Instance uint32
	NameOrig string
	NameUser string
}

// ReadingDescriptor is one measured value and the sensor it belongs to.
type ReadingDescriptor struct {
	Type        ReadingType
	SensorIndex uint32
	ID          uint32
	LabelOrig   string
	LabelUser   string
	Unit        string
	Value       float64
	Min         float64
	Max         float64
	Avg         float64
}
