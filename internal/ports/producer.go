package ports

import "context"

// ProducerStatus describes the external producer process.
type ProducerStatus struct {
	Running bool
	Name    string
	PID     int32
}

type ProducerProbe interface {
	Probe(ctx context.Context) (ProducerStatus, error)
}
