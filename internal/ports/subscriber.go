package ports

import "github.com/ghalamif/SensorFlow/internal/domain"

// Subscriber receives snapshots in poll order, never concurrently.
type Subscriber interface {
	OnSnapshot(s domain.Snapshot)
}

// Publisher hands snapshots from the poll loop to a Subscriber.
type Publisher interface {
	Publish(s domain.Snapshot)
	// Close stops delivery after flushing anything already accepted.
	Close() error
}
