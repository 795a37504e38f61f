package ports

import "github.com/ghalamif/SensorFlow/internal/domain"

type SnapshotQueue interface {
	// Enqueue returns false when the queue is full.
	Enqueue(s domain.Snapshot) bool
	DequeueBatch(max int) []domain.Snapshot
	Len() int
}
