package queue

import (
	"sync"

	"github.com/ghalamif/SensorFlow/internal/domain"
	"github.com/ghalamif/SensorFlow/internal/ports"
)

// MemQueue is a bounded FIFO of snapshots backed by a fixed ring, so a
// queue that is drained one element at a time never shifts its contents.
type MemQueue struct {
	mu   sync.Mutex
	ring []domain.Snapshot
	head int
	n    int
}

// NewMemQueue returns a queue holding at most capacity snapshots. A
// capacity below one is raised to one.
func NewMemQueue(capacity int) *MemQueue {
	return &MemQueue{ring: make([]domain.Snapshot, max(capacity, 1))}
}

// Enqueue appends s, reporting false when the queue is full.
func (q *MemQueue) Enqueue(s domain.Snapshot) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.n == len(q.ring) {
		return false
	}
	q.ring[(q.head+q.n)%len(q.ring)] = s
	q.n++
	return true
}

// DequeueBatch removes up to limit snapshots from the front, oldest
// first. A non-positive limit takes everything. An empty queue yields nil.
func (q *MemQueue) DequeueBatch(limit int) []domain.Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.n == 0 {
		return nil
	}
	if limit <= 0 || limit > q.n {
		limit = q.n
	}
	out := make([]domain.Snapshot, limit)
	for i := range out {
		out[i] = q.ring[q.head]
		q.ring[q.head] = domain.Snapshot{}
		q.head = (q.head + 1) % len(q.ring)
	}
	q.n -= limit
	if q.n == 0 {
		q.head = 0
	}
	return out
}

func (q *MemQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}

func (q *MemQueue) Cap() int { return len(q.ring) }

var _ ports.SnapshotQueue = (*MemQueue)(nil)
