package ports

// Queue-full policies for queued dispatch.
const (
	DropOldest = "drop_oldest"
	DropNewest = "drop_newest"
)

type DispatchPolicy struct {
	// QueueLen bounds the snapshots waiting for the subscriber. Zero
	// delivers synchronously on the poll goroutine.
	QueueLen int

	OnQueueFull string // "drop_oldest", "drop_newest"
}

// Queued reports whether snapshots go through a dispatch queue.
func (p DispatchPolicy) Queued() bool { return p.QueueLen > 0 }
