package sensorflow

import (
	"sync"
)

// SubscriberFunc adapts a function to Subscriber. Stop waits for a
// running call to return, so the function must not block indefinitely.
type SubscriberFunc func(Snapshot)

func (f SubscriberFunc) OnSnapshot(s Snapshot) {
	if f != nil {
		f(s)
	}
}

// NewChannelSubscriber exposes snapshots via a channel; it returns the
// subscriber, the read-only channel, and a close function that the caller
// should invoke during shutdown. Delivery never blocks: when the channel
// is full the oldest buffered snapshot is replaced. Snapshots arriving
// after close are dropped.
func NewChannelSubscriber(buffer int) (Subscriber, <-chan Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)
	s := &channelSubscriber{
		ch:     ch,
		closed: make(chan struct{}),
	}
	return s, ch, s.close
}

type channelSubscriber struct {
	// mu orders sends against close(ch).
	mu     sync.Mutex
	ch     chan Snapshot
	closed chan struct{}
	once   sync.Once
}

func (s *channelSubscriber) OnSnapshot(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.closed:
		return
	default:
	}

	for attempt := 0; attempt < 2; attempt++ {
		select {
		case s.ch <- snap:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

func (s *channelSubscriber) close() {
	s.once.Do(func() {
		close(s.closed)
		s.mu.Lock()
		close(s.ch)
		s.mu.Unlock()
	})
}
