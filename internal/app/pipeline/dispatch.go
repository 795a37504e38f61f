package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/ghalamif/SensorFlow/internal/domain"
	"github.com/ghalamif/SensorFlow/internal/ports"
)

// NewPublisher returns a synchronous publisher when pol does not queue,
// and otherwise a queued one draining q on its own goroutine.
func NewPublisher(sub ports.Subscriber, q ports.SnapshotQueue, pol ports.DispatchPolicy, obs ports.Observability) ports.Publisher {
	if !pol.Queued() || q == nil {
		return &syncPublisher{sub: sub, obs: obs}
	}
	p := &queuedPublisher{
		sub:  sub,
		q:    q,
		pol:  pol,
		obs:  obs,
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go p.dispatch()
	return p
}

type syncPublisher struct {
	sub ports.Subscriber
	obs ports.Observability
}

func (p *syncPublisher) Publish(s domain.Snapshot) { deliver(p.sub, s, p.obs) }
func (p *syncPublisher) Close() error              { return nil }

type queuedPublisher struct {
	sub ports.Subscriber
	q   ports.SnapshotQueue
	pol ports.DispatchPolicy
	obs ports.Observability

	wake      chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func (p *queuedPublisher) Publish(s domain.Snapshot) {
	if dropped := enqueueWithPolicy(p.q, s, p.pol, p.obs); dropped > 0 {
		p.obs.IncCounter(ports.MetricSnapshotsDrop, float64(dropped))
	}
	p.obs.SetGauge(ports.MetricQueueLength, float64(p.q.Len()))

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Close delivers what is already queued, then stops the dispatcher.
func (p *queuedPublisher) Close() error {
	p.closeOnce.Do(func() { close(p.quit) })
	<-p.done
	return nil
}

func (p *queuedPublisher) dispatch() {
	defer close(p.done)
	for {
		batch := p.q.DequeueBatch(0)
		if len(batch) == 0 {
			select {
			case <-p.wake:
				continue
			case <-p.quit:
				if p.q.Len() == 0 {
					return
				}
				continue
			}
		}

		for _, s := range batch {
			deliver(p.sub, s, p.obs)
		}
		p.obs.SetGauge(ports.MetricQueueLength, float64(p.q.Len()))
	}
}

// enqueueWithPolicy returns how many snapshots were lost making room.
func enqueueWithPolicy(q ports.SnapshotQueue, s domain.Snapshot, pol ports.DispatchPolicy, obs ports.Observability) int {
	dropped := 0
	for {
		if ok := q.Enqueue(s); ok {
			return dropped
		}

		switch pol.OnQueueFull {
		case ports.DropNewest:
			obs.LogWarn("queue_full_drop", fmt.Errorf("queue length exceeded capacity %d", pol.QueueLen),
				ports.Field{Key: "cycle", Value: s.Meta().Cycle})
			return dropped + 1
		case ports.DropOldest, "":
			// The dispatcher may have emptied the queue meanwhile; then
			// nothing is evicted and the retry succeeds.
			for _, old := range q.DequeueBatch(1) {
				dropped++
				obs.LogWarn("queue_full_evict", fmt.Errorf("queue length exceeded capacity %d", pol.QueueLen),
					ports.Field{Key: "cycle", Value: old.Meta().Cycle})
			}
		default:
			obs.LogError("queue_policy_invalid", fmt.Errorf("policy=%s", pol.OnQueueFull))
			return dropped + 1
		}
	}
}

// deliver hands s to sub. A panicking subscriber loses that snapshot and
// nothing else.
func deliver(sub ports.Subscriber, s domain.Snapshot, obs ports.Observability) {
	if sub == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			obs.LogError("subscriber_panic", fmt.Errorf("%v", r), ports.Field{Key: "cycle", Value: s.Meta().Cycle})
		}
	}()
	start := time.Now()
	sub.OnSnapshot(s)
	obs.ObserveLatency(ports.MetricDispatchLatency, time.Since(start).Seconds())
}
