package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ghalamif/SensorFlow/internal/domain"
	"github.com/ghalamif/SensorFlow/internal/layout"
	"github.com/ghalamif/SensorFlow/internal/ports"
)

type State int32

const (
	StateIdle State = iota
	StateAttached
	StatePolling
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAttached:
		return "attached"
	case StatePolling:
		return "polling"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

type SchedulerConfig struct {
	// Interval between ticks. Zero means one second.
	Interval time.Duration
	Layout   layout.Policy
	Dispatch ports.DispatchPolicy
}

// Deps are the collaborators a Scheduler drives. Opener is required.
// NewQueue is required when the dispatch policy queues.
type Deps struct {
	Opener     ports.SegmentOpener
	Subscriber ports.Subscriber
	Obs        ports.Observability
	Probe      ports.ProducerProbe
	NewQueue   func(capacity int) ports.SnapshotQueue
}

type decodeFunc func(buf []byte, pol layout.Policy, cycle uint64, now time.Time) (domain.Snapshot, error)

// Scheduler owns the segment attachment and runs one decode cycle per
// tick. Cycles never overlap: a tick that comes due while the previous
// cycle is still running is skipped.
type Scheduler struct {
	cfg  SchedulerConfig
	deps Deps

	decode decodeFunc
	now    func() time.Time

	// mu serialises Start and Stop.
	mu       sync.Mutex
	state    atomic.Int32
	seg      ports.Segment
	pub      ports.Publisher
	cancel   context.CancelFunc
	loopDone chan struct{}

	// publishMu orders publication against cancellation: a cycle checks
	// the context and publishes under the read lock, Stop cancels under
	// the write lock.
	publishMu sync.RWMutex

	ticks    sync.WaitGroup
	inFlight atomic.Bool
	cycle    atomic.Uint64
	// buf is the per-cycle copy; only the in-flight tick touches it.
	buf []byte
}

func NewScheduler(cfg SchedulerConfig, deps Deps) (*Scheduler, error) {
	if deps.Opener == nil {
		return nil, errors.New("segment opener is required")
	}
	if cfg.Interval < 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", cfg.Interval)
	}
	if cfg.Interval == 0 {
		cfg.Interval = time.Second
	}
	if cfg.Dispatch.Queued() && deps.NewQueue == nil {
		return nil, errors.New("queued dispatch needs a queue constructor")
	}
	if deps.Obs == nil {
		deps.Obs = ports.NopObservability{}
	}
	return &Scheduler{
		cfg:    cfg,
		deps:   deps,
		decode: RunCycle,
		now:    time.Now,
	}, nil
}

func (s *Scheduler) State() State { return State(s.state.Load()) }

// Start attaches to the segment and begins polling with an immediate
// first tick. It is a no-op while already polling. Attach failures are
// returned as is and leave the scheduler in its previous state; the
// caller decides whether to retry.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.State() {
	case StateAttached, StatePolling:
		return nil
	}

	seg, err := s.deps.Opener.Open()
	if err != nil {
		err = ExplainAttach(err, s.deps.Probe, s.deps.Obs)
		s.deps.Obs.LogError("attach_failed", err)
		return err
	}
	s.seg = seg
	s.state.Store(int32(StateAttached))

	var q ports.SnapshotQueue
	if s.cfg.Dispatch.Queued() {
		q = s.deps.NewQueue(s.cfg.Dispatch.QueueLen)
	}
	s.pub = NewPublisher(s.deps.Subscriber, q, s.cfg.Dispatch, s.deps.Obs)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.loopDone = make(chan struct{})
	s.state.Store(int32(StatePolling))
	go s.loop(ctx, seg, s.pub, s.loopDone)

	s.deps.Obs.LogInfo("polling_started", ports.Field{Key: "interval", Value: s.cfg.Interval.String()})
	return nil
}

// Stop cancels future ticks, waits for an in-flight cycle to finish
// (its result is discarded), flushes the publisher and releases the
// segment. Stopping a scheduler that is not polling is a no-op.
//
// Stop must not be called from inside Subscriber.OnSnapshot.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.State() {
	case StateAttached, StatePolling:
	default:
		return nil
	}

	s.publishMu.Lock()
	s.cancel()
	s.publishMu.Unlock()
	<-s.loopDone
	s.ticks.Wait()

	err := errors.Join(s.pub.Close(), s.seg.Close())
	s.seg, s.pub, s.cancel, s.loopDone = nil, nil, nil, nil
	s.state.Store(int32(StateStopped))

	if err != nil {
		s.deps.Obs.LogError("stop_failed", err)
	} else {
		s.deps.Obs.LogInfo("polling_stopped", ports.Field{Key: "cycles", Value: s.cycle.Load()})
	}
	return err
}

// Run starts the scheduler and stops it when ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Stop()
}

func (s *Scheduler) loop(ctx context.Context, seg ports.Segment, pub ports.Publisher, done chan<- struct{}) {
	defer close(done)

	s.tick(ctx, seg, pub)

	t := time.NewTicker(s.cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.tick(ctx, seg, pub)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, seg ports.Segment, pub ports.Publisher) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.deps.Obs.IncCounter(ports.MetricTicksSkipped, 1)
		return
	}
	s.ticks.Add(1)
	go func() {
		defer s.ticks.Done()
		defer s.inFlight.Store(false)
		s.runCycle(ctx, seg, pub)
	}()
}

func (s *Scheduler) runCycle(ctx context.Context, seg ports.Segment, pub ports.Publisher) {
	cycle := s.cycle.Add(1)
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: panic: %v", domain.ErrCorruptCycle, r)
			s.deps.Obs.RecordCycleFailure(cycle, ReasonPanic, err)
		}
	}()

	start := time.Now()
	buf, err := CopySegment(s.buf, seg)
	s.buf = buf
	var snap domain.Snapshot
	if err == nil {
		snap, err = s.decode(s.buf, s.cfg.Layout, cycle, s.now())
	}
	s.deps.Obs.ObserveLatency(ports.MetricCycleDuration, time.Since(start).Seconds())

	s.publish(ctx, pub, cycle, snap, err)
}

// publish reports the cycle outcome unless Stop has already cancelled
// ctx, in which case the result is dropped.
func (s *Scheduler) publish(ctx context.Context, pub ports.Publisher, cycle uint64, snap domain.Snapshot, err error) {
	s.publishMu.RLock()
	defer s.publishMu.RUnlock()

	if ctx.Err() != nil {
		return
	}
	if err != nil {
		s.deps.Obs.RecordCycleFailure(cycle, FailureReason(err), err)
		return
	}

	s.deps.Obs.IncCounter(ports.MetricCycles, 1)
	s.deps.Obs.ObserveSnapshot(snap)
	pub.Publish(snap)
}
