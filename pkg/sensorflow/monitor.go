package sensorflow

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ghalamif/SensorFlow/internal/adapters/observability"
	"github.com/ghalamif/SensorFlow/internal/adapters/producer"
	"github.com/ghalamif/SensorFlow/internal/adapters/queue"
	"github.com/ghalamif/SensorFlow/internal/adapters/shm"
	"github.com/ghalamif/SensorFlow/internal/app/pipeline"
	"github.com/ghalamif/SensorFlow/internal/ports"
)

const shutdownTimeout = 5 * time.Second

// Option customizes the dependencies used by Monitor.
type Option func(*overrides)

type overrides struct {
	subscriber    Subscriber
	opener        SegmentOpener
	observability Observability
	probe         ProducerProbe
	noProbe       bool
	logger        *zap.Logger
	registerer    prometheus.Registerer
}

// WithSubscriber sets who receives snapshots. Without one, snapshots
// only feed the metrics.
func WithSubscriber(sub Subscriber) Option {
	return func(o *overrides) {
		o.subscriber = sub
	}
}

// WithSegmentOpener replaces the shared-memory attachment, e.g. with a
// recorded segment.
func WithSegmentOpener(op SegmentOpener) Option {
	return func(o *overrides) {
		o.opener = op
	}
}

// WithObservability plugs in a custom observability backend instead of
// zap + Prometheus.
func WithObservability(obs Observability) Option {
	return func(o *overrides) {
		o.observability = obs
	}
}

// WithProducerProbe overrides how attach failures are explained. A nil
// probe disables the lookup.
func WithProducerProbe(p ProducerProbe) Option {
	return func(o *overrides) {
		o.probe = p
		o.noProbe = p == nil
	}
}

// WithLogger replaces the logger built from Config.Log.
func WithLogger(l *zap.Logger) Option {
	return func(o *overrides) {
		o.logger = l
	}
}

// WithRegisterer registers the Prometheus collectors somewhere other than
// the default registry. When reg is also a Gatherer, /metrics serves it.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *overrides) {
		o.registerer = reg
	}
}

// Monitor polls the producer's shared segment and publishes a Snapshot
// per successful cycle. The zero value is not usable; call New.
type Monitor struct {
	cfg    *Config
	logger *zap.Logger
	obs    ports.Observability
	sched  *pipeline.Scheduler
	gather prometheus.Gatherer

	mu         sync.Mutex
	metricsSrv *http.Server
	metricsLn  net.Listener
}

// New wires the default adapters (shared-memory opener, process probe,
// in-memory dispatch queue, zap + Prometheus observability). Options
// override any of them.
func New(cfg *Config, opts ...Option) (*Monitor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o overrides
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	logger := o.logger
	if logger == nil {
		var err error
		logger, err = observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return nil, err
		}
	}

	reg := o.registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gather, ok := reg.(prometheus.Gatherer)
	if !ok {
		gather = prometheus.DefaultGatherer
	}

	obs := o.observability
	if obs == nil {
		obs = observability.NewPromObs(reg, logger)
	}

	opener := o.opener
	if opener == nil {
		opener = shm.Opener{Config: cfg.Segment}
	}

	probe := o.probe
	if probe == nil && !o.noProbe {
		probe = producer.NewProbe(cfg.Producer)
	}

	sched, err := pipeline.NewScheduler(pipeline.SchedulerConfig{
		Interval: cfg.Poll.Interval(),
		Layout:   cfg.Layout.Policy(),
		Dispatch: cfg.Dispatch.Policy(),
	}, pipeline.Deps{
		Opener:     opener,
		Subscriber: o.subscriber,
		Obs:        obs,
		Probe:      probe,
		NewQueue:   func(n int) ports.SnapshotQueue { return queue.NewMemQueue(n) },
	})
	if err != nil {
		return nil, err
	}

	return &Monitor{
		cfg:    cfg,
		logger: logger,
		obs:    obs,
		sched:  sched,
		gather: gather,
	}, nil
}

// Start attaches to the segment, begins polling and, when enabled, serves
// /metrics and /healthz. A second call while polling is a no-op. Attach
// failures wrap ErrSegmentNotFound or ErrAccessDenied and are not retried.
func (m *Monitor) Start() error {
	if m == nil {
		return fmt.Errorf("monitor is nil")
	}
	if err := m.sched.Start(); err != nil {
		return err
	}
	if err := m.startMetrics(); err != nil {
		return errors.Join(err, m.sched.Stop())
	}
	return nil
}

// Stop halts polling, lets an in-flight cycle finish without publishing,
// releases the segment and stops the metrics server. It is idempotent.
func (m *Monitor) Stop() error {
	if m == nil {
		return nil
	}
	errs := []error{m.sched.Stop()}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	errs = append(errs, m.stopMetrics(ctx))

	_ = m.logger.Sync()
	return errors.Join(errs...)
}

// State reports the lifecycle state.
func (m *Monitor) State() State {
	return m.sched.State()
}

// Run starts the monitor and blocks until ctx is cancelled, then stops it.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return m.Stop()
}

// MetricsAddr is the address the metrics server listens on, or "" when it
// is not running.
func (m *Monitor) MetricsAddr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.metricsLn == nil {
		return ""
	}
	return m.metricsLn.Addr().String()
}

func (m *Monitor) startMetrics() error {
	if !m.cfg.Metrics.On() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.metricsSrv != nil {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.gather, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if m.sched.State() != pipeline.StatePolling {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(m.sched.State().String()))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ln, err := net.Listen("tcp", m.cfg.Metrics.Addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	m.metricsSrv, m.metricsLn = srv, ln

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.obs.LogError("metrics_server_exited", err)
		}
	}()
	m.obs.LogInfo("metrics_listening", ports.Field{Key: "addr", Value: ln.Addr().String()})
	return nil
}

func (m *Monitor) stopMetrics(ctx context.Context) error {
	m.mu.Lock()
	srv := m.metricsSrv
	m.metricsSrv, m.metricsLn = nil, nil
	m.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
