package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/scriptbridge/metric"
	"github.com/c360/scriptbridge/natsclient"
)

// Status represents the lifecycle state of a service
type Status int

// Possible service statuses
const (
	StatusStopped Status = iota
	StatusStarting
	StatusRunning
	StatusStopping
)

// String returns the string representation of Status
func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusStarting:
		return "starting"
	case StatusRunning:
		return "running"
	case StatusStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// HealthCheckFunc is a custom health probe
type HealthCheckFunc func() error

// Option configures a BaseService
type Option func(*BaseService)

// BaseService provides lifecycle and health plumbing shared by services
type BaseService struct {
	name            string
	nats            *natsclient.Client
	metricsRegistry *metric.MetricsRegistry
	logger          *slog.Logger

	status    atomic.Value // Status
	healthy   atomic.Bool
	startTime atomic.Value // time.Time

	healthCheckFunc HealthCheckFunc
	healthTicker    *time.Ticker
	healthInterval  time.Duration

	done      chan struct{}
	waitGroup sync.WaitGroup
	mu        sync.Mutex
}

// NewBaseService creates a base service with functional options
func NewBaseService(name string, opts ...Option) *BaseService {
	s := &BaseService{
		name:           name,
		healthInterval: 30 * time.Second,
		logger:         slog.Default().With("service", name),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.status.Store(StatusStopped)
	s.startTime.Store(time.Time{})
	return s
}

// WithNATS sets the NATS client health is checked against
func WithNATS(client *natsclient.Client) Option {
	return func(s *BaseService) { s.nats = client }
}

// WithMetrics sets the metrics registry
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(s *BaseService) { s.metricsRegistry = registry }
}

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *BaseService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHealthCheck sets a custom health probe
func WithHealthCheck(fn HealthCheckFunc) Option {
	return func(s *BaseService) { s.healthCheckFunc = fn }
}

// WithHealthInterval sets the health probe interval
func WithHealthInterval(interval time.Duration) Option {
	return func(s *BaseService) { s.healthInterval = interval }
}

// Name returns the service name
func (s *BaseService) Name() string {
	return s.name
}

// Status returns the current lifecycle state
func (s *BaseService) Status() Status {
	return s.status.Load().(Status)
}

// IsHealthy reports the result of the most recent health probe
func (s *BaseService) IsHealthy() bool {
	return s.healthy.Load()
}

// Uptime returns how long the service has been running
func (s *BaseService) Uptime() time.Duration {
	start := s.startTime.Load().(time.Time)
	if start.IsZero() || s.Status() != StatusRunning {
		return 0
	}
	return time.Since(start)
}

// Logger returns the service logger
func (s *BaseService) Logger() *slog.Logger {
	return s.logger
}

// Start begins health monitoring and marks the service running
func (s *BaseService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if status := s.Status(); status == StatusRunning || status == StatusStarting {
		return nil
	}
	s.status.Store(StatusStarting)
	s.done = make(chan struct{})
	s.startTime.Store(time.Now())

	if s.healthInterval > 0 {
		s.healthTicker = time.NewTicker(s.healthInterval)
		s.waitGroup.Add(1)
		go s.healthMonitor()
	}
	s.performHealthCheck()

	s.waitGroup.Add(1)
	go s.contextMonitor(ctx)

	s.status.Store(StatusRunning)
	return nil
}

// Stop shuts the service down, waiting up to timeout for goroutines
func (s *BaseService) Stop(timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if status := s.Status(); status == StatusStopped || status == StatusStopping {
		return nil
	}
	s.status.Store(StatusStopping)

	if s.done != nil {
		select {
		case <-s.done:
		default:
			close(s.done)
		}
	}
	if s.healthTicker != nil {
		s.healthTicker.Stop()
	}

	if timeout == 0 {
		timeout = 5 * time.Second
	}
	finished := make(chan struct{})
	go func() {
		s.waitGroup.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(timeout):
		s.logger.Warn("shutdown timed out waiting for goroutines")
	}

	s.status.Store(StatusStopped)
	s.healthy.Store(false)
	return nil
}

func (s *BaseService) healthMonitor() {
	defer s.waitGroup.Done()
	for {
		select {
		case <-s.done:
			return
		case <-s.healthTicker.C:
			s.performHealthCheck()
		}
	}
}

func (s *BaseService) performHealthCheck() {
	var err error
	if s.healthCheckFunc != nil {
		err = s.healthCheckFunc()
	}
	if err == nil && s.nats != nil && !s.nats.IsHealthy() {
		err = natsclient.ErrNotConnected
	}
	s.healthy.Store(err == nil)
}

func (s *BaseService) contextMonitor(ctx context.Context) {
	defer s.waitGroup.Done()
	select {
	case <-ctx.Done():
		if s.healthTicker != nil {
			s.healthTicker.Stop()
		}
		s.status.Store(StatusStopped)
		s.healthy.Store(false)
	case <-s.done:
	}
}
