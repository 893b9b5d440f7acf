// Package service provides the core service that implements the dependencies
// required by the HTTP API: fixture reads, stream fan-out and health state.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/nvoss/goalfeed/internal/adapters/objstore"
	"github.com/nvoss/goalfeed/internal/adapters/repository"
	"github.com/nvoss/goalfeed/internal/domain/model"
	"github.com/nvoss/goalfeed/internal/health"
	"github.com/nvoss/goalfeed/internal/hub"
	"github.com/nvoss/goalfeed/pkg/logger"
)

// Service owns the broadcast hub and the health prober, and delegates
// fixture reads to the injected store. Store clients are constructed by the
// caller and passed in; the service never lazily opens connections.
type Service struct {
	mu sync.RWMutex

	// Injected collaborators
	store   repository.Store
	objects objstore.ObjectStore

	// Owned components
	broadcastHub *hub.Hub
	prober       *health.Prober

	// Configuration
	probeInterval    time.Duration
	subscriberBuffer int
	workflowURL      string
	externalAPIKey   string

	// State
	started   bool
	proberCtx context.Context
	stopProbe context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the fixture store.
func WithStore(store repository.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithObjectStore sets the object store.
func WithObjectStore(objects objstore.ObjectStore) Option {
	return func(s *Service) { s.objects = objects }
}

// WithProbeInterval sets the health probe period.
func WithProbeInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.probeInterval = d
		}
	}
}

// WithSubscriberBuffer sets the per-subscriber frame buffer.
func WithSubscriberBuffer(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.subscriberBuffer = n
		}
	}
}

// WithWorkflowEngine configures the optional workflow engine health URL.
func WithWorkflowEngine(url string) Option {
	return func(s *Service) { s.workflowURL = url }
}

// WithExternalAPIKey configures the optional fixture provider API key.
func WithExternalAPIKey(key string) Option {
	return func(s *Service) { s.externalAPIKey = key }
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		probeInterval:    15 * time.Second,
		subscriberBuffer: 16,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the hub and launches the health prober.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting fixture stream service...")

	s.broadcastHub = hub.New(s.store,
		hub.WithSubscriberBuffer(s.subscriberBuffer),
		hub.WithLogger(s.logger.Named("hub")),
	)

	proberOpts := []health.Option{
		health.WithDocumentStore(s.store),
		health.WithObjectStore(s.objects),
		health.WithInterval(s.probeInterval),
		health.WithLogger(s.logger.Named("health")),
		// The hub republishes every snapshot so connected clients learn
		// about degradation without polling.
		health.WithOnSnapshot(func(snap model.HealthSnapshot) {
			s.broadcastHub.BroadcastHealth(snap)
		}),
	}
	if s.workflowURL != "" {
		proberOpts = append(proberOpts, health.WithWorkflowEngine(s.workflowURL))
	}
	if s.externalAPIKey != "" {
		proberOpts = append(proberOpts, health.WithExternalAPIKey(s.externalAPIKey))
	}
	s.prober = health.New(proberOpts...)

	s.proberCtx, s.stopProbe = context.WithCancel(context.Background())
	go s.prober.Run(s.proberCtx)

	s.started = true
	s.logger.Info(ctx, "fixture stream service started",
		logger.Duration("probeInterval", s.probeInterval),
		logger.Int("subscriberBuffer", s.subscriberBuffer),
	)
	return nil
}

// Stop gracefully shuts down the service and closes the store clients.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping fixture stream service...")

	s.stopProbe()
	s.broadcastHub.Close()

	closeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.store.Close(closeCtx); err != nil {
		s.logger.Warn(ctx, "document store close failed", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "fixture stream service stopped")
}

// FetchAll reads the current fixture snapshot.
func (s *Service) FetchAll(ctx context.Context) (model.FixtureSnapshot, error) {
	return s.store.FetchAll(ctx)
}

// Subscribe registers a new stream subscriber.
func (s *Service) Subscribe(ctx context.Context) (*hub.Subscriber, error) {
	return s.broadcastHub.Subscribe(ctx)
}

// Unsubscribe removes a subscriber from the broadcast set.
func (s *Service) Unsubscribe(id string) {
	s.broadcastHub.Unsubscribe(id)
}

// ConnectedClients reports the current subscriber set size.
func (s *Service) ConnectedClients() int {
	return s.broadcastHub.Count()
}

// Refresh re-reads the store and broadcasts a refresh frame to every
// subscriber. Returns the number of subscribers notified.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	return s.broadcastHub.BroadcastRefresh(ctx)
}

// LatestHealth returns the most recent health snapshot.
func (s *Service) LatestHealth() model.HealthSnapshot {
	return s.prober.Latest()
}

// Objects exposes the object store for the video proxy routes.
func (s *Service) Objects() objstore.ObjectStore {
	return s.objects
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"probeInterval":    s.probeInterval.String(),
		"subscriberBuffer": s.subscriberBuffer,
	}
	if s.started {
		stats["connectedClients"] = s.broadcastHub.Count()
		stats["health"] = string(s.prober.Latest().Status)
	}
	return stats
}
