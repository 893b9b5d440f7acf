// Package health periodically probes backend dependencies and aggregates the
// results into a single snapshot.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/nvoss/goalfeed/internal/domain/model"
	"github.com/nvoss/goalfeed/pkg/logger"
	"github.com/nvoss/goalfeed/pkg/metrics"
)

// Dependency names used as snapshot check keys.
const (
	CheckDocumentStore  = "document_store"
	CheckObjectStore    = "object_store"
	CheckWorkflowEngine = "workflow_engine"
	CheckExternalAPI    = "external_api"
)

// Default prober configuration constants.
const (
	defaultInterval = 15 * time.Second
	probeTimeout    = 5 * time.Second
)

// Pinger is the liveness probe shape both store adapters satisfy.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Prober checks dependency liveness on a fixed period. The document store and
// object store are critical; the workflow engine and external API are
// optional and, when unconfigured, are excluded from aggregation.
type Prober struct {
	documentStore  Pinger
	objectStore    Pinger
	workflowURL    string
	externalAPIKey string

	interval   time.Duration
	httpClient *http.Client
	onSnapshot func(model.HealthSnapshot)
	logger     logger.Logger

	mu     sync.RWMutex
	latest model.HealthSnapshot
}

// Option applies a configuration option to the Prober.
type Option func(*Prober)

// WithDocumentStore sets the critical document store probe.
func WithDocumentStore(p Pinger) Option {
	return func(pr *Prober) { pr.documentStore = p }
}

// WithObjectStore sets the critical object store probe.
func WithObjectStore(p Pinger) Option {
	return func(pr *Prober) { pr.objectStore = p }
}

// WithWorkflowEngine configures the optional workflow engine health URL.
func WithWorkflowEngine(url string) Option {
	return func(pr *Prober) { pr.workflowURL = url }
}

// WithExternalAPIKey configures the optional external fixture API key.
func WithExternalAPIKey(key string) Option {
	return func(pr *Prober) { pr.externalAPIKey = key }
}

// WithInterval sets the probe period.
func WithInterval(d time.Duration) Option {
	return func(pr *Prober) {
		if d > 0 {
			pr.interval = d
		}
	}
}

// WithHTTPClient sets the client used for HTTP probes.
func WithHTTPClient(c *http.Client) Option {
	return func(pr *Prober) {
		if c != nil {
			pr.httpClient = c
		}
	}
}

// WithOnSnapshot registers a callback invoked after every probe cycle.
func WithOnSnapshot(fn func(model.HealthSnapshot)) Option {
	return func(pr *Prober) { pr.onSnapshot = fn }
}

// WithLogger sets a custom logger for the prober.
func WithLogger(l logger.Logger) Option {
	return func(pr *Prober) {
		if l != nil {
			pr.logger = l
		}
	}
}

// New constructs a Prober with default configuration.
func New(opts ...Option) *Prober {
	pr := &Prober{
		interval:   defaultInterval,
		httpClient: &http.Client{Timeout: probeTimeout},
		latest:     model.HealthSnapshot{Status: model.HealthUnknown},
	}
	for _, opt := range opts {
		opt(pr)
	}
	if pr.logger == nil {
		pr.logger = logger.Get()
	}
	return pr
}

// Latest returns the most recent snapshot, or an unknown snapshot before the
// first probe completes.
func (pr *Prober) Latest() model.HealthSnapshot {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return pr.latest
}

// Run probes immediately and then on every interval tick until ctx is done.
// A failed probe is not retried; the next tick is the retry.
func (pr *Prober) Run(ctx context.Context) {
	pr.probe(ctx)

	ticker := time.NewTicker(pr.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pr.probe(ctx)
		}
	}
}

// Check runs one probe cycle and returns the resulting snapshot.
func (pr *Prober) Check(ctx context.Context) model.HealthSnapshot {
	return pr.probe(ctx)
}

func (pr *Prober) probe(ctx context.Context) model.HealthSnapshot {
	checks := map[string]model.HealthCheck{
		CheckDocumentStore: pr.pingCheck(ctx, pr.documentStore),
		CheckObjectStore:   pr.pingCheck(ctx, pr.objectStore),
	}

	if pr.workflowURL != "" {
		checks[CheckWorkflowEngine] = pr.httpCheck(ctx, pr.workflowURL)
	} else {
		checks[CheckWorkflowEngine] = model.HealthCheck{Configured: false}
	}

	// The external API is probed by key presence only; burning a metered
	// request every 15s against the fixture provider is not worth it.
	checks[CheckExternalAPI] = model.HealthCheck{
		Configured: pr.externalAPIKey != "",
		Reachable:  pr.externalAPIKey != "",
	}

	snap := model.HealthSnapshot{
		Status:    Aggregate(checks),
		Checks:    checks,
		CheckedAt: time.Now().UTC(),
	}

	pr.mu.Lock()
	changed := pr.latest.Status != snap.Status
	pr.latest = snap
	pr.mu.Unlock()

	for name, check := range checks {
		metrics.UpdateDependencyUp(name, check.Configured && check.Reachable)
	}
	metrics.UpdateOverallHealth(string(snap.Status))

	if changed {
		pr.logger.Info(ctx, "health status changed", logger.String("status", string(snap.Status)))
	}
	if pr.onSnapshot != nil {
		pr.onSnapshot(snap)
	}
	return snap
}

func (pr *Prober) pingCheck(ctx context.Context, p Pinger) model.HealthCheck {
	if p == nil {
		return model.HealthCheck{Configured: false}
	}
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := p.Ping(probeCtx); err != nil {
		return model.HealthCheck{Configured: true, Reachable: false, Error: err.Error()}
	}
	return model.HealthCheck{Configured: true, Reachable: true}
}

func (pr *Prober) httpCheck(ctx context.Context, url string) model.HealthCheck {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, url, nil)
	if err != nil {
		return model.HealthCheck{Configured: true, Reachable: false, Error: err.Error()}
	}
	resp, err := pr.httpClient.Do(req)
	if err != nil {
		return model.HealthCheck{Configured: true, Reachable: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return model.HealthCheck{Configured: true, Reachable: false, Error: resp.Status}
	}
	return model.HealthCheck{Configured: true, Reachable: true}
}

// Aggregate computes the overall status from per-dependency checks. Both
// critical dependencies up yields healthy, both down yields unhealthy, any
// other combination yields degraded. Unconfigured optional dependencies never
// count against the subsystem.
func Aggregate(checks map[string]model.HealthCheck) model.HealthStatus {
	docUp := checks[CheckDocumentStore].Reachable
	objUp := checks[CheckObjectStore].Reachable

	switch {
	case docUp && objUp:
		for name, check := range checks {
			if name == CheckDocumentStore || name == CheckObjectStore {
				continue
			}
			if check.Configured && !check.Reachable {
				return model.HealthDegraded
			}
		}
		return model.HealthHealthy
	case !docUp && !objUp:
		return model.HealthUnhealthy
	default:
		return model.HealthDegraded
	}
}
