// Package consumer implements the reconnecting stream client: it maintains a
// single SSE connection with exponential-backoff reconnection, merges
// server-pushed data with a REST prefetch, and rewrites media URLs to route
// through the video proxy.
package consumer

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/nvoss/goalfeed/internal/domain/model"
	"github.com/nvoss/goalfeed/pkg/logger"
)

// State is the consumer connection state.
type State int32

// Named states of the connection machine:
// disconnected -> connecting -> connected -> (error) -> backoff -> connecting.
const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateBackoff
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateBackoff:
		return "backoff"
	default:
		return "unknown"
	}
}

// Status is the connection state exposed to callers. Live is the logical AND
// of "stream open" and "last known health snapshot says healthy": the client
// does not claim to be live when the socket is up but the backend is
// internally degraded.
type Status struct {
	State   State
	Attempt int
	Live    bool
}

// Default consumer configuration constants.
const (
	defaultGracePeriod = 60 * time.Second
	maxFrameSize       = 16 << 20 // a full snapshot frame can be large
)

// Consumer maintains the stream connection and the latest fixture snapshot.
type Consumer struct {
	baseURL    string
	proxyBase  string
	hc         *http.Client
	backoffCap time.Duration
	grace      time.Duration
	log        logger.Logger

	mu       sync.RWMutex
	state    State
	attempt  int
	snapshot *model.FixtureSnapshot
	health   model.HealthSnapshot
	loaded   bool

	updates   chan model.FixtureSnapshot
	ready     chan struct{}
	readyOnce sync.Once
	wake      chan struct{}
}

// Option applies a configuration option to the Consumer.
type Option func(*Consumer)

// WithHTTPClient sets the client used for the stream and prefetch requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Consumer) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithProxyBase sets the absolute base URL media references are rewritten
// against. Defaults to the consumer's base URL.
func WithProxyBase(base string) Option {
	return func(c *Consumer) {
		if base != "" {
			c.proxyBase = base
		}
	}
}

// WithBackoffCap bounds the reconnect delay.
func WithBackoffCap(cap time.Duration) Option {
	return func(c *Consumer) {
		if cap > 0 {
			c.backoffCap = cap
		}
	}
}

// WithGracePeriod bounds how long WaitReady tolerates having no data at all.
func WithGracePeriod(d time.Duration) Option {
	return func(c *Consumer) {
		if d > 0 {
			c.grace = d
		}
	}
}

// WithPreloaded seeds the consumer with an injected snapshot for instant
// first paint. The seed does not end the loading phase: the prefetch and the
// stream's initial frame still race to replace it.
func WithPreloaded(snapshot model.FixtureSnapshot) Option {
	return func(c *Consumer) {
		rewritten := RewriteSnapshot(snapshot, c.proxyBase)
		c.snapshot = &rewritten
	}
}

// WithLogger sets a custom logger for the consumer.
func WithLogger(l logger.Logger) Option {
	return func(c *Consumer) {
		if l != nil {
			c.log = l
		}
	}
}

// New constructs a Consumer for the service at baseURL.
func New(baseURL string, opts ...Option) *Consumer {
	c := &Consumer{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		hc:         &http.Client{},
		backoffCap: DefaultBackoffCap,
		grace:      defaultGracePeriod,
		health:     model.HealthSnapshot{Status: model.HealthUnknown},
		updates:    make(chan model.FixtureSnapshot, 1),
		ready:      make(chan struct{}),
		wake:       make(chan struct{}, 1),
	}
	c.proxyBase = c.baseURL
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run connects and consumes the stream until ctx is done, reconnecting with
// exponential backoff on errors. Transient disconnects are never surfaced as
// errors; callers observe them through Status only.
func (c *Consumer) Run(ctx context.Context) error {
	go c.prefetch(ctx, false)

	for {
		c.setState(StateConnecting)
		err := c.consume(ctx)
		if ctx.Err() != nil {
			c.setState(StateDisconnected)
			return ctx.Err()
		}
		if err != nil && c.log != nil {
			c.log.Debug(ctx, "stream disconnected", logger.Error(err))
		}

		delay := Backoff(c.bumpAttempt(), c.backoffCap)
		c.setState(StateBackoff)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			c.setState(StateDisconnected)
			return ctx.Err()
		case <-timer.C:
		case <-c.wake:
			// A waking tab reconnects immediately instead of waiting out
			// the backoff window.
			timer.Stop()
		}
	}
}

// Wake forces an immediate REST refetch and, when the stream is not open,
// short-circuits any pending backoff wait. This compensates for backgrounded
// environments where timers and sockets may have been suspended.
func (c *Consumer) Wake(ctx context.Context) {
	go c.prefetch(ctx, true)

	c.mu.RLock()
	connected := c.state == StateConnected
	c.mu.RUnlock()
	if connected {
		return
	}
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// consume opens the stream and processes frames until the connection drops.
func (c *Consumer) consume(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stream", nil)
	if err != nil {
		return fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(contentType, "text/event-stream") {
		return fmt.Errorf("unexpected stream response: %d %s", resp.StatusCode, contentType)
	}

	// A successful open resets the backoff counter.
	c.mu.Lock()
	c.attempt = 0
	c.state = StateConnected
	c.mu.Unlock()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), maxFrameSize)

	var data []byte
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if len(data) > 0 {
				c.handleFrame(ctx, data)
				data = nil
			}
			continue
		}
		if payload, ok := strings.CutPrefix(line, "data:"); ok {
			data = append(data, strings.TrimPrefix(payload, " ")...)
		}
		// Other SSE fields (event:, id:, retry:, comments) are ignored.
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return fmt.Errorf("stream closed by server")
}

func (c *Consumer) handleFrame(ctx context.Context, data []byte) {
	ev, err := model.DecodeEvent(data)
	if err != nil {
		if c.log != nil {
			c.log.Warn(ctx, "malformed stream frame", logger.Error(err))
		}
		return
	}

	switch ev.Type {
	case model.EventInitial, model.EventRefresh:
		// The initial frame always applies: on reconnect it is the full
		// snapshot that heals any refresh missed during the gap.
		if ev.Fixtures != nil {
			c.apply(*ev.Fixtures, false)
		}
	case model.EventHealth:
		if ev.Health != nil {
			c.mu.Lock()
			c.health = *ev.Health
			c.mu.Unlock()
		}
	case model.EventHeartbeat:
		// Keepalive only.
	case model.EventError:
		if c.log != nil {
			c.log.Warn(ctx, "server reported stream error", logger.String("message", ev.Message))
		}
	}
}

// prefetch fetches the REST snapshot. At mount it races the stream's initial
// frame and is discarded if the state has already left loading; a forced
// refetch (Wake) always applies.
func (c *Consumer) prefetch(ctx context.Context, force bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/fixtures", nil)
	if err != nil {
		return
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return
	}

	var snapshot model.FixtureSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return
	}

	c.apply(snapshot, !force)
}

// apply installs the snapshot. With discardable set, the install is skipped
// once stream data has loaded: the check and the install happen under one
// write lock, so a stream frame can never be overwritten by an older
// prefetch that lost the race.
func (c *Consumer) apply(snapshot model.FixtureSnapshot, discardable bool) {
	rewritten := RewriteSnapshot(snapshot, c.proxyBase)

	c.mu.Lock()
	if discardable && c.loaded {
		c.mu.Unlock()
		return
	}
	c.snapshot = &rewritten
	c.loaded = true
	c.mu.Unlock()

	c.readyOnce.Do(func() { close(c.ready) })

	// Non-blocking: a slow reader observes the latest snapshot via
	// Snapshot() instead of a backlog.
	select {
	case c.updates <- rewritten:
	default:
		select {
		case <-c.updates:
		default:
		}
		select {
		case c.updates <- rewritten:
		default:
		}
	}
}

// Snapshot returns the latest fixture snapshot and whether any data (seeded
// or fetched) is present.
func (c *Consumer) Snapshot() (model.FixtureSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return model.FixtureSnapshot{}, false
	}
	return *c.snapshot, true
}

// Updates returns a channel carrying the latest snapshot after every apply.
func (c *Consumer) Updates() <-chan model.FixtureSnapshot {
	return c.updates
}

// Health returns the last health snapshot pushed by the server.
func (c *Consumer) Health() model.HealthSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.health
}

// Status returns the current connection status.
func (c *Consumer) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{
		State:   c.state,
		Attempt: c.attempt,
		Live:    c.state == StateConnected && c.health.Status == model.HealthHealthy,
	}
}

// WaitReady blocks until the first snapshot is applied, the context is done,
// or the grace period expires with no data at all.
func (c *Consumer) WaitReady(ctx context.Context) error {
	timer := time.NewTimer(c.grace)
	defer timer.Stop()
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrNoData
	}
}

func (c *Consumer) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Consumer) bumpAttempt() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	attempt := c.attempt
	c.attempt++
	return attempt
}
