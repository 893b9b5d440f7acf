package hub

import (
	"context"
	"sync"
	"time"

	"github.com/nvoss/goalfeed/internal/domain/model"
	"github.com/nvoss/goalfeed/pkg/logger"
	"github.com/nvoss/goalfeed/pkg/metrics"
)

// Default hub configuration constants.
const (
	defaultSubscriberBuffer = 16
)

// FixtureSource is the read side the hub refreshes from.
type FixtureSource interface {
	FetchAll(ctx context.Context) (model.FixtureSnapshot, error)
}

// Hub owns the subscriber set and broadcasts stream frames. The set is an
// explicit, mutex-guarded collection; broadcast iterates over a copy so that
// concurrent subscribe/unsubscribe never blocks delivery.
type Hub struct {
	source FixtureSource
	buffer int
	logger logger.Logger

	mu     sync.Mutex
	subs   map[string]*Subscriber
	closed bool
}

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithSubscriberBuffer sets the per-subscriber channel buffer.
func WithSubscriberBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithLogger sets a custom logger for the hub.
func WithLogger(l logger.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// New constructs a Hub reading refresh snapshots from source.
func New(source FixtureSource, opts ...Option) *Hub {
	h := &Hub{
		source: source,
		buffer: defaultSubscriberBuffer,
		subs:   make(map[string]*Subscriber),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get()
	}
	return h
}

// Subscribe registers a new subscriber and returns it.
func (h *Hub) Subscribe(ctx context.Context) (*Subscriber, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	sub := newSubscriber(h.buffer)
	h.subs[sub.id] = sub
	metrics.UpdateConnectedClients(len(h.subs))

	h.logger.Debug(ctx, "subscriber connected",
		logger.String("id", sub.id),
		logger.Int("connected", len(h.subs)),
	)
	return sub, nil
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call for
// an already-removed id.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(id)
}

// remove must be called with h.mu held.
func (h *Hub) remove(id string) {
	sub, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	sub.close()
	metrics.UpdateConnectedClients(len(h.subs))
}

// Count returns the current subscriber set size.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Broadcast delivers ev to every registered subscriber and returns the number
// of delivery attempts. Delivery is best effort: a subscriber whose buffer is
// full gets dropped from the set, and the remaining deliveries proceed.
func (h *Hub) Broadcast(ev model.Event) int {
	h.mu.Lock()
	targets := make([]*Subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	var failed []string
	for _, sub := range targets {
		if !sub.trySend(ev) {
			failed = append(failed, sub.id)
		}
	}

	if len(failed) > 0 {
		h.mu.Lock()
		for _, id := range failed {
			h.remove(id)
		}
		h.mu.Unlock()
		metrics.RecordDroppedSubscribers(len(failed))
		h.logger.Warn(context.Background(), "dropped slow subscribers",
			logger.Int("dropped", len(failed)),
			logger.String("type", string(ev.Type)),
		)
	}

	metrics.RecordBroadcast(string(ev.Type))
	return len(targets)
}

// BroadcastRefresh re-reads the fixture source and broadcasts a refresh frame
// with the full new snapshot. Returns the number of subscribers the frame was
// delivered to. Every call causes one broadcast; there is no change
// detection, because callers use the broadcast itself as a signal.
func (h *Hub) BroadcastRefresh(ctx context.Context) (int, error) {
	snapshot, err := h.source.FetchAll(ctx)
	if err != nil {
		return 0, err
	}
	notified := h.Broadcast(model.Event{
		Type:      model.EventRefresh,
		Fixtures:  &snapshot,
		Timestamp: time.Now().UTC(),
	})
	metrics.RecordRefreshTrigger()
	return notified, nil
}

// BroadcastHealth pushes a health frame to all subscribers.
func (h *Hub) BroadcastHealth(snap model.HealthSnapshot) {
	h.Broadcast(model.Event{
		Type:      model.EventHealth,
		Health:    &snap,
		Timestamp: time.Now().UTC(),
	})
}

// Close drops every subscriber and rejects further subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id := range h.subs {
		h.remove(id)
	}
}
