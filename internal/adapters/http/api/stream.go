package api

import (
	"context"
	"net/http"
	"time"

	"github.com/nvoss/goalfeed/internal/domain/model"
	"github.com/nvoss/goalfeed/pkg/logger"
)

// Default stream configuration constants.
const (
	defaultHeartbeatInterval = 30 * time.Second
)

// StreamHandler serves the SSE endpoint. Per-connection state machine:
// connecting -> open -> (periodic heartbeat) -> closed.
type StreamHandler struct {
	deps              Dependencies
	heartbeatInterval time.Duration
	logger            logger.Logger
}

// Option applies a configuration option to the StreamHandler.
type Option func(*StreamHandler)

// WithHeartbeatInterval sets the per-connection heartbeat period. Heartbeats
// keep intermediary proxies and load balancers from timing out idle streams.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(h *StreamHandler) {
		if d > 0 {
			h.heartbeatInterval = d
		}
	}
}

// WithStreamLogger sets a custom logger for the stream handler.
func WithStreamLogger(l logger.Logger) Option {
	return func(h *StreamHandler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(deps Dependencies) *StreamHandler {
	return &StreamHandler{
		deps:              deps,
		heartbeatInterval: defaultHeartbeatInterval,
	}
}

// HandleStream handles GET /stream requests. The subscriber observes the
// initial frame before any refresh/health/heartbeat frame; beyond that,
// frames are delivered in publish order with no delivery guarantee. A client
// that misses a refresh re-requests a full snapshot on reconnect.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "stream_unsupported", ErrStreamUnsupported.Error())
		return
	}

	ctx := r.Context()
	sub, err := h.deps.Subscribe(ctx)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return
	}
	defer h.deps.Unsubscribe(sub.ID())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// Disable intermediary buffering (nginx); frames must reach the client
	// as they are flushed.
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := h.sendInitial(ctx, w, flusher); err != nil {
		return
	}

	heartbeat := time.NewTicker(h.heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			// Client disconnected; the deferred unsubscribe and the
			// stopped ticker release this connection's resources.
			return
		case ev, open := <-sub.Events():
			if !open {
				return
			}
			if err := h.writeEvent(w, flusher, ev); err != nil {
				return
			}
		case <-heartbeat.C:
			ev := model.Event{Type: model.EventHeartbeat, Timestamp: time.Now().UTC()}
			if err := h.writeEvent(w, flusher, ev); err != nil {
				return
			}
		}
	}
}

// sendInitial pushes the initial fixture snapshot and the latest health
// snapshot. A store failure becomes an error frame rather than tearing the
// stream down; the next refresh broadcast heals the client.
func (h *StreamHandler) sendInitial(ctx context.Context, w http.ResponseWriter, flusher http.Flusher) error {
	var initial model.Event
	snapshot, err := h.deps.FetchAll(ctx)
	if err != nil {
		initial = model.Event{
			Type:      model.EventError,
			Message:   "fixture data temporarily unavailable",
			Timestamp: time.Now().UTC(),
		}
	} else {
		initial = model.Event{
			Type:      model.EventInitial,
			Fixtures:  &snapshot,
			Timestamp: time.Now().UTC(),
		}
	}
	if err := h.writeEvent(w, flusher, initial); err != nil {
		return err
	}

	health := h.deps.LatestHealth()
	return h.writeEvent(w, flusher, model.Event{
		Type:      model.EventHealth,
		Health:    &health,
		Timestamp: time.Now().UTC(),
	})
}

func (h *StreamHandler) writeEvent(w http.ResponseWriter, flusher http.Flusher, ev model.Event) error {
	frame, err := ev.Encode()
	if err != nil {
		if h.logger != nil {
			h.logger.Error(context.Background(), "encode stream frame", logger.Error(err))
		}
		return nil // skip the frame, keep the connection
	}
	if _, err := w.Write(frame); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
