// Package hub owns the set of connected stream subscribers and fans events
// out to them.
package hub

import (
	"sync"

	"github.com/google/uuid"

	"github.com/nvoss/goalfeed/internal/domain/model"
)

// Subscriber is one open stream connection. Membership in the hub's set is
// the only state: there is no per-subscriber cursor or backlog, and a frame
// that cannot be buffered is dropped together with the subscriber.
type Subscriber struct {
	id string

	// mu serializes sends against close. Broadcast runs lock-free with
	// respect to the hub, so the channel must never be closed while a send
	// may be in flight.
	mu     sync.Mutex
	closed bool
	ch     chan model.Event
}

func newSubscriber(buffer int) *Subscriber {
	return &Subscriber{
		id: uuid.NewString(),
		ch: make(chan model.Event, buffer),
	}
}

// ID returns the subscriber's unique id.
func (s *Subscriber) ID() string { return s.id }

// Events returns the subscriber's receive channel. The channel is closed when
// the subscriber is removed from the hub.
func (s *Subscriber) Events() <-chan model.Event { return s.ch }

// trySend buffers ev without blocking. A full buffer reports false so the hub
// evicts the subscriber; a subscriber that is already closed reports true,
// since there is no connection left to fall behind.
func (s *Subscriber) trySend(ev model.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}

// close closes the events channel exactly once.
func (s *Subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
