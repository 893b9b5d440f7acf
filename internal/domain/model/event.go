package model

import (
	"bytes"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// EventType discriminates stream frames pushed to subscribers.
type EventType string

// Stream frame types.
const (
	EventInitial   EventType = "initial"
	EventRefresh   EventType = "refresh"
	EventHealth    EventType = "health"
	EventHeartbeat EventType = "heartbeat"
	EventError     EventType = "error"
)

// Event is one frame on the SSE stream. Exactly one of the payload fields is
// populated depending on Type.
type Event struct {
	Type      EventType        `json:"type"`
	Fixtures  *FixtureSnapshot `json:"fixtures,omitempty"`
	Health    *HealthSnapshot  `json:"health,omitempty"`
	Message   string           `json:"message,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// Encode renders the SSE wire form: a single "data: <json>" line followed by
// the blank frame terminator.
func (e Event) Encode() ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal %s frame: %w", e.Type, err)
	}
	var buf bytes.Buffer
	buf.Grow(len(payload) + 8)
	buf.WriteString("data: ")
	buf.Write(payload)
	buf.WriteString("\n\n")
	return buf.Bytes(), nil
}

// DecodeEvent parses the JSON payload of one SSE data line.
func DecodeEvent(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("decode stream frame: %w", err)
	}
	return e, nil
}
