package consumer

import "errors"

// Sentinel kinds for consumer errors.
var (
	// ErrNoData means neither the prefetch nor the stream produced any
	// fixture data within the grace period.
	ErrNoData = errors.New("no fixture data received")
)
