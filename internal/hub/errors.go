package hub

import "errors"

// Sentinel kinds for hub errors.
var (
	ErrHubClosed = errors.New("hub closed")
)
