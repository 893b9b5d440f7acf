package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrStreamUnsupported = errors.New("response writer does not support streaming")
)
