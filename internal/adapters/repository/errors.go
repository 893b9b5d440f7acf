package repository

import "errors"

// Sentinel kinds for fixture store errors.
var (
	ErrStoreUnavailable = errors.New("document store unavailable")
)
