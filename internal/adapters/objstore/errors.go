package objstore

import "errors"

// Sentinel kinds for object store errors.
var (
	ErrObjectNotFound   = errors.New("object not found")
	ErrStoreUnavailable = errors.New("object store unavailable")
)
