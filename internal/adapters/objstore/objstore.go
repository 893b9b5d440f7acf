// Package objstore provides read access to video objects in the object store.
package objstore

import (
	"context"
	"io"
	"time"
)

// ObjectInfo carries the stat fields the proxy needs to answer range requests.
type ObjectInfo struct {
	Size         int64
	ContentType  string
	LastModified time.Time
}

// ObjectStore provides partial-object reads. Implementations must not buffer
// whole objects; Open returns a reader over exactly the requested span.
type ObjectStore interface {
	// Stat returns object metadata or ErrObjectNotFound.
	Stat(ctx context.Context, bucket, path string) (ObjectInfo, error)

	// Open returns a reader positioned at offset. A negative length reads
	// through the end of the object.
	Open(ctx context.Context, bucket, path string, offset, length int64) (io.ReadCloser, error)

	// Ping issues a lightweight liveness probe against the object store.
	Ping(ctx context.Context) error
}
