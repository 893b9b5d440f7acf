package objstore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/nvoss/goalfeed/pkg/logger"
)

const pingTimeout = 5 * time.Second

// MinioStore reads objects from a MinIO/S3 endpoint. The client is long-lived
// and constructed once at startup.
type MinioStore struct {
	client *minio.Client
	logger logger.Logger
}

// Option applies a configuration option to the MinioStore.
type Option func(*MinioStore)

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *MinioStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewMinioStore builds a client for endpoint and verifies reachability.
func NewMinioStore(ctx context.Context, endpoint, accessKey, secretKey string, useSSL bool, opts ...Option) (*MinioStore, error) {
	s := &MinioStore{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: build client: %v", ErrStoreUnavailable, err)
	}
	s.client = client

	if err := s.Ping(ctx); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "connected to object store", logger.String("endpoint", endpoint))
	return s, nil
}

// Stat returns object metadata, mapping missing keys to ErrObjectNotFound.
func (s *MinioStore) Stat(ctx context.Context, bucket, path string) (ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, bucket, path, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == 404 {
			return ObjectInfo{}, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, path)
		}
		return ObjectInfo{}, fmt.Errorf("%w: stat %s/%s: %v", ErrStoreUnavailable, bucket, path, err)
	}
	return ObjectInfo{
		Size:         info.Size,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
	}, nil
}

// Open returns a reader over the requested span. The store is asked for the
// same offset and length the caller's range implies; nothing is buffered.
func (s *MinioStore) Open(ctx context.Context, bucket, path string, offset, length int64) (io.ReadCloser, error) {
	getOpts := minio.GetObjectOptions{}
	if offset > 0 || length > 0 {
		end := int64(0) // zero end means "through EOF" for SetRange
		if length > 0 {
			end = offset + length - 1
		}
		if err := getOpts.SetRange(offset, end); err != nil {
			return nil, fmt.Errorf("%w: set range %d-%d: %v", ErrStoreUnavailable, offset, end, err)
		}
	}

	obj, err := s.client.GetObject(ctx, bucket, path, getOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s/%s: %v", ErrStoreUnavailable, bucket, path, err)
	}
	return obj, nil
}

// Ping lists buckets with a bounded context as a liveness probe.
func (s *MinioStore) Ping(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if _, err := s.client.ListBuckets(probeCtx); err != nil {
		return fmt.Errorf("%w: list buckets: %v", ErrStoreUnavailable, err)
	}
	return nil
}
