// Package repository provides read access to the fixture collections.
package repository

import "github.com/nvoss/goalfeed/pkg/logger"

// Option applies a configuration option to the MongoStore.
type Option func(*MongoStore)

// WithDatabase sets the database name.
func WithDatabase(name string) Option {
	return func(s *MongoStore) {
		if name != "" {
			s.db = name
		}
	}
}

// WithCollections sets the three fixture collection names.
func WithCollections(staging, active, completed string) Option {
	return func(s *MongoStore) {
		if staging != "" {
			s.staging = staging
		}
		if active != "" {
			s.active = active
		}
		if completed != "" {
			s.completed = completed
		}
	}
}

// WithCompletedLimit caps the completed collection read to the most recent n.
func WithCompletedLimit(n int) Option {
	return func(s *MongoStore) {
		if n > 0 {
			s.completedLimit = int64(n)
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *MongoStore) {
		if l != nil {
			s.logger = l
		}
	}
}
