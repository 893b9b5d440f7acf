// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import "fmt"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":4100".
	Addr string `koanf:"addr"`

	// MongoURI is the document store connection string. Critical: the
	// process fails fast at startup when it is missing.
	MongoURI string `koanf:"mongo_uri"`

	// MongoDB is the database holding the fixture collections.
	MongoDB string `koanf:"mongo_db"`

	// Fixture collection names per lifecycle stage.
	StagingCollection   string `koanf:"staging_collection"`
	ActiveCollection    string `koanf:"active_collection"`
	CompletedCollection string `koanf:"completed_collection"`

	// CompletedLimit caps the completed snapshot to the most recent N.
	CompletedLimit int `koanf:"completed_limit"`

	// Object store endpoint and credentials. Critical, like MongoURI.
	MinioEndpoint  string `koanf:"minio_endpoint"`
	MinioAccessKey string `koanf:"minio_access_key"`
	MinioSecretKey string `koanf:"minio_secret_key"`
	MinioUseSSL    bool   `koanf:"minio_use_ssl"`

	// WorkflowURL is the optional workflow engine health URL. Absence
	// degrades health reporting only.
	WorkflowURL string `koanf:"workflow_url"`

	// ExternalAPIKey is the optional fixture provider API key. Absence
	// degrades health reporting only.
	ExternalAPIKey string `koanf:"external_api_key"`

	// ProbeIntervalSeconds sets the health probe period.
	ProbeIntervalSeconds int `koanf:"probe_interval_seconds"`

	// HeartbeatIntervalSeconds sets the per-connection heartbeat period.
	HeartbeatIntervalSeconds int `koanf:"heartbeat_interval_seconds"`

	// SubscriberBuffer bounds each subscriber's in-flight frame buffer.
	SubscriberBuffer int `koanf:"subscriber_buffer"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                 "info",
		Addr:                     ":4100",
		MongoDB:                  "goalfeed",
		StagingCollection:        "fixtures_staging",
		ActiveCollection:         "fixtures_active",
		CompletedCollection:      "fixtures_completed",
		CompletedLimit:           20,
		ProbeIntervalSeconds:     15,
		HeartbeatIntervalSeconds: 30,
		SubscriberBuffer:         16,
	}
}

// Validate fails fast on missing critical dependencies. Optional ones
// (workflow engine, external API) are allowed to be absent.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MongoURI == "":
		return fmt.Errorf("%w: mongo_uri is required", ErrInvalidConfig)
	case c.MinioEndpoint == "":
		return fmt.Errorf("%w: minio_endpoint is required", ErrInvalidConfig)
	case c.MinioAccessKey == "" || c.MinioSecretKey == "":
		return fmt.Errorf("%w: minio credentials are required", ErrInvalidConfig)
	case c.CompletedLimit <= 0:
		return fmt.Errorf("%w: completed_limit must be positive", ErrInvalidConfig)
	}
	return nil
}
