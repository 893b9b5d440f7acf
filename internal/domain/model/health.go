package model

import "time"

// HealthStatus is the aggregate judgement over backend dependencies.
type HealthStatus string

// Aggregate health states.
const (
	HealthUnknown   HealthStatus = "unknown"
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck is the probe result for one dependency. Unconfigured optional
// dependencies carry Configured=false and are excluded from aggregation.
type HealthCheck struct {
	Configured bool   `json:"configured"`
	Reachable  bool   `json:"reachable"`
	Error      string `json:"error,omitempty"`
}

// HealthSnapshot is a point-in-time judgement of dependency reachability.
// The prober overwrites the previous snapshot on every tick; no history is
// retained.
type HealthSnapshot struct {
	Status    HealthStatus           `json:"status"`
	Checks    map[string]HealthCheck `json:"checks"`
	CheckedAt time.Time              `json:"checkedAt"`
}
