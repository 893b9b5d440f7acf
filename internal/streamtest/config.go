// Package streamtest soak-tests a running goalfeed service: it connects a
// fleet of SSE subscribers, fires refresh triggers, and verifies delivery.
package streamtest

import "time"

// Config controls one soak run.
type Config struct {
	// BaseURL of the running service.
	BaseURL string

	// Subscribers is the number of concurrent SSE connections to hold.
	Subscribers int

	// Refreshes is the number of refresh triggers to fire.
	Refreshes int

	// SettleDelay is how long to wait after the last trigger before
	// collecting counters.
	SettleDelay time.Duration

	// Timeout bounds individual HTTP requests.
	Timeout time.Duration
}
