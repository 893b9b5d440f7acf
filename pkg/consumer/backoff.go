package consumer

import "time"

// DefaultBackoffCap bounds the reconnect delay.
const DefaultBackoffCap = 30 * time.Second

// Backoff returns the reconnect delay for the given attempt:
// min(1s * 2^attempt, cap). Attempt 0 is the first retry.
func Backoff(attempt int, cap time.Duration) time.Duration {
	if cap <= 0 {
		cap = DefaultBackoffCap
	}
	if attempt < 0 {
		attempt = 0
	}
	// 2^attempt seconds overflows long before attempt reaches 63; anything
	// past the cap's exponent is the cap.
	if attempt > 30 {
		return cap
	}
	d := time.Duration(1<<uint(attempt)) * time.Second
	if d > cap {
		return cap
	}
	return d
}
