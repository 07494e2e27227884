package coordinator

import (
	"math/rand/v2"
	"time"
)

const (
	// jitterFraction bounds the random offset applied to the sweep interval
	jitterFraction = 0.1
	// maxJitter caps the random offset for long intervals
	maxJitter = 30 * time.Minute
)

// jitterFor returns the largest offset applied to interval
func jitterFor(interval time.Duration) time.Duration {
	j := time.Duration(float64(interval) * jitterFraction)
	return min(j, maxJitter)
}

// withJitter returns interval shifted by a random offset in [-jitter, +jitter]
func withJitter(interval time.Duration) time.Duration {
	jitter := jitterFor(interval)
	if jitter <= 0 {
		return interval
	}
	//nolint:gosec // G404: non-cryptographic randomness is sufficient for scheduling jitter
	offset := time.Duration(rand.Int64N(int64(2*jitter)+1)) - jitter
	return interval + offset
}
