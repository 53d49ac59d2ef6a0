// Package backoff provides delay strategies for retrying trigger-key writes
// after store errors. Strategies hold no mutable state and may be shared.
package backoff

import (
	"math"
	"math/rand/v2"
	"time"
)

// Strategy computes the wait before retry attempt n (1-indexed).
type Strategy interface {
	Delay(attempt int) time.Duration
}

// ──────────────────────────────────────────────────
// Constant
// ──────────────────────────────────────────────────

// Constant waits the same interval before every retry.
type Constant struct {
	Interval time.Duration
}

// NewConstant creates a constant strategy.
func NewConstant(interval time.Duration) *Constant {
	return &Constant{Interval: interval}
}

// Delay returns the interval.
func (c *Constant) Delay(_ int) time.Duration {
	return c.Interval
}

// ──────────────────────────────────────────────────
// Jittered exponential
// ──────────────────────────────────────────────────

// Jittered picks a random wait in [0, min(Base * 2^(attempt-1), Cap)].
// Processes that failed together then retry apart.
type Jittered struct {
	Base time.Duration
	Cap  time.Duration
}

// NewJittered creates a jittered exponential strategy.
func NewJittered(base, maxDelay time.Duration) *Jittered {
	return &Jittered{Base: base, Cap: maxDelay}
}

// Ceiling returns the upper bound of Delay for attempt.
func (j *Jittered) Ceiling(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	c := float64(j.Base) * math.Pow(2, float64(attempt-1))
	if j.Cap > 0 && c > float64(j.Cap) {
		c = float64(j.Cap)
	}
	return time.Duration(c)
}

// Delay returns a random duration up to Ceiling(attempt).
func (j *Jittered) Delay(attempt int) time.Duration {
	return time.Duration(rand.Float64() * float64(j.Ceiling(attempt))) //nolint:gosec // jitter does not need crypto rand
}

// DefaultStrategy is used when arming retries: jittered, 100ms base, 2s cap.
func DefaultStrategy() Strategy {
	return NewJittered(100*time.Millisecond, 2*time.Second)
}
