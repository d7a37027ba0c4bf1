// Package retry implements the exponential-backoff-with-jitter policy of
// spec §4.7, ported directly from retry.rs's RetryPolicy/RetryStrategy.
package retry

import (
	"math"
	"math/rand"
	"time"

	"github.com/howard-nolan/llmgateway/internal/gwerrors"
)

// Policy is the tunable retry configuration.
type Policy struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	ExponentialBase float64
	Jitter          bool
}

// DefaultPolicy mirrors retry.rs's Default impl.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialDelay:    200 * time.Millisecond,
		MaxDelay:        10 * time.Second,
		ExponentialBase: 2.0,
		Jitter:          true,
	}
}

// Strategy tracks the mutable state of one request's retry attempts. A
// fresh Strategy is created per logical request via Policy.Strategy().
type Strategy struct {
	policy   Policy
	attempts int
	rng      *rand.Rand
}

// Strategy starts a new retry attempt counter under this policy.
func (p Policy) Strategy() *Strategy {
	s := &Strategy{policy: p}
	if p.Jitter {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// Attempts reports how many retries have been consumed so far.
func (s *Strategy) Attempts() int { return s.attempts }

// NextDelay returns the delay to wait before the next attempt, or false
// if no further retry should be made — either the attempt budget is
// exhausted or err is not retryable. Mirrors retry.rs's next_delay
// exactly, including the Retry-After short-circuit.
func (s *Strategy) NextDelay(err error) (time.Duration, bool) {
	if s.attempts >= s.policy.MaxAttempts || !gwerrors.IsRetryable(err) {
		return 0, false
	}
	s.attempts++

	if retryAfter, ok := gwerrors.RetryAfter(err); ok {
		if retryAfter > s.policy.MaxDelay {
			retryAfter = s.policy.MaxDelay
		}
		return retryAfter, true
	}

	exp := math.Pow(s.policy.ExponentialBase, float64(s.attempts-1))
	delay := time.Duration(float64(s.policy.InitialDelay) * exp)
	if delay > s.policy.MaxDelay {
		delay = s.policy.MaxDelay
	}

	if s.rng != nil {
		jitter := 0.5 + s.rng.Float64() // uniform in [0.5, 1.5)
		delay = time.Duration(float64(delay) * jitter)
		if delay > s.policy.MaxDelay {
			delay = s.policy.MaxDelay
		}
	}

	return delay, true
}
