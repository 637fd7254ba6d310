package nav

import (
	"math/rand"
	"time"
)

// retryPolicy bounds how many times the choreographer retries a step
// that failed with an invalid-state error, backing off exponentially
// with jitter between attempts. A single choreographer-wide policy
// applies: invalid-state retry is a dispatch-loop concern, not a
// per-destination one.
type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	rng         *rand.Rand
}

func newRetryPolicy(maxAttempts int, baseDelay, maxDelay time.Duration) *retryPolicy {
	return &retryPolicy{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// computeBackoff returns the delay to wait before retry attempt attempt
// (0-based): min(base*2^attempt, maxDelay) + jitter(0, base).
func (p *retryPolicy) computeBackoff(attempt int) time.Duration {
	if p.baseDelay <= 0 {
		return 0
	}
	exponential := p.baseDelay * (1 << attempt)
	if p.maxDelay > 0 && exponential > p.maxDelay {
		exponential = p.maxDelay
	}
	jitter := time.Duration(p.rng.Int63n(int64(p.baseDelay)))
	return exponential + jitter
}

// exhausted reports whether attempt (0-based, counting retries only, not
// the initial try) has used up the configured retry budget.
func (p *retryPolicy) exhausted(attempt int) bool {
	return attempt >= p.maxAttempts
}
