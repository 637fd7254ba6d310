package nav

import (
	"testing"
	"time"
)

func TestRetryPolicy_Exhausted(t *testing.T) {
	p := newRetryPolicy(3, 10*time.Millisecond, 100*time.Millisecond)
	cases := []struct {
		attempt int
		want    bool
	}{
		{0, false},
		{1, false},
		{2, false},
		{3, true},
	}
	for _, c := range cases {
		if got := p.exhausted(c.attempt); got != c.want {
			t.Errorf("exhausted(%d) = %v, want %v", c.attempt, got, c.want)
		}
	}
}

func TestRetryPolicy_ComputeBackoffGrowsAndCaps(t *testing.T) {
	p := newRetryPolicy(10, 10*time.Millisecond, 50*time.Millisecond)

	d0 := p.computeBackoff(0)
	if d0 < 10*time.Millisecond || d0 >= 20*time.Millisecond {
		t.Fatalf("attempt 0 backoff out of expected range: %v", d0)
	}

	d3 := p.computeBackoff(3)
	if d3 < 50*time.Millisecond || d3 >= 60*time.Millisecond {
		t.Fatalf("attempt 3 backoff should be capped near maxDelay plus jitter, got %v", d3)
	}
}

func TestRetryPolicy_ZeroBaseDelayIsImmediate(t *testing.T) {
	p := newRetryPolicy(3, 0, 0)
	if d := p.computeBackoff(0); d != 0 {
		t.Fatalf("expected zero backoff when baseDelay is zero, got %v", d)
	}
}
