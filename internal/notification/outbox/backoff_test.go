package outbox

import (
	"testing"
	"time"
)

func TestRetryBackoffDoublesAndCaps(t *testing.T) {
	cases := []struct {
		attempts int
		want     time.Duration
	}{
		{0, 30 * time.Second},
		{1, time.Minute},
		{2, 2 * time.Minute},
		{3, 4 * time.Minute},
		{4, 8 * time.Minute},
		{5, 10 * time.Minute},
		{20, 10 * time.Minute},
	}

	for _, tc := range cases {
		if got := RetryBackoff(tc.attempts); got != tc.want {
			t.Fatalf("RetryBackoff(%d) = %v, want %v", tc.attempts, got, tc.want)
		}
	}
}

func TestRetryBackoffAlwaysDelays(t *testing.T) {
	for attempts := 0; attempts < 10; attempts++ {
		if RetryBackoff(attempts) < 30*time.Second {
			t.Fatalf("RetryBackoff(%d) below the minimum delay", attempts)
		}
	}
}
