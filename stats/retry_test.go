package stats

import (
	"context"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
)

func waits(p Policy, n int) []time.Duration {
	b := p.backOff(context.Background())
	out := make([]time.Duration, 0, n)
	for range n {
		out = append(out, b.NextBackOff())
	}
	return out
}

func TestDefaultPolicySchedule(t *testing.T) {
	got := waits(DefaultPolicy, 3)
	want := []time.Duration{2 * time.Second, 4 * time.Second, backoff.Stop}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("waits = %v, want %v", got, want)
		}
	}
}

func TestPolicyCapsWait(t *testing.T) {
	p := DefaultPolicy
	p.MaxRetries = 3
	got := waits(p, 4)
	want := []time.Duration{2 * time.Second, 4 * time.Second, 5 * time.Second, backoff.Stop}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("waits = %v, want %v", got, want)
		}
	}
}
