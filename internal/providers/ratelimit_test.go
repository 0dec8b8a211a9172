package providers

import (
	"context"
	"testing"
)

func TestRateLimiter_DefaultLimit(t *testing.T) {
	st := NewRateLimiter(0).Status()
	if st.TokensLimit != DefaultRequestsPerMinute {
		t.Errorf("expected default limit %d, got %d", DefaultRequestsPerMinute, st.TokensLimit)
	}
	if st.TokensAvailable != DefaultRequestsPerMinute {
		t.Errorf("expected a full bucket, got %d", st.TokensAvailable)
	}
}

func TestRateLimiter_StatusCountsConsumption(t *testing.T) {
	r := NewRateLimiter(60)
	for i := 0; i < 3; i++ {
		if err := r.Wait(context.Background()); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}

	st := r.Status()
	if st.TotalConsumed != 3 {
		t.Errorf("expected 3 consumed tokens, got %d", st.TotalConsumed)
	}
	if st.TokensLimit != 60 {
		t.Errorf("expected limit 60, got %d", st.TokensLimit)
	}
	if st.TokensAvailable >= 60 {
		t.Errorf("expected availability below the limit after consumption, got %d", st.TokensAvailable)
	}
}

func TestRateLimiter_WaitCancelled(t *testing.T) {
	r := NewRateLimiter(1)
	if err := r.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Wait(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled on an empty bucket, got %v", err)
	}

	if got := r.Status().TotalConsumed; got != 1 {
		t.Errorf("cancelled wait must not consume, got %d", got)
	}
}
